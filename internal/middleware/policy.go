// internal/middleware/policy.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/compia/editora-backend/internal/models"
)

type Action string

const (
	ActionManageUsers      Action = "users.manage"
	ActionViewActivityLogs Action = "logs.view"
	ActionManageCategories Action = "categories.manage"
	ActionManageProducts   Action = "products.manage"
	ActionUploadMedia      Action = "media.upload"
)

// rolePolicy is the single source of truth for which roles may perform which
// action. Role sets change over time; adjust here, not in the routes.
var rolePolicy = map[Action][]models.UserRole{
	ActionManageUsers:      {models.RoleAdmin},
	ActionViewActivityLogs: {models.RoleAdmin},
	ActionManageCategories: {models.RoleAdmin, models.RoleEditor},
	ActionManageProducts:   {models.RoleAdmin, models.RoleEditor, models.RoleVendedor},
	ActionUploadMedia:      {models.RoleAdmin, models.RoleEditor, models.RoleVendedor},
}

func AllowedRoles(action Action) []models.UserRole {
	return rolePolicy[action]
}

// RequirePermission guards a route with the policy table entry for action.
func RequirePermission(action Action) gin.HandlerFunc {
	return RoleRequired(AllowedRoles(action)...)
}
