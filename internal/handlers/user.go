// internal/handlers/user.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/services"
	"github.com/compia/editora-backend/internal/utils"
)

// UserHandler exposes the admin-only user management and audit log endpoints.
type UserHandler struct {
	userService     *services.UserService
	activityService *services.ActivityService
}

func NewUserHandler(userService *services.UserService, activityService *services.ActivityService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		activityService: activityService,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// GET /admin/users
func (h *UserHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(params)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PATCH /admin/users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.UpdateUserRole(userID, req.Role, actorFromContext(c))
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PATCH /admin/users/:id/status
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.SetUserActive(userID, *req.IsActive, actorFromContext(c))
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// GET /admin/logs
func (h *UserHandler) GetActivityLogs(c *gin.Context) {
	filter := services.ActivityFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Action:           c.Query("action"),
		Resource:         c.Query("resource"),
		Username:         c.Query("username"),
	}

	logs, total, err := h.activityService.List(filter)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, filter.PaginationParams))
}
