// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

// UserService covers the admin-facing user management operations.
type UserService struct {
	db              *gorm.DB
	activityService *ActivityService
}

// Actor identifies the authenticated principal performing a mutation, for
// audit purposes.
type Actor struct {
	ID        uint
	Username  string
	IPAddress string
}

func NewUserService(db *gorm.DB, activityService *ActivityService) *UserService {
	return &UserService{
		db:              db,
		activityService: activityService,
	}
}

func (s *UserService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "username", "email", "role"})
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) UpdateUserRole(userID uint, role models.UserRole, actor Actor) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "Invalid role: %s", role)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "User not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldRole := user.Role
	user.Role = role
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "ROLE_CHANGE",
		Resource:   "USER",
		ResourceID: &user.ID,
		Details:    fmt.Sprintf("Changed role of %s from %s to %s", user.Username, oldRole, role),
		IPAddress:  actor.IPAddress,
	})

	return &user, nil
}

func (s *UserService) SetUserActive(userID uint, active bool, actor Actor) (*models.User, error) {
	if !active && userID == actor.ID {
		return nil, apperrors.New(apperrors.CodeValidation, "You cannot deactivate your own account")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "User not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.IsActive = active
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	action, verb := "ACTIVATE", "Activated"
	if !active {
		action, verb = "DEACTIVATE", "Deactivated"
	}
	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     action,
		Resource:   "USER",
		ResourceID: &user.ID,
		Details:    fmt.Sprintf("%s user %s", verb, user.Username),
		IPAddress:  actor.IPAddress,
	})

	return &user, nil
}
