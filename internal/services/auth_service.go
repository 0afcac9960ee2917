// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

type AuthService struct {
	db              *gorm.DB
	jwtManager      *utils.JWTManager
	activityService *ActivityService
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, jwtManager *utils.JWTManager, activityService *ActivityService) *AuthService {
	return &AuthService{
		db:              db,
		jwtManager:      jwtManager,
		activityService: activityService,
	}
}

// Register creates a new customer account. Self-registration always gets the
// CLIENTE role; privileged roles are granted afterwards by an admin.
func (s *AuthService) Register(req *RegisterRequest, ip string) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid registration data").
			WithDetails(utils.GetValidationErrors(err))
	}

	// Check duplicates up front for a precise message; the unique indexes
	// still guard against races.
	var existing models.User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, apperrors.New(apperrors.CodeConflict, "Username already registered")
	}
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperrors.New(apperrors.CodeConflict, "Email already registered")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleCliente,
		IsActive: true,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "Username or email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &user.ID,
		Username:   user.Username,
		Action:     "REGISTER",
		Resource:   "USER",
		ResourceID: &user.ID,
		Details:    fmt.Sprintf("User registered: %s", user.Username),
		IPAddress:  ip,
	})

	return user, nil
}

func (s *AuthService) Login(req *LoginRequest, ip string) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid credentials payload").
			WithDetails(utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Incorrect username or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Incorrect username or password")
	}

	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "Account is deactivated")
	}

	accessToken, err := s.jwtManager.Generate(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &user.ID,
		Username:   user.Username,
		Action:     "LOGIN",
		Resource:   "USER",
		ResourceID: &user.ID,
		Details:    fmt.Sprintf("User logged in: %s", user.Username),
		IPAddress:  ip,
	})

	return &AuthResponse{
		User:        &user,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtManager.TTL().Seconds()),
	}, nil
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "User not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
