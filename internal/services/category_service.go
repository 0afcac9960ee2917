// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

type CategoryService struct {
	db              *gorm.DB
	activityService *ActivityService
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
	Description string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Description *string `json:"description,omitempty"`
}

func NewCategoryService(db *gorm.DB, activityService *ActivityService) *CategoryService {
	return &CategoryService{
		db:              db,
		activityService: activityService,
	}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest, actor Actor) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid category data").
			WithDetails(utils.GetValidationErrors(err))
	}

	category := &models.Category{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}

	if err := s.db.Create(category).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Newf(apperrors.CodeConflict, "Category '%s' already exists", req.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "CREATE",
		Resource:   "CATEGORY",
		ResourceID: &category.ID,
		Details:    fmt.Sprintf("Created category: %s", category.Name),
		IPAddress:  actor.IPAddress,
	})

	return category, nil
}

func (s *CategoryService) ListCategories(params utils.PaginationParams) ([]models.Category, int64, error) {
	query := s.db.Model(&models.Category{})

	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name"})
	query = utils.ApplyPagination(query, params)

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, total, nil
}

func (s *CategoryService) GetCategory(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "Category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) UpdateCategory(id uint, req *UpdateCategoryRequest, actor Actor) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid category data").
			WithDetails(utils.GetValidationErrors(err))
	}

	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if req.Name != nil && apperrors.IsUniqueViolation(err) {
				return nil, apperrors.Newf(apperrors.CodeConflict, "Category '%s' already exists", *req.Name)
			}
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	category, err = s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "UPDATE",
		Resource:   "CATEGORY",
		ResourceID: &category.ID,
		Details:    fmt.Sprintf("Updated category: %s", category.Name),
		IPAddress:  actor.IPAddress,
	})

	return category, nil
}

// DeleteCategory refuses to orphan products: a category that still owns
// products is a Conflict, not a cascade.
func (s *CategoryService) DeleteCategory(id uint, actor Actor) error {
	category, err := s.GetCategory(id)
	if err != nil {
		return err
	}

	var productCount int64
	if err := s.db.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}

	if productCount > 0 {
		return apperrors.Newf(apperrors.CodeConflict,
			"Cannot delete category '%s': it still has %d associated product(s)", category.Name, productCount)
	}

	if err := s.db.Delete(category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "DELETE",
		Resource:   "CATEGORY",
		ResourceID: &id,
		Details:    fmt.Sprintf("Deleted category: %s", category.Name),
		IPAddress:  actor.IPAddress,
	})

	return nil
}
