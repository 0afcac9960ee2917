// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

type ProductService struct {
	db              *gorm.DB
	activityService *ActivityService
}

type CreateProductRequest struct {
	Title         string             `json:"title" validate:"required,min=2,max=255"`
	Description   string             `json:"description" validate:"required"`
	Price         float64            `json:"price" validate:"min=0"`
	StockQuantity int                `json:"stock_quantity" validate:"min=0"`
	ImageURL      string             `json:"image_url,omitempty" validate:"omitempty,url"`
	ProductType   models.ProductType `json:"product_type,omitempty"`
	DownloadURL   string             `json:"download_url,omitempty" validate:"omitempty,url"`
	CategoryID    uint               `json:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Title         *string             `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string             `json:"description,omitempty"`
	Price         *float64            `json:"price,omitempty" validate:"omitempty,min=0"`
	StockQuantity *int                `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	ImageURL      *string             `json:"image_url,omitempty" validate:"omitempty,url"`
	ProductType   *models.ProductType `json:"product_type,omitempty"`
	DownloadURL   *string             `json:"download_url,omitempty" validate:"omitempty,url"`
	CategoryID    *uint               `json:"category_id,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID *uint
}

func NewProductService(db *gorm.DB, activityService *ActivityService) *ProductService {
	return &ProductService{
		db:              db,
		activityService: activityService,
	}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest, actor Actor) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid product data").
			WithDetails(utils.GetValidationErrors(err))
	}

	productType := req.ProductType
	if productType == "" {
		productType = models.ProductTypePhysical
	}
	if !productType.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "Invalid product type: %s", productType)
	}

	// The category reference must exist; gorm will not enforce it for us on
	// every dialect.
	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeValidation, "Category %d does not exist", req.CategoryID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	product := &models.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		ProductType:   productType,
		DownloadURL:   req.DownloadURL,
		CategoryID:    req.CategoryID,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "CREATE",
		Resource:   "PRODUCT",
		ResourceID: &product.ID,
		Details:    fmt.Sprintf("Created product: %s", product.Title),
		IPAddress:  actor.IPAddress,
	})

	product.Category = &category
	return product, nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category")

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "updated_at", "title", "price", "stock_quantity"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "Product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) UpdateProduct(id uint, req *UpdateProductRequest, actor Actor) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid product data").
			WithDetails(utils.GetValidationErrors(err))
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.ProductType != nil {
		if !req.ProductType.Valid() {
			return nil, apperrors.Newf(apperrors.CodeValidation, "Invalid product type: %s", *req.ProductType)
		}
		updates["product_type"] = *req.ProductType
	}
	if req.DownloadURL != nil {
		updates["download_url"] = *req.DownloadURL
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Newf(apperrors.CodeValidation, "Category %d does not exist", *req.CategoryID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	// Reload with the category relationship before recording and returning.
	product, err = s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "UPDATE",
		Resource:   "PRODUCT",
		ResourceID: &product.ID,
		Details:    fmt.Sprintf("Updated product: %s", product.Title),
		IPAddress:  actor.IPAddress,
	})

	return product, nil
}

func (s *ProductService) DeleteProduct(id uint, actor Actor) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Product{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     "DELETE",
		Resource:   "PRODUCT",
		ResourceID: &id,
		Details:    fmt.Sprintf("Deleted product: %s", product.Title),
		IPAddress:  actor.IPAddress,
	})

	return nil
}
