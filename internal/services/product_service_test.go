// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

func TestCreateProductRequiresCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))
	vendor := createTestUser(t, db, "vendor", models.RoleVendedor)

	_, err := svc.CreateProduct(&CreateProductRequest{
		Title:         "Orphan Book",
		Description:   "no category",
		Price:         10.0,
		StockQuantity: 5,
		CategoryID:    42,
	}, testActor(vendor))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCreateProductDefaultsToPhysical(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))
	vendor := createTestUser(t, db, "vendor", models.RoleVendedor)
	category := createTestCategory(t, db, "Novels")

	product, err := svc.CreateProduct(&CreateProductRequest{
		Title:         "Plain Novel",
		Description:   "a novel",
		Price:         30.0,
		StockQuantity: 10,
		CategoryID:    category.ID,
	}, testActor(vendor))
	require.NoError(t, err)
	assert.Equal(t, models.ProductTypePhysical, product.ProductType)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Novels", product.Category.Name)
}

func TestSearchProductsByCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))

	fiction := createTestCategory(t, db, "Fiction")
	essays := createTestCategory(t, db, "Essays")
	createTestProduct(t, db, fiction.ID, "Novel A", 10.0, 5)
	createTestProduct(t, db, fiction.ID, "Novel B", 12.0, 5)
	createTestProduct(t, db, essays.ID, "Essay C", 15.0, 5)

	products, total, err := svc.SearchProducts(ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Sort: "title", Order: "asc"},
		CategoryID:       &fiction.ID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, p := range products {
		assert.Equal(t, fiction.ID, p.CategoryID)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))
	vendor := createTestUser(t, db, "vendor", models.RoleVendedor)
	category := createTestCategory(t, db, "Manuals")
	product := createTestProduct(t, db, category.ID, "Manual v1", 25.0, 8)

	newPrice := 29.9
	updated, err := svc.UpdateProduct(product.ID, &UpdateProductRequest{Price: &newPrice}, testActor(vendor))
	require.NoError(t, err)

	// Only the price changed.
	assert.Equal(t, 29.9, updated.Price)
	assert.Equal(t, "Manual v1", updated.Title)
	assert.Equal(t, 8, updated.StockQuantity)
}

func TestUpdateProductInvalidType(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))
	vendor := createTestUser(t, db, "vendor", models.RoleVendedor)
	category := createTestCategory(t, db, "Misc")
	product := createTestProduct(t, db, category.ID, "Odd One", 5.0, 1)

	bogus := models.ProductType("HOLOGRAM")
	_, err := svc.UpdateProduct(product.ID, &UpdateProductRequest{ProductType: &bogus}, testActor(vendor))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewActivityService(db))
	vendor := createTestUser(t, db, "vendor", models.RoleVendedor)
	category := createTestCategory(t, db, "Clearance")
	product := createTestProduct(t, db, category.ID, "Going Away", 1.0, 1)

	require.NoError(t, svc.DeleteProduct(product.ID, testActor(vendor)))

	_, err := svc.GetProduct(product.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
