// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/compia/editora-backend/internal/models"
)

// newTestDB opens an isolated in-memory database per test. The shared cache
// keeps the database alive across the pooled connections gorm opens.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.ActivityLog{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Passw0rd1"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, categoryID uint, title string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:         title,
		Description:   "test product",
		Price:         price,
		StockQuantity: stock,
		ProductType:   models.ProductTypePhysical,
		CategoryID:    categoryID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func testActor(user *models.User) Actor {
	return Actor{
		ID:        user.ID,
		Username:  user.Username,
		IPAddress: "127.0.0.1",
	}
}

func testShippingAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		Street:       "Rua das Flores",
		Number:       "123",
		Neighborhood: "Centro",
		City:         "Sao Paulo",
		State:        "SP",
		ZipCode:      "01000-000",
	}
}
