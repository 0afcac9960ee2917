// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

func newOrderServiceForTest(t *testing.T) (*OrderService, *testFixtures) {
	t.Helper()

	db := newTestDB(t)
	svc := NewOrderService(db, NewActivityService(db))

	buyer := createTestUser(t, db, "buyer", models.RoleCliente)
	category := createTestCategory(t, db, "Books")

	return svc, &testFixtures{
		db:       db,
		buyer:    buyer,
		category: category,
	}
}

type testFixtures struct {
	db       *gorm.DB
	buyer    *models.User
	category *models.Category
}

func TestCheckoutSuccess(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Go in Practice", 50.0, 10)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:           []CartItemRequest{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod:   models.PaymentMethodCard,
		DeliveryType:    models.DeliveryTypeShipping,
		ShippingAddress: testShippingAddress(),
	}, testActor(fx.buyer))
	require.NoError(t, err)

	assert.Equal(t, 100.0, receipt.TotalAmount)
	assert.NotZero(t, receipt.OrderID)

	var updated models.Product
	require.NoError(t, fx.db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.StockQuantity)

	var order models.Order
	require.NoError(t, fx.db.Preload("Items").First(&order, receipt.OrderID).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, fx.buyer.ID, order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 50.0, order.Items[0].UnitPrice)
	assert.Equal(t, "Go in Practice", order.Items[0].ProductTitle)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	plentiful := createTestProduct(t, fx.db, fx.category.ID, "Plentiful", 10.0, 100)
	scarce := createTestProduct(t, fx.db, fx.category.ID, "Scarce", 20.0, 1)

	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items: []CartItemRequest{
			{ProductID: plentiful.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 3},
		},
		PaymentMethod: models.PaymentMethodPix,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "Scarce")
	assert.Contains(t, err.Error(), "Requested: 3")
	assert.Contains(t, err.Error(), "Available: 1")

	// Neither product lost stock and no order was written.
	var p models.Product
	require.NoError(t, fx.db.First(&p, plentiful.ID).Error)
	assert.Equal(t, 100, p.StockQuantity)

	var orderCount int64
	fx.db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)

	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: 9999, Quantity: 1}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCheckoutShippingRequiresAddress(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Boxed Set", 30.0, 5)

	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypeShipping,
	}, testActor(fx.buyer))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	// Rejected before any stock was touched.
	var p models.Product
	require.NoError(t, fx.db.First(&p, product.ID).Error)
	assert.Equal(t, 5, p.StockQuantity)
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Notebook", 5.0, 10)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items: []CartItemRequest{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	assert.Equal(t, 25.0, receipt.TotalAmount)

	var order models.Order
	require.NoError(t, fx.db.Preload("Items").First(&order, receipt.OrderID).Error)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)

	var p models.Product
	require.NoError(t, fx.db.First(&p, product.ID).Error)
	assert.Equal(t, 5, p.StockQuantity)
}

func TestCheckoutDuplicateLinesExceedingStock(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Rare Print", 40.0, 4)

	// Each line alone fits the stock; combined they do not.
	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items: []CartItemRequest{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 3},
		},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientStock))

	var p models.Product
	require.NoError(t, fx.db.First(&p, product.ID).Error)
	assert.Equal(t, 4, p.StockQuantity)
}

func TestCheckoutSnapshotsPriceAndTitle(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "First Edition", 80.0, 3)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodPix,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	// Later catalog changes must not rewrite history.
	require.NoError(t, fx.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{"price": 120.0, "title": "Second Edition"}).Error)

	order, err := svc.GetOrder(receipt.OrderID, fx.buyer.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 80.0, order.Items[0].UnitPrice)
	assert.Equal(t, "First Edition", order.Items[0].ProductTitle)
	assert.Equal(t, 80.0, order.TotalAmount)
}

func TestShippingAddressRoundTrip(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Hardcover", 45.0, 5)

	addr := &models.ShippingAddress{
		Street:       "Avenida Paulista",
		Number:       "1578",
		Complement:   "Apto 42",
		Neighborhood: "Bela Vista",
		City:         "Sao Paulo",
		State:        "SP",
		ZipCode:      "01310-200",
	}

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:           []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod:   models.PaymentMethodCard,
		DeliveryType:    models.DeliveryTypeShipping,
		ShippingAddress: addr,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	// The serialized address must come back field-exact, complement included.
	order, err := svc.GetOrder(receipt.OrderID, fx.buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, *addr, *order.ShippingAddress)
}

func TestPickupOrderHasNoAddress(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Paperback", 15.0, 5)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodPix,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	order, err := svc.GetOrder(receipt.OrderID, fx.buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddress)
}

func TestCheckoutDigitalDownloadSnapshot(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)

	digital := &models.Product{
		Title:         "E-book",
		Description:   "digital product",
		Price:         15.0,
		StockQuantity: 100,
		ProductType:   models.ProductTypeDigital,
		DownloadURL:   "https://cdn.example.com/ebook.pdf",
		CategoryID:    fx.category.ID,
	}
	require.NoError(t, fx.db.Create(digital).Error)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: digital.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypeDigital,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, fx.db.Preload("Items").First(&order, receipt.OrderID).Error)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "https://cdn.example.com/ebook.pdf", order.Items[0].DownloadURL)
}

func TestCheckoutContention(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Last Copy", 60.0, 1)

	req := func() *CheckoutRequest {
		return &CheckoutRequest{
			Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
			PaymentMethod: models.PaymentMethodCard,
			DeliveryType:  models.DeliveryTypePickup,
		}
	}

	_, err := svc.Checkout(fx.buyer.ID, req(), testActor(fx.buyer))
	require.NoError(t, err)

	other := createTestUser(t, fx.db, "other", models.RoleCliente)
	_, err = svc.Checkout(other.ID, req(), testActor(other))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientStock))

	var p models.Product
	require.NoError(t, fx.db.First(&p, product.ID).Error)
	assert.Equal(t, 0, p.StockQuantity)
}

func TestCheckoutInvalidPayload(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)

	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	product := createTestProduct(t, fx.db, fx.category.ID, "Zero Qty", 10.0, 5)
	_, err = svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 0}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestGetOrderOwnership(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Private Order", 25.0, 5)

	receipt, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	intruder := createTestUser(t, fx.db, "intruder", models.RoleCliente)
	_, err = svc.GetOrder(receipt.OrderID, intruder.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.GetOrder(9999, fx.buyer.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListOrdersOnlyOwn(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Shared Title", 10.0, 50)

	other := createTestUser(t, fx.db, "someone", models.RoleCliente)

	for _, u := range []*models.User{fx.buyer, fx.buyer, other} {
		_, err := svc.Checkout(u.ID, &CheckoutRequest{
			Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
			PaymentMethod: models.PaymentMethodCard,
			DeliveryType:  models.DeliveryTypePickup,
		}, testActor(u))
		require.NoError(t, err)
	}

	orders, total, err := svc.ListOrders(fx.buyer.ID, utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, o := range orders {
		assert.Equal(t, fx.buyer.ID, o.UserID)
	}
}

func TestCheckoutRecordsActivity(t *testing.T) {
	svc, fx := newOrderServiceForTest(t)
	product := createTestProduct(t, fx.db, fx.category.ID, "Audited", 12.0, 5)

	_, err := svc.Checkout(fx.buyer.ID, &CheckoutRequest{
		Items:         []CartItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: models.PaymentMethodCard,
		DeliveryType:  models.DeliveryTypePickup,
	}, testActor(fx.buyer))
	require.NoError(t, err)

	var log models.ActivityLog
	require.NoError(t, fx.db.Where("action = ? AND resource = ?", "CHECKOUT", "ORDER").First(&log).Error)
	assert.Equal(t, fx.buyer.Username, log.Username)
}
