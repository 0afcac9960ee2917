// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/compia/editora-backend/internal/apperrors"
	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

// OrderService implements atomic checkout and the per-user order queries.
// Checkout runs inside a single transaction: every product row is locked,
// validated, and only then is stock decremented and the order written, so a
// partially-applied cart can never be observed.
type OrderService struct {
	db              *gorm.DB
	activityService *ActivityService
}

type CartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	Items           []CartItemRequest       `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   models.PaymentMethod    `json:"payment_method" validate:"required"`
	DeliveryType    models.DeliveryType     `json:"delivery_type" validate:"required"`
	ShippingAddress *models.ShippingAddress `json:"shipping_address,omitempty"`
}

// CheckoutReceipt is the confirmation payload returned to the buyer.
type CheckoutReceipt struct {
	OrderID     uint    `json:"order_id"`
	Message     string  `json:"message"`
	TotalAmount float64 `json:"total_amount"`
}

func NewOrderService(db *gorm.DB, activityService *ActivityService) *OrderService {
	return &OrderService{
		db:              db,
		activityService: activityService,
	}
}

// lockForUpdate takes a row lock on the selected products so concurrent
// checkouts serialize on the same stock. sqlite has no FOR UPDATE syntax and
// serializes writers globally, so the clause is skipped there; the guarded
// decrement in decrementStock still protects against oversell.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// mergeCartItems collapses duplicate product lines by summing quantities,
// preserving the position of each product's first occurrence. Validating the
// combined quantity against a single stock read is the only way the
// all-or-nothing guarantee holds within one cart.
func mergeCartItems(items []CartItemRequest) []CartItemRequest {
	merged := make([]CartItemRequest, 0, len(items))
	index := make(map[uint]int, len(items))

	for _, item := range items {
		if pos, seen := index[item.ProductID]; seen {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

func (s *OrderService) Checkout(userID uint, req *CheckoutRequest, actor Actor) (*CheckoutReceipt, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Invalid checkout data").
			WithDetails(utils.GetValidationErrors(err))
	}

	if !req.PaymentMethod.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "Invalid payment method: %s", req.PaymentMethod)
	}
	if !req.DeliveryType.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "Invalid delivery type: %s", req.DeliveryType)
	}

	// Shipping needs a destination. This is rejected before any stock row is
	// read or touched.
	if req.DeliveryType == models.DeliveryTypeShipping {
		if req.ShippingAddress == nil {
			return nil, apperrors.New(apperrors.CodeValidation, "Shipping address is required for shipping delivery")
		}
		if err := utils.ValidateStruct(req.ShippingAddress); err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "Invalid shipping address").
				WithDetails(utils.GetValidationErrors(err))
		}
	}

	items := mergeCartItems(req.Items)

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Phase 1: lock and validate every line before mutating anything.
		products := make([]models.Product, len(items))
		for i, item := range items {
			var product models.Product
			if err := lockForUpdate(tx).First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Newf(apperrors.CodeNotFound, "Product %d not found", item.ProductID)
				}
				return fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
			}
			if product.StockQuantity < item.Quantity {
				return apperrors.Newf(apperrors.CodeInsufficientStock,
					"Insufficient stock for '%s'. Requested: %d, Available: %d",
					product.Title, item.Quantity, product.StockQuantity)
			}
			products[i] = product
		}

		// Phase 2: all lines are valid, compute the total from the locked
		// reads and persist.
		var total float64
		for i, item := range items {
			total += products[i].Price * float64(item.Quantity)
		}

		order = &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPaid,
			TotalAmount:     total,
			PaymentMethod:   req.PaymentMethod,
			DeliveryType:    req.DeliveryType,
			ShippingAddress: req.ShippingAddress,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range items {
			product := products[i]

			orderItem := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    product.ID,
				Quantity:     item.Quantity,
				UnitPrice:    product.Price,
				ProductTitle: product.Title,
			}
			if product.ProductType == models.ProductTypeDigital {
				orderItem.DownloadURL = product.DownloadURL
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			if err := s.decrementStock(tx, product, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityService.Record(ActivityEntry{
		UserID:     &userID,
		Username:   actor.Username,
		Action:     "CHECKOUT",
		Resource:   "ORDER",
		ResourceID: &order.ID,
		Details:    fmt.Sprintf("Order %d placed, total %.2f", order.ID, order.TotalAmount),
		IPAddress:  actor.IPAddress,
	})

	return &CheckoutReceipt{
		OrderID:     order.ID,
		Message:     "Purchase completed successfully",
		TotalAmount: order.TotalAmount,
	}, nil
}

// decrementStock applies a guarded decrement. The WHERE clause re-checks the
// quantity so stock can never go negative even if the row lock was skipped,
// and a zero rows-affected result aborts the whole transaction.
func (s *OrderService) decrementStock(tx *gorm.DB, product models.Product, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", product.ID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeInsufficientStock,
			"Insufficient stock for '%s'. Requested: %d, Available: %d",
			product.Title, qty, product.StockQuantity)
	}
	return nil
}

// ListOrders returns the caller's own orders, newest first.
func (s *OrderService) ListOrders(userID uint, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "total_amount"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder returns one order with its items. Someone else's order is a
// permission failure, not a missing resource; the order id itself is not
// secret.
func (s *OrderService) GetOrder(orderID, userID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "Order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "You do not have access to this order")
	}

	return &order, nil
}
