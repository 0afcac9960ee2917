// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ShippingAddress is persisted as serialized JSON text and must round-trip
// exactly through the order detail endpoints.
type ShippingAddress struct {
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported shipping address column type %T", value)
	}
}

// Order is immutable after creation; only the order query component reads it
// back.
type Order struct {
	BaseModel
	UserID          uint             `json:"user_id" gorm:"not null;index"`
	Status          OrderStatus      `json:"status" gorm:"type:varchar(20);default:'PAID';not null"`
	TotalAmount     float64          `json:"total_amount" gorm:"not null"`
	PaymentMethod   PaymentMethod    `json:"payment_method" gorm:"type:varchar(20);not null"`
	DeliveryType    DeliveryType     `json:"delivery_type" gorm:"type:varchar(20);not null"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty" gorm:"type:text"`

	// Relationships
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots price and title at purchase time so later catalog
// changes never alter historical orders.
type OrderItem struct {
	BaseModel
	OrderID      uint    `json:"order_id" gorm:"not null;index"`
	ProductID    uint    `json:"product_id" gorm:"not null;index"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	UnitPrice    float64 `json:"unit_price" gorm:"not null"`
	ProductTitle string  `json:"product_title" gorm:"size:255;not null"`
	DownloadURL  string  `json:"download_url,omitempty" gorm:"size:512"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
