// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEditor   UserRole = "EDITOR"
	RoleVendedor UserRole = "VENDEDOR"
	RoleCliente  UserRole = "CLIENTE"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleVendedor, RoleCliente:
		return true
	}
	return false
}

type ProductType string

const (
	ProductTypePhysical ProductType = "PHYSICAL"
	ProductTypeDigital  ProductType = "DIGITAL"
	ProductTypeKit      ProductType = "KIT"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypePhysical, ProductTypeDigital, ProductTypeKit:
		return true
	}
	return false
}

type OrderStatus string

const (
	// Payment is simulated, so orders are born paid.
	OrderStatusPaid OrderStatus = "PAID"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodPix  PaymentMethod = "PIX"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodPix
}

type DeliveryType string

const (
	DeliveryTypeShipping DeliveryType = "SHIPPING"
	DeliveryTypePickup   DeliveryType = "PICKUP"
	DeliveryTypeDigital  DeliveryType = "DIGITAL"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryTypeShipping, DeliveryTypePickup, DeliveryTypeDigital:
		return true
	}
	return false
}
