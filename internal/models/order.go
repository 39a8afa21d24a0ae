// internal/models/order.go
package models

import (
	"reflect"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	BuyerID         uuid.UUID     `json:"buyer_id" gorm:"type:uuid;not null;index" validate:"required"`
	FarmerID        uuid.UUID     `json:"farmer_id" gorm:"type:uuid;not null;index" validate:"required"`
	TotalAmount     float64       `json:"total_amount" gorm:"type:decimal(12,2);not null;check:chk_orders_total,total_amount >= 0" validate:"gte=0,lte=9999999999.99"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(20);not null;index" validate:"order_status"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;index" validate:"payment_status"`
	PaymentMethod   string        `json:"payment_method,omitempty" gorm:"size:50"`
	DeliveryAddress JSONB         `json:"delivery_address" gorm:"type:jsonb"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`

	Items []OrderItem `json:"items,omitempty" gorm:"-"`
}

// HasParty reports whether the account is one of the two parties of the order.
func (o *Order) HasParty(accountID uuid.UUID) bool {
	return o.BuyerID == accountID || o.FarmerID == accountID
}

// OnlyProgressChanged reports whether proposed differs from o in nothing but
// Status and PaymentStatus.
func (o *Order) OnlyProgressChanged(proposed *Order) bool {
	return o.ID == proposed.ID &&
		o.BuyerID == proposed.BuyerID &&
		o.FarmerID == proposed.FarmerID &&
		o.TotalAmount == proposed.TotalAmount &&
		o.PaymentMethod == proposed.PaymentMethod &&
		o.Notes == proposed.Notes &&
		reflect.DeepEqual(o.DeliveryAddress, proposed.DeliveryAddress)
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index" validate:"required"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index" validate:"required"`
	Quantity  int       `json:"quantity" gorm:"not null;check:chk_order_items_quantity,quantity > 0" validate:"gt=0,max=100000"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null;check:chk_order_items_unit_price,unit_price >= 0" validate:"gte=0,lte=99999999.99"`
	Subtotal  float64   `json:"subtotal" gorm:"type:decimal(12,2);not null;check:chk_order_items_subtotal,subtotal >= 0" validate:"gte=0,lte=9999999999.99"`
}
