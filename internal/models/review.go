// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

// Review is unique per (product, buyer, order). OrderID is nulled when the
// justifying order is deleted.
type Review struct {
	BaseModel
	ProductID          uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_buyer_order" validate:"required"`
	BuyerID            uuid.UUID  `json:"buyer_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_product_buyer_order" validate:"required"`
	OrderID            *uuid.UUID `json:"order_id" gorm:"type:uuid;uniqueIndex:idx_reviews_product_buyer_order"`
	Rating             int        `json:"rating" gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" validate:"min=1,max=5"`
	Comment            string     `json:"comment,omitempty" gorm:"type:text"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase" gorm:"not null"`
}

// SameKey reports whether two reviews collide on the uniqueness key.
func (r *Review) SameKey(other *Review) bool {
	return r.ProductID == other.ProductID &&
		r.BuyerID == other.BuyerID &&
		uuidPtrEqual(r.OrderID, other.OrderID)
}
