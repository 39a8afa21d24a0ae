// internal/models/message.go
package models

import (
	"github.com/google/uuid"
)

// Message links to a product or order only by id; deleting either nulls
// the reference and never removes the message.
type Message struct {
	BaseModel
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index" validate:"required"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;index" validate:"required"`
	ProductID  *uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	OrderID    *uuid.UUID `json:"order_id" gorm:"type:uuid;index"`
	Content    string     `json:"content" gorm:"type:text;not null" validate:"required"`
	IsRead     bool       `json:"is_read" gorm:"not null;index"`
}

// OnlyReadFlagChanged reports whether proposed differs from m in nothing but IsRead.
func (m *Message) OnlyReadFlagChanged(proposed *Message) bool {
	return m.ID == proposed.ID &&
		m.SenderID == proposed.SenderID &&
		m.ReceiverID == proposed.ReceiverID &&
		uuidPtrEqual(m.ProductID, proposed.ProductID) &&
		uuidPtrEqual(m.OrderID, proposed.OrderID) &&
		m.Content == proposed.Content
}
