// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category is admin-managed reference data shared by every product listing.
type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null" validate:"required"`
	NameLocal   string `json:"name_local,omitempty" gorm:"size:100"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Icon        string `json:"icon,omitempty" gorm:"size:100"`
}

type Product struct {
	BaseModel
	FarmerID          uuid.UUID      `json:"farmer_id" gorm:"type:uuid;not null;index" validate:"required"`
	CategoryID        *uuid.UUID     `json:"category_id" gorm:"type:uuid;index"`
	Name              string         `json:"name" gorm:"size:255;not null" validate:"required"`
	Description       string         `json:"description" gorm:"type:text"`
	Price             float64        `json:"price" gorm:"type:decimal(10,2);not null;check:chk_products_price,price >= 0" validate:"gte=0,lte=99999999.99"`
	Unit              string         `json:"unit" gorm:"size:20;not null"`
	StockQuantity     int            `json:"stock_quantity" gorm:"not null;check:chk_products_stock,stock_quantity >= 0" validate:"gte=0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"not null" validate:"gte=0"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	Location          string         `json:"location,omitempty" gorm:"size:255"`
	IsActive          bool           `json:"is_active" gorm:"not null;index"`
}

// IsLowStock reports whether the farmer should restock.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
