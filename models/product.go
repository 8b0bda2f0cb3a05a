package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents products table
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
	Category     string          `gorm:"type:varchar(120);not null;default:'General'" json:"category"`
	ExpiryDate   *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	InitialQty   int             `gorm:"not null" json:"initial_qty"`
	QtyAtHand    int             `gorm:"not null;check:qty_at_hand >= 0" json:"qty_at_hand"`
	SafetyStock  int             `gorm:"not null;default:5" json:"safety_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// LowStock reports whether the product has fallen below its re-order level.
func (p *Product) LowStock() bool {
	return p.QtyAtHand < p.SafetyStock
}
