package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents sales table. UnitPrice is an optional per-sale override;
// when nil the product's selling price at query time applies.
type Sale struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"not null;index" json:"product_id"`
	SaleDate  time.Time        `gorm:"type:date;not null" json:"sale_date"`
	QtySold   int              `gorm:"not null;check:qty_sold > 0" json:"qty_sold"`
	UnitPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price,omitempty"`
	CashierID *uint            `gorm:"index" json:"cashier_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for Sale
func (Sale) TableName() string {
	return "sales"
}

// EffectivePrice returns the override price when present, else the listed
// selling price of the given product.
func (s *Sale) EffectivePrice(p *Product) decimal.Decimal {
	if s.UnitPrice != nil {
		return *s.UnitPrice
	}
	return p.SellingPrice
}
