package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price fields a PriceChange can refer to
const (
	PriceFieldCost    = "cost"
	PriceFieldSelling = "selling"
)

// PriceChange represents price_changes table. Pure history, one row per
// changed price field.
type PriceChange struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Field     string          `gorm:"type:varchar(20);not null" json:"field"`
	OldPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"old_price"`
	NewPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"new_price"`
	ChangedBy string          `gorm:"type:varchar(80);not null" json:"changed_by"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for PriceChange
func (PriceChange) TableName() string {
	return "price_changes"
}
