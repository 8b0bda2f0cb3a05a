package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift represents shifts table. Totals are stamped once at close time,
// never updated incrementally while the shift is open.
type Shift struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CashierID    uint            `gorm:"not null;index" json:"cashier_id"`
	OpenedAt     time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	TotalQty     int             `gorm:"not null;default:0" json:"total_qty"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_revenue"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Shift
func (Shift) TableName() string {
	return "shifts"
}

// Open reports whether the shift has not been closed yet.
func (s *Shift) Open() bool {
	return s.ClosedAt == nil
}
