package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingIntake represents pending_intakes table: a staged stock intake that
// tripped the duplicate-name screen and is waiting for an explicit confirm
// or cancel from the user who submitted it. At most one pending intake per
// user; a new staging replaces the old one. Rows expire after a fixed
// window and are treated as absent afterwards.
type PendingIntake struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Token     string `gorm:"type:varchar(36);not null;uniqueIndex" json:"token"`
	UserID    uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	// Proposed intake, exactly as submitted
	Name         string          `gorm:"type:varchar(120);not null" json:"name"`
	Category     string          `gorm:"type:varchar(120);not null" json:"category"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	SafetyStock  int             `gorm:"not null;default:5" json:"safety_stock"`
	ExpiryDate   *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`

	// The catalog entry that triggered the screen
	MatchedProductID uint   `gorm:"not null" json:"matched_product_id"`
	MatchedName      string `gorm:"type:varchar(120);not null" json:"matched_name"`
	Score            int    `gorm:"not null" json:"score"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for PendingIntake
func (PendingIntake) TableName() string {
	return "pending_intakes"
}

// Expired reports whether the staging window has passed at the given time.
func (p *PendingIntake) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
