package models

import "time"

// LogEntry represents log_entries table. Append-only audit trail: rows are
// never updated or deleted after creation.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(80);not null" json:"username"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for LogEntry
func (LogEntry) TableName() string {
	return "log_entries"
}

// Audit action tags
const (
	ActionRestock            = "restock"
	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeleted     = "product_deleted"
	ActionPriceChange        = "price_change"
	ActionSaleRecorded       = "sale_recorded"
	ActionSaleEdited         = "sale_edited"
	ActionSaleVoided         = "sale_voided"
	ActionBelowCostOverride  = "below_cost_override"
	ActionBelowCostBlocked   = "below_cost_blocked"
	ActionQtyAdjusted        = "qty_adjusted"
	ActionIntakeStaged       = "intake_staged"
	ActionIntakeCancelled    = "intake_cancelled"
	ActionBatchCreateProduct = "batch_create_product"
	ActionBatchUpdateProduct = "batch_update_product"
	ActionUserCreated        = "user_created"
	ActionPasswordReset      = "password_reset"
	ActionShiftOpened        = "shift_opened"
	ActionShiftClosed        = "shift_closed"
)
