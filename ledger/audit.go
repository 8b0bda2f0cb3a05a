package ledger

import (
	"fmt"

	"github.com/nastradacha/inventory-app/models"
	"gorm.io/gorm"
)

// appendLog writes one audit entry on the given handle. When called with a
// transaction handle the entry commits or rolls back with the operation;
// blocked below-cost attempts are written on the base handle instead so the
// record survives the rollback.
func appendLog(db *gorm.DB, actor Actor, action, format string, args ...interface{}) error {
	entry := models.LogEntry{
		Username: actor.Username,
		Action:   action,
		Details:  fmt.Sprintf(format, args...),
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}
