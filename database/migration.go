package database

import (
	"fmt"
	"log"

	"github.com/nastradacha/inventory-app/models"
	"gorm.io/gorm"
)

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	log.Println("Starting GORM AutoMigrate...")

	// Models are ordered so parent tables exist before their children
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// AutoMigrate cannot express partial indexes; one open shift per cashier
	// is enforced here so concurrent opens cannot both slip past the check.
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_open_per_cashier
		ON shifts (cashier_id) WHERE closed_at IS NULL`).Error
	if err != nil {
		return fmt.Errorf("failed to create open-shift index: %w", err)
	}

	log.Println("Migration completed successfully")
	return nil
}

// MigrationStatus logs which tables currently exist
func MigrationStatus(db *gorm.DB) {
	migrator := db.Migrator()
	for _, model := range models.AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			continue
		}
		if migrator.HasTable(model) {
			log.Printf("  table %-18s OK", stmt.Schema.Table)
		} else {
			log.Printf("  table %-18s MISSING", stmt.Schema.Table)
		}
	}
}
