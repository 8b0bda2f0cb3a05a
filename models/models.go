package models

// AllModels returns all model structs for auto-migration
// IMPORTANT: Order matters! Parent tables must be created before child tables
func AllModels() []interface{} {
	return []interface{}{
		// 1. Independent tables (no foreign keys)
		&User{},
		&Product{},
		&LogEntry{},

		// 2. Tables referencing the above
		&Sale{},          // depends on: Product
		&PriceChange{},   // depends on: Product
		&Shift{},         // depends on: User (cashier)
		&PendingIntake{}, // depends on: User, Product (matched)
	}
}
