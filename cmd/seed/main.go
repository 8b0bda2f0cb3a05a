package main

import (
	"log"

	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.InitializeWithOptions(&cfg.Database, true); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := database.Seed(database.GetDB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
