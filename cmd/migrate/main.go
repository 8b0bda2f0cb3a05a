package main

import (
	"flag"
	"log"

	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/database"
)

func main() {
	status := flag.Bool("status", false, "Show table status instead of migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.InitializeWithOptions(&cfg.Database, true); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if *status {
		database.MigrationStatus(database.GetDB())
		return
	}

	if err := database.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
