package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/web"
)

func main() {
	// Command line flags
	var (
		migrate = flag.Bool("migrate", false, "Run database migration on startup")
		seed    = flag.Bool("seed", false, "Seed database with starter data")
		help    = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := database.Initialize(&cfg.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Run migration if requested
	if *migrate {
		if err := database.AutoMigrate(database.GetDB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	// Seed starter data if requested
	if *seed {
		if err := database.Seed(database.GetDB()); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	// Create and start the server
	server := web.NewServer(cfg)

	// Graceful shutdown on interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down...")
		database.Close()
		os.Exit(0)
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func showHelp() {
	log.Println(`Inventory tracker server

Usage:
  inventory-app [flags]

Flags:
  -migrate   Run database migration on startup
  -seed      Seed database with starter data (users + sample products)
  -help      Show this help

Environment:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE
  APP_ENV, APP_PORT
  JWT_SECRET, TOKEN_TTL_HOURS`)
}
