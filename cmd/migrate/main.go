package main

import (
	"mattress_money/internal/config" // Custom import path (Config)
	"mattress_money/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration
}
