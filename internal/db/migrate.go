// Package db opens the MySQL connection and manages schema migration.
package db

import (
	"mattress_money/internal/domain" // Entity records

	"github.com/sirupsen/logrus" // Logging library

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Open connects to MySQL. TranslateError turns driver duplicate-key errors
// into gorm.ErrDuplicatedKey, which the stores depend on.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate creates or updates the tables for every persisted collection
func Migrate(dsn string) {
	conn, err := Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	err = conn.AutoMigrate(
		&domain.User{},
		&domain.LoginToken{},
		&domain.Account{},
		&domain.Mattress{},
		&domain.Transaction{},
		&domain.BudgetTemplate{},
		&domain.BudgetInstance{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
