package config

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB opens the Postgres connection when DB_URL is set. Without a
// DB_URL the app runs on the in-memory store, so a missing URL is not an
// error here.
func ConnectDB() error {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		return nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	DB = db
	return nil
}
