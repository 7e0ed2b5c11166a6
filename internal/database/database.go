package database

import (
	"strings"

	"github.com/arnold/stakegoals-api/internal/config"
	"github.com/arnold/stakegoals-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to PostgreSQL when url starts with postgres, otherwise to
// the SQLite file (or memory database) it names.
func Open(url string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer; a single connection keeps transactions from
	// tripping over "database is locked" and keeps :memory: databases shared.
	if !strings.HasPrefix(url, "postgres") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseURL, logger.Info)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AutoMigrate creates or updates every table the API uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.Task{},
		&models.Milestone{},
		&models.Submission{},
		&models.PaymentSubmission{},
		&models.WithdrawalRequest{},
		&models.LedgerEntry{},
		&models.Notification{},
	)
}

func Migrate() error {
	return AutoMigrate(DB)
}
