// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"errors"
	"fmt"
	"time"

	"consortial/internal/config"
	"consortial/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrDuplicateBand     = errors.New("band already exists")
	ErrTransactionFailed = errors.New("transaction failed")
)

// allModels lists the tables owned by the fee engine in dependency order.
var allModels = []interface{}{
	&models.SupporterSize{},
	&models.SupportLevel{},
	&models.Currency{},
	&models.BillingAgent{},
	&models.Band{},
	&models.Supporter{},
	&models.OldBand{},
	&models.IndicatorSnapshot{},
}

// InitDB opens the postgres connection, configures the pool and applies
// migrations.
func InitDB(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logrus.New()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         NewGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.WithField("database", cfg.Name).Info("PostgreSQL connected & migrations applied")
	return db, nil
}

// NewGormLogger routes gorm's slow query and error output through logrus.
func NewGormLogger(log *logrus.Logger) logger.Interface {
	return logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates every table, including the partial unique
// index used for calculated band deduplication.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ResetDatabase drops and recreates all tables.
func ResetDatabase(db *gorm.DB) error {
	if err := db.Migrator().DropTable(reversed(allModels)...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return Migrate(db)
}

func reversed(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

// notFound maps gorm's missing-record error to the given domain error.
func notFound(err error, domainErr error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
