package database

import (
	"fmt"

	"portfee/internal/config"
	"portfee/internal/logger"
	"portfee/internal/model"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&model.PortAuthority{},
		&model.Port{},
		&model.ShippingAgent{},
		&model.DisembarkmentSite{},
		&model.User{},
		&model.TaxRates{},
		&model.PortTaxRate{},
		&model.DisembarkmentTaxRate{},
		&model.HarborDuesForm{},
		&model.Disembarkment{},
		&model.AuditLog{},
	}
}

// Open picks the driver from cfg.DBType.
func Open(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "postgres", "":
		return postgres.Open(cfg.PostgresDSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath), nil
	}
	return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	log = logger.OrNop(log)

	dialector, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if cfg.IsRelease() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBType, err)
	}

	if cfg.DBMigrate {
		if err := Migrate(db); err != nil {
			log.Warn("failed to auto-migrate models", zap.Error(err))
		}
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
