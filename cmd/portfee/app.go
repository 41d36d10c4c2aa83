package main

import (
	"fmt"

	"portfee/internal/calculation"
	"portfee/internal/config"
	"portfee/internal/database"
	"portfee/internal/handler"
	"portfee/internal/logger"
	"portfee/internal/permission"
	"portfee/internal/repository"
	"portfee/internal/service"
	"portfee/internal/websocket"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB
	hub *websocket.Hub

	services handler.Services
	taxes    service.TaxService
	seed     service.SeedService
}

func newApp() (*app, error) {
	cfg, envLoaded := config.Load()

	log, err := logger.New(logger.Config{ServiceName: cfg.AppName, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	if !envLoaded {
		log.Info("no configs/.env file found, using process environment")
	}

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", cfg.DBType))

	enforcer, err := permission.NewStoredEnforcer(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission policy: %w", err)
	}
	perms := permission.NewEvaluator(enforcer, log)

	hub := websocket.NewHub(log)

	// Repository -> Service -> Handler
	tx := repository.NewTransactionManager(db)
	ratesRepo := repository.NewTaxRatesRepository(db)
	formRepo := repository.NewFormRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	guard := &service.ScheduleGuard{}

	audit := service.NewAuditService(repository.NewAuditRepository(db), log)
	users := service.NewUserService(userRepo, []byte(cfg.JWTSecret), log)
	taxRates := service.NewTaxRatesService(ratesRepo, tx, guard, perms, audit, log)
	taxes := service.NewTaxService(ratesRepo, formRepo, guard, calculation.NewCalculator(log), audit, log)
	forms := service.NewFormService(formRepo, refRepo, tx, taxes, perms, audit, hub, log)

	return &app{
		cfg: cfg,
		log: log,
		db:  db,
		hub: hub,
		services: handler.Services{
			Users:      users,
			Forms:      forms,
			TaxRates:   taxRates,
			Reference:  service.NewReferenceService(refRepo, perms, audit, log),
			Audit:      audit,
			Statistics: service.NewStatisticsService(repository.NewStatisticsRepository(db), perms, log),
			Policies:   service.NewPolicyService(perms, audit, log),
		},
		taxes: taxes,
		seed:  service.NewSeedService(refRepo, userRepo, users, taxRates, forms, log),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
