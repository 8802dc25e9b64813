package main

import (
	"context"
	"errors"

	pg "petrack/internal/adapters/storage/postgres"
	"petrack/internal/platform/config"
	"petrack/internal/platform/logger"
)

func runMigrate(ctx context.Context, cfg config.Config, log logger.Logger) error {
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is required to migrate")
	}
	db, err := pg.Connect(cfg.DBDSN, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := pg.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("schema up to date", nil)
	return nil
}
