package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"petrack/internal/adapters/auth/jwt"
	redislock "petrack/internal/adapters/locks/redis"
	"petrack/internal/adapters/publish/kafka"
	pg "petrack/internal/adapters/storage/postgres"
	"petrack/internal/platform/config"
	"petrack/internal/platform/logger"
	"petrack/internal/router"
)

func runServe(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Log)

	tokens, err := jwt.New(jwt.Config{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		TTL:        cfg.JWTTTL,
	})
	if err != nil {
		return err
	}
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY not set, using development key", nil)
	}

	opts := router.Options{
		AuthVerifier: tokens,
		TokenIssuer:  tokens,
		Logger:       log,
	}
	if cfg.AuthDevMode {
		// sin verifier para modo dev
		opts.AuthVerifier = nil
		log.Warn("auth dev mode enabled, trusting X-Debug-User-ID", nil)
	}

	var db *gorm.DB
	if cfg.DBDSN != "" {
		db, err = pg.Connect(cfg.DBDSN, log)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
		}
		opts.DB = db
	} else {
		log.Info("DB_DSN not set, using in-memory storage", nil)
	}

	if cfg.RedisURL != "" {
		client, err := redislock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Locker = redislock.New(client, redislock.Options{})
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Publisher = pub
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", logger.Fields{
			"addr":     srv.Addr,
			"postgres": db != nil,
			"redis":    cfg.RedisURL != "",
			"kafka":    len(cfg.KafkaBrokers) > 0,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
