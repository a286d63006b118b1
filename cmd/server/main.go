package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seva-health/internal/config"
	"seva-health/internal/database"
	"seva-health/internal/logging"
	"seva-health/internal/mailer"
	"seva-health/internal/router"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, warns, cfgErr := config.LoadServer()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()

	for _, w := range warns {
		logger.Warn("config", zap.String("detail", w))
	}
	if cfgErr != nil {
		logger.Fatal("invalid configuration", zap.Error(cfgErr))
	}

	var db *mongo.Database
	if cfg.MongoURI != "" {
		db, err = database.Connect(cfg.MongoURI, cfg.DBName, logger)
		if err != nil {
			logger.Fatal("failed to connect to mongodb", zap.Error(err))
		}
		defer db.Client().Disconnect(context.Background())
	}

	handler, err := router.NewRouter(router.Options{
		DB:                db,
		JWTSecret:         cfg.JWTSecret,
		SessionTTL:        cfg.SessionTTL,
		MinPasswordLength: cfg.MinPasswordLength,
		BaseURL:           cfg.BaseURL,
		Mailer:            mailer.New(cfg.ResendAPIKey, cfg.FromEmail, logger),
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("seva server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
