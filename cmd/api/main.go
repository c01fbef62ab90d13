package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fooddb/internal/api"
	"fooddb/internal/clipper"
	"fooddb/internal/config"
	"fooddb/internal/ingest"
	"fooddb/internal/logger"
	"fooddb/internal/recipe"
	"fooddb/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %w", err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	dbStore, err := recipe.NewPostgresStore(ctx, cfg.Database.URL, recipe.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Migrate:      cfg.Database.Migrate,
		Seed:         cfg.Database.Seed,
	})
	if err != nil {
		return fmt.Errorf("error creating postgres store: %w", err)
	}
	defer dbStore.Close()

	translator, err := translate.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("error creating translator: %w", err)
	}
	if closer, ok := translator.(io.Closer); ok {
		defer closer.Close()
	}

	handler := api.NewHandler(
		dbStore,
		translator,
		ingest.NewService(translator, ingest.DefaultConcurrency, log),
		clipper.New(cfg.Server.RequestTimeout),
		api.Options{
			RequestTimeout:  cfg.Server.RequestTimeout,
			MinAverageScore: cfg.Search.MinAverageScore,
			UploadDir:       cfg.Uploads.Dir,
			MaxUploadBytes:  cfg.Uploads.MaxSizeBytes,
			MaxImageWidth:   cfg.Uploads.MaxWidth,
		},
		log,
	)
	router := api.NewRouter(handler, api.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		UploadDir:    cfg.Uploads.Dir,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("translate_provider", cfg.Translate.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
