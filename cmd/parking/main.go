// Package main запускает HTTP-сервер сервиса парковки.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/parking-system/internal/cache"
	"github.com/mmeshcher/parking-system/internal/config"
	"github.com/mmeshcher/parking-system/internal/handler"
	"github.com/mmeshcher/parking-system/internal/middleware"
	"github.com/mmeshcher/parking-system/internal/recognition"
	"github.com/mmeshcher/parking-system/internal/repository"
	"github.com/mmeshcher/parking-system/internal/resolver"
	"github.com/mmeshcher/parking-system/internal/service"
	"github.com/mmeshcher/parking-system/internal/tariff"
)

const availabilityRefreshInterval = 5 * time.Second

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var availabilityCache *cache.AvailabilityCache
	if cfg.RedisAddress != "" {
		availabilityCache = cache.New(cfg.RedisAddress, 10*time.Second)
		defer availabilityCache.Close()
	}

	svc := newService(repo, availabilityCache)
	defer svc.Close()

	var plateResolver *resolver.Resolver
	if cfg.RecognizerAddress != "" {
		plateResolver = resolver.New(recognition.NewClient(cfg.RecognizerAddress))
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.OperatorSecret)

	var suggester handler.Suggester
	if plateResolver != nil {
		suggester = plateResolver
	}
	h := handler.NewHandler(svc, suggester, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фонового обновления кэша сводки свободных мест
	g.Go(func() error {
		svc.StartAvailabilityRefresh(ctx, availabilityRefreshInterval)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting parking server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newService(repo service.Repository, availabilityCache *cache.AvailabilityCache) *service.Service {
	// Нетипизированный nil вместо nil-указателя в значении интерфейса.
	if availabilityCache == nil {
		return service.NewService(repo, tariff.Default(), nil)
	}
	return service.NewService(repo, tariff.Default(), availabilityCache)
}
