package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/internal/api"
	"github.com/Wang-tianhao/storefront-api/internal/config"
	"github.com/Wang-tianhao/storefront-api/internal/metrics"
	"github.com/Wang-tianhao/storefront-api/internal/store"
	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("closing document store", "error", err)
		}
	}()

	products, err := db.Collection(api.ProductsCollection)
	if err != nil {
		return err
	}
	cart, err := db.Collection(api.CartCollection)
	if err != nil {
		return err
	}

	auth, err := jwtauth.NewConfig(
		jwtauth.WithHS256([]byte(cfg.AccessToken)),
		jwtauth.WithTTL(cfg.TokenTTL),
		jwtauth.WithSecureCookie(cfg.CookieSecure),
		jwtauth.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := api.NewRouter(api.Options{
		Auth:           auth,
		Products:       products,
		Cart:           cart,
		Logger:         logger,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured document store driver.
func openStore(ctx context.Context, cfg config.Server) (store.Database, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return store.NewMongoDatabase(ctx, store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	case config.DriverSQLite:
		return store.NewSQLiteDatabase(store.SQLiteConfig{Path: cfg.SQLitePath})
	case config.DriverMemory:
		return store.NewMemoryDatabase(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
