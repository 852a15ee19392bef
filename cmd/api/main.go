package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/cart"
	"marketplace/internal/emailfilter"
	"marketplace/internal/events"
	"marketplace/internal/httpapi"
	"marketplace/internal/logging"
	"marketplace/internal/metrics"
	"marketplace/internal/storage"
	"marketplace/pkg/config"
	"marketplace/pkg/db"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Log, cfg.AppEnv)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open failed")
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			logger.Fatal().Err(err).Msg("migrate failed")
		}
	}

	if cfg.Auth.Secret == "" {
		logger.Fatal().Msg("AUTH_SECRET is required")
	}

	var blobs storage.Store
	if cfg.Storage.Dir != "" {
		disk, err := storage.NewDiskStore(cfg.Storage.Dir)
		if err != nil {
			logger.Fatal().Err(err).Msg("blob store init failed")
		}
		blobs = disk
	} else {
		logger.Warn().Msg("no STORAGE_DIR configured; attachment uploads disabled")
	}

	signSecret := cfg.Storage.SignSecret
	if signSecret == "" {
		signSecret = cfg.Auth.Secret
	}
	signer, err := storage.NewSigner(signSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("signer init failed")
	}

	var carts cart.Store
	if cfg.Redis.Addr != "" {
		client := cart.NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping failed")
		}
		carts = cart.NewRedisStore(client, 30*24*time.Hour)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cart store")
	} else {
		carts = cart.NewMemoryStore()
		logger.Info().Msg("using in-memory cart store")
	}

	filter, err := emailfilter.Load(cfg.DisposableDomainsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("disposable domain list load failed")
	}

	router, err := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		DB:        conn,
		Log:       logger,
		Bus:       events.NewBus(),
		CartStore: carts,
		Blobs:     blobs,
		Signer:    signer,
		Filter:    filter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("router init failed")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
