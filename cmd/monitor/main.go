// marktplaats-monitor — polls saved marketplace searches on a fixed
// interval and notifies about listings not previously seen.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/config"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/db"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/marktplaats"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/monitor"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/notify"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/store"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, seen-ID cache disabled")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	st := store.New(pool, rdb, logger)
	client := marktplaats.NewClient(logger)
	dispatcher := notify.NewDispatcher(logger,
		notify.NewEmailChannel(cfg, logger),
		notify.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramDefaultChatID, logger),
	)

	detector := monitor.NewDetector(st, st, client, dispatcher, logger)
	scheduler := monitor.NewScheduler(detector, st, st, cfg.CheckInterval, logger)

	go serveHealth(cfg.Port, logger)

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("scheduler start failed")
	}

	logger.Info().Dur("interval", cfg.CheckInterval).Msg("monitor service started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	scheduler.Stop()
}

func serveHealth(port string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{
			Status:  "ok",
			Service: "marktplaats-monitor",
			Version: "1.0.0",
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server stopped")
	}
}
