package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/intakebot/core/logger"
)

// Connect opens the pool, retrying until Postgres answers or wait elapses.
func Connect(ctx context.Context, cfg Config, wait time.Duration) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	start := time.Now()
	attempts := 0
	for {
		attempts++
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL())
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxConnections)
			db.SetMaxIdleConns(cfg.MaxConnections)
			logger.DB.Info("db connected",
				slog.String("event", "db.connect"),
				slog.String("host", cfg.Host),
				slog.String("port", cfg.Port),
				slog.String("db", cfg.Name),
				slog.Int("pool_open", cfg.MaxConnections),
				slog.Int("attempts", attempts),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)
			return db, nil
		}

		logger.DB.Debug("db not ready",
			slog.String("event", "db.connect"),
			slog.Int("attempts", attempts),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			logger.DB.Error("db connect failed",
				slog.String("event", "db.connect"),
				slog.String("host", cfg.Host),
				slog.String("db", cfg.Name),
				slog.Int("attempts", attempts),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("db connect: %w", err)
		case <-time.After(2 * time.Second):
		}
	}
}
