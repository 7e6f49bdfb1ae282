// Package bootstrap initializes shared infrastructure before the bot runs.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	coredatabase "github.com/m3rciful/intakebot/core/database"
	"github.com/m3rciful/intakebot/core/logger"
)

// Options control the bootstrap pipeline. Nil funcs use the core defaults.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// ConnectWait bounds how long to wait for the database to come up.
	ConnectWait time.Duration

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config, time.Duration) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result holds infrastructure created by Run. DB is nil when no database
// is configured.
type Result struct {
	DB *sqlx.DB
}

// Close releases what Run opened.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger and, when configured, connects to the
// database and applies migrations.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if !opts.Database.Enabled() {
		return &Result{}, nil
	}
	opts.Database.Normalize()

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	wait := opts.ConnectWait
	if wait <= 0 {
		wait = 30 * time.Second
	}
	db, err := connect(ctx, opts.Database, wait)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return &Result{DB: db}, nil
}
