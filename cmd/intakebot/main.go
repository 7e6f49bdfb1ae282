package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/m3rciful/intakebot/core/bootstrap"
	"github.com/m3rciful/intakebot/core/buildinfo"
	corecmd "github.com/m3rciful/intakebot/core/cmd"
	"github.com/m3rciful/intakebot/core/health"
	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/intake"
	"github.com/m3rciful/intakebot/intake/journal"
	"github.com/m3rciful/intakebot/intake/relay"
	"github.com/m3rciful/intakebot/intake/tgbot"
)

type application struct {
	*tgbot.App
	health *health.Server
	infra  *bootstrap.Result
}

func (a *application) Services() []corecmd.Service {
	return []corecmd.Service{{Name: "health", Run: a.health.Run}}
}

func (a *application) Close() error {
	return a.infra.Close()
}

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := intake.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func bootstrapApp(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*intake.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	logger.Component("app").Info("starting",
		slog.String("event", "start"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Int64("channel_chat_id", cfg.ChannelID),
		slog.String("website_api_url", cfg.Moderation.URL),
		slog.Int("port", cfg.Health.Port),
		slog.Bool("journal", infra.DB != nil),
	)

	rl, err := relay.New(relay.Options{
		BaseURL: cfg.Moderation.URL,
		APIKey:  cfg.Moderation.APIKey,
		Timeout: cfg.Moderation.Timeout,
	})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	var jr journal.Journal = journal.Noop{}
	if infra.DB != nil {
		jr = journal.NewPostgres(infra.DB)
	}

	app, err := tgbot.New(tgbot.Options{Config: cfg, Relay: rl, Journal: jr})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return &application{
		App:    app,
		health: health.NewServer(cfg.Health.Port),
		infra:  infra,
	}, nil
}
