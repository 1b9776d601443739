package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/boothscan/internal/config"
)

type envConfig struct {
	Env                       string        `env:"ENV" envDefault:"production"`
	EventID                   string        `env:"EVENT_ID,required"`
	DatabaseURL               string        `env:"DATABASE_URL,required"`
	HTTPAddr                  string        `env:"HTTP_ADDR" envDefault:":8080"`
	OfflineQueuePath          string        `env:"OFFLINE_QUEUE_PATH" envDefault:"offline-scans.db"`
	SessionGracePeriodMin     int           `env:"SESSION_GRACE_PERIOD_MIN" envDefault:"5"`
	MessageLocale             string        `env:"MESSAGE_LOCALE" envDefault:"en"`
	ConnectivityProbeInterval time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL" envDefault:"10s"`
	OperatorWebhookURL        string        `env:"OPERATOR_WEBHOOK_URL"`
	DiscordToken              string        `env:"DISCORD_TOKEN"`
	DiscordAlertChannelID     string        `env:"DISCORD_ALERT_CHANNEL_ID"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                       raw.Env,
		EventID:                   raw.EventID,
		DatabaseURL:               raw.DatabaseURL,
		HTTPAddr:                  raw.HTTPAddr,
		OfflineQueuePath:          raw.OfflineQueuePath,
		SessionGracePeriodMin:     raw.SessionGracePeriodMin,
		MessageLocale:             raw.MessageLocale,
		ConnectivityProbeInterval: raw.ConnectivityProbeInterval,
		OperatorWebhookURL:        raw.OperatorWebhookURL,
		DiscordToken:              raw.DiscordToken,
		DiscordAlertChannelID:     raw.DiscordAlertChannelID,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
