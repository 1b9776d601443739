package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	Env                       string
	EventID                   string
	DatabaseURL               string
	HTTPAddr                  string
	OfflineQueuePath          string
	SessionGracePeriodMin     int
	MessageLocale             string
	ConnectivityProbeInterval time.Duration
	OperatorWebhookURL        string
	DiscordToken              string
	DiscordAlertChannelID     string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.SessionGracePeriodMin < 0 {
		return fmt.Errorf("SESSION_GRACE_PERIOD_MIN must not be negative, got %d", c.SessionGracePeriodMin)
	}
	if c.ConnectivityProbeInterval <= 0 {
		return fmt.Errorf("CONNECTIVITY_PROBE_INTERVAL must be positive, got %s", c.ConnectivityProbeInterval)
	}
	if _, err := language.Parse(c.MessageLocale); err != nil {
		return fmt.Errorf("MESSAGE_LOCALE is invalid: %w", err)
	}
	if (c.DiscordToken == "") != (c.DiscordAlertChannelID == "") {
		return fmt.Errorf("DISCORD_TOKEN and DISCORD_ALERT_CHANNEL_ID must be set together")
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "EVENT_ID", value: c.EventID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "HTTP_ADDR", value: c.HTTPAddr},
		{name: "OFFLINE_QUEUE_PATH", value: c.OfflineQueuePath},
		{name: "MESSAGE_LOCALE", value: c.MessageLocale},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.SessionGracePeriodMin) * time.Minute
}

func (c *Config) DiscordAlertsEnabled() bool {
	return c.DiscordToken != "" && c.DiscordAlertChannelID != ""
}

func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.MessageLocale)
	if err != nil {
		return language.English
	}
	return tag
}
