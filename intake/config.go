package intake

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	coredatabase "github.com/m3rciful/intakebot/core/database"
	"github.com/m3rciful/intakebot/core/health"
	"github.com/m3rciful/intakebot/intake/relay"
)

// DefaultWebsiteURL is used when WEBSITE_API_URL is unset.
const DefaultWebsiteURL = "http://localhost:3001"

// ModerationConfig points at the website API that receives submissions.
type ModerationConfig struct {
	URL     string        `yaml:"url" envconfig:"WEBSITE_API_URL"`
	APIKey  string        `yaml:"api_key" envconfig:"WEB_API_KEY"`
	Timeout time.Duration `yaml:"timeout" envconfig:"WEB_API_TIMEOUT"`
}

// HealthConfig configures the liveness listener.
type HealthConfig struct {
	Port int `yaml:"port" envconfig:"PORT"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	// ChannelID is the channel the original bot published to. It is
	// validated and logged but nothing is posted to it.
	ChannelID  int64               `yaml:"channel_chat_id" envconfig:"CHANNEL_CHAT_ID"`
	Moderation ModerationConfig    `yaml:"moderation"`
	Health     HealthConfig        `yaml:"health"`
	Database   coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the shared core settings.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path (optional) and the environment, then validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required values and fills defaults. Every missing
// required value is reported at once.
func (c *Config) Normalize() error {
	var errs []error
	if err := coreconfig.Normalize(&c.Config); err != nil {
		errs = append(errs, err)
	}
	if c.ChannelID == 0 {
		errs = append(errs, errors.New("channel chat id is required (CHANNEL_CHAT_ID)"))
	}

	c.Moderation.URL = strings.TrimSpace(c.Moderation.URL)
	if c.Moderation.URL == "" {
		c.Moderation.URL = DefaultWebsiteURL
	}
	if u, err := url.Parse(c.Moderation.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid website api url %q (WEBSITE_API_URL)", c.Moderation.URL))
	}
	if strings.TrimSpace(c.Moderation.APIKey) == "" {
		errs = append(errs, errors.New("website api key is required (WEB_API_KEY)"))
	}
	if c.Moderation.Timeout <= 0 {
		c.Moderation.Timeout = relay.DefaultTimeout
	}

	if c.Health.Port == 0 {
		c.Health.Port = health.DefaultPort
	}
	if c.Health.Port < 0 || c.Health.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d (PORT)", c.Health.Port))
	}

	if c.Database.Enabled() {
		c.Database.Normalize()
	}
	return errors.Join(errs...)
}
