package intake

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "1:abc")
	t.Setenv("CHANNEL_CHAT_ID", "-100123")
	t.Setenv("WEB_API_KEY", "secret")
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "1:abc", cfg.Telegram.Token)
	assert.Equal(t, "longpoll", cfg.Telegram.RunMode)
	assert.Equal(t, int64(-100123), cfg.ChannelID)
	assert.Equal(t, DefaultWebsiteURL, cfg.Moderation.URL)
	assert.Equal(t, "secret", cfg.Moderation.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, 8080, cfg.Health.Port)
	assert.False(t, cfg.Database.Enabled())
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "from-file"
  admin_id: 77
channel_chat_id: 5
moderation:
  url: "https://site.example"
  api_key: "file-key"
  timeout: 3s
health:
  port: 9000
database:
  host: db
  name: intake
`), 0o644))

	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("PORT", "9100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, int64(77), cfg.Telegram.AdminID)
	assert.Equal(t, int64(5), cfg.ChannelID)
	assert.Equal(t, "https://site.example", cfg.Moderation.URL)
	assert.Equal(t, 3*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, 9100, cfg.Health.Port)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
}

func TestLoadConfigReportsMissingValues(t *testing.T) {
	for _, key := range []string{"TELEGRAM_TOKEN", "CHANNEL_CHAT_ID", "WEB_API_KEY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
	assert.Contains(t, err.Error(), "CHANNEL_CHAT_ID")
	assert.Contains(t, err.Error(), "WEB_API_KEY")
}

func TestLoadConfigRejectsBadChannelID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHANNEL_CHAT_ID", "not-a-number")
	_, err := LoadConfig("")
	assert.Error(t, err)
}
