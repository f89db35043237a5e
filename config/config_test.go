package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_KEY", "ADMIN_PASS", "VOTE_API_BASE_URL", "TELEGRAM_BOT_TOKEN", "LOG_LEVEL", "LOG_FORMAT",
		"DEFAULT_ROOM", "STATIC_DIR", "PORT", "VALIDATOR_COOLDOWN", "HTTP_TIMEOUT", "VOTEBOT_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func noEnvFile(t *testing.T) string {
	return "-env=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, []string{"API_KEY", "ADMIN_PASS"}, cfg.MissingSecrets())
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "votebot.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: 6000\ndefault_room: lobby\napi_key: from-file\nvalidator_cooldown: 2s\n"), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_KEY=from-env\nADMIN_PASS=pw\nHTTP_TIMEOUT=5s\n"), 0o600))

	cfg, err := Load([]string{"-config", file, "-env", envFile, "-port", "7000"})
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port, "flag wins")
	assert.Equal(t, "lobby", cfg.DefaultRoom, "file value kept")
	assert.Equal(t, "from-env", cfg.APIKey, "env overrides file")
	assert.Equal(t, 2*time.Second, cfg.ValidatorCooldown)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.MissingSecrets())
}

func TestLoadInvalidEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "eighty")
	_, err := Load([]string{noEnvFile(t)})
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("VALIDATOR_COOLDOWN", "soon")
	_, err = Load([]string{noEnvFile(t)})
	assert.ErrorContains(t, err, "VALIDATOR_COOLDOWN")
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := Load([]string{noEnvFile(t), "-config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}
