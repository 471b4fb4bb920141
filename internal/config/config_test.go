package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Routing.RefreshInterval)
	assert.Equal(t, 2, cfg.Routing.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Routing.RetryDelay)
	assert.False(t, cfg.Classifier.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Classifier.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CLASSIFIER_ENABLED", "true")
	t.Setenv("CLASSIFIER_BASE_URL", "http://classifier:9090")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Classifier.Enabled)
	assert.Equal(t, "http://classifier:9090", cfg.Classifier.BaseURL)
}
