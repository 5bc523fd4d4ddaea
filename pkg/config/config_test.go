package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.MockEnabled)
	assert.Equal(t, 1.0, cfg.MockDelayScale)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, 5*time.Second, cfg.ToastDuration)
	assert.Equal(t, 2*time.Second, cfg.ReplyCollapseDelay)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.NotEmpty(t, cfg.StoragePath)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MOCK_API", "false")
	t.Setenv("MOCK_DELAY_SCALE", "0")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("API_BASE_URL", "http://api.internal/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.False(t, cfg.MockEnabled)
	assert.Zero(t, cfg.MockDelayScale)
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "http://api.internal", cfg.APIBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.TrustedProxies)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SERVER_PORT":              "eighty",
		"MOCK_DELAY_SCALE":         "-1",
		"STORAGE_BACKEND":          "etcd",
		"TOKEN_TTL":                "forever",
		"TOAST_DURATION":           "5",
		"OTEL_TRACES_SAMPLE_RATIO": "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}
