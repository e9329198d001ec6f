package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("PV_TEST_INT", "not-a-number")
	t.Setenv("PV_TEST_DURATION", "45m")

	require.Equal(t, 7, getEnvAsInt("PV_TEST_INT", 7))
	require.Equal(t, 45*time.Minute, getEnvAsDuration("PV_TEST_DURATION", time.Minute))
	require.Equal(t, "fallback", getEnv("PV_TEST_UNSET_KEY", "fallback"))
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("DATABASE_PATH", "/tmp/parts-test.db")
	t.Setenv("UPLOAD_TTL", "5m")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "2048")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("EMAIL_SERVICE_PROVIDER", "smtp")

	cfg := LoadConfig()

	require.Same(t, Cfg, cfg)
	require.Equal(t, "9191", cfg.Port)
	require.Equal(t, "/tmp/parts-test.db", cfg.DatabasePath)
	require.Equal(t, 5*time.Minute, cfg.UploadTTL)
	require.EqualValues(t, 2048, cfg.MaxUploadSizeBytes)
	require.Equal(t, "smtp", cfg.EmailServiceProvider)
}
