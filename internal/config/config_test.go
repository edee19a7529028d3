package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so host settings do not leak in.
// t.Setenv first so the host value is restored on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FDV_OUTPUT_DIR", "FDV_WORKERS", "FDV_TIMESTAMP_KEYWORDS", "FDV_FAIL_FAST",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "SHUTDOWN_TIMEOUT",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.Empty(t, cfg.TimestampKeywords)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "fdv-job-events", cfg.KafkaTopic)
	assert.False(t, cfg.PublishEvents())
}

func TestLoad_CustomEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FDV_OUTPUT_DIR", "/srv/fdv")
	t.Setenv("FDV_WORKERS", "8")
	t.Setenv("FDV_TIMESTAMP_KEYWORDS", "Zeit, Datum ,")
	t.Setenv("FDV_FAIL_FAST", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/fdv", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"Zeit", "Datum"}, cfg.TimestampKeywords)
	assert.False(t, cfg.FailFast)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-events", cfg.KafkaTopic)
	assert.True(t, cfg.PublishEvents())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"FDV_WORKERS", "0", "FDV_WORKERS"},
		{"FDV_WORKERS", "many", "FDV_WORKERS"},
		{"FDV_FAIL_FAST", "sometimes", "FDV_FAIL_FAST"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FDV_OUTPUT_DIR=from-dotenv\nFDV_WORKERS=3\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over .env")
}
