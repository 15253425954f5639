package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.Credentials)
	assert.Equal(t, 4*time.Second, cfg.Pool.MinInterval)
	assert.Equal(t, 30*time.Second, cfg.Pool.CooldownBase)
	assert.Equal(t, 10*time.Minute, cfg.Pool.CooldownCap)
	assert.Equal(t, 3, cfg.Scheduler.AttemptsPerCredential)
	assert.NotNil(t, cfg.Scheduler.Delays.Jitter)
	assert.Equal(t, time.Second, cfg.Pipeline.RoundDelay)
	assert.NotEqual(t, MetricsConfig{}, cfg.Metrics)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
}

func TestDefaultGeminiConfig(t *testing.T) {
	cfg := DefaultGeminiConfig()
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 0.8, cfg.Temperature)
	assert.Equal(t, 1024, cfg.MaxOutputTokens)
}

func TestDefaultImageConfig(t *testing.T) {
	cfg := DefaultImageConfig()
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Positive(t, cfg.MaxBytes)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)

	_, err := zapcore.ParseLevel(cfg.Level)
	assert.NoError(t, err)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "promptlens", cfg.ServiceName)
	assert.Equal(t, 0.1, cfg.SampleRate)
}
