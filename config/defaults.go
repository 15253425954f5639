// =============================================================================
// 📦 PromptLens 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"github.com/BaSui01/promptlens/llm"
	"github.com/BaSui01/promptlens/llm/providers"
	"github.com/BaSui01/promptlens/llm/providers/gemini"
	"github.com/BaSui01/promptlens/pipeline"
	"github.com/BaSui01/promptlens/vision"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Pool:      llm.DefaultPoolConfig(),
		Scheduler: llm.DefaultSchedulerConfig(),
		Gemini:    DefaultGeminiConfig(),
		Pipeline:  pipeline.DefaultConfig(),
		Image:     DefaultImageConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultGeminiConfig 返回默认 Gemini 配置
func DefaultGeminiConfig() providers.GeminiConfig {
	return providers.GeminiConfig{
		BaseURL:         gemini.DefaultBaseURL,
		Model:           gemini.DefaultModel,
		Timeout:         gemini.DefaultTimeout,
		Temperature:     gemini.DefaultTemperature,
		MaxOutputTokens: gemini.DefaultMaxOutputTokens,
	}
}

// DefaultImageConfig 返回默认图片读取配置
func DefaultImageConfig() vision.SourceConfig {
	return vision.SourceConfig{
		FetchTimeout: vision.DefaultFetchTimeout,
		MaxBytes:     vision.DefaultMaxImageBytes,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Addr:      "",
		Namespace: "promptlens",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "promptlens",
		SampleRate:   0.1,
	}
}
