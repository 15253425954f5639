package providers

import "time"

// GeminiConfig Gemini Provider 配置
// 凭证不在这里配置，由调度器按次传入
type GeminiConfig struct {
	BaseURL         string        `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model           string        `json:"model" yaml:"model" env:"MODEL"`
	Timeout         time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"`
	Temperature     float64       `json:"temperature" yaml:"temperature" env:"TEMPERATURE"`
	MaxOutputTokens int           `json:"max_output_tokens" yaml:"max_output_tokens" env:"MAX_OUTPUT_TOKENS"`
}
