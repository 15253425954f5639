package llm

import (
	"context"
)

// VisionRequest 一次图片描述请求
type VisionRequest struct {
	Instruction     string  `json:"instruction"`
	Image           []byte  `json:"-"`
	MimeType        string  `json:"mime_type"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// Generation 调度器成功返回的结果
type Generation struct {
	Text         string `json:"text"`
	CredentialID string `json:"credential_id"` // 已脱敏
	Attempts     int    `json:"attempts"`
}

// VisionProvider 使用指定凭证执行一次上游调用
// 实现不做重试，错误以 *types.Error 返回：RATE_LIMITED / SERVER_TRANSIENT / CLIENT_ERROR /
// NETWORK_ERROR / EMPTY_RESPONSE，调度器依据错误码决定冷却与等待
type VisionProvider interface {
	Name() string
	Describe(ctx context.Context, credential string, req *VisionRequest) (string, error)
}
