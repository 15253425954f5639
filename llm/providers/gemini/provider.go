package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/internal/tlsutil"
	"github.com/BaSui01/promptlens/llm"
	"github.com/BaSui01/promptlens/llm/providers"
	"github.com/BaSui01/promptlens/types"
)

const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com"
	DefaultModel           = "gemini-2.5-flash"
	DefaultTimeout         = 60 * time.Second
	DefaultTemperature     = 0.8
	DefaultMaxOutputTokens = 1024
)

// 响应体最多读取的字节数
const maxResponseBody = 4 << 20

// GeminiProvider 调用 Gemini generateContent 接口描述图片
// 1. 使用 x-goog-api-key 请求头认证，凭证由调度器按次传入
// 2. 图片以 inlineData（base64）随指令一起发送
// 3. 不做重试，错误统一映射为 types.Error 交由调度器处理
type GeminiProvider struct {
	cfg    providers.GeminiConfig
	client *http.Client
	logger *zap.Logger
}

var _ llm.VisionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider 创建 Gemini Provider
func NewGeminiProvider(cfg providers.GeminiConfig, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}

	return &GeminiProvider{
		cfg: cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "gemini")),
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Model 当前使用的模型
func (p *GeminiProvider) Model() string { return p.cfg.Model }

// Gemini 消息结构
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string                `json:"modelVersion,omitempty"`
	ResponseID     string                `json:"responseId,omitempty"`
}

func (p *GeminiProvider) buildHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (p *GeminiProvider) buildRequest(req *llm.VisionRequest) geminiRequest {
	parts := []geminiPart{{Text: req.Instruction}}
	if len(req.Image) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: req.MimeType,
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}

	gc := &geminiGenerationConfig{
		Temperature:     p.cfg.Temperature,
		MaxOutputTokens: p.cfg.MaxOutputTokens,
	}
	if req.Temperature > 0 {
		gc.Temperature = req.Temperature
	}
	if req.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = req.MaxOutputTokens
	}

	return geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: gc,
	}
}

// Describe 使用指定凭证执行一次 generateContent 调用，返回第一个候选的文本
func (p *GeminiProvider) Describe(ctx context.Context, credential string, req *llm.VisionRequest) (string, error) {
	if req == nil {
		return "", types.NewError(types.ErrInvalidRequest, "vision request is nil").WithProvider(p.Name())
	}

	payload, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return "", types.NewError(types.ErrInvalidRequest, "failed to encode request").
			WithCause(err).
			WithProvider(p.Name())
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(p.cfg.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", types.NewError(types.ErrInvalidRequest, "failed to create request").
			WithCause(err).
			WithProvider(p.Name())
	}
	p.buildHeaders(httpReq, credential)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", providers.NetworkError(err, p.Name())
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", providers.ErrorFromResponse(resp, p.Name(), time.Now())
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", providers.NetworkError(err, p.Name())
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(data, &geminiResp); err != nil {
		return "", types.NewError(types.ErrEmptyResponse, "failed to parse response").
			WithCause(err).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(true).
			WithProvider(p.Name())
	}

	text := firstText(geminiResp)
	if strings.TrimSpace(text) == "" {
		msg := "response contained no text"
		if fb := geminiResp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			msg = "prompt blocked: " + fb.BlockReason
		} else if len(geminiResp.Candidates) > 0 && geminiResp.Candidates[0].FinishReason != "" {
			msg = "no text, finish reason " + geminiResp.Candidates[0].FinishReason
		}
		return "", types.NewError(types.ErrEmptyResponse, msg).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(true).
			WithProvider(p.Name())
	}

	p.logger.Debug("generateContent completed",
		zap.String("model", p.cfg.Model),
		zap.String("model_version", geminiResp.ModelVersion),
		zap.Duration("latency", time.Since(start)),
		zap.Int("chars", len(text)))
	return text, nil
}

// firstText 第一个候选中第一个非空文本分片
func firstText(gr geminiResponse) string {
	if len(gr.Candidates) == 0 {
		return ""
	}
	for _, part := range gr.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
