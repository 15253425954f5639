package types

import (
	"fmt"
	"strings"
)

// OutputFormat 结果输出格式
type OutputFormat string

const (
	OutputText       OutputFormat = "text"
	OutputStructured OutputFormat = "structured"
)

// GenerationOptions 单轮生成的选项，由调用方提供，轮次内不可变
type GenerationOptions struct {
	MaxChars     int          `json:"max_chars" yaml:"max_chars"`
	AspectRatio  string       `json:"aspect_ratio,omitempty" yaml:"aspect_ratio"`
	Style        string       `json:"style,omitempty" yaml:"style"`
	ExtraParams  string       `json:"extra_params,omitempty" yaml:"extra_params"`
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
	NumPrompts   int          `json:"num_prompts" yaml:"num_prompts"`
}

// Normalize 填充缺省值
func (o GenerationOptions) Normalize() GenerationOptions {
	if o.OutputFormat == "" {
		o.OutputFormat = OutputText
	}
	if o.NumPrompts <= 0 {
		o.NumPrompts = 1
	}
	o.AspectRatio = strings.TrimSpace(o.AspectRatio)
	o.Style = strings.TrimSpace(o.Style)
	o.ExtraParams = strings.TrimSpace(o.ExtraParams)
	return o
}

// Validate 校验选项
func (o GenerationOptions) Validate() error {
	if o.MaxChars <= 0 {
		return NewError(ErrInvalidRequest, fmt.Sprintf("max_chars must be positive, got %d", o.MaxChars))
	}
	switch o.OutputFormat {
	case OutputText, OutputStructured, "":
	default:
		return NewError(ErrInvalidRequest, fmt.Sprintf("unknown output format %q", o.OutputFormat))
	}
	return nil
}

// GenerationRequest 调用方提交的生成请求：原始图片字节 + 选项
type GenerationRequest struct {
	Image   []byte            `json:"-"`
	Options GenerationOptions `json:"options"`
}

// StructuredPrompt outputFormat=structured 时返回的结构化记录
type StructuredPrompt struct {
	Prompt   string   `json:"prompt"`
	Title    string   `json:"title,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// PromptResult 单轮生成的最终结果
type PromptResult struct {
	Index        int               `json:"index"`
	Text         string            `json:"text"`
	Structured   *StructuredPrompt `json:"structured,omitempty"`
	Signals      AnalyzerSignals   `json:"signals"`
	BatchID      string            `json:"batch_id"`
	CredentialID string            `json:"credential_id,omitempty"`
}
