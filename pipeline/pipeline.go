package pipeline

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/internal/ctxkeys"
	"github.com/BaSui01/promptlens/internal/metrics"
	"github.com/BaSui01/promptlens/llm"
	"github.com/BaSui01/promptlens/postprocess"
	"github.com/BaSui01/promptlens/types"
	"github.com/BaSui01/promptlens/vision"
)

const instrumentationName = "github.com/BaSui01/promptlens/pipeline"

// DefaultRoundDelay 相邻两轮之间的固定间隔
const DefaultRoundDelay = time.Second

// Config 批量生成配置
type Config struct {
	RoundDelay         time.Duration `yaml:"round_delay" env:"ROUND_DELAY"`
	MaxUploadDimension int           `yaml:"max_upload_dimension" env:"MAX_UPLOAD_DIMENSION"`
	JPEGQuality        int           `yaml:"jpeg_quality" env:"JPEG_QUALITY"`
	// Temperature 为 0 时使用 provider 的默认值
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		RoundDelay:         DefaultRoundDelay,
		MaxUploadDimension: vision.DefaultMaxUploadDimension,
		JPEGQuality:        vision.DefaultJPEGQuality,
	}
}

// Generator 单次生成，*llm.RequestScheduler 实现该接口
type Generator interface {
	GenerateOnce(ctx context.Context, req *llm.VisionRequest) (*llm.Generation, error)
}

var _ Generator = (*llm.RequestScheduler)(nil)

// Option 可选配置
type Option func(*Pipeline)

// WithClock 替换时间源
func WithClock(c llm.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) {
		p.metrics = c
	}
}

// WithTracer 替换 tracer
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// WithChain 替换改写链
func WithChain(c *postprocess.Chain) Option {
	return func(p *Pipeline) {
		p.chain = c
	}
}

// Pipeline 按轮次顺序生成提示词：生成 → 分析 → 改写 → 交付
type Pipeline struct {
	generator Generator
	analyzer  *vision.Analyzer
	chain     *postprocess.Chain
	cfg       Config

	clock   llm.Clock
	metrics *metrics.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// New 创建生成流水线
func New(gen Generator, cfg Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RoundDelay < 0 {
		cfg.RoundDelay = 0
	}

	p := &Pipeline{
		generator: gen,
		analyzer:  vision.NewAnalyzer(logger),
		chain:     postprocess.DefaultChain(logger),
		cfg:       cfg,
		clock:     llm.RealClock(),
		tracer:    otel.Tracer(instrumentationName),
		logger:    logger.With(zap.String("component", "pipeline")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate 执行整批生成并返回全部结果
func (p *Pipeline) Generate(ctx context.Context, req types.GenerationRequest) ([]types.PromptResult, error) {
	return p.Run(ctx, req, nil)
}

// Run 执行 NumPrompts 轮生成，每轮结果完成后立即交给 yield
// 图片无法解码时在任何网络调用之前失败；任一轮失败即中止整批，返回已完成的结果和该错误
func (p *Pipeline) Run(ctx context.Context, req types.GenerationRequest, yield func(types.PromptResult) error) ([]types.PromptResult, error) {
	opts := req.Options.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dec, err := vision.Decode(req.Image)
	if err != nil {
		return nil, err
	}
	upload, err := vision.PrepareUpload(dec, p.cfg.MaxUploadDimension, p.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	vreq := &llm.VisionRequest{
		Instruction: BuildInstruction(opts),
		Image:       upload.Data,
		MimeType:    upload.MimeType,
		Temperature: p.cfg.Temperature,
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", opts.NumPrompts),
		attribute.Int("prompt.max_chars", opts.MaxChars),
		attribute.String("prompt.format", string(opts.OutputFormat)),
	))
	defer span.End()

	logger := p.logger.With(zap.String("batch_id", batchID))
	logger.Info("batch started",
		zap.Int("rounds", opts.NumPrompts),
		zap.String("mime_type", upload.MimeType),
		zap.Int("upload_bytes", len(upload.Data)))

	results := make([]types.PromptResult, 0, opts.NumPrompts)
	for i := 0; i < opts.NumPrompts; i++ {
		if i > 0 && p.cfg.RoundDelay > 0 {
			if err := p.clock.Sleep(ctx, p.cfg.RoundDelay); err != nil {
				return results, p.fail(span, err)
			}
		}

		result, err := p.round(ctx, i, batchID, dec, vreq, opts)
		if err != nil {
			logger.Warn("batch aborted", zap.Int("round", i), zap.Error(err))
			return results, p.fail(span, err)
		}
		results = append(results, result)

		if yield != nil {
			if err := yield(result); err != nil {
				return results, p.fail(span, err)
			}
		}
	}

	logger.Info("batch finished", zap.Int("results", len(results)))
	return results, nil
}

func (p *Pipeline) round(ctx context.Context, index int, batchID string, dec *vision.Decoded, vreq *llm.VisionRequest, opts types.GenerationOptions) (types.PromptResult, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.round", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("round.index", index),
	))
	defer span.End()
	ctx = ctxkeys.WithRound(ctxkeys.WithBatchID(ctx, batchID), index)

	start := p.clock.Now()
	gen, err := p.generator.GenerateOnce(ctx, vreq)
	if err != nil {
		p.metrics.RecordRound(string(roundStatus(err)), p.clock.Now().Sub(start), 0)
		return types.PromptResult{}, p.fail(span, err)
	}

	signals := p.analyzer.Analyze(dec.Image)
	p.metrics.RecordSignals(signals.CopySpace.Present, signals.Cutout, signals.Checkerboard)

	result := types.PromptResult{
		Index:        index,
		Signals:      signals,
		BatchID:      batchID,
		CredentialID: gen.CredentialID,
	}
	sc := postprocess.Context{Signals: signals, MaxChars: opts.MaxChars}

	text := gen.Text
	if opts.OutputFormat == types.OutputStructured {
		if sp, ok := ParseStructured(text); ok {
			result.Structured = sp
			text = sp.Prompt
		} else {
			p.logger.Debug("structured output not parseable, using plain text",
				zap.String("batch_id", batchID), zap.Int("round", index))
		}
	}
	result.Text = p.chain.Execute(text, sc)
	if result.Structured != nil {
		result.Structured.Prompt = result.Text
	}

	chars := utf8.RuneCountInString(result.Text)
	p.metrics.RecordRound("ok", p.clock.Now().Sub(start), chars)
	span.SetAttributes(
		attribute.Int("prompt.chars", chars),
		attribute.Int("llm.attempts", gen.Attempts),
		attribute.Bool("signals.cutout", signals.Cutout),
		attribute.Bool("signals.checkerboard", signals.Checkerboard),
		attribute.String("signals.copy_space", string(signals.CopySpace.Side)),
	)
	return result, nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// roundStatus 失败轮次的指标标签
func roundStatus(err error) types.ErrorCode {
	if code := types.GetErrorCode(err); code != "" {
		return code
	}
	return "canceled"
}
