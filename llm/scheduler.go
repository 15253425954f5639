package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/internal/ctxkeys"
	"github.com/BaSui01/promptlens/internal/metrics"
	"github.com/BaSui01/promptlens/llm/retry"
	"github.com/BaSui01/promptlens/types"
)

const (
	instrumentationName = "github.com/BaSui01/promptlens/llm"

	DefaultAttemptsPerCredential = 3
)

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	AttemptsPerCredential int               `yaml:"attempts_per_credential" env:"ATTEMPTS_PER_CREDENTIAL"`
	Delays                retry.DelayPolicy `yaml:"delays" env:"DELAYS"`
}

// DefaultSchedulerConfig 返回默认调度器配置
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		AttemptsPerCredential: DefaultAttemptsPerCredential,
		Delays:                retry.DefaultDelayPolicy(),
	}
}

// SchedulerOption 调度器选项
type SchedulerOption func(*RequestScheduler)

// WithSchedulerMetrics 设置指标收集器
func WithSchedulerMetrics(c *metrics.Collector) SchedulerOption {
	return func(s *RequestScheduler) {
		s.metrics = c
	}
}

// WithTracer 设置 tracer，默认使用全局 TracerProvider
func WithTracer(t trace.Tracer) SchedulerOption {
	return func(s *RequestScheduler) {
		s.tracer = t
	}
}

// WithSchedulerClock 设置时间源，默认与凭证池共用
func WithSchedulerClock(c Clock) SchedulerOption {
	return func(s *RequestScheduler) {
		s.clock = c
	}
}

// RequestScheduler 在凭证池上执行带重试的单次生成
type RequestScheduler struct {
	pool     *CredentialPool
	provider VisionProvider
	attempts int
	policy   retry.DelayPolicy

	clock   Clock
	metrics *metrics.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewRequestScheduler 创建调度器
func NewRequestScheduler(pool *CredentialPool, provider VisionProvider, cfg SchedulerConfig, logger *zap.Logger, opts ...SchedulerOption) *RequestScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AttemptsPerCredential <= 0 {
		cfg.AttemptsPerCredential = DefaultAttemptsPerCredential
	}

	s := &RequestScheduler{
		pool:     pool,
		provider: provider,
		attempts: cfg.AttemptsPerCredential,
		policy:   cfg.Delays,
		clock:    pool.clock,
		tracer:   otel.Tracer(instrumentationName),
		logger:   logger.With(zap.String("component", "scheduler"), zap.String("provider", provider.Name())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxAttempts 单次生成的尝试预算
func (s *RequestScheduler) MaxAttempts() int {
	return s.pool.Len() * s.attempts
}

// GenerateOnce 执行一次生成，直到成功或尝试预算耗尽
// 每次尝试：选择凭证 → 等待全局间隔 → 调用上游，再按结果更新凭证池并等待
// 预算耗尽时返回 ALL_CREDENTIALS_EXHAUSTED，Cause 为最后一次错误；ctx 结束时直接返回 ctx 的错误
func (s *RequestScheduler) GenerateOnce(ctx context.Context, req *VisionRequest) (*Generation, error) {
	provider := s.provider.Name()
	maxAttempts := s.MaxAttempts()

	ctx, span := s.tracer.Start(ctx, "llm.generate_once", trace.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.Int("llm.max_attempts", maxAttempts),
	))
	defer span.End()

	if maxAttempts == 0 {
		err := types.NewError(types.ErrAllCredentialsExhausted, "no credentials configured").
			WithProvider(provider)
		return nil, s.fail(span, err)
	}

	logger := s.logger.With(ctxkeys.LogFields(ctx)...)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		waitStart := s.clock.Now()
		id, err := s.pool.Select(ctx)
		if err != nil {
			return nil, s.fail(span, err)
		}
		s.metrics.RecordWait("cooldown", s.clock.Now().Sub(waitStart))

		waitStart = s.clock.Now()
		if err := s.pool.WaitMinDelay(ctx); err != nil {
			return nil, s.fail(span, err)
		}
		s.metrics.RecordWait("rate_gate", s.clock.Now().Sub(waitStart))

		masked := MaskCredential(id)
		start := s.clock.Now()
		text, callErr := s.provider.Describe(ctx, id, req)
		elapsed := s.clock.Now().Sub(start)

		if callErr != nil && ctx.Err() != nil {
			return nil, s.fail(span, ctx.Err())
		}
		if callErr == nil && strings.TrimSpace(text) == "" {
			callErr = types.NewError(types.ErrEmptyResponse, "response contained no text").
				WithRetryable(true).
				WithProvider(provider)
		}

		outcome := retry.Classify(callErr)
		status := httpStatus(callErr)
		s.metrics.RecordAttempt(provider, masked, string(outcome), status, elapsed)
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("credential", masked),
			attribute.String("outcome", string(outcome)),
			attribute.Int("http.status_code", status),
		))

		if outcome == retry.OutcomeSuccess {
			s.pool.MarkSuccess(id)
			s.metrics.SetCoolingCredentials(s.pool.Cooling())
			logger.Debug("attempt succeeded",
				zap.String("credential", masked),
				zap.Int("attempt", attempt),
				zap.Duration("latency", elapsed))
			span.SetAttributes(attribute.Int("llm.attempts", attempt))
			return &Generation{Text: text, CredentialID: masked, Attempts: attempt}, nil
		}

		lastErr = callErr
		if retry.Penalizes(outcome) {
			s.pool.MarkPenalized(id)
			s.metrics.RecordPenalty(masked)
		}
		s.metrics.SetCoolingCredentials(s.pool.Cooling())

		if attempt == maxAttempts {
			s.logAttemptFailure(logger, masked, attempt, maxAttempts, outcome, status, 0, callErr)
			break
		}

		delay := s.policy.Delay(outcome, attempt, retry.RetryAfter(callErr))
		s.logAttemptFailure(logger, masked, attempt, maxAttempts, outcome, status, delay, callErr)
		if delay > 0 {
			s.metrics.RecordWait("backoff", delay)
			if err := s.clock.Sleep(ctx, delay); err != nil {
				return nil, s.fail(span, err)
			}
		}
	}

	s.metrics.RecordExhausted(provider)
	return nil, s.fail(span, exhausted(provider, maxAttempts, lastErr))
}

func (s *RequestScheduler) logAttemptFailure(logger *zap.Logger, credential string, attempt, maxAttempts int, outcome retry.Outcome, status int, delay time.Duration, err error) {
	logger.Warn("attempt failed",
		zap.String("credential", credential),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", maxAttempts),
		zap.String("outcome", string(outcome)),
		zap.Int("status", status),
		zap.Duration("retry_in", delay),
		zap.Error(err))
}

func (s *RequestScheduler) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func exhausted(provider string, attempts int, lastErr error) error {
	if lastErr == nil {
		return types.NewError(types.ErrAllCredentialsExhausted, "all credentials exhausted").
			WithProvider(provider)
	}
	return types.NewError(types.ErrAllCredentialsExhausted,
		fmt.Sprintf("all credentials exhausted after %d attempts: %s", attempts, lastErr.Error())).
		WithCause(lastErr).
		WithProvider(provider)
}

// httpStatus 成功为 200，没有 HTTP 响应时为 0
func httpStatus(err error) int {
	if err == nil {
		return 200
	}
	if e, ok := types.AsError(err); ok {
		return e.HTTPStatus
	}
	return 0
}
