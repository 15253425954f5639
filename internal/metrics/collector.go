// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
// 所有 Record* 方法对 nil 接收者安全，未启用指标时可直接传 nil
type Collector struct {
	// 调度器指标
	attemptsTotal     *prometheus.CounterVec
	attemptDuration   *prometheus.HistogramVec
	penaltiesTotal    *prometheus.CounterVec
	waitDuration      *prometheus.HistogramVec
	exhaustedTotal    *prometheus.CounterVec
	credentialsCooled prometheus.Gauge

	// 生成流水线指标
	roundsTotal    *prometheus.CounterVec
	roundDuration  prometheus.Histogram
	promptChars    prometheus.Histogram
	analyzerSignal *prometheus.CounterVec

	// 图片下载指标
	imageFetchTotal *prometheus.CounterVec
	imageFetchBytes prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器，reg 为 nil 时注册到默认 registry
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 调度器指标
	c.attemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_attempts_total",
			Help:      "Total number of upstream attempts by outcome",
		},
		[]string{"provider", "credential", "outcome", "status"},
	)

	c.attemptDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_attempt_duration_seconds",
			Help:      "Upstream attempt duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "outcome"},
	)

	c.penaltiesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_credential_penalties_total",
			Help:      "Total number of credential cooldown penalties",
		},
		[]string{"credential"},
	)

	c.waitDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_wait_seconds",
			Help:      "Time spent waiting before attempts",
			Buckets:   []float64{0.05, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 300, 600},
		},
		[]string{"reason"}, // reason: cooldown, rate_gate, backoff
	)

	c.exhaustedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_exhausted_total",
			Help:      "Total number of requests that spent the whole attempt budget",
		},
		[]string{"provider"},
	)

	c.credentialsCooled = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "llm_credentials_cooling",
			Help:      "Number of credentials currently in cooldown",
		},
	)

	// 生成流水线指标
	c.roundsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_rounds_total",
			Help:      "Total number of generation rounds by status",
		},
		[]string{"status"},
	)

	c.roundDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_round_duration_seconds",
			Help:      "Generation round duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	c.promptChars = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_prompt_chars",
			Help:      "Length of finished prompts in characters",
			Buckets:   prometheus.LinearBuckets(50, 50, 10),
		},
	)

	c.analyzerSignal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyzer_signals_total",
			Help:      "Total number of positive analyzer signals",
		},
		[]string{"signal"}, // signal: copy_space, cutout, checkerboard
	)

	// 图片下载指标
	c.imageFetchTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_total",
			Help:      "Total number of remote image fetches",
		},
		[]string{"status"},
	)

	c.imageFetchBytes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_fetch_size_bytes",
			Help:      "Remote image size in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🤖 调度器指标记录
// =============================================================================

// RecordAttempt 记录一次上游尝试，status 为 0 表示没有拿到 HTTP 响应
func (c *Collector) RecordAttempt(provider, credential, outcome string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.attemptsTotal.WithLabelValues(provider, credential, outcome, statusCode(status)).Inc()
	c.attemptDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// RecordPenalty 记录凭证进入冷却
func (c *Collector) RecordPenalty(credential string) {
	if c == nil {
		return
	}
	c.penaltiesTotal.WithLabelValues(credential).Inc()
}

// RecordWait 记录一次等待
func (c *Collector) RecordWait(reason string, d time.Duration) {
	if c == nil || d <= 0 {
		return
	}
	c.waitDuration.WithLabelValues(reason).Observe(d.Seconds())
}

// RecordExhausted 记录尝试预算耗尽
func (c *Collector) RecordExhausted(provider string) {
	if c == nil {
		return
	}
	c.exhaustedTotal.WithLabelValues(provider).Inc()
}

// SetCoolingCredentials 更新冷却中的凭证数量
func (c *Collector) SetCoolingCredentials(n int) {
	if c == nil {
		return
	}
	c.credentialsCooled.Set(float64(n))
}

// =============================================================================
// 🎨 生成流水线指标记录
// =============================================================================

// RecordRound 记录一轮生成
func (c *Collector) RecordRound(status string, duration time.Duration, chars int) {
	if c == nil {
		return
	}
	c.roundsTotal.WithLabelValues(status).Inc()
	c.roundDuration.Observe(duration.Seconds())
	if chars > 0 {
		c.promptChars.Observe(float64(chars))
	}
}

// RecordSignals 记录分析器给出的正向信号
func (c *Collector) RecordSignals(copySpace, cutout, checkerboard bool) {
	if c == nil {
		return
	}
	if copySpace {
		c.analyzerSignal.WithLabelValues("copy_space").Inc()
	}
	if cutout {
		c.analyzerSignal.WithLabelValues("cutout").Inc()
	}
	if checkerboard {
		c.analyzerSignal.WithLabelValues("checkerboard").Inc()
	}
}

// =============================================================================
// 🖼️ 图片下载指标记录
// =============================================================================

// RecordImageFetch 记录一次远程图片下载
func (c *Collector) RecordImageFetch(status int, size int) {
	if c == nil {
		return
	}
	c.imageFetchTotal.WithLabelValues(statusCode(status)).Inc()
	if size > 0 {
		c.imageFetchBytes.Observe(float64(size))
	}
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为标签值，429 单独保留
func statusCode(code int) string {
	switch {
	case code == 429:
		return strconv.Itoa(code)
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "none"
	}
}
