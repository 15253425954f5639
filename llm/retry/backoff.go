package retry

import (
	"errors"
	"math/rand"
	"time"

	"github.com/BaSui01/promptlens/types"
)

// Outcome 单次请求的结果分类
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeServerError   Outcome = "server_error"
	OutcomeClientError   Outcome = "client_error"
	OutcomeNetworkError  Outcome = "network_error"
	OutcomeEmptyResponse Outcome = "empty_response"
)

// JitterFunc 返回 [0, limit) 范围内的随机抖动
type JitterFunc func(limit time.Duration) time.Duration

// RandomJitter 均匀分布的抖动
func RandomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(limit)))
}

// NoJitter 不添加抖动，测试中使用
func NoJitter(time.Duration) time.Duration { return 0 }

// DelayPolicy 按结果分类决定下一次尝试前的等待时间
type DelayPolicy struct {
	RateLimitStep      time.Duration `yaml:"rate_limit_step" env:"RATE_LIMIT_STEP"`           // 429 时按尝试序号线性增长的步长
	ServerErrorDelay   time.Duration `yaml:"server_error_delay" env:"SERVER_ERROR_DELAY"`     // 5xx
	NetworkErrorDelay  time.Duration `yaml:"network_error_delay" env:"NETWORK_ERROR_DELAY"`   // 传输错误
	EmptyResponseDelay time.Duration `yaml:"empty_response_delay" env:"EMPTY_RESPONSE_DELAY"` // 2xx 但没有文本
	MaxJitter          time.Duration `yaml:"max_jitter" env:"MAX_JITTER"`

	Jitter JitterFunc `yaml:"-" env:"-"`
}

// DefaultDelayPolicy 返回默认等待策略
func DefaultDelayPolicy() DelayPolicy {
	return DelayPolicy{
		RateLimitStep:      2 * time.Second,
		ServerErrorDelay:   1500 * time.Millisecond,
		NetworkErrorDelay:  1200 * time.Millisecond,
		EmptyResponseDelay: 500 * time.Millisecond,
		MaxJitter:          250 * time.Millisecond,
		Jitter:             RandomJitter,
	}
}

// Delay 计算第 attempt 次（从 1 开始）尝试失败后的等待时间
// 客户端错误立即换下一个凭证，不等待
func (p DelayPolicy) Delay(outcome Outcome, attempt int, retryAfter time.Duration) time.Duration {
	var base time.Duration
	switch outcome {
	case OutcomeRateLimited:
		base = p.RateLimitStep*time.Duration(max(attempt, 1)) + max(retryAfter, 0)
	case OutcomeServerError:
		base = p.ServerErrorDelay
	case OutcomeNetworkError:
		base = p.NetworkErrorDelay
	case OutcomeEmptyResponse:
		base = p.EmptyResponseDelay
	default:
		return 0
	}
	return base + p.jitter()
}

func (p DelayPolicy) jitter() time.Duration {
	if p.Jitter == nil || p.MaxJitter <= 0 {
		return 0
	}
	return p.Jitter(p.MaxJitter)
}

// Penalizes 该结果是否需要对凭证施加冷却
// 5xx 与空响应是上游问题，不归咎于凭证
func Penalizes(outcome Outcome) bool {
	switch outcome {
	case OutcomeRateLimited, OutcomeClientError, OutcomeNetworkError:
		return true
	default:
		return false
	}
}

// Classify 将错误映射为结果分类
// 未携带错误码的错误视为传输错误
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var e *types.Error
	if !errors.As(err, &e) {
		return OutcomeNetworkError
	}
	switch e.Code {
	case types.ErrRateLimited:
		return OutcomeRateLimited
	case types.ErrServerTransient:
		return OutcomeServerError
	case types.ErrEmptyResponse:
		return OutcomeEmptyResponse
	case types.ErrNetworkError:
		return OutcomeNetworkError
	default:
		return OutcomeClientError
	}
}

// RetryAfter 提取上游建议的等待时间
func RetryAfter(err error) time.Duration {
	var e *types.Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	return 0
}
