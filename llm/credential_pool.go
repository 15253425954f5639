package llm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMinInterval  = 4 * time.Second
	DefaultCooldownBase = 30 * time.Second
	DefaultCooldownCap  = 10 * time.Minute
)

// PoolConfig 凭证池配置
type PoolConfig struct {
	MinInterval  time.Duration `yaml:"min_interval" env:"MIN_INTERVAL"`   // 两次成功请求之间的全局最小间隔
	CooldownBase time.Duration `yaml:"cooldown_base" env:"COOLDOWN_BASE"` // 每次连续失败增加的冷却时间
	CooldownCap  time.Duration `yaml:"cooldown_cap" env:"COOLDOWN_CAP"`   // 冷却时间上限
}

// DefaultPoolConfig 返回默认凭证池配置
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinInterval:  DefaultMinInterval,
		CooldownBase: DefaultCooldownBase,
		CooldownCap:  DefaultCooldownCap,
	}
}

// CredentialState 单个凭证的调度状态
type CredentialState struct {
	ID                  string    `json:"id"`
	NextAvailableAt     time.Time `json:"next_available_at"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// Available 在 now 时刻是否可用
func (s CredentialState) Available(now time.Time) bool {
	return !s.NextAvailableAt.After(now)
}

// CredentialPool 多凭证调度池
// 选择策略为按配置顺序的 first-fit；所有状态由同一把互斥锁保护，等待期间不持锁
type CredentialPool struct {
	mu     sync.Mutex
	order  []string
	states map[string]*CredentialState

	lastSuccessAt time.Time
	cfg           PoolConfig
	clock         Clock
	logger        *zap.Logger
}

// NewCredentialPool 创建凭证池，空白与重复的凭证会被忽略
func NewCredentialPool(keys []string, cfg PoolConfig, clock Clock, logger *zap.Logger) *CredentialPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = RealClock()
	}
	if cfg.CooldownBase <= 0 {
		cfg.CooldownBase = DefaultCooldownBase
	}
	if cfg.CooldownCap <= 0 {
		cfg.CooldownCap = DefaultCooldownCap
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}

	p := &CredentialPool{
		states: make(map[string]*CredentialState),
		cfg:    cfg,
		clock:  clock,
		logger: logger.With(zap.String("component", "credential_pool")),
	}
	for _, k := range NormalizeCredentials(keys) {
		p.stateLocked(k)
	}

	p.logger.Info("credential pool initialized",
		zap.Int("credentials", len(p.order)),
		zap.Duration("min_interval", cfg.MinInterval),
		zap.Duration("cooldown_base", cfg.CooldownBase),
		zap.Duration("cooldown_cap", cfg.CooldownCap))
	return p
}

// stateLocked 获取凭证状态，未知凭证按零值惰性创建，调用方需持有锁
func (p *CredentialPool) stateLocked(id string) *CredentialState {
	s, ok := p.states[id]
	if !ok {
		s = &CredentialState{ID: id}
		p.states[id] = s
		p.order = append(p.order, id)
	}
	return s
}

// Len 凭证数量
func (p *CredentialPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// IDs 按配置顺序返回凭证
func (p *CredentialPool) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.order...)
}

// Select 选择下一个使用的凭证
// 按配置顺序返回第一个当前可用的凭证；都在冷却中时等待最早可用的那个（并列取靠前者）
// 池为空时立即返回空字符串，唯一的错误来自 ctx 在等待期间结束
func (p *CredentialPool) Select(ctx context.Context) (string, error) {
	p.mu.Lock()
	if len(p.order) == 0 {
		p.mu.Unlock()
		return "", nil
	}

	now := p.clock.Now()
	var earliest *CredentialState
	for _, id := range p.order {
		s := p.states[id]
		if s.Available(now) {
			p.mu.Unlock()
			return id, nil
		}
		if earliest == nil || s.NextAvailableAt.Before(earliest.NextAvailableAt) {
			earliest = s
		}
	}
	id := earliest.ID
	wait := earliest.NextAvailableAt.Sub(now)
	p.mu.Unlock()

	p.logger.Debug("all credentials cooling down, waiting",
		zap.String("credential", MaskCredential(id)),
		zap.Duration("wait", wait))
	if err := p.clock.Sleep(ctx, wait); err != nil {
		return "", err
	}
	return id, nil
}

// MinDelay 距离全局间隔放行还需等待的时间
func (p *CredentialPool) MinDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minDelayLocked(p.clock.Now())
}

func (p *CredentialPool) minDelayLocked(now time.Time) time.Duration {
	if p.lastSuccessAt.IsZero() {
		return 0
	}
	return max(0, p.cfg.MinInterval-now.Sub(p.lastSuccessAt))
}

// WaitMinDelay 等待 max(0, MinInterval - (now - lastSuccessAt))
func (p *CredentialPool) WaitMinDelay(ctx context.Context) error {
	d := p.MinDelay()
	if d <= 0 {
		return ctx.Err()
	}
	return p.clock.Sleep(ctx, d)
}

// MarkSuccess 凭证请求成功：清零失败计数与冷却，并更新全局间隔的起点
func (p *CredentialPool) MarkSuccess(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stateLocked(id)
	s.ConsecutiveFailures = 0
	s.NextAvailableAt = time.Time{}
	p.lastSuccessAt = p.clock.Now()
}

// MarkPenalized 凭证请求失败：失败计数加一，冷却 min(CooldownCap, CooldownBase*失败次数)
// 返回本次冷却时长
func (p *CredentialPool) MarkPenalized(id string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stateLocked(id)
	s.ConsecutiveFailures++
	cooldown := Cooldown(p.cfg.CooldownBase, p.cfg.CooldownCap, s.ConsecutiveFailures)
	s.NextAvailableAt = p.clock.Now().Add(cooldown)

	p.logger.Debug("credential penalized",
		zap.String("credential", MaskCredential(id)),
		zap.Int("consecutive_failures", s.ConsecutiveFailures),
		zap.Duration("cooldown", cooldown))
	return cooldown
}

// Cooldown 线性增长并封顶的冷却时间
func Cooldown(base, limit time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	// 先比较倍数，避免 base*failures 溢出
	if base <= 0 || int64(failures) >= int64(limit/base) {
		return limit
	}
	return min(limit, base*time.Duration(failures))
}

// Snapshot 按配置顺序返回所有凭证状态的副本
func (p *CredentialPool) Snapshot() []CredentialState {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]CredentialState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.states[id])
	}
	return out
}

// Cooling 当前处于冷却中的凭证数量
func (p *CredentialPool) Cooling() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	n := 0
	for _, s := range p.states {
		if !s.Available(now) {
			n++
		}
	}
	return n
}

// LastSuccessAt 最近一次成功请求的时间
func (p *CredentialPool) LastSuccessAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSuccessAt
}
