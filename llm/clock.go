package llm

import (
	"context"
	"time"
)

// Clock 调度器使用的时间源，测试中可替换为手动推进的实现
type Clock interface {
	Now() time.Time
	// Sleep 等待 d 或直到 ctx 结束，ctx 结束时返回 ctx.Err()
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock 返回基于系统时间的 Clock
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
