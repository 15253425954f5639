package ctxkeys

import (
	"context"

	"go.uber.org/zap"
)

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	roundKey   contextKey = "round"
)

// WithBatchID 设置批次 ID
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// BatchID 获取批次 ID
func BatchID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(batchIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithRound 设置批次内的轮次序号（从 0 开始）
func WithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, roundKey, round)
}

// Round 获取轮次序号
func Round(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(roundKey).(int)
	return v, ok
}

// LogFields 把 context 中携带的批次信息转换为日志字段
func LogFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id, ok := BatchID(ctx); ok {
		fields = append(fields, zap.String("batch_id", id))
	}
	if round, ok := Round(ctx); ok {
		fields = append(fields, zap.Int("round", round))
	}
	return fields
}
