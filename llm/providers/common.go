package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/promptlens/types"
)

// 错误响应体最多读取的字节数
const maxErrorBody = 64 << 10

// MapHTTPError 将 HTTP 状态码映射为带有合适重试标记的 types.Error
// 429 为限流，5xx 为上游暂时故障，其余非 2xx 视为客户端错误（请求或凭证被拒绝）
func MapHTTPError(status int, msg string, provider string) *types.Error {
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("http status %d", status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	case status >= 500:
		return types.NewError(types.ErrServerTransient, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	default:
		return types.NewError(types.ErrClientError, msg).
			WithHTTPStatus(status).
			WithProvider(provider)
	}
}

// ErrorBody 从上游错误响应中提取的信息
type ErrorBody struct {
	Message    string
	Status     string
	RetryDelay time.Duration // google.rpc.RetryInfo 中的 retryDelay
}

// ReadErrorBody 读取响应体中的错误信息
// 尝试解析 JSON 错误响应，失败则回退到原始文本
func ReadErrorBody(body io.Reader) ErrorBody {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ErrorBody{Message: "failed to read error response"}
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		out := ErrorBody{Message: errResp.Error.Message, Status: errResp.Error.Status}
		for _, d := range errResp.Error.Details {
			if d.RetryDelay == "" {
				continue
			}
			if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
				out.RetryDelay = delay
				break
			}
		}
		return out
	}

	// 回退到原始文本
	return ErrorBody{Message: strings.TrimSpace(string(data))}
}

// ReadErrorMessage 读取响应体中的错误消息
func ReadErrorMessage(body io.Reader) string {
	return ReadErrorBody(body).Message
}

// ParseRetryAfter 解析 Retry-After 头，支持秒数与 HTTP 日期两种格式
func ParseRetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	if h == nil {
		return 0, false
	}
	s := strings.TrimSpace(h.Get("Retry-After"))
	if s == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}

	if t, err := http.ParseTime(s); err == nil {
		return max(t.Sub(now), 0), true
	}

	return 0, false
}

// ErrorFromResponse 将非 2xx 响应转换为 types.Error，并带上上游建议的等待时间
// 调用方负责关闭 resp.Body
func ErrorFromResponse(resp *http.Response, provider string, now time.Time) *types.Error {
	body := ReadErrorBody(resp.Body)
	e := MapHTTPError(resp.StatusCode, body.Message, provider)

	retryAfter := body.RetryDelay
	if d, ok := ParseRetryAfter(resp.Header, now); ok && d > retryAfter {
		retryAfter = d
	}
	if retryAfter > 0 {
		e.WithRetryAfter(retryAfter)
	}
	return e
}

// NetworkError 包装传输层错误
func NetworkError(err error, provider string) *types.Error {
	return types.NewError(types.ErrNetworkError, err.Error()).
		WithCause(err).
		WithRetryable(true).
		WithProvider(provider)
}

// SafeCloseBody 安全关闭 HTTP 响应体并忽略错误
func SafeCloseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
