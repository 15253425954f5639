package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/internal/metrics"
	"github.com/BaSui01/promptlens/internal/tlsutil"
	"github.com/BaSui01/promptlens/types"
)

const (
	DefaultFetchTimeout  = 15 * time.Second
	DefaultMaxImageBytes = 20 << 20
)

// SourceConfig 图片读取配置
type SourceConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	MaxBytes     int64         `yaml:"max_bytes" env:"MAX_BYTES"`
}

// Source 从本地文件或 URL 读取原始图片字节
type Source struct {
	client   *http.Client
	maxBytes int64
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewSource 创建图片读取器
func NewSource(cfg SourceConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxImageBytes
	}
	return &Source{
		client:   tlsutil.SecureHTTPClient(cfg.FetchTimeout),
		maxBytes: cfg.MaxBytes,
		logger:   logger.With(zap.String("component", "image_source")),
	}
}

// WithMetrics 设置下载指标收集器
func (s *Source) WithMetrics(c *metrics.Collector) *Source {
	s.metrics = c
	return s
}

// LoadFile 读取本地图片
func (s *Source) LoadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to open image file").WithCause(err)
	}
	defer f.Close()

	return s.readLimited(f)
}

// LoadURL 下载远程图片，受 FetchTimeout 与大小上限约束
func (s *Source) LoadURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "invalid image url").WithCause(err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to fetch image").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordImageFetch(resp.StatusCode, 0)
		return nil, types.NewError(types.ErrInvalidRequest, fmt.Sprintf("failed to fetch image: status %d", resp.StatusCode)).
			WithHTTPStatus(resp.StatusCode)
	}

	data, err := s.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordImageFetch(resp.StatusCode, len(data))
	s.logger.Debug("image fetched",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("latency", time.Since(start)))
	return data, nil
}

func (s *Source) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to read image").WithCause(err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, types.NewError(types.ErrInvalidImageData, fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	return data, nil
}
