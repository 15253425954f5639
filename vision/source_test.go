package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/promptlens/internal/metrics"
	"github.com/BaSui01/promptlens/types"
)

func TestSource_LoadURL(t *testing.T) {
	payload := encodePNG(t, solidImage(8, 8, red))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("vision_test", reg, nil)
	src := NewSource(SourceConfig{FetchTimeout: 5 * time.Second}, zaptest.NewLogger(t)).WithMetrics(collector)

	t.Run("ok", func(t *testing.T) {
		data, err := src.LoadURL(context.Background(), srv.URL+"/ok.png")
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := src.LoadURL(context.Background(), srv.URL+"/missing.png")
		require.Error(t, err)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrInvalidRequest, e.Code)
		assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
	})

	t.Run("too large", func(t *testing.T) {
		small := NewSource(SourceConfig{MaxBytes: 16}, nil)
		_, err := small.LoadURL(context.Background(), srv.URL+"/ok.png")
		assert.True(t, types.IsCode(err, types.ErrInvalidImageData))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.LoadURL(ctx, srv.URL+"/ok.png")
		assert.True(t, types.IsCode(err, types.ErrInvalidRequest))
	})
}

func TestSource_LoadFile(t *testing.T) {
	payload := encodePNG(t, solidImage(8, 8, red))
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	src := NewSource(SourceConfig{}, nil)
	data, err := src.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = src.LoadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.True(t, types.IsCode(err, types.ErrInvalidRequest))
}

func TestSource_RecordsFetchMetrics(t *testing.T) {
	payload := encodePNG(t, solidImage(4, 4, red))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	src := NewSource(SourceConfig{}, nil).WithMetrics(metrics.NewCollector("fetch", reg, nil))

	_, err := src.LoadURL(context.Background(), srv.URL)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "fetch_image_fetch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
