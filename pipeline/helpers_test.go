package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BaSui01/promptlens/internal/ctxkeys"
	"github.com/BaSui01/promptlens/llm"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// fakeGenerator 依次返回预设结果，用完后重复最后一项
type fakeGenerator struct {
	mu       sync.Mutex
	results  []generatorResult
	requests []*llm.VisionRequest
	rounds   []int
}

type generatorResult struct {
	text string
	err  error
}

func (g *fakeGenerator) GenerateOnce(ctx context.Context, req *llm.VisionRequest) (*llm.Generation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if round, ok := ctxkeys.Round(ctx); ok {
		g.rounds = append(g.rounds, round)
	}
	r := g.results[min(len(g.requests), len(g.results))-1]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Generation{Text: r.text, CredentialID: "****test", Attempts: 1}, nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// cutoutPNG 大部分透明、中心为红色方块的 PNG
func cutoutPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	for y := 24; y < 40; y++ {
		for x := 24; x < 40; x++ {
			img.SetRGBA(x, y, red)
		}
	}
	return encodePNG(t, img)
}

// opaquePNG 不透明的双色竖条纹 PNG
func opaquePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 40, G: 90, B: 160, A: 255}
			if (x/4)%2 == 0 {
				c = color.RGBA{R: 230, G: 200, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
