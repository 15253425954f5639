// =============================================================================
// PromptLens 命令行入口
// =============================================================================
// 从图片生成文生图提示词
//
// 使用方法:
//
//	promptlens generate --image cat.png                  # 生成一条提示词
//	promptlens generate --image https://... -n 3 --json  # 生成三条，按行输出 JSON
//	promptlens analyze --image cat.png                   # 只输出图片分析信号
//	promptlens version                                   # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/promptlens/config"
	"github.com/BaSui01/promptlens/internal/metrics"
	"github.com/BaSui01/promptlens/internal/server"
	"github.com/BaSui01/promptlens/internal/telemetry"
	"github.com/BaSui01/promptlens/llm"
	"github.com/BaSui01/promptlens/llm/providers/gemini"
	"github.com/BaSui01/promptlens/pipeline"
	"github.com/BaSui01/promptlens/types"
	"github.com/BaSui01/promptlens/vision"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// fallbackCredentialEnv 未配置任何凭证时读取的环境变量
const fallbackCredentialEnv = "GEMINI_API_KEY"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "generate":
		err = runGenerate(ctx, args[1:], stdout, stderr)
	case "analyze":
		err = runAnalyze(ctx, args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	var usage usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

// usageError 参数错误，退出码为 2
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// =============================================================================
// ✍️ generate 命令
// =============================================================================

type generateFlags struct {
	configPath  string
	image       string
	num         int
	maxChars    int
	style       string
	aspectRatio string
	extra       string
	format      string
	asJSON      bool
}

func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, error) {
	f := &generateFlags{}
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Path to config file (YAML)")
	fs.StringVar(&f.image, "image", "", "Image file path or http(s) URL")
	fs.IntVar(&f.num, "n", 1, "Number of prompts to generate")
	fs.IntVar(&f.maxChars, "max-chars", 400, "Maximum characters per prompt")
	fs.StringVar(&f.style, "style", "", "Target style")
	fs.StringVar(&f.aspectRatio, "aspect-ratio", "", "Target aspect ratio, e.g. 16:9")
	fs.StringVar(&f.extra, "extra", "", "Additional requirements for the prompt")
	fs.StringVar(&f.format, "format", string(types.OutputText), "Output format: text or structured")
	fs.BoolVar(&f.asJSON, "json", false, "Print each result as a JSON line")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.image == "" {
		return nil, usageError{msg: "--image is required"}
	}
	return f, nil
}

func runGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseGenerateFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	keys, err := cfg.ResolveCredentials()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		keys = llm.ParseCredentials(os.Getenv(fallbackCredentialEnv))
	}
	if len(keys) == 0 {
		return usageError{msg: fmt.Sprintf("no credentials configured: set PROMPTLENS_CREDENTIALS, credentials_file or %s", fallbackCredentialEnv)}
	}

	otelProviders, err := telemetry.Init(ctx, cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	reg := newRegistry()
	collector := metrics.NewCollector(cfg.Metrics.Namespace, reg, logger)

	source := vision.NewSource(cfg.Image, logger).WithMetrics(collector)
	data, err := loadImage(ctx, source, f.image)
	if err != nil {
		return err
	}

	pool := llm.NewCredentialPool(keys, cfg.Pool, llm.RealClock(), logger)
	provider := gemini.NewGeminiProvider(cfg.Gemini, logger)
	scheduler := llm.NewRequestScheduler(pool, provider, cfg.Scheduler, logger,
		llm.WithSchedulerMetrics(collector))
	p := pipeline.New(scheduler, cfg.Pipeline, logger, pipeline.WithMetrics(collector))

	logger.Info("generating prompts",
		zap.String("version", Version),
		zap.String("model", provider.Model()),
		zap.Int("credentials", pool.Len()),
		zap.Int("rounds", f.num))

	req := types.GenerationRequest{
		Image: data,
		Options: types.GenerationOptions{
			MaxChars:     f.maxChars,
			AspectRatio:  f.aspectRatio,
			Style:        f.style,
			ExtraParams:  f.extra,
			OutputFormat: types.OutputFormat(f.format),
			NumPrompts:   f.num,
		},
	}
	emit := resultPrinter(stdout, f.asJSON)

	g, gctx := errgroup.WithContext(ctx)
	jobCtx, jobDone := context.WithCancel(gctx)
	g.Go(func() error {
		defer jobDone()
		_, err := p.Run(gctx, req, emit)
		return err
	})
	if cfg.Metrics.Addr != "" {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Metrics.Addr
		srv := server.NewManager(server.MetricsHandler(reg), srvCfg, logger)
		g.Go(func() error {
			return srv.Run(jobCtx)
		})
	}
	return g.Wait()
}

// resultPrinter 每轮结果完成后立即输出
func resultPrinter(w io.Writer, asJSON bool) func(types.PromptResult) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return func(r types.PromptResult) error {
			return enc.Encode(r)
		}
	}
	return func(r types.PromptResult) error {
		_, err := fmt.Fprintln(w, r.Text)
		return err
	}
}

// =============================================================================
// 🔍 analyze 命令
// =============================================================================

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (YAML)")
	image := fs.String("image", "", "Image file path or http(s) URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *image == "" {
		return usageError{msg: "--image is required"}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	data, err := loadImage(ctx, vision.NewSource(cfg.Image, logger), *image)
	if err != nil {
		return err
	}
	dec, err := vision.Decode(data)
	if err != nil {
		return err
	}
	signals := vision.NewAnalyzer(logger).Analyze(dec.Image)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(signals)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader().
		WithValidator(func(c *config.Config) error { return c.Validate() })
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	return loader.Load()
}

func loadImage(ctx context.Context, source *vision.Source, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return source.LoadURL(ctx, ref)
	}
	return source.LoadFile(ref)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// initLogger 根据日志配置构建 zap logger
func initLogger(cfg config.LogConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          "json",
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PromptLens %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `PromptLens - image to text-to-image prompt generator

Usage:
  promptlens <command> [options]

Commands:
  generate  Generate prompts for an image
  analyze   Print copy-space / cutout / checkerboard signals for an image
  version   Show version information
  help      Show this help message

Options for 'generate':
  --image <path|url>    Image file or http(s) URL (required)
  --config <path>       Path to configuration file (YAML)
  -n <count>            Number of prompts (default 1)
  --max-chars <n>       Character budget per prompt (default 400)
  --style <text>        Target style
  --aspect-ratio <r>    Target aspect ratio
  --extra <text>        Additional requirements
  --format <f>          text or structured (default text)
  --json                Print one JSON object per result

Environment:
  PROMPTLENS_CREDENTIALS      Comma-separated Gemini API keys
  GEMINI_API_KEY              Used when no credentials are configured
  PROMPTLENS_METRICS_ADDR     Expose /metrics on this address while running

Examples:
  promptlens generate --image cat.png --max-chars 200
  promptlens generate --image https://example.com/a.jpg -n 3 --format structured --json
  promptlens analyze --image product.png
  promptlens version`)
}
