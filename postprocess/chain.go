package postprocess

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/types"
)

// Context 改写阶段共享的上下文
type Context struct {
	Signals  types.AnalyzerSignals
	MaxChars int
}

// Rewriter 文本改写器接口
type Rewriter interface {
	// Rewrite 改写文本，返回错误时该阶段输出等于输入
	Rewrite(text string, sc *Context) (string, error)

	// Name 返回改写器名称（用于日志和调试）
	Name() string
}

// RewriterFunc 将普通函数适配为 Rewriter
type RewriterFunc struct {
	name string
	fn   func(text string, sc *Context) (string, error)
}

// NewRewriterFunc 创建函数式改写器
func NewRewriterFunc(name string, fn func(text string, sc *Context) (string, error)) *RewriterFunc {
	return &RewriterFunc{name: name, fn: fn}
}

func (r *RewriterFunc) Name() string { return r.name }

func (r *RewriterFunc) Rewrite(text string, sc *Context) (string, error) {
	return r.fn(text, sc)
}

// Chain 改写器链
// 按顺序执行多个改写器，单个阶段失败不会中断整条链
type Chain struct {
	rewriters []Rewriter
	logger    *zap.Logger
}

// NewChain 创建改写器链
func NewChain(logger *zap.Logger, rewriters ...Rewriter) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		rewriters: rewriters,
		logger:    logger.With(zap.String("component", "postprocess")),
	}
}

// DefaultChain 返回默认的四阶段改写链
func DefaultChain(logger *zap.Logger) *Chain {
	return NewChain(logger,
		NewRewriterFunc("first_line", FirstLine),
		NewRewriterFunc("strip_copy_space", StripCopySpace),
		NewRewriterFunc("white_background", WhiteBackground),
		NewRewriterFunc("clamp", Clamp),
	)
}

// Execute 执行改写器链
func (c *Chain) Execute(text string, sc Context) string {
	if c == nil {
		return text
	}
	for _, rewriter := range c.rewriters {
		text = c.runStage(rewriter, text, &sc)
	}
	return text
}

// AddRewriter 动态添加改写器
func (c *Chain) AddRewriter(rewriter Rewriter) {
	c.rewriters = append(c.rewriters, rewriter)
}

// GetRewriters 获取所有改写器（用于调试）
func (c *Chain) GetRewriters() []Rewriter {
	return c.rewriters
}

func (c *Chain) runStage(rewriter Rewriter, in string, sc *Context) (out string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("rewriter panicked, passing input through",
				zap.String("rewriter", rewriter.Name()),
				zap.String("panic", fmt.Sprint(r)))
			out = in
		}
	}()

	res, err := rewriter.Rewrite(in, sc)
	if err != nil {
		c.logger.Debug("rewriter failed, passing input through",
			zap.String("rewriter", rewriter.Name()),
			zap.Error(err))
		return in
	}
	return res
}

var defaultChain = DefaultChain(nil)

// Process 使用默认改写链处理模型原始输出
func Process(raw string, signals types.AnalyzerSignals, maxChars int) string {
	return defaultChain.Execute(raw, Context{Signals: signals, MaxChars: maxChars})
}
