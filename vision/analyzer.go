package vision

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/BaSui01/promptlens/types"
)

// Analyzer 图片内容分析器
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer 创建分析器
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger.With(zap.String("component", "vision"))}
}

// Analyze 计算图片的启发式信号，内部错误降级为空信号
func (a *Analyzer) Analyze(img image.Image) (signals types.AnalyzerSignals) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("image analysis failed, using neutral signals",
				zap.String("panic", fmt.Sprint(r)))
			signals = types.AnalyzerSignals{}
		}
	}()

	signals.CopySpace = DetectCopySpace(img)
	signals.Cutout, signals.Checkerboard = DetectCutoutOrCheckerboard(img)

	a.logger.Debug("image analyzed",
		zap.Bool("copy_space", signals.CopySpace.Present),
		zap.String("copy_space_side", string(signals.CopySpace.Side)),
		zap.Float64("copy_space_score", signals.CopySpace.Score),
		zap.Bool("cutout", signals.Cutout),
		zap.Bool("checkerboard", signals.Checkerboard))
	return signals
}

// Analyze 使用无日志的分析器计算信号
func Analyze(img image.Image) types.AnalyzerSignals {
	return NewAnalyzer(nil).Analyze(img)
}

// AnalyzeBytes 解码并分析图片字节，解码失败同样降级为空信号
func AnalyzeBytes(data []byte) types.AnalyzerSignals {
	dec, err := Decode(data)
	if err != nil {
		return types.AnalyzerSignals{}
	}
	return Analyze(dec.Image)
}
