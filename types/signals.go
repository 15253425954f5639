package types

// Side 留白所在的边
type Side string

const (
	SideNone   Side = ""
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// CopySpace 留白检测结果
type CopySpace struct {
	Present bool    `json:"present"`
	Side    Side    `json:"side,omitempty"`
	Score   float64 `json:"score"` // [0,1)
}

// AnalyzerSignals 图片分析得到的启发式信号，每张图片重新计算，不缓存
type AnalyzerSignals struct {
	CopySpace    CopySpace `json:"copy_space"`
	Cutout       bool      `json:"cutout"`
	Checkerboard bool      `json:"checkerboard"`
}

// NeedsWhiteBackground 抠图或棋盘格背景时需要改写为白底
func (s AnalyzerSignals) NeedsWhiteBackground() bool {
	return s.Cutout || s.Checkerboard
}
