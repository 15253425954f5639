package postprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 截断时单词边界必须落在预算的 60% 之后才会被采用
const wordBoundaryRatio = 0.6

// ClampToMaxChars 将文本硬截断到 maxChars 个字符以内
func ClampToMaxChars(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := runes[:maxChars]
	if idx := lastSpace(cut); idx >= 0 && float64(idx) > float64(maxChars)*wordBoundaryRatio {
		cut = cut[:idx]
	}
	return trimTrailingPunct(string(cut))
}

// AddSuffixSafely 在不超过 maxChars 的前提下追加短语
// 已包含短语（忽略大小写）且未超预算时原样返回，因此重复调用结果不变
func AddSuffixSafely(text, phrase string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ClampToMaxChars(text, maxChars)
	}

	if containsFold(text, phrase) {
		if utf8.RuneCountInString(text) <= maxChars {
			return text
		}
		text = removeFold(text, phrase)
	}

	phraseLen := utf8.RuneCountInString(phrase)
	if phraseLen >= maxChars {
		return string([]rune(phrase)[:maxChars])
	}

	trimmed := strings.TrimRightFunc(text, isSoftTrailing)
	join := joinFor(trimmed)
	if utf8.RuneCountInString(trimmed)+utf8.RuneCountInString(join)+phraseLen > maxChars {
		// 按最长的连接符 ", " 预留空间
		room := maxChars - phraseLen - 2
		if room <= 0 {
			return phrase
		}
		trimmed = strings.TrimRightFunc(ClampToMaxChars(trimmed, room), isSoftTrailing)
		join = joinFor(trimmed)
	}
	if trimmed == "" {
		return phrase
	}
	return trimmed + join + phrase
}

func joinFor(text string) string {
	if text == "" {
		return ""
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	if isTerminal(r) {
		return " "
	}
	return ", "
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

func trimTrailingPunct(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isSoftTrailing 结尾处可以丢弃的空白与非终止标点
func isSoftTrailing(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', ';', ':', '-', '–', '—':
		return true
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func removeFold(s, substr string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(substr))
	return tidy(re.ReplaceAllString(s, ""))
}
