package postprocess

import (
	"regexp"
	"strings"
)

// WhiteBackgroundPhrase 抠图类图片统一追加的后缀
const WhiteBackgroundPhrase = "isolated on white background"

var (
	promptLabelRe = regexp.MustCompile(`(?i)^(?:[-*•]\s+|\d+[.)]\s+)?(?:\*\*)?(?:image\s+)?(?:prompt|description)\s*\d*\s*[:：]\s*(?:\*\*)?\s*`)

	// "copy space on the left", "ample negative space at the top right side" ...
	copySpaceRe = regexp.MustCompile(`(?i)[,;]?\s*(?:\b(?:with|leaving|and|plus)\s+)?` +
		`(?:\b(?:(?:upper|lower|top|bottom)[\s-]+)?(?:left|right|top|bottom)(?:[\s-]+(?:side|hand))?[\s-]+)?` +
		`(?:\b(?:lots\s+of|plenty\s+of|ample|generous|large|some|empty|clean|blank|open)\s+)*` +
		`\b(?:copy|negative)[\s-]*space\b` +
		`(?:\s+(?:reserved\s+)?for\s+(?:text|copy|typography|a\s+headline|headlines?|logos?))?` +
		`(?:\s+(?:on|at|to|in|along)\s+(?:the\s+)?(?:(?:upper|lower|top|bottom|far)[\s-]+)?(?:left|right|top|bottom|upper|lower|center|centre)` +
		`(?:[\s-]+(?:side|half|corner|edge|area|third|portion))?)?`)

	// "on a transparent background" 这类带介词的整体短语直接替换为标准后缀
	onClearBackgroundRe = regexp.MustCompile(`(?i)\b(?:isolated\s+)?(?:on|against|over|in\s+front\s+of)\s+(?:an?\s+)?` +
		`(?:transparent|clear|alpha(?:[\s-]+channel)?|empty|no)(?:\s+png)?\s+(?:background|backdrop|bg)\b`)

	clearBackgroundRe = regexp.MustCompile(`(?i)\b(?:an?\s+)?(?:transparent|clear|alpha(?:[\s-]+channel)?|no)(?:\s+png)?\s+(?:background|backdrop|bg)\b`)
	noBackgroundRe    = regexp.MustCompile(`(?i)\bwithout\s+(?:an?\s+)?(?:background|backdrop)\b`)

	spaceBeforePunctRe = regexp.MustCompile(`\s+([,.;:!?])`)
	repeatedCommaRe    = regexp.MustCompile(`[,;]\s*(?:[,;]\s*)+`)
	commaBeforeStopRe  = regexp.MustCompile(`[,;:]\s*([.!?])`)
	multiSpaceRe       = regexp.MustCompile(`\s{2,}`)
)

// FirstLine 只保留模型输出的第一行非空文本
func FirstLine(text string, _ *Context) (string, error) {
	var line string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if s := strings.TrimSpace(l); s != "" {
			line = s
			break
		}
	}
	if line == "" {
		return "", nil
	}

	line = promptLabelRe.ReplaceAllString(line, "")
	line = strings.TrimSpace(strings.Trim(line, "*_`"))
	line = unquote(line)
	return strings.TrimSpace(line), nil
}

// StripCopySpace 删除留白相关描述
func StripCopySpace(text string, _ *Context) (string, error) {
	if !copySpaceRe.MatchString(text) {
		return text, nil
	}
	return tidy(copySpaceRe.ReplaceAllString(text, "")), nil
}

// WhiteBackground 抠图 / 棋盘格 / 透明背景描述统一改写为白底
func WhiteBackground(text string, sc *Context) (string, error) {
	if !sc.Signals.NeedsWhiteBackground() && !MentionsClearBackground(text) {
		return text, nil
	}
	text = onClearBackgroundRe.ReplaceAllString(text, WhiteBackgroundPhrase)
	text = clearBackgroundRe.ReplaceAllString(text, "white background")
	text = noBackgroundRe.ReplaceAllString(text, "on white background")
	return AddSuffixSafely(tidy(text), WhiteBackgroundPhrase, sc.MaxChars), nil
}

// Clamp 最终按预算截断
func Clamp(text string, sc *Context) (string, error) {
	return ClampToMaxChars(text, sc.MaxChars), nil
}

// MentionsClearBackground 文本是否描述了透明 / 无背景
func MentionsClearBackground(text string) bool {
	return clearBackgroundRe.MatchString(text) || noBackgroundRe.MatchString(text)
}

// tidy 清理删改后残留的标点与空白
func tidy(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = repeatedCommaRe.ReplaceAllStringFunc(s, func(m string) string {
		return string(m[0]) + " "
	})
	s = commaBeforeStopRe.ReplaceAllString(s, "$1")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimLeft(s, " ,;:.-")
	return strings.TrimRight(s, " ,;:-")
}

func unquote(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}, {"`", "`"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
		}
	}
	return s
}
