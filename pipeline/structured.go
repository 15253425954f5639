package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/BaSui01/promptlens/types"
)

// ParseStructured 从模型输出中解析结构化记录
// 允许外层包裹 markdown 代码块或前后说明文字；解析失败或 prompt 为空时返回 false
func ParseStructured(raw string) (*types.StructuredPrompt, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var sp types.StructuredPrompt
	if err := json.Unmarshal([]byte(raw[start:end+1]), &sp); err != nil {
		return nil, false
	}
	sp.Prompt = strings.TrimSpace(sp.Prompt)
	if sp.Prompt == "" {
		return nil, false
	}
	sp.Title = limitWords(strings.TrimSpace(sp.Title), maxTitleWords)
	sp.Keywords = normalizeKeywords(sp.Keywords)
	return &sp, true
}

func limitWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// normalizeKeywords 小写、去空白、去重，最多保留 maxKeywords 个
func normalizeKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, min(len(in), maxKeywords))
	for _, k := range in {
		k = strings.ToLower(strings.Join(strings.Fields(k), " "))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
