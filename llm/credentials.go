package llm

import (
	"strings"
)

// MaskCredential 脱敏凭证，仅保留末 4 位，日志与指标标签只使用脱敏后的值
func MaskCredential(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// ParseCredentials 解析逗号或换行分隔的凭证列表，去除空白与重复项并保持原有顺序
func ParseCredentials(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ';'
	})
	return NormalizeCredentials(fields)
}

// NormalizeCredentials 去除空白与重复项，保持原有顺序
func NormalizeCredentials(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
