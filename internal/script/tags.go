package script

import (
	"fmt"
	"regexp"
	"strings"
)

// TagInterrupting 插话标签，时序引擎据此产生语音重叠。
const TagInterrupting = "interrupting"

// knownTags 是可识别的情绪/舞台指示标签词表。
// 不在词表中的标签只产生校验警告，不算错误。
var knownTags = map[string]bool{
	"cheerfully":    true,
	"thoughtfully":  true,
	"curiously":     true,
	"excitedly":     true,
	"seriously":     true,
	"laughs":        true,
	"sighs":         true,
	"whispers":      true,
	TagInterrupting: true,
}

// tagPattern 匹配方括号标签，如 [cheerfully]。
var tagPattern = regexp.MustCompile(`\[([a-z]+)\]`)

// StripTags 移除文本中所有词表内的标签，供不理解情绪标签的提供者使用。
// 词表外的标签原样保留。
func StripTags(text string) string {
	stripped := tagPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := strings.Trim(m, "[]")
		if knownTags[name] {
			return ""
		}
		return m
	})
	// 合并标签移除后留下的连续空格
	stripped = strings.Join(strings.Fields(stripped), " ")
	return stripped
}

// HasInterruption 判断文本中是否带有插话标签。
func HasInterruption(text string) bool {
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		if m[1] == TagInterrupting {
			return true
		}
	}
	return false
}

// ValidateTags 检查所有台词中的标签，返回词表外标签的警告列表。
// 仅作提示用途，调用方不应据此中断合成。
func ValidateTags(lines []DialogueLine) []string {
	var warnings []string
	seen := map[string]bool{}
	for i, line := range lines {
		for _, m := range tagPattern.FindAllStringSubmatch(line.Text, -1) {
			name := m[1]
			if knownTags[name] || seen[name] {
				continue
			}
			seen[name] = true
			warnings = append(warnings, fmt.Sprintf("第 %d 行包含未知标签 [%s]", i+1, name))
		}
	}
	return warnings
}
