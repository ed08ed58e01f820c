package script

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyScript 表示原始文本中没有任何可识别的对话行。
// 调用方必须在进入后续阶段之前检查这一情况。
var ErrEmptyScript = errors.New("[script] 脚本中没有可识别的对话行")

// linePattern 匹配带角色前缀的对话行：
//
//	HOST: 你好！
//	GUEST [interrupting]: 等一下——
//
// 前缀后可以跟零个或多个方括号标签，作为该行的起始标签。
var linePattern = regexp.MustCompile(`^\s*(HOST|GUEST)\s*((?:\[[a-z]+\]\s*)*):\s*(.+)$`)

// Parse 将模型生成的原始脚本文本解析为有序的对话行列表。
// 不匹配角色前缀的行（开场白、杂项说明等）静默跳过，这是有意的容错。
// 没有任何可识别行时返回 ErrEmptyScript。
func Parse(raw string) ([]DialogueLine, error) {
	var lines []DialogueLine
	for _, textLine := range strings.Split(raw, "\n") {
		m := linePattern.FindStringSubmatch(textLine)
		if m == nil {
			continue
		}

		var speaker Speaker
		switch m[1] {
		case "HOST":
			speaker = SpeakerHost
		case "GUEST":
			speaker = SpeakerGuest
		}

		text := strings.TrimSpace(m[3])
		// 前缀上的标签并入行文本开头，后续阶段统一按行内标签处理
		if marker := strings.TrimSpace(m[2]); marker != "" {
			text = marker + " " + text
		}

		lines = append(lines, DialogueLine{Speaker: speaker, Text: text})
	}

	if len(lines) == 0 {
		return nil, ErrEmptyScript
	}
	return lines, nil
}
