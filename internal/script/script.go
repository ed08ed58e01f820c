package script

// Speaker 对话角色。
type Speaker string

const (
	// SpeakerHost 主持人。
	SpeakerHost Speaker = "host"
	// SpeakerGuest 嘉宾。
	SpeakerGuest Speaker = "guest"
)

// DialogueLine 一条对话台词：角色 + 文本。
// 文本中可以内嵌零个或多个方括号情绪标签，如 [cheerfully]。
// 解析完成后不再修改。
type DialogueLine struct {
	Speaker Speaker
	Text    string
}

// Script 一次合成请求的完整脚本。
// 构建一次后不再修改，同一次运行中所有台词使用同一个提供者。
type Script struct {
	Lines        []DialogueLine
	HostVoiceID  string
	GuestVoiceID string
	Provider     string // 提供者名称，如 "elevenlabs"、"openai"
	Model        string
}
