package tts

import "context"

// Engine 定义语音合成提供者接口。
type Engine interface {
	// Synthesize 将文本转换为约定配置的 MP3 字节流。
	// 网络、鉴权、配额等失败统一以 error 返回，不在此层区分种类。
	Synthesize(ctx context.Context, text, voiceID, model string) ([]byte, error)

	// TagAware 返回提供者是否理解文本中的方括号情绪标签。
	// 不理解标签的实现会在发送前剥离标签，因此插话重叠只在
	// TagAware 的提供者下生效。
	TagAware() bool
}
