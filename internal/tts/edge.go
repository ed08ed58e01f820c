package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
)

// EdgeEngine 使用微软 Edge TTS 实现语音合成，免密钥，适合本地试听。
// 通过 edge-tts-go 获取 MP3 音频块并原样拼接，不做解码。
// 该提供者不理解情绪标签，发送前会剥离词表内的所有标签。
// 注意：Edge TTS 的输出编码与约定配置不一致时，采样率探测会给出警告。
type EdgeEngine struct{}

// NewEdgeEngine 创建 Edge TTS 引擎。
func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

// TagAware Edge TTS 不理解情绪标签。
func (e *EdgeEngine) TagAware() bool { return false }

// Synthesize 将文本合成为 MP3 字节流。voiceID 是 Edge 语音名称
// （如 en-US-GuyNeural），model 参数被忽略。
func (e *EdgeEngine) Synthesize(ctx context.Context, text, voiceID, _ string) ([]byte, error) {
	stripped := script.StripTags(text)
	logger.Debugf("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", len([]rune(stripped)), voiceID)

	comm, err := edge.NewCommunicate(stripped, edge.WithVoice(voiceID))
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 开始流式合成失败: %w", err)
	}

	audio, err := collectAudio(ctx, ch)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("[tts] edge-tts: 未收到音频数据")
	}

	logger.Debugf("[tts] edge-tts: 收到 %d 字节 MP3 数据", len(audio))
	return audio, nil
}

// collectAudio 从流式 channel 收集音频块，type=="audio" 的条目
// 包含 MP3 数据。上下文取消时先在后台排空 channel 再返回，
// 避免库的发送协程阻塞在未消费的 channel 上。
func collectAudio(ctx context.Context, ch <-chan map[string]interface{}) ([]byte, error) {
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			go func() {
				for range ch {
				}
			}()
			return nil, ctx.Err()
		default:
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}
	return mp3Buf.Bytes(), nil
}
