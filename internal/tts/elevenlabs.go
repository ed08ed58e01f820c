package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
)

// defaultElevenLabsAPIURL ElevenLabs 语音合成接口地址。
const defaultElevenLabsAPIURL = "https://api.elevenlabs.io/v1"

// ElevenLabsEngine 使用 ElevenLabs API 实现语音合成。
// 该提供者原生理解方括号情绪标签（如 [cheerfully]、[interrupting]），
// 文本原样透传。
type ElevenLabsEngine struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// ElevenLabsConfig ElevenLabs 配置。
type ElevenLabsConfig struct {
	APIURL string // 为空则使用官方地址
	APIKey string
}

// NewElevenLabsEngine 创建 ElevenLabs TTS 引擎。
func NewElevenLabsEngine(cfg ElevenLabsConfig) (*ElevenLabsEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[tts] ElevenLabs 需要 APIKey")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultElevenLabsAPIURL
	}
	return &ElevenLabsEngine{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// TagAware ElevenLabs 理解情绪标签。
func (e *ElevenLabsEngine) TagAware() bool { return true }

// speechRequest 发送到 text-to-speech 接口的 JSON 请求体。
type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize 调用 ElevenLabs 合成文本，返回约定配置的 MP3 字节流。
func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text, voiceID, model string) ([]byte, error) {
	logger.Debugf("[tts] elevenlabs: 正在合成 %d 个字符，voice=%s model=%s", len([]rune(text)), voiceID, model)

	bodyBytes, err := json.Marshal(speechRequest{Text: text, ModelID: model})
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: 序列化请求体失败: %w", err)
	}

	// output_format 固定为约定的 44.1 kHz / 128 kbps
	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", e.apiURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: 创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("[tts] elevenlabs: API 返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: 读取响应失败: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("[tts] elevenlabs: 未收到音频数据")
	}

	logger.Debugf("[tts] elevenlabs: 收到 %d 字节 MP3 数据", len(audio))
	return audio, nil
}
