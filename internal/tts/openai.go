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
	"github.com/mattesmattes/synthszr-sub003/internal/script"
)

// defaultOpenAIAPIURL OpenAI 兼容接口地址。
const defaultOpenAIAPIURL = "https://api.openai.com/v1"

// OpenAIEngine 使用 OpenAI speech 接口实现语音合成。
// 该提供者没有行内情绪指示的概念，发送前会剥离词表内的所有标签。
type OpenAIEngine struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// OpenAIConfig OpenAI TTS 配置。
type OpenAIConfig struct {
	APIURL string // 为空则使用官方地址
	APIKey string
}

// NewOpenAIEngine 创建 OpenAI TTS 引擎。
func NewOpenAIEngine(cfg OpenAIConfig) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[tts] OpenAI TTS 需要 APIKey")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultOpenAIAPIURL
	}
	return &OpenAIEngine{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// TagAware OpenAI TTS 不理解情绪标签。
func (e *OpenAIEngine) TagAware() bool { return false }

// openaiSpeechRequest 发送到 audio/speech 接口的 JSON 请求体。
type openaiSpeechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize 调用 OpenAI speech 接口合成文本，返回 MP3 字节流。
// 词表内的标签在发送前全部移除。
func (e *OpenAIEngine) Synthesize(ctx context.Context, text, voiceID, model string) ([]byte, error) {
	stripped := script.StripTags(text)
	logger.Debugf("[tts] openai: 正在合成 %d 个字符，voice=%s model=%s", len([]rune(stripped)), voiceID, model)

	bodyBytes, err := json.Marshal(openaiSpeechRequest{
		Model:          model,
		Input:          stripped,
		Voice:          voiceID,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("[tts] openai: 序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.apiURL+"/audio/speech", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[tts] openai: 创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[tts] openai: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("[tts] openai: API 返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[tts] openai: 读取响应失败: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("[tts] openai: 未收到音频数据")
	}

	logger.Debugf("[tts] openai: 收到 %d 字节 MP3 数据", len(audio))
	return audio, nil
}
