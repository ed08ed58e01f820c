package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tcloudtts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
)

// TencentEngine 使用腾讯云 TTS 实现语音合成，适用于中文脚本。
// 请求 mp3 编码并直接返回字节流，不做解码。
// 该提供者不理解情绪标签，发送前会剥离词表内的所有标签。
type TencentEngine struct {
	client *tcloudtts.Client
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	Region    string
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 需要 SecretID 和 SecretKey")
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tcloudtts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[tts] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 引擎已初始化 (region=%s)", cfg.Region)
	return &TencentEngine{client: client}, nil
}

// TagAware 腾讯云 TTS 不理解情绪标签。
func (e *TencentEngine) TagAware() bool { return false }

// Synthesize 调用腾讯云 TTS 合成文本，返回 MP3 字节流。
// voiceID 是数字音色编号的字符串形式，model 参数被忽略。
func (e *TencentEngine) Synthesize(ctx context.Context, text, voiceID, _ string) ([]byte, error) {
	stripped := script.StripTags(text)

	voiceType, err := strconv.ParseInt(voiceID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 无效的音色编号 %q: %w", voiceID, err)
	}

	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(stripped)), voiceType)

	request := tcloudtts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(stripped)
	request.VoiceType = common.Int64Ptr(voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(1.0)
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 未返回音频数据")
	}

	audio, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("[tts] Base64 解码失败: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 未收到音频数据")
	}

	logger.Debugf("[tts] 腾讯云 TTS: 收到 %d 字节 MP3 数据", len(audio))
	return audio, nil
}
