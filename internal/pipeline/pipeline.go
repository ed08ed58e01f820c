// Package pipeline 将脚本解析、分段合成、会话时序和容器拼接
// 串联为一次完整的播客音频合成运行。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattesmattes/synthszr-sub003/internal/config"
	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/mp3"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
	"github.com/mattesmattes/synthszr-sub003/internal/tts"
)

// Result 一次合成运行的结构化结果。
// 单行合成失败不会让 Run 返回错误；调用方需检查
// Diagnostics.SuccessfulLines 来识别实际不可用的结果。
type Result struct {
	EpisodeID string
	Audio     []byte
	Duration  float64
	Segments  []SegmentMetadata
	Diag      Diagnostics
}

// Pipeline 播客音频合成编排器。
// 每次 Run 都是从 Script 到字节流的纯函数，运行之间不共享状态。
type Pipeline struct {
	cfg *config.Config
}

// New 创建合成编排器。
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// newEngine 按脚本指定的提供者名称构造 TTS 引擎，每次运行解析一次。
func (p *Pipeline) newEngine(provider string) (tts.Engine, error) {
	switch provider {
	case "elevenlabs":
		return tts.NewElevenLabsEngine(tts.ElevenLabsConfig{
			APIURL: p.cfg.TTS.ElevenLabs.APIURL,
			APIKey: p.cfg.TTS.ElevenLabs.APIKey,
		})
	case "openai":
		return tts.NewOpenAIEngine(tts.OpenAIConfig{
			APIURL: p.cfg.TTS.OpenAI.APIURL,
			APIKey: p.cfg.TTS.OpenAI.APIKey,
		})
	case "edge":
		return tts.NewEdgeEngine(), nil
	case "tencent":
		return tts.NewTencentEngine(tts.TencentConfig{
			SecretID:  p.cfg.TTS.Tencent.SecretID,
			SecretKey: p.cfg.TTS.Tencent.SecretKey,
			Region:    p.cfg.TTS.Tencent.Region,
		})
	default:
		return nil, fmt.Errorf("[pipeline] 未知的 TTS 提供者: %s", provider)
	}
}

// Run 执行一次完整的合成运行：逐行合成、时序放置、容器拼接。
//
// 只有空脚本和引擎构造失败会返回错误，且都发生在任何提供者
// 调用之前；之后的单行失败只体现在诊断信息里。
func (p *Pipeline) Run(ctx context.Context, s *script.Script) (*Result, error) {
	if len(s.Lines) == 0 {
		return nil, script.ErrEmptyScript
	}

	// 标签校验只提示，不阻断
	for _, w := range script.ValidateTags(s.Lines) {
		logger.Warnf("[pipeline] %s", w)
	}

	engine, err := p.newEngine(s.Provider)
	if err != nil {
		return nil, err
	}

	logger.Infof("[pipeline] 开始合成: %d 行，provider=%s model=%s", len(s.Lines), s.Provider, s.Model)

	lineDelay := time.Duration(p.cfg.Timing.LineDelayMs) * time.Millisecond
	segments, diag := generateSegments(ctx, engine, s, lineDelay)

	opts := TimingOptions{
		NormalGap:     float64(p.cfg.Timing.NormalGapMs) / 1000,
		OverlapOffset: float64(p.cfg.Timing.OverlapOffsetMs) / 1000,
	}
	metadata, units := placeSegments(segments, engine.TagAware(), opts)

	audio, duration := mp3.Assemble(units)

	result := &Result{
		EpisodeID: uuid.NewString(),
		Audio:     audio,
		Duration:  duration,
		Segments:  metadata,
		Diag:      diag,
	}

	logger.Infof("[pipeline] 合成完成: episode=%s，%d 段，%.1f 秒，%d 字节",
		result.EpisodeID, len(metadata), duration, len(audio))

	return result, nil
}
