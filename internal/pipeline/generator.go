package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/mp3"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
	"github.com/mattesmattes/synthszr-sub003/internal/tts"
)

// maxErrorSamples 诊断信息中保留的代表性错误上限，多出的只计数。
const maxErrorSamples = 5

// Segment 一条台词对应的一段合成音频。
// 合成失败时 Audio 为零长度占位，不会中断整批合成。
type Segment struct {
	Index   int
	Speaker script.Speaker
	Text    string
	Audio   []byte
	Failed  bool
}

// Diagnostics 一次生成循环的汇总诊断。
// 所有台词都失败时整体结果仍是"成功"，调用方必须检查
// SuccessfulLines 而不能只看顶层状态。
type Diagnostics struct {
	TotalLines      int      `json:"total_lines"`
	SuccessfulLines int      `json:"successful_lines"`
	FailedLines     int      `json:"failed_lines"`
	ErrorSamples    []string `json:"error_samples,omitempty"`
}

// generateSegments 逐行调用提供者生成音频段，顺序与台词一致。
// 严格串行执行：既尊重外部限流，也保证可审计的确定性顺序。
// 单行失败只记录占位和诊断，循环继续。
func generateSegments(ctx context.Context, engine tts.Engine, s *script.Script, lineDelay time.Duration) ([]Segment, Diagnostics) {
	segments := make([]Segment, 0, len(s.Lines))
	diag := Diagnostics{TotalLines: len(s.Lines)}
	probed := false

	for i, line := range s.Lines {
		if i > 0 && lineDelay > 0 {
			// 相邻调用之间的固定间隔，限流策略而非正确性要求
			time.Sleep(lineDelay)
		}

		voiceID := s.HostVoiceID
		if line.Speaker == script.SpeakerGuest {
			voiceID = s.GuestVoiceID
		}

		audio, err := engine.Synthesize(ctx, line.Text, voiceID, s.Model)
		if err != nil {
			logger.Warnf("[pipeline] 第 %d 行合成失败: %v", i+1, err)
			diag.FailedLines++
			if len(diag.ErrorSamples) < maxErrorSamples {
				diag.ErrorSamples = append(diag.ErrorSamples, fmt.Sprintf("第 %d 行: %v", i+1, err))
			}
			segments = append(segments, Segment{Index: i, Speaker: line.Speaker, Text: line.Text, Failed: true})
			continue
		}

		diag.SuccessfulLines++
		segments = append(segments, Segment{Index: i, Speaker: line.Speaker, Text: line.Text, Audio: audio})

		// 对第一段成功音频做一次采样率核对，偏离约定配置只警告
		if !probed {
			probed = true
			if rate, err := mp3.ProbeSampleRate(audio); err != nil {
				logger.Warnf("[pipeline] 采样率探测失败: %v", err)
			} else if rate != mp3.SampleRate {
				logger.Warnf("[pipeline] 提供者返回 %d Hz 音频，与约定的 %d Hz 不符，时长估算可能失准", rate, mp3.SampleRate)
			}
		}
	}

	logger.Infof("[pipeline] 生成完成: 共 %d 行，成功 %d，失败 %d",
		diag.TotalLines, diag.SuccessfulLines, diag.FailedLines)

	return segments, diag
}
