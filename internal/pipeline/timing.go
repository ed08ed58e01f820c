package pipeline

import (
	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/mp3"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
)

// SegmentMetadata 一段音频在最终时间轴上的位置，供下游
// 立体声混音等阶段使用，不影响字节拼接本身。
type SegmentMetadata struct {
	Index     int            `json:"index"`
	Speaker   script.Speaker `json:"speaker"`
	Text      string         `json:"text"`
	StartTime float64        `json:"start_time"`
	Duration  float64        `json:"duration"`
}

// TimingOptions 会话时序参数（秒）。
type TimingOptions struct {
	// NormalGap 换人发言时插入的停顿。
	NormalGap float64
	// OverlapOffset 插话时新段提前进入的时长。
	OverlapOffset float64
}

// placeSegments 为每段音频计算时间轴位置，并产出供拼接引擎
// 消费的有序放置单元（语音段与合成静音段交错）。
//
// 规则：
//   - 段时长按字节数除以约定的每秒字节数估算；
//   - 同一角色连续发言直接衔接，不插停顿；
//   - 换人发言插入 NormalGap 停顿和一个静音单元；
//   - 换人且带插话标签、且提供者理解标签时，新段起点前移
//     OverlapOffset 产生语音重叠，不插静音；前移不得早于上一段
//     的起点，保证起点在整个序列上单调不减。
//
// 标签剥离型提供者下插话标签在发送前已被移除，无法产生重叠，
// 所有换人都走普通停顿路径——这是两类提供者之间有意保留的
// 可观察行为差异。
//
// 失败的零长度段被跳过，既不进时间轴也不进放置单元。
func placeSegments(segments []Segment, tagAware bool, opts TimingOptions) ([]SegmentMetadata, [][]byte) {
	var metadata []SegmentMetadata
	var units [][]byte

	var prevSpeaker script.Speaker
	prevStart := 0.0
	prevEnd := 0.0
	first := true

	for _, seg := range segments {
		if len(seg.Audio) == 0 {
			continue
		}

		duration := float64(len(seg.Audio)) / float64(mp3.BytesPerSecond)

		var start float64
		switch {
		case first:
			start = 0
		case seg.Speaker == prevSpeaker:
			// 同角色连续发言读起来像一口气
			start = prevEnd
		case tagAware && script.HasInterruption(seg.Text):
			start = prevEnd - opts.OverlapOffset
			// 上一段短于重叠偏移时不能回退到它的起点之前
			if start < prevStart {
				start = prevStart
			}
			logger.Debugf("[pipeline] 第 %d 行插话，起点前移至 %.2f 秒", seg.Index+1, start)
		default:
			start = prevEnd + opts.NormalGap
			units = append(units, mp3.Silence(opts.NormalGap))
		}

		metadata = append(metadata, SegmentMetadata{
			Index:     seg.Index,
			Speaker:   seg.Speaker,
			Text:      seg.Text,
			StartTime: start,
			Duration:  duration,
		})
		units = append(units, seg.Audio)

		prevStart = start
		prevEnd = start + duration
		prevSpeaker = seg.Speaker
		first = false
	}

	return metadata, units
}
