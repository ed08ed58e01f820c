package mp3

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
)

// xing 流信息帧中帧数与字节数两个字段同时存在时的标志位。
const xingFlagFramesAndBytes = 0x00000003

// CleanUnit 剥离一段独立编码 MP3 的容器元数据，只留下纯音频帧：
// 去掉开头的 ID3v2 标签、末尾的 ID3v1 标签，以及编码器自己加上的
// Xing/Info 流信息帧。
// 剥离后起始处不是有效帧头时按原样返回整段字节（宁可出现杂音，
// 也不丢数据），并返回 clean=false。
func CleanUnit(data []byte) (audio []byte, clean bool) {
	start := AudioStart(data)
	end := AudioEnd(data)
	if start >= end {
		return data, false
	}

	body := data[start:end]

	if _, ok := parseFrameHeader(body); !ok {
		logger.Warnf("[mp3] 无法在 %d 字节的单元中定位帧数据，按原始字节保留", len(data))
		return data, false
	}

	// 编码器前置的流信息帧不是音频，精确跳过它的字节区间
	if span := streamInfoSpan(body); span > 0 {
		body = body[span:]
	}

	return body, true
}

// buildStreamInfoFrame 合成一个 Xing 流信息帧。
// 帧本身是约定配置下的一个无填充位标准帧（417 字节），音频数据全零；
// 帧数与字节数按大端写入，供播放器做时长显示和拖动定位。
func buildStreamInfoFrame(totalFrames, totalBytes uint32) []byte {
	frame := make([]byte, frameSize)

	// MPEG-1 Layer III，128 kbps（索引 9），44.1 kHz（索引 0），
	// 无填充位，joint stereo，original 位置位
	frame[0] = 0xFF
	frame[1] = 0xFB
	frame[2] = 0x90
	frame[3] = 0x44

	offset := 4 + sideInfoStereo
	copy(frame[offset:], "Xing")
	binary.BigEndian.PutUint32(frame[offset+4:], xingFlagFramesAndBytes)
	binary.BigEndian.PutUint32(frame[offset+8:], totalFrames)
	binary.BigEndian.PutUint32(frame[offset+12:], totalBytes)

	return frame
}

// Silence 生成指定时长的静音单元：若干个 side info 与音频数据全零的
// 标准帧，解码器会将其还原为静音。时长向最近的整帧数取整，至少一帧。
func Silence(seconds float64) []byte {
	frameDuration := float64(samplesPerFrame) / float64(SampleRate)
	n := int(math.Round(seconds / frameDuration))
	if n < 1 {
		n = 1
	}

	frame := make([]byte, frameSize)
	frame[0] = 0xFF
	frame[1] = 0xFB
	frame[2] = 0x90
	frame[3] = 0x44

	out := make([]byte, 0, n*frameSize)
	for i := 0; i < n; i++ {
		out = append(out, frame...)
	}
	return out
}

// Assemble 将有序的放置单元（语音段与静音段）拼接为一条可定位的
// MP3 流，并返回按约定比特率估算的总时长（秒）。
//
// 每个单元先经 CleanUnit 剥离容器元数据，只有纯音频帧进入累积流；
// 最后统计累积流中的帧数，合成一个新的 Xing 流信息帧放在最前面。
// 帧数 +1、字节数加上流信息帧自身长度，是因为这个合成帧本身也是
// 播放器读回的最终流的一部分——声明值必须与实际值严格一致，否则
// 下游播放器的时长显示和拖动都会出错。
func Assemble(units [][]byte) (stream []byte, duration float64) {
	var body bytes.Buffer
	anomalies := 0

	for _, unit := range units {
		if len(unit) == 0 {
			continue
		}
		audio, clean := CleanUnit(unit)
		if !clean {
			anomalies++
		}
		body.Write(audio)
	}

	totalFrames := CountFrames(body.Bytes())
	totalBytes := body.Len()

	header := buildStreamInfoFrame(uint32(totalFrames)+1, uint32(totalBytes)+frameSize)

	out := make([]byte, 0, len(header)+totalBytes)
	out = append(out, header...)
	out = append(out, body.Bytes()...)

	duration = float64(len(out)) / float64(BytesPerSecond)

	logger.Debugf("[mp3] 拼接完成: %d 个单元, %d 帧, %d 字节, 估算时长 %.1f 秒, %d 个异常单元",
		len(units), totalFrames, len(out), duration, anomalies)

	return out, duration
}
