// Package mp3 实现 MP3 容器层面的字节操作：剥离元数据标签、
// 统计音频帧、合成流信息帧。只在压缩容器层面工作，从不解码采样数据。
package mp3

// 约定的编码配置：所有提供者统一输出 44.1 kHz / 128 kbps CBR、
// MPEG-1 Layer III。时长估算和帧定位都建立在这一假设之上。
const (
	// SampleRate 约定采样率（Hz）。
	SampleRate = 44100
	// Bitrate 约定比特率（bit/s）。
	Bitrate = 128000
	// BytesPerSecond 按约定比特率折算的每秒字节数，用于时长估算。
	BytesPerSecond = Bitrate / 8

	// samplesPerFrame MPEG-1 Layer III 每帧采样数。
	samplesPerFrame = 1152
	// frameSize 约定配置下无填充位的帧长：144 * 128000 / 44100 = 417。
	frameSize = samplesPerFrame / 8 * Bitrate / SampleRate

	// id3v2HeaderSize ID3v2 标签头固定长度。
	id3v2HeaderSize = 10
	// id3v1Size ID3v1 尾部标签固定长度。
	id3v1Size = 128

	// sideInfoMono / sideInfoStereo MPEG-1 帧头之后的 side info 长度，
	// Xing/Info 签名紧跟其后。
	sideInfoMono   = 17
	sideInfoStereo = 32
)

// bitrateTable MPEG-1 Layer III 比特率表（kbit/s），索引 0 和 15 无效。
var bitrateTable = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// sampleRateTable MPEG-1 采样率表（Hz），索引 3 无效。
var sampleRateTable = [4]int{44100, 48000, 32000, 0}

// frameHeader 一个已解析的 MPEG-1 Layer III 帧头。
type frameHeader struct {
	size int  // 含帧头的完整帧长（字节）
	mono bool // 是否单声道
}

// parseFrameHeader 尝试在 b 的起始处解析一个帧头。
// 同步模式为两字节：0xFF 后跟高三位全 1 的字节。
func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < 4 {
		return frameHeader{}, false
	}
	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return frameHeader{}, false
	}
	// 仅接受 MPEG-1（version 位 11）Layer III（layer 位 01）
	if (b[1]>>3)&0x3 != 0x3 || (b[1]>>1)&0x3 != 0x1 {
		return frameHeader{}, false
	}

	bitrateIdx := b[2] >> 4
	sampleIdx := (b[2] >> 2) & 0x3
	if bitrateTable[bitrateIdx] == 0 || sampleRateTable[sampleIdx] == 0 {
		return frameHeader{}, false
	}
	padding := int((b[2] >> 1) & 0x1)

	size := 144*bitrateTable[bitrateIdx]*1000/sampleRateTable[sampleIdx] + padding
	mono := b[3]>>6 == 0x3

	return frameHeader{size: size, mono: mono}, true
}

// CountFrames 扫描数据中的有效帧边界并返回帧数。
// 遇到不匹配同步模式的字节时逐字节前移重新同步。
func CountFrames(data []byte) int {
	frames := 0
	for i := 0; i+4 <= len(data); {
		h, ok := parseFrameHeader(data[i:])
		if !ok {
			i++
			continue
		}
		frames++
		i += h.size
	}
	return frames
}
