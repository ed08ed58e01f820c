package mp3

// AudioStart 返回音频帧数据的起始偏移，跳过开头的 ID3v2 标签。
// ID3v2 标签头自述长度：第 6-9 字节是 syncsafe 编码的标签体长度，
// 第 5 字节的 0x10 位表示末尾还有 10 字节的 footer。
// 没有标签时返回 0。
func AudioStart(data []byte) int {
	if len(data) < id3v2HeaderSize {
		return 0
	}
	if data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return 0
	}

	// syncsafe：每字节只用低 7 位
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)

	total := id3v2HeaderSize + size
	if data[5]&0x10 != 0 {
		total += id3v2HeaderSize // footer
	}
	if total > len(data) {
		return 0
	}
	return total
}

// AudioEnd 返回音频帧数据的结束偏移，排除末尾的 ID3v1 标签（固定
// 128 字节，以 "TAG" 开头）。没有标签时返回 len(data)。
func AudioEnd(data []byte) int {
	n := len(data)
	if n < id3v1Size {
		return n
	}
	tag := data[n-id3v1Size:]
	if tag[0] == 'T' && tag[1] == 'A' && tag[2] == 'G' {
		return n - id3v1Size
	}
	return n
}

// streamInfoSpan 检查 data 开头的帧是否是 Xing/Info 流信息帧，
// 是则返回该帧的完整长度，否则返回 0。
// 签名位于帧头之后的 side info 末尾，偏移随声道模式变化。
func streamInfoSpan(data []byte) int {
	h, ok := parseFrameHeader(data)
	if !ok {
		return 0
	}

	offset := 4 + sideInfoStereo
	if h.mono {
		offset = 4 + sideInfoMono
	}
	if offset+4 > len(data) {
		return 0
	}

	sig := string(data[offset : offset+4])
	if sig != "Xing" && sig != "Info" {
		return 0
	}
	if h.size > len(data) {
		return len(data)
	}
	return h.size
}
