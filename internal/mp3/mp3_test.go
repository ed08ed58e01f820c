package mp3

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// makeFrame 返回一个约定配置下的标准帧（417 字节，音频数据全零）。
func makeFrame() []byte {
	frame := make([]byte, frameSize)
	frame[0] = 0xFF
	frame[1] = 0xFB
	frame[2] = 0x90
	frame[3] = 0x44
	return frame
}

// makeAudio 返回 n 个标准帧拼成的纯音频数据。
func makeAudio(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.Write(makeFrame())
	}
	return buf.Bytes()
}

// makeStreamInfoFrame 返回一个编码器风格的 Xing 流信息帧。
func makeStreamInfoFrame(sig string) []byte {
	frame := makeFrame()
	copy(frame[4+sideInfoStereo:], sig)
	return frame
}

func TestParseFrameHeader_Valid(t *testing.T) {
	h, ok := parseFrameHeader(makeFrame())
	if !ok {
		t.Fatal("expected valid frame header")
	}
	if h.size != frameSize {
		t.Errorf("expected size %d, got %d", frameSize, h.size)
	}
	if h.mono {
		t.Error("expected stereo frame")
	}
}

func TestParseFrameHeader_Padding(t *testing.T) {
	frame := makeFrame()
	frame[2] |= 0x02 // padding bit
	h, ok := parseFrameHeader(frame)
	if !ok {
		t.Fatal("expected valid frame header")
	}
	if h.size != frameSize+1 {
		t.Errorf("expected padded size %d, got %d", frameSize+1, h.size)
	}
}

func TestParseFrameHeader_Invalid(t *testing.T) {
	cases := [][]byte{
		nil,
		{0xFF},
		{0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFB, 0x00, 0x44}, // bitrate index 0 (free format)
		{0xFF, 0xFB, 0xF0, 0x44}, // bitrate index 15
	}
	for i, c := range cases {
		if _, ok := parseFrameHeader(c); ok {
			t.Errorf("case %d: expected invalid header", i)
		}
	}
}

func TestAudioStart_NoTag(t *testing.T) {
	if got := AudioStart(makeAudio(1)); got != 0 {
		t.Errorf("buffer without ID3v2 should start at 0, got %d", got)
	}
}

func TestAudioStart_ID3v2(t *testing.T) {
	// ID3v2.3 标签：10 字节头 + 100 字节标签体
	tag := make([]byte, 110)
	copy(tag, "ID3")
	tag[3] = 3
	tag[9] = 100 // syncsafe size
	data := append(tag, makeAudio(1)...)

	if got := AudioStart(data); got != 110 {
		t.Errorf("expected audio start at 110, got %d", got)
	}
}

func TestAudioStart_ID3v2Footer(t *testing.T) {
	tag := make([]byte, 120)
	copy(tag, "ID3")
	tag[3] = 4
	tag[5] = 0x10 // footer flag
	tag[9] = 100
	data := append(tag, makeAudio(1)...)

	if got := AudioStart(data); got != 120 {
		t.Errorf("expected footer to be included, got %d", got)
	}
}

func TestAudioEnd_ID3v1(t *testing.T) {
	audio := makeAudio(2)
	tag := make([]byte, id3v1Size)
	copy(tag, "TAG")
	data := append(append([]byte{}, audio...), tag...)

	if got := AudioEnd(data); got != len(audio) {
		t.Errorf("expected audio end at %d, got %d", len(audio), got)
	}
	if got := AudioEnd(audio); got != len(audio) {
		t.Errorf("buffer without ID3v1 should end at its length, got %d", got)
	}
}

func TestCountFrames(t *testing.T) {
	if got := CountFrames(makeAudio(5)); got != 5 {
		t.Errorf("expected 5 frames, got %d", got)
	}
	if got := CountFrames(nil); got != 0 {
		t.Errorf("expected 0 frames for empty data, got %d", got)
	}
}

func TestCountFrames_Resync(t *testing.T) {
	// 帧前的杂散字节应被逐字节跳过
	data := append([]byte{0x01, 0x02, 0x03}, makeAudio(2)...)
	if got := CountFrames(data); got != 2 {
		t.Errorf("expected 2 frames after resync, got %d", got)
	}
}

func TestCleanUnit_PassThrough(t *testing.T) {
	audio := makeAudio(3)
	got, clean := CleanUnit(audio)
	if !clean {
		t.Fatal("expected clean parse")
	}
	if !bytes.Equal(got, audio) {
		t.Error("buffer without metadata should pass through unchanged")
	}
}

func TestCleanUnit_StripsStreamInfo(t *testing.T) {
	for _, sig := range []string{"Xing", "Info"} {
		unit := append(makeStreamInfoFrame(sig), makeAudio(3)...)
		got, clean := CleanUnit(unit)
		if !clean {
			t.Fatalf("%s: expected clean parse", sig)
		}
		if len(got) != 3*frameSize {
			t.Errorf("%s: expected %d bytes after stripping, got %d", sig, 3*frameSize, len(got))
		}
	}
}

func TestCleanUnit_StripsAllTags(t *testing.T) {
	tag := make([]byte, 110)
	copy(tag, "ID3")
	tag[3] = 3
	tag[9] = 100

	trailer := make([]byte, id3v1Size)
	copy(trailer, "TAG")

	unit := append(append(append([]byte{}, tag...), makeAudio(2)...), trailer...)
	got, clean := CleanUnit(unit)
	if !clean {
		t.Fatal("expected clean parse")
	}
	if len(got) != 2*frameSize {
		t.Errorf("expected pure audio of %d bytes, got %d", 2*frameSize, len(got))
	}
}

func TestCleanUnit_RawFallback(t *testing.T) {
	garbage := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	got, clean := CleanUnit(garbage)
	if clean {
		t.Error("expected anomaly flag for unparseable unit")
	}
	if !bytes.Equal(got, garbage) {
		t.Error("unparseable unit must be kept as raw bytes, not dropped")
	}
}

func TestSilence_FrameCount(t *testing.T) {
	data := Silence(0.35)
	// 0.35 秒 / 每帧 26.12 毫秒 ≈ 13 帧
	if got := CountFrames(data); got != 13 {
		t.Errorf("expected 13 silence frames, got %d", got)
	}
}

func TestSilence_MinimumOneFrame(t *testing.T) {
	if got := CountFrames(Silence(0.001)); got != 1 {
		t.Errorf("expected at least one frame, got %d", got)
	}
}

// readStreamInfo 从拼接结果的首帧中读回声明的帧数与字节数。
func readStreamInfo(t *testing.T, stream []byte) (frames, size uint32) {
	t.Helper()
	offset := 4 + sideInfoStereo
	if string(stream[offset:offset+4]) != "Xing" {
		t.Fatalf("expected Xing signature at offset %d", offset)
	}
	frames = binary.BigEndian.Uint32(stream[offset+8:])
	size = binary.BigEndian.Uint32(stream[offset+12:])
	return frames, size
}

func TestAssemble_HeaderAccounting(t *testing.T) {
	stream, duration := Assemble([][]byte{makeAudio(3), makeAudio(2)})

	body := stream[frameSize:]
	declaredFrames, declaredBytes := readStreamInfo(t, stream)

	// 声明帧数 = 实际帧数 + 流信息帧自身
	if want := uint32(CountFrames(body)) + 1; declaredFrames != want {
		t.Errorf("declared frame count %d, want %d", declaredFrames, want)
	}
	// 声明字节数 = 含流信息帧的完整流长度
	if declaredBytes != uint32(len(stream)) {
		t.Errorf("declared byte size %d, want %d", declaredBytes, len(stream))
	}

	wantDuration := float64(len(stream)) / float64(BytesPerSecond)
	if duration != wantDuration {
		t.Errorf("duration %f, want %f", duration, wantDuration)
	}
}

func TestAssemble_SkipsEmptyUnits(t *testing.T) {
	stream, _ := Assemble([][]byte{nil, makeAudio(2), {}})
	if got := CountFrames(stream[frameSize:]); got != 2 {
		t.Errorf("expected 2 body frames, got %d", got)
	}
}

func TestAssemble_StripsPerUnitStreamInfo(t *testing.T) {
	unit1 := append(makeStreamInfoFrame("Xing"), makeAudio(2)...)
	unit2 := append(makeStreamInfoFrame("Info"), makeAudio(3)...)

	stream, _ := Assemble([][]byte{unit1, unit2})
	if got := CountFrames(stream[frameSize:]); got != 5 {
		t.Errorf("per-unit stream info frames must not survive, got %d body frames", got)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	first, _ := Assemble([][]byte{makeAudio(4), makeAudio(1)})
	second, _ := Assemble([][]byte{first})

	if !bytes.Equal(first[frameSize:], second[frameSize:]) {
		t.Error("re-assembling own output must not change audio byte content")
	}
	if len(first) != len(second) {
		t.Errorf("stream length changed on re-assembly: %d vs %d", len(first), len(second))
	}
}

func TestAssemble_RawFallbackUnit(t *testing.T) {
	garbage := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	stream, _ := Assemble([][]byte{makeAudio(1), garbage})

	if !bytes.Contains(stream, garbage) {
		t.Error("corrupt unit must be included as raw bytes, not dropped")
	}
}

func TestProbeSampleRate_Garbage(t *testing.T) {
	if _, err := ProbeSampleRate([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error probing non-MP3 data")
	}
}
