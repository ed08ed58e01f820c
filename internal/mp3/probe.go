package mp3

import (
	"bytes"
	"fmt"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// ProbeSampleRate 用解码器读取数据开头的帧头，返回实际采样率。
// 仅作诊断用途：拼接流程本身从不解码采样数据，这里只用来核对
// 提供者是否按约定的 44.1 kHz 配置编码。
func ProbeSampleRate(data []byte) (int, error) {
	decoder, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("[mp3] 探测采样率失败: %w", err)
	}
	return decoder.SampleRate(), nil
}
