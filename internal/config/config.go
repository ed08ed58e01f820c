package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 synthszr 的顶层配置结构。
type Config struct {
	TTS      TTSConfig      `yaml:"tts"`
	Timing   TimingConfig   `yaml:"timing"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// TTSConfig 语音合成配置。
// Provider/Voice/Model 在每次运行开始时解析一次，整次运行不变。
type TTSConfig struct {
	Provider   string           `yaml:"provider"`
	HostVoice  string           `yaml:"host_voice"`
	GuestVoice string           `yaml:"guest_voice"`
	Model      string           `yaml:"model"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Tencent    TencentConfig    `yaml:"tencent"`
}

// ElevenLabsConfig ElevenLabs 凭证配置。
type ElevenLabsConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
}

// OpenAIConfig OpenAI TTS 凭证配置。
type OpenAIConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
}

// TencentConfig 腾讯云 TTS 凭证配置。
type TencentConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// TimingConfig 会话时序参数（毫秒）。
type TimingConfig struct {
	// NormalGapMs 换人发言时插入的停顿。
	NormalGapMs int `yaml:"normal_gap_ms"`
	// OverlapOffsetMs 插话时新段提前进入的时长。
	OverlapOffsetMs int `yaml:"overlap_offset_ms"`
	// LineDelayMs 相邻提供者调用之间的限流间隔。
	LineDelayMs int `yaml:"line_delay_ms"`
}

// DatabaseConfig 运行历史数据库配置。
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${ELEVENLABS_API_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.TTS.Provider == "" {
		cfg.TTS.Provider = "elevenlabs"
	}
	if cfg.TTS.Model == "" {
		cfg.TTS.Model = "eleven_v3"
	}
	if cfg.Timing.NormalGapMs == 0 {
		cfg.Timing.NormalGapMs = 350
	}
	if cfg.Timing.OverlapOffsetMs == 0 {
		cfg.Timing.OverlapOffsetMs = 250
	}
	if cfg.Timing.LineDelayMs == 0 {
		cfg.Timing.LineDelayMs = 500
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// 去除 API Key 两端可能的空白（环境变量展开后常见）
	cfg.TTS.ElevenLabs.APIKey = strings.TrimSpace(cfg.TTS.ElevenLabs.APIKey)
	cfg.TTS.OpenAI.APIKey = strings.TrimSpace(cfg.TTS.OpenAI.APIKey)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
}
