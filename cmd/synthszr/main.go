package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattesmattes/synthszr-sub003/internal/config"
	"github.com/mattesmattes/synthszr-sub003/internal/database"
	"github.com/mattesmattes/synthszr-sub003/internal/logger"
	"github.com/mattesmattes/synthszr-sub003/internal/pipeline"
	"github.com/mattesmattes/synthszr-sub003/internal/script"
)

func main() {
	configPath := flag.String("config", "configs/synthszr.yaml", "配置文件路径")
	scriptPath := flag.String("script", "", "对话脚本文件路径")
	outPath := flag.String("out", "episode.mp3", "输出 MP3 路径")
	history := flag.Bool("history", false, "列出最近的合成运行记录")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开数据库失败: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	if *history {
		listHistory(db)
		return
	}

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "缺少 -script 参数")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取脚本文件失败: %v\n", err)
		os.Exit(1)
	}

	lines, err := script.Parse(string(raw))
	if err != nil {
		if errors.Is(err, script.ErrEmptyScript) {
			fmt.Fprintln(os.Stderr, "脚本中没有可识别的对话行")
		} else {
			fmt.Fprintf(os.Stderr, "解析脚本失败: %v\n", err)
		}
		os.Exit(1)
	}

	s := &script.Script{
		Lines:        lines,
		HostVoiceID:  cfg.TTS.HostVoice,
		GuestVoiceID: cfg.TTS.GuestVoice,
		Provider:     cfg.TTS.Provider,
		Model:        cfg.TTS.Model,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在退出...", sig)
		cancel()
	}()

	result, err := pipeline.New(cfg).Run(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "合成失败: %v\n", err)
		os.Exit(1)
	}

	if result.Diag.SuccessfulLines == 0 {
		logger.Warnf("[main] 所有台词都合成失败，输出仅包含流信息帧")
	}

	if err := os.WriteFile(*outPath, result.Audio, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "写入音频文件失败: %v\n", err)
		os.Exit(1)
	}

	// 段位置元数据随音频旁路输出，供下游混音阶段使用
	metaPath := strings.TrimSuffix(*outPath, ".mp3") + ".segments.json"
	if metaBytes, err := json.MarshalIndent(result.Segments, "", "  "); err == nil {
		if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
			logger.Warnf("[main] 写入段元数据失败: %v", err)
		}
	}

	if err := db.RecordRun(database.Run{
		EpisodeID:       result.EpisodeID,
		Provider:        s.Provider,
		TotalLines:      result.Diag.TotalLines,
		SuccessfulLines: result.Diag.SuccessfulLines,
		FailedLines:     result.Diag.FailedLines,
		Duration:        result.Duration,
	}); err != nil {
		logger.Warnf("[main] 记录运行历史失败: %v", err)
	}

	fmt.Printf("episode %s: %d 段, %.1f 秒 -> %s\n",
		result.EpisodeID, len(result.Segments), result.Duration, *outPath)
}

// listHistory 打印最近的运行记录。
func listHistory(db *database.DB) {
	runs, err := db.RecentRuns(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查询运行历史失败: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("暂无运行记录")
		return
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  provider=%s  行数=%d（成功 %d / 失败 %d）  时长=%.1f 秒\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.EpisodeID, r.Provider,
			r.TotalLines, r.SuccessfulLines, r.FailedLines, r.Duration)
	}
}
