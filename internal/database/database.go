package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mattesmattes/synthszr-sub003/internal/logger"
)

// DB 运行历史数据库连接。
// 只记录每次合成运行的摘要，音频对象本身由外部存储步骤负责。
type DB struct {
	*sql.DB
	path string
}

// Run 一条合成运行记录。
type Run struct {
	EpisodeID       string
	Provider        string
	TotalLines      int
	SuccessfulLines int
	FailedLines     int
	Duration        float64
	CreatedAt       time.Time
}

// Open 打开或创建数据库。
// dbPath 为空时使用默认路径 ~/.synthszr/synthszr.db。
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			dbPath = filepath.Join(home, ".synthszr", "synthszr.db")
		} else {
			dbPath = "./synthszr.db"
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// WAL 模式，避免 CLI 并发调用时锁表
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	logger.Infof("[database] 数据库已打开: %s", dbPath)
	return &DB{DB: db, path: dbPath}, nil
}

// Path 返回数据库文件路径。
func (db *DB) Path() string {
	return db.path
}

// Migrate 运行数据库迁移。
func (db *DB) Migrate() error {
	migration := `CREATE TABLE IF NOT EXISTS runs (
		episode_id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		total_lines INTEGER DEFAULT 0,
		successful_lines INTEGER DEFAULT 0,
		failed_lines INTEGER DEFAULT 0,
		duration REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`); err != nil {
		logger.Warnf("[database] 创建索引失败: %v", err)
	}
	return nil
}

// RecordRun 写入一条运行记录。
func (db *DB) RecordRun(r Run) error {
	_, err := db.Exec(
		`INSERT INTO runs (episode_id, provider, total_lines, successful_lines, failed_lines, duration)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.EpisodeID, r.Provider, r.TotalLines, r.SuccessfulLines, r.FailedLines, r.Duration,
	)
	if err != nil {
		return fmt.Errorf("写入运行记录失败: %w", err)
	}
	return nil
}

// RecentRuns 返回最近 limit 条运行记录，按时间倒序。
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT episode_id, provider, total_lines, successful_lines, failed_lines, duration, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.EpisodeID, &r.Provider, &r.TotalLines, &r.SuccessfulLines,
			&r.FailedLines, &r.Duration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取运行记录失败: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close 关闭数据库连接。
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
