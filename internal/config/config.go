package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	pkgconfig "github.com/shouni/go-s2r-kit/pkg/config"
)

// 環境変数名の定義なのだ
const (
	EnvLogLevel        = "S2R_LOG_LEVEL"
	EnvLookupTables    = "S2R_LOOKUP_TABLES"
	EnvAspectRatio     = "S2R_DEFAULT_ASPECT_RATIO"
	EnvSketchAdherence = "S2R_SKETCH_ADHERENCE"
	EnvConcurrency     = "S2R_BATCH_CONCURRENCY"
	EnvCacheTTL        = "S2R_CACHE_TTL"
)

const DefaultLogLevel = "info"

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	LogLevel string
	Kit      pkgconfig.Config
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
// 数値として解釈できない値は警告を出して既定値を使うのだ。
func LoadConfig() *Config {
	// .env は無くても構わないのだ
	_ = godotenv.Load()

	def := pkgconfig.DefaultConfig()
	kit := pkgconfig.Config{
		LookupTablesPath:       envutil.GetEnv(EnvLookupTables, ""),
		DefaultAspectRatio:     envutil.GetEnv(EnvAspectRatio, def.DefaultAspectRatio),
		DefaultSketchAdherence: envFloat(EnvSketchAdherence, def.DefaultSketchAdherence),
		Concurrency:            envInt(EnvConcurrency, def.Concurrency),
		CacheTTL:               envDuration(EnvCacheTTL, def.CacheTTL),
		CacheCleanupInterval:   def.CacheCleanupInterval,
	}
	if kit.Concurrency < 1 {
		slog.Warn("並列数は1以上である必要があるのだ。既定値を使うのだ", "key", EnvConcurrency, "value", kit.Concurrency)
		kit.Concurrency = def.Concurrency
	}

	return &Config{
		LogLevel: envutil.GetEnv(EnvLogLevel, DefaultLogLevel),
		Kit:      kit,
	}
}

// ParseLogLevel はログレベル名を slog.Level に変換するのだ。未知の名前は Info になるのだ。
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数を整数として解釈できないのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("環境変数を数値として解釈できないのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数を時間として解釈できないのだ", "key", key, "value", raw)
		return def
	}
	return v
}
