package config

import (
	"time"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

// デフォルト値の定義
const (
	DefaultConcurrency          = 8
	DefaultCacheTTL             = 30 * time.Minute
	DefaultCacheCleanupInterval = 10 * time.Minute
)

// Config は go-s2r-kit の Composer とバッチ処理を動作させるための基本設定です。
type Config struct {
	// --- Lookup Settings ---
	LookupTablesPath string // 空の場合は埋め込みのテーブル

	// --- Composition Defaults ---
	DefaultAspectRatio     string
	DefaultSketchAdherence float64

	// --- Batch Settings ---
	Concurrency          int
	CacheTTL             time.Duration // 0 以下ならメモ化しない
	CacheCleanupInterval time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		DefaultAspectRatio:     domain.DefaultAspectRatio,
		DefaultSketchAdherence: domain.DefaultSketchAdherence,
		Concurrency:            DefaultConcurrency,
		CacheTTL:               DefaultCacheTTL,
		CacheCleanupInterval:   DefaultCacheCleanupInterval,
	}
}

// ApplyRenderDefaults はリクエストで未指定のアスペクト比とスケッチ忠実度に設定値を補います。
func (c Config) ApplyRenderDefaults(rc domain.RenderRequestContext) domain.RenderRequestContext {
	if rc.AspectRatio == "" {
		rc.AspectRatio = c.DefaultAspectRatio
	}
	if rc.SketchAdherence == 0 {
		rc.SketchAdherence = c.DefaultSketchAdherence
	}
	return rc
}

// ApplyAreaDefaults はリクエストで未指定のアスペクト比に設定値を補います。
func (c Config) ApplyAreaDefaults(ac domain.AreaContext) domain.AreaContext {
	if ac.AspectRatio == "" {
		ac.AspectRatio = c.DefaultAspectRatio
	}
	return ac
}
