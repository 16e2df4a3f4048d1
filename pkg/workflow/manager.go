package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-s2r-kit/pkg/config"
	"github.com/shouni/go-s2r-kit/pkg/domain"
	"github.com/shouni/go-s2r-kit/pkg/prompts"
	"github.com/shouni/go-s2r-kit/pkg/translation"
)

// ManagerArgs は Manager の初期化に必要な引数です。
type ManagerArgs struct {
	Config   config.Config
	Composer *prompts.Composer // nil の場合は Config.LookupTablesPath のテーブルで生成します
}

// Manager は複数の合成要求を並列に処理し、結果をメモ化します。
// 合成は決定的なので、同じ入力に対するメモは常に正しい結果を返します。
type Manager struct {
	cfg      config.Config
	composer *prompts.Composer
	memo     *cache.Cache
}

// New は設定を基に新しい Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	composer := args.Composer
	if composer == nil {
		tables, err := prompts.LoadLookupTables(args.Config.LookupTablesPath)
		if err != nil {
			return nil, fmt.Errorf("Composer の初期化に失敗しました: %w", err)
		}
		composer = prompts.NewComposer(nil, tables)
	}

	cfg := args.Config
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	var memo *cache.Cache
	if cfg.CacheTTL > 0 {
		memo = cache.New(cfg.CacheTTL, cfg.CacheCleanupInterval)
	}

	return &Manager{
		cfg:      cfg,
		composer: composer,
		memo:     memo,
	}, nil
}

// Run は全てのジョブを並列に合成し、入力と同じ順序で結果を返します。
// 個々のジョブの失敗は Result に記録されます。コンテキストがキャンセルされた場合、
// 未着手のジョブはキャンセルエラーを結果として持ち、Run 自体もそのエラーを返します。
func (m *Manager) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.cfg.Concurrency)

	slog.InfoContext(ctx, "バッチ合成を開始します", "jobs", len(jobs), "concurrency", m.cfg.Concurrency)

	for i := range jobs {
		job := jobs[i]
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				results[i] = Result{JobID: job.ID, Operation: job.Operation, Err: err}
				return nil
			}
			results[i] = m.Compose(job)
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	slog.InfoContext(ctx, "バッチ合成が完了しました", "jobs", len(jobs), "failed", failed)

	return results, ctx.Err()
}

// Compose は1件のジョブを合成します。
func (m *Manager) Compose(job Job) Result {
	res := Result{JobID: job.ID, Operation: job.Operation}

	op, err := domain.ParseOperation(string(job.Operation))
	if err != nil {
		res.Err = fmt.Errorf("%w: '%s'", prompts.ErrUnknownOperation, job.Operation)
		return res
	}

	req := job.Request
	if job.Translated != nil && op == domain.OperationRender {
		report, scene, err := m.sceneFromTranslation(job.Translated, job.Original)
		res.Report = report
		if err != nil {
			res.Err = err
			return res
		}
		req.Scene = scene
	}
	req.Context = m.cfg.ApplyRenderDefaults(req.Context)
	req.Area = m.cfg.ApplyAreaDefaults(req.Area)

	key, err := memoKey(op, req)
	if err != nil {
		res.Err = err
		return res
	}
	if m.memo != nil {
		if cached, ok := m.memo.Get(key); ok {
			res.Prompt = cached.(domain.ComposedPrompt)
			res.Cached = true
			return res
		}
	}

	prompt, err := m.composer.Compose(op, req)
	if err != nil {
		slog.Warn("プロンプトの合成に失敗しました", "job", job.ID, "operation", op, "error", err)
		res.Err = err
		return res
	}
	if m.memo != nil {
		m.memo.SetDefault(key, prompt)
	}
	res.Prompt = prompt
	return res
}

// sceneFromTranslation は翻訳済みレコードを検証し、SceneDescription にデコードします。
func (m *Manager) sceneFromTranslation(translated, original map[string]any) (translation.Report, domain.SceneDescription, error) {
	report, err := translation.Validate(translated, original)
	if err != nil {
		return report, domain.SceneDescription{}, err
	}
	data, err := json.Marshal(translated)
	if err != nil {
		return report, domain.SceneDescription{}, fmt.Errorf("翻訳済みレコードのエンコードに失敗しました: %w", err)
	}
	scene, err := domain.ParseScene(data)
	if err != nil {
		return report, domain.SceneDescription{}, err
	}
	return report, scene, nil
}

// memoKey は (操作, リクエスト) の正規化された JSON の SHA-256 です。
// encoding/json は map のキーをソートして出力するため、同じ入力は常に同じキーになります。
func memoKey(op domain.Operation, req domain.Request) (string, error) {
	data, err := json.Marshal(struct {
		Operation domain.Operation `json:"operation"`
		Request   domain.Request   `json:"request"`
	}{op, req})
	if err != nil {
		return "", fmt.Errorf("メモキーの生成に失敗しました: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
