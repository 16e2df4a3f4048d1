package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/internal/config"
	"github.com/shouni/go-s2r-kit/pkg/prompts"
)

const appName = "s2r"

// appOptions は全てのサブコマンドで共有するグローバルフラグなのだ。
type appOptions struct {
	LogLevel string
	JSON     bool

	cfg *config.Config
}

// newRootCmd はルートコマンドとサブコマンドを組み立てるのだ。
func newRootCmd() *cobra.Command {
	app := &appOptions{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "建築スケッチのフォトリアル変換用プロンプトを合成するのだ。",
		Long: `翻訳済みの建物記述（JSON）や区画シート（Markdown/JSON）から、
画像生成モデルに渡すプロンプトとネガティブプロンプトを合成するのだ。
モデルの呼び出しは行わないのだよ。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "ログレベル (debug, info, warn, error)。未指定なら S2R_LOG_LEVEL を使うのだ。")
	rootCmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "結果をJSONで出力するのだ。")

	rootCmd.AddCommand(
		newRenderCmd(app),
		newInpaintCmd(app),
		newPlanningCmd(app),
		newDetailCmd(app),
		newValidateCmd(app),
		newBatchCmd(app),
	)
	return rootCmd
}

// setup は設定を読み込み、slog のハンドラーを差し替えるのだ。
func (a *appOptions) setup(cmd *cobra.Command) error {
	a.cfg = config.LoadConfig()
	level := a.cfg.LogLevel
	if a.LogLevel != "" {
		level = a.LogLevel
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: config.ParseLogLevel(level)})
	slog.SetDefault(slog.New(handler))
	return nil
}

// composer はルックアップテーブルの設定を反映した Composer を生成するのだ。
func (a *appOptions) composer() (*prompts.Composer, error) {
	tables, err := prompts.LoadLookupTables(a.cfg.Kit.LookupTablesPath)
	if err != nil {
		return nil, err
	}
	return prompts.NewComposer(nil, tables), nil
}

// printPrompt は合成結果を出力するのだ。テキストの場合はネガティブ項目を区切り線の後に出すのだ。
func (a *appOptions) printPrompt(w io.Writer, v any, text string, negative string) error {
	if a.JSON {
		return writeJSON(w, v)
	}
	if _, err := fmt.Fprintln(w, text); err != nil {
		return err
	}
	if negative != "" {
		if _, err := fmt.Fprintf(w, "\n---\nNEGATIVE: %s\n", negative); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
