package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/pkg/domain"
	"github.com/shouni/go-s2r-kit/pkg/translation"
)

type renderOptions struct {
	InputFile    string
	OriginalFile string
	Viewpoint    string
	Reference    bool
	Adherence    float64
	AspectRatio  string
	Negative     []string
}

// newRenderCmd は、スケッチからの外観パース変換プロンプトを合成するコマンドなのだ。
func newRenderCmd(app *appOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "外観パース変換のプロンプトを合成するのだ。",
		Long: `翻訳済みの建物記述（JSON）から、スケッチをフォトリアルな外観パースに変換する
プロンプトを合成するのだ。--original を指定すると翻訳結果の検証も行うのだよ。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "file", "f", "", "建物記述のJSONファイル（'-'で標準入力なのだ）。")
	cmd.Flags().StringVar(&opts.OriginalFile, "original", "", "翻訳前のレコード（JSON）。素材の欠落チェックに使うのだ。")
	cmd.Flags().StringVarP(&opts.Viewpoint, "viewpoint", "v", domain.DefaultViewpoint, "カメラの視点キーなのだ。")
	cmd.Flags().BoolVarP(&opts.Reference, "reference", "r", false, "スタイル参照画像があるものとして合成するのだ。")
	cmd.Flags().Float64Var(&opts.Adherence, "adherence", 0, "スケッチ忠実度 (0.5-1.0)。未指定なら設定値を使うのだ。")
	cmd.Flags().StringVarP(&opts.AspectRatio, "aspect", "a", "", "アスペクト比。未指定なら設定値を使うのだ。")
	cmd.Flags().StringSliceVarP(&opts.Negative, "negative", "n", nil, "ネガティブ項目の上書き（カンマ区切り）なのだ。")
	return cmd
}

func runRender(cmd *cobra.Command, app *appOptions, opts *renderOptions) error {
	data, err := readInput(cmd, opts.InputFile)
	if err != nil {
		return err
	}

	if opts.OriginalFile != "" {
		if err := validateTranslation(cmd, data, opts.OriginalFile); err != nil {
			return err
		}
	}

	scene, err := domain.ParseScene(data)
	if err != nil {
		return err
	}

	rc := domain.RenderRequestContext{
		Viewpoint:       opts.Viewpoint,
		HasReference:    opts.Reference,
		SketchAdherence: opts.Adherence,
		AspectRatio:     opts.AspectRatio,
	}
	if cmd.Flags().Changed("negative") {
		rc.NegativeItems = append([]string{}, opts.Negative...)
	}
	rc = app.cfg.Kit.ApplyRenderDefaults(rc)

	composer, err := app.composer()
	if err != nil {
		return err
	}
	out, err := composer.ComposeRender(rc, scene)
	if err != nil {
		return fmt.Errorf("プロンプトの合成に失敗したのだ: %w", err)
	}

	slog.Info("プロンプトを合成したのだ", "template", out.Template, "viewpoint", rc.Viewpoint)
	return app.printPrompt(cmd.OutOrStdout(), out, out.Prompt, out.NegativeSummary)
}

// validateTranslation は翻訳結果と翻訳前のレコードを検証するのだ。
func validateTranslation(cmd *cobra.Command, translatedData []byte, originalFile string) error {
	var translated, original map[string]any
	if err := json.Unmarshal(translatedData, &translated); err != nil {
		return fmt.Errorf("翻訳結果のJSONパースに失敗したのだ: %w", err)
	}
	originalData, err := readInput(cmd, originalFile)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(originalData, &original); err != nil {
		return fmt.Errorf("翻訳前レコードのJSONパースに失敗したのだ: %w", err)
	}
	_, err = translation.Validate(translated, original)
	return err
}
