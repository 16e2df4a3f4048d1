package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/pkg/domain"
	"github.com/shouni/go-s2r-kit/pkg/parser"
)

type areaOptions struct {
	CameraAngle   string
	TimeOfDay     string
	AspectRatio   string
	StyleKeywords string
	Negative      []string
}

func (o *areaOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.CameraAngle, "camera", "c", "", "カメラアングルのキー（drone_45deg, birds_eye など）なのだ。")
	cmd.Flags().StringVarP(&o.TimeOfDay, "time", "t", "", "時間帯のキー（golden_hour, midday など）なのだ。")
	cmd.Flags().StringVarP(&o.AspectRatio, "aspect", "a", "", "アスペクト比なのだ。")
	cmd.Flags().StringVarP(&o.StyleKeywords, "style", "s", "", "スタイルキーワードなのだ。")
	cmd.Flags().StringSliceVarP(&o.Negative, "negative", "n", nil, "ネガティブ項目の上書き（カンマ区切り）なのだ。")
}

func (o *areaOptions) context(cmd *cobra.Command) domain.AreaContext {
	ac := domain.AreaContext{
		CameraAngle:   o.CameraAngle,
		TimeOfDay:     o.TimeOfDay,
		AspectRatio:   o.AspectRatio,
		StyleKeywords: o.StyleKeywords,
	}
	if cmd.Flags().Changed("negative") {
		ac.NegativeItems = append([]string{}, o.Negative...)
	}
	return ac
}

// newPlanningCmd は、区画図から街区全体の建物を生成するプロンプトを合成するコマンドなのだ。
func newPlanningCmd(app *appOptions) *cobra.Command {
	opts := &areaOptions{}
	var inputFile string
	cmd := &cobra.Command{
		Use:   "planning",
		Short: "エリア生成モードのプロンプトを合成するのだ。",
		Long: `区画記述のリスト（JSON配列）または Markdown の区画シートから、
空の区画図に建物を生成させるプロンプトを合成するのだ。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, inputFile)
			if err != nil {
				return err
			}

			ac := opts.context(cmd)
			if isMarkdown(inputFile, data) {
				sheet, err := parser.NewMarkdownParser().Parse(string(data))
				if err != nil {
					return err
				}
				ac = sheet.ApplyTo(ac)
				slog.Info("区画シートを読み込んだのだ", "title", sheet.Title, "lots", len(sheet.Lots))
			} else {
				lots, err := domain.ParseLots(data)
				if err != nil {
					return err
				}
				ac.Lots = lots
			}
			ac = app.cfg.Kit.ApplyAreaDefaults(ac)

			composer, err := app.composer()
			if err != nil {
				return err
			}
			out, err := composer.ComposePlanning(ac)
			if err != nil {
				return fmt.Errorf("プロンプトの合成に失敗したのだ: %w", err)
			}
			return app.printPrompt(cmd.OutOrStdout(), out, out.Prompt, out.NegativeSummary)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "区画記述のファイル（.json / .md、'-'で標準入力なのだ）。")
	opts.bind(cmd)
	return cmd
}

// isMarkdown は拡張子、または JSON 配列で始まらない内容から Markdown かどうかを判定するのだ。
func isMarkdown(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	case ".json":
		return false
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data), []byte("["))
}
