package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDetailCmd は、生成済みの街区パースを精細化するプロンプトを合成するコマンドなのだ。
func newDetailCmd(app *appOptions) *cobra.Command {
	opts := &areaOptions{}
	var (
		weather  string
		tier     string
		disabled []string
	)
	cmd := &cobra.Command{
		Use:   "detail",
		Short: "エリア詳細変換モードのプロンプトを合成するのだ。",
		RunE: func(cmd *cobra.Command, args []string) error {
			ac := opts.context(cmd)
			ac.Weather = weather
			ac.QualityTier = tier
			if len(disabled) > 0 {
				ac.QualityEffects = make(map[string]bool, len(disabled))
				for _, key := range disabled {
					ac.QualityEffects[key] = false
				}
			}
			ac = app.cfg.Kit.ApplyAreaDefaults(ac)

			composer, err := app.composer()
			if err != nil {
				return err
			}
			out, err := composer.ComposePlanningDetail(ac)
			if err != nil {
				return fmt.Errorf("プロンプトの合成に失敗したのだ: %w", err)
			}
			return app.printPrompt(cmd.OutOrStdout(), out, out.Prompt, out.NegativeSummary)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&weather, "weather", "w", "", "天候のキー（clear, after_rain など）なのだ。")
	cmd.Flags().StringVar(&tier, "tier", "", "品質ティア（standard, high, ultra）なのだ。")
	cmd.Flags().StringSliceVar(&disabled, "disable-effect", nil, "無効にする品質効果（bloom, depth_of_field など）なのだ。")
	return cmd
}
