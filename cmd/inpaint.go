package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

type inpaintOptions struct {
	Instruction string
	Reference   bool
	AspectRatio string
}

// newInpaintCmd は、マスク領域だけを編集するインペイントのプロンプトを合成するコマンドなのだ。
func newInpaintCmd(app *appOptions) *cobra.Command {
	opts := &inpaintOptions{}
	cmd := &cobra.Command{
		Use:   "inpaint",
		Short: "インペイントのプロンプトを合成するのだ。",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := app.cfg.Kit.ApplyRenderDefaults(domain.RenderRequestContext{
				HasReference:    opts.Reference,
				AspectRatio:     opts.AspectRatio,
				EditInstruction: opts.Instruction,
			})

			composer, err := app.composer()
			if err != nil {
				return err
			}
			out, err := composer.ComposeInpaint(rc)
			if err != nil {
				return fmt.Errorf("プロンプトの合成に失敗したのだ: %w", err)
			}
			return app.printPrompt(cmd.OutOrStdout(), out, out.Prompt, "")
		},
	}

	cmd.Flags().StringVarP(&opts.Instruction, "instruction", "i", "", "白いマスク領域に対する編集指示なのだ。")
	cmd.Flags().BoolVarP(&opts.Reference, "reference", "r", false, "スタイル参照画像があるものとして合成するのだ。")
	cmd.Flags().StringVarP(&opts.AspectRatio, "aspect", "a", "", "アスペクト比なのだ。")
	_ = cmd.MarkFlagRequired("instruction")
	return cmd
}
