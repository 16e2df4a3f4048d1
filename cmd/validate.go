package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/pkg/translation"
)

type validateResult struct {
	OK           bool                      `json:"ok"`
	Missing      []string                  `json:"missing,omitempty"`
	MaterialLoss *translation.MaterialLoss `json:"material_loss,omitempty"`
}

// newValidateCmd は、翻訳結果に必須フィールドが揃っているかを検証するコマンドなのだ。
func newValidateCmd(app *appOptions) *cobra.Command {
	var inputFile, originalFile string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "翻訳結果の必須フィールドと素材の欠落を検証するのだ。",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, inputFile)
			if err != nil {
				return err
			}
			var translated, original map[string]any
			if err := json.Unmarshal(data, &translated); err != nil {
				return fmt.Errorf("翻訳結果のJSONパースに失敗したのだ: %w", err)
			}
			if originalFile != "" {
				originalData, err := readInput(cmd, originalFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(originalData, &original); err != nil {
					return fmt.Errorf("翻訳前レコードのJSONパースに失敗したのだ: %w", err)
				}
			}

			report, verr := translation.Validate(translated, original)
			res := validateResult{OK: verr == nil, MaterialLoss: report.MaterialLoss}
			var mfe *translation.MissingFieldsError
			if errors.As(verr, &mfe) {
				res.Missing = mfe.Fields
			}

			w := cmd.OutOrStdout()
			if app.JSON {
				if err := writeJSON(w, res); err != nil {
					return err
				}
			} else if verr == nil {
				fmt.Fprintln(w, "OK")
			}
			return verr
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "翻訳結果のJSONファイル（'-'で標準入力なのだ）。")
	cmd.Flags().StringVar(&originalFile, "original", "", "翻訳前のレコード（JSON）なのだ。")
	return cmd
}
