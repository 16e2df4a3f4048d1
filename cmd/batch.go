package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-s2r-kit/pkg/asset"
	"github.com/shouni/go-s2r-kit/pkg/domain"
	"github.com/shouni/go-s2r-kit/pkg/translation"
	"github.com/shouni/go-s2r-kit/pkg/workflow"
)

// batchResult は1件のジョブの出力形式なのだ。
type batchResult struct {
	ID        string                    `json:"id"`
	Operation domain.Operation          `json:"operation"`
	Prompt    *domain.ComposedPrompt    `json:"prompt,omitempty"`
	Cached    bool                      `json:"cached,omitempty"`
	Warning   *translation.MaterialLoss `json:"material_loss,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// newBatchCmd は、JSON配列で与えられた複数のジョブを並列に合成するコマンドなのだ。
func newBatchCmd(app *appOptions) *cobra.Command {
	var inputFile, outDir string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "複数の合成ジョブを並列に処理するのだ。",
		Long: `ジョブ（operation, request, 任意の translated/original）のJSON配列を読み込み、
並列に合成して結果をJSON配列で出力するのだ。1件の失敗は他のジョブに影響しないのだよ。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, inputFile)
			if err != nil {
				return err
			}
			var jobs []workflow.Job
			if err := json.Unmarshal(data, &jobs); err != nil {
				return fmt.Errorf("ジョブのJSONパースに失敗したのだ: %w", err)
			}

			composer, err := app.composer()
			if err != nil {
				return err
			}
			m, err := workflow.New(workflow.ManagerArgs{Config: app.cfg.Kit, Composer: composer})
			if err != nil {
				return err
			}

			results, runErr := m.Run(cmd.Context(), jobs)
			var writeErrs []error
			out := make([]batchResult, len(results))
			for i, r := range results {
				out[i] = batchResult{
					ID:        r.JobID,
					Operation: r.Operation,
					Cached:    r.Cached,
					Warning:   r.Report.MaterialLoss,
				}
				if r.OK() {
					p := r.Prompt
					out[i].Prompt = &p
					if outDir != "" {
						// 書き出しに失敗しても結果のJSONは出力するのだ
						if _, err := asset.WritePrompt(outDir, i+1, p.Prompt, p.NegativeSummary); err != nil {
							out[i].Error = err.Error()
							writeErrs = append(writeErrs, err)
						}
					}
				} else {
					out[i].Error = r.Err.Error()
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return errors.Join(runErr, errors.Join(writeErrs...))
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "ジョブのJSONファイル（'-'で標準入力なのだ）。")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "成功したジョブのプロンプトを prompt_N.txt として書き出すディレクトリなのだ。")
	return cmd
}
