package workflow

import (
	"errors"

	// package imagedom は画像生成サービスに関連するドメインモデルを扱います。
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-s2r-kit/pkg/domain"
	"github.com/shouni/go-s2r-kit/pkg/translation"
)

// ErrJobFailed は合成に失敗したジョブの結果から画像生成リクエストを作ろうとしたことを示します。
var ErrJobFailed = errors.New("ジョブが失敗しているため画像生成リクエストを作成できません")

// Job はバッチ内の1件の合成要求です。
// Translated が指定された render ジョブは、検証後にその内容を Scene として使います。
type Job struct {
	ID         string           `json:"id,omitempty"`
	Operation  domain.Operation `json:"operation"`
	Request    domain.Request   `json:"request"`
	Translated map[string]any   `json:"translated,omitempty"`
	Original   map[string]any   `json:"original,omitempty"`
}

// Result は1件のジョブの結果です。失敗は Err に記録され、他のジョブには影響しません。
type Result struct {
	JobID     string
	Operation domain.Operation
	Prompt    domain.ComposedPrompt
	Report    translation.Report
	Cached    bool
	Err       error
}

// OK はジョブが成功したかどうかを返します。
func (r Result) OK() bool {
	return r.Err == nil
}

// ImageRequest は合成結果を外部の画像生成サービスに渡すリクエストに変換します。
func (r Result) ImageRequest() (imagedom.ImageGenerationRequest, error) {
	if r.Err != nil {
		return imagedom.ImageGenerationRequest{}, errors.Join(ErrJobFailed, r.Err)
	}
	return imagedom.ImageGenerationRequest{
		Prompt:         r.Prompt.Prompt,
		NegativePrompt: r.Prompt.NegativeSummary,
		AspectRatio:    r.Prompt.AspectRatio,
	}, nil
}
