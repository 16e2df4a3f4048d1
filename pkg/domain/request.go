package domain

import (
	"fmt"
	"slices"
)

// Operation はプロンプト合成の種類です。
type Operation string

const (
	// OperationRender はスケッチからフォトリアルな外観パースへの変換です。
	OperationRender Operation = "render"
	// OperationInpaint はマスク領域のみを編集するインペイントです。
	OperationInpaint Operation = "inpaint"
	// OperationPlanning は区画図から街区全体の建物を生成するエリア生成モードです。
	OperationPlanning Operation = "planning"
	// OperationPlanningDetail は生成済みの街区パースを精細化するエリア詳細変換モードです。
	OperationPlanningDetail Operation = "planning_detail"
)

var operations = []Operation{OperationRender, OperationInpaint, OperationPlanning, OperationPlanningDetail}

// Operations はサポートされている Operation の一覧を返します。
func Operations() []Operation {
	return slices.Clone(operations)
}

// ParseOperation は文字列を Operation に変換します。
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !slices.Contains(operations, op) {
		return "", fmt.Errorf("サポートされていない操作: '%s'", s)
	}
	return op, nil
}

// IsAreaWide はエリアモード（複数区画）の操作かどうかを返します。
func (o Operation) IsAreaWide() bool {
	return o == OperationPlanning || o == OperationPlanningDetail
}

const (
	DefaultViewpoint       = "main_facade"
	DefaultAspectRatio     = "16:9"
	DefaultSketchAdherence = 0.95
)

// RenderRequestContext は単体建物の変換・インペイント要求に付随する指定です。
type RenderRequestContext struct {
	Viewpoint       string  `json:"viewpoint,omitempty"`
	HasReference    bool    `json:"has_reference"`
	SketchAdherence float64 `json:"sketch_adherence,omitempty"` // 0.5-1.0 の表示用の値で、数値的な制約は課しません
	AspectRatio     string  `json:"aspect_ratio,omitempty"`
	// NegativeItems が nil の場合はシステム既定の除外リストを使います。
	NegativeItems   []string `json:"negative_items"`
	EditInstruction string   `json:"edit_instruction,omitempty"`
}

// WithDefaults は未指定の項目を既定値で補ったコピーを返します。
func (c RenderRequestContext) WithDefaults() RenderRequestContext {
	if c.Viewpoint == "" {
		c.Viewpoint = DefaultViewpoint
	}
	if c.SketchAdherence == 0 {
		c.SketchAdherence = DefaultSketchAdherence
	}
	if c.AspectRatio == "" {
		c.AspectRatio = DefaultAspectRatio
	}
	return c
}

const (
	DefaultCameraAngle = "drone_45deg"
	DefaultTimeOfDay   = "golden_hour"
	DefaultWeather     = "clear"
	DefaultQualityTier = "standard"
)

// AreaContext はエリアモード（街区生成・詳細変換）の要求に付随する指定です。
type AreaContext struct {
	Lots        []LotDescription `json:"lot_descriptions,omitempty"`
	CameraAngle string           `json:"camera_angle,omitempty"`
	TimeOfDay   string           `json:"time_of_day,omitempty"`
	Weather     string           `json:"weather,omitempty"`
	QualityTier string           `json:"quality_tier,omitempty"`

	// QualityEffects に含まれない効果は有効として扱います。
	QualityEffects map[string]bool `json:"quality_effects,omitempty"`
	StyleKeywords  string          `json:"style_keywords,omitempty"`
	AspectRatio    string          `json:"aspect_ratio,omitempty"`
	NegativeItems  []string        `json:"negative_items"`
}

// WithDefaults は未指定の項目を既定値で補ったコピーを返します。
func (c AreaContext) WithDefaults() AreaContext {
	if c.CameraAngle == "" {
		c.CameraAngle = DefaultCameraAngle
	}
	if c.TimeOfDay == "" {
		c.TimeOfDay = DefaultTimeOfDay
	}
	if c.Weather == "" {
		c.Weather = DefaultWeather
	}
	if c.QualityTier == "" {
		c.QualityTier = DefaultQualityTier
	}
	if c.AspectRatio == "" {
		c.AspectRatio = DefaultAspectRatio
	}
	return c
}

// Request は1回の合成に必要な入力をまとめたものです。
// Operation に応じて Context と Scene、または Area のどちらかが使われます。
type Request struct {
	Context RenderRequestContext `json:"context"`
	Scene   SceneDescription     `json:"scene"`
	Area    AreaContext          `json:"area"`
}

// ComposedPrompt は合成結果です。リクエストごとに生成され、変更も永続化もされません。
type ComposedPrompt struct {
	Operation       Operation `json:"operation"`
	Template        string    `json:"template"`
	Prompt          string    `json:"prompt"`
	NegativeSummary string    `json:"negative_summary"`
	AspectRatio     string    `json:"aspect_ratio"`
}
