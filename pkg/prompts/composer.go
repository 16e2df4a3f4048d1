package prompts

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

// ErrEmptyEditInstruction はインペイントの編集指示が空であることを示します。
var ErrEmptyEditInstruction = errors.New("編集指示が空です")

// Composer はテンプレートを選択し、全てのプレースホルダーを解決してプロンプトを合成します。
// 状態を持たないため、複数のゴルーチンから同時に利用できます。
type Composer struct {
	catalog  *Catalog
	tables   *LookupTables
	validate *validator.Validate
}

// NewComposer は Composer を生成します。nil を渡した場合は埋め込みのテンプレートとテーブルを使います。
func NewComposer(catalog *Catalog, tables *LookupTables) *Composer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if tables == nil {
		tables = DefaultLookupTables()
	}
	return &Composer{
		catalog:  catalog,
		tables:   tables,
		validate: newLotValidator(),
	}
}

// Tables は Composer が参照するルックアップテーブルを返します。
func (c *Composer) Tables() *LookupTables {
	return c.tables
}

// Compose は操作に応じてプロンプトを合成します。
func (c *Composer) Compose(op domain.Operation, req domain.Request) (domain.ComposedPrompt, error) {
	switch op {
	case domain.OperationRender:
		return c.ComposeRender(req.Context, req.Scene)
	case domain.OperationInpaint:
		return c.ComposeInpaint(req.Context)
	case domain.OperationPlanning:
		return c.ComposePlanning(req.Area)
	case domain.OperationPlanningDetail:
		return c.ComposePlanningDetail(req.Area)
	default:
		return domain.ComposedPrompt{}, fmt.Errorf("%w: '%s'", ErrUnknownOperation, op)
	}
}

// ComposeRender はスケッチからの外観パース変換プロンプトを合成します。
func (c *Composer) ComposeRender(rc domain.RenderRequestContext, scene domain.SceneDescription) (domain.ComposedPrompt, error) {
	rc = rc.WithDefaults()
	specs := ResolveTechnicalSpecs(scene.TechnicalSpecs)
	negatives := FormatNegativeItems(c.negativeItems(rc.NegativeItems))

	values := map[string]string{
		"sketch_adherence":      FormatSketchAdherence(rc.SketchAdherence),
		"floor_count":           FormatFloorCount(scene),
		"aspect_ratio":          rc.AspectRatio,
		"user_description":      FormatUserDescription(scene),
		"viewpoint_instruction": c.tables.Resolve(TableViewpoint, rc.Viewpoint),
		"camera":                specs.Camera,
		"lens":                  specs.Lens,
		"lighting":              specs.Lighting,
		"perspective":           specs.Perspective,
		"materials":             FormatMaterials(scene.MaterialsPrecise),
		"environment":           FormatEnvironment(scene.Environment),
		"negative_items":        negatives,
	}
	return c.render(KeyFor(domain.OperationRender, rc.HasReference), values, negatives, rc.AspectRatio)
}

// ComposeInpaint はマスク領域のみを編集するインペイントプロンプトを合成します。
func (c *Composer) ComposeInpaint(rc domain.RenderRequestContext) (domain.ComposedPrompt, error) {
	rc = rc.WithDefaults()
	instruction := strings.TrimSpace(rc.EditInstruction)
	if instruction == "" {
		return domain.ComposedPrompt{}, ErrEmptyEditInstruction
	}

	negatives := FormatNegativeItems(c.negativeItems(rc.NegativeItems))
	values := map[string]string{
		"edit_instruction": instruction,
	}
	return c.render(KeyFor(domain.OperationInpaint, rc.HasReference), values, negatives, rc.AspectRatio)
}

// ComposePlanning は区画図から街区全体の建物を生成するプロンプトを合成します。
// 区画記述はテンプレートの解決より前に検証されます。
func (c *Composer) ComposePlanning(ac domain.AreaContext) (domain.ComposedPrompt, error) {
	lots, err := c.ValidateLots(ac.Lots)
	if err != nil {
		return domain.ComposedPrompt{}, err
	}

	ac = ac.WithDefaults()
	negatives := FormatNegativeItems(c.negativeItems(ac.NegativeItems))
	values := map[string]string{
		"lot_descriptions": FormatLots(lots),
		"camera_angle":     c.tables.Resolve(TableCameraAngle, ac.CameraAngle),
		"time_of_day":      c.tables.Resolve(TableTimeOfDay, ac.TimeOfDay),
		"style_keywords":   FormatStyleKeywords(ac.StyleKeywords),
		"aspect_ratio":     ac.AspectRatio,
		"negative_items":   negatives,
	}
	return c.render(KeyFor(domain.OperationPlanning, false), values, negatives, ac.AspectRatio)
}

// ComposePlanningDetail は生成済みの街区パースを精細化するプロンプトを合成します。
func (c *Composer) ComposePlanningDetail(ac domain.AreaContext) (domain.ComposedPrompt, error) {
	ac = ac.WithDefaults()
	camera := c.tables.Entry(TableCameraAngle, ac.CameraAngle)
	timeOfDay := c.tables.Entry(TableTimeOfDay, ac.TimeOfDay)
	tier := ac.QualityTier
	if _, ok := c.tables.QualityTiers.Entries[tier]; !ok {
		tier = c.tables.QualityTiers.Default
	}

	negatives := FormatNegativeItems(c.negativeItems(ac.NegativeItems))
	values := map[string]string{
		"camera_angle":      camera.Phrase,
		"time_of_day":       timeOfDay.Phrase,
		"weather":           c.tables.Resolve(TableWeather, ac.Weather),
		"quality_tier":      c.tables.Resolve(TableQualityTier, tier),
		"quality_effects":   FormatQualityEffects(c.tables.EffectCatalog, ac.QualityEffects),
		"interior_lighting": InteriorLightingNarrative(timeOfDay.Category, tier),
		"rooftop_details":   RooftopNarrative(camera.Aerial, tier),
		"style_keywords":    FormatStyleKeywords(ac.StyleKeywords),
		"aspect_ratio":      ac.AspectRatio,
		"negative_items":    negatives,
	}
	return c.render(KeyFor(domain.OperationPlanningDetail, false), values, negatives, ac.AspectRatio)
}

func (c *Composer) render(key TemplateKey, values map[string]string, negatives, aspectRatio string) (domain.ComposedPrompt, error) {
	tmpl := c.catalog.MustGet(key)
	prompt, err := tmpl.Render(values)
	if err != nil {
		return domain.ComposedPrompt{}, err
	}

	slog.Debug("プロンプトを合成しました", "template", tmpl.Name(), "length", len(prompt))

	return domain.ComposedPrompt{
		Operation:       key.Operation,
		Template:        tmpl.Name(),
		Prompt:          prompt,
		NegativeSummary: negatives,
		AspectRatio:     aspectRatio,
	}, nil
}

// negativeItems は上書き指定がなければシステム既定のネガティブ項目を返します。
func (c *Composer) negativeItems(override []string) []string {
	if override == nil {
		return c.tables.DefaultNegativeItems()
	}
	return override
}

// lotSet は区画記述リスト全体の検証ルールを保持します。
type lotSet struct {
	Lots domain.Lots `json:"lots" validate:"required,min=1,dive"`
}

func newLotValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateLots は区画記述を正規化したうえで検証し、正規化後のリストを返します。
// 問題があれば、見つかった全ての問題を MalformedLotsError として返します。
func (c *Composer) ValidateLots(lots []domain.LotDescription) (domain.Lots, error) {
	normalized := domain.Lots(lots).Normalized()

	var problems []LotProblem
	if err := c.validate.Struct(lotSet{Lots: normalized}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("区画記述の検証に失敗しました: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, lotProblem(fe))
		}
	}
	if dups := normalized.DuplicateNumbers(); len(dups) > 0 {
		problems = append(problems, LotProblem{
			Index:  -1,
			Field:  "lot_number",
			Reason: "区画番号が重複しています: " + strings.Join(dups, ", "),
		})
	}

	if len(problems) > 0 {
		return nil, &MalformedLotsError{Problems: problems}
	}
	return normalized, nil
}

func lotProblem(fe validator.FieldError) LotProblem {
	if fe.Field() == "lots" {
		return LotProblem{Index: -1, Field: "lots", Reason: "少なくとも1件の区画記述が必要です"}
	}
	return LotProblem{
		Index:  namespaceIndex(fe.Namespace()),
		Field:  fe.Field(),
		Reason: "必須項目です",
	}
}

// namespaceIndex は "lotSet.lots[2].description" のような名前空間からインデックスを取り出します。
func namespaceIndex(ns string) int {
	_, rest, ok := strings.Cut(ns, "[")
	if !ok {
		return -1
	}
	num, _, ok := strings.Cut(rest, "]")
	if !ok {
		return -1
	}
	i, err := strconv.Atoi(num)
	if err != nil {
		return -1
	}
	return i
}
