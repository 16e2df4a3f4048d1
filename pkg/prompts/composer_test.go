package prompts

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

var placeholderToken = regexp.MustCompile(`\{[a-z][a-z0-9_]*\}`)

func townhouse() domain.SceneDescription {
	return domain.SceneDescription{
		BuildingType:     "townhouse",
		FacadeStyle:      "minimalist",
		FloorCount:       domain.Floors(3),
		HasMezzanine:     true,
		MaterialsPrecise: []domain.Material{{Type: "wall", Description: "light grey concrete"}},
		Environment:      []domain.EnvironmentItem{},
		TechnicalSpecs:   domain.TechnicalSpecs{},
	}
}

func sampleLots() []domain.LotDescription {
	return []domain.LotDescription{
		{LotNumber: "1", Description: "4-storey brick apartment block"},
		{LotNumber: "2", Description: "glass office tower, 12 floors"},
	}
}

func TestComposer_ComposeRender(t *testing.T) {
	c := NewComposer(nil, nil)

	t.Run("タウンハウスの例なのだ", func(t *testing.T) {
		got, err := c.ComposeRender(domain.RenderRequestContext{HasReference: false, AspectRatio: "16:9"}, townhouse())
		require.NoError(t, err)

		assert.Contains(t, got.Prompt, "EXACTLY 3 floors plus one mezzanine/loft level")
		assert.Contains(t, got.Prompt, "16:9")
		assert.Empty(t, placeholderToken.FindAllString(got.Prompt, -1))
		assert.Equal(t, "render_without_reference", got.Template)
		assert.Equal(t, domain.OperationRender, got.Operation)
		assert.Equal(t, "16:9", got.AspectRatio)
	})

	t.Run("既定値が反映されるのだ", func(t *testing.T) {
		got, err := c.ComposeRender(domain.RenderRequestContext{}, domain.SceneDescription{})
		require.NoError(t, err)

		lt := c.Tables()
		assert.Contains(t, got.Prompt, "SKETCH ADHERENCE LEVEL: 0.95")
		assert.Contains(t, got.Prompt, "building, modern architecture")
		assert.Contains(t, got.Prompt, lt.Resolve(TableViewpoint, domain.DefaultViewpoint))
		assert.Contains(t, got.Prompt, "Camera: "+DefaultCamera)
		assert.Contains(t, got.Prompt, "Materials: context-appropriate materials")
		assert.Contains(t, got.Prompt, "urban context")
		assert.Equal(t, strings.Join(lt.DefaultNegativeItems(), ", "), got.NegativeSummary)
		assert.Contains(t, got.Prompt, got.NegativeSummary)
	})

	t.Run("参照画像があればテンプレートが変わるのだ", func(t *testing.T) {
		got, err := c.ComposeRender(domain.RenderRequestContext{HasReference: true}, townhouse())
		require.NoError(t, err)
		assert.Equal(t, "render_with_reference", got.Template)
		assert.Contains(t, got.Prompt, "Style Reference")
	})

	t.Run("ネガティブ項目の上書きなのだ", func(t *testing.T) {
		got, err := c.ComposeRender(domain.RenderRequestContext{NegativeItems: []string{"people", "cars"}}, townhouse())
		require.NoError(t, err)
		assert.Equal(t, "people, cars", got.NegativeSummary)

		empty, err := c.ComposeRender(domain.RenderRequestContext{NegativeItems: []string{}}, townhouse())
		require.NoError(t, err)
		assert.Equal(t, "", empty.NegativeSummary)
	})

	t.Run("未知の視点は既定の視点と同じ出力なのだ", func(t *testing.T) {
		a, err := c.ComposeRender(domain.RenderRequestContext{Viewpoint: "main_facade"}, townhouse())
		require.NoError(t, err)
		b, err := c.ComposeRender(domain.RenderRequestContext{Viewpoint: "from_the_moon"}, townhouse())
		require.NoError(t, err)
		assert.Equal(t, a.Prompt, b.Prompt)
	})
}

func TestComposer_Deterministic(t *testing.T) {
	c := NewComposer(nil, nil)
	reqs := map[domain.Operation]domain.Request{
		domain.OperationRender:         {Context: domain.RenderRequestContext{HasReference: true}, Scene: townhouse()},
		domain.OperationInpaint:        {Context: domain.RenderRequestContext{EditInstruction: "replace the door with a glass door"}},
		domain.OperationPlanning:       {Area: domain.AreaContext{Lots: sampleLots(), StyleKeywords: "scandinavian"}},
		domain.OperationPlanningDetail: {Area: domain.AreaContext{QualityTier: "ultra", QualityEffects: map[string]bool{"bloom": false, "depth_of_field": false}}},
	}

	for _, op := range domain.Operations() {
		t.Run(string(op), func(t *testing.T) {
			first, err := c.Compose(op, reqs[op])
			require.NoError(t, err)
			for range 5 {
				again, err := NewComposer(nil, nil).Compose(op, reqs[op])
				require.NoError(t, err)
				if diff := cmp.Diff(first, again); diff != "" {
					t.Fatalf("合成結果が一致しないのだ (-first +again):\n%s", diff)
				}
			}
			assert.Empty(t, placeholderToken.FindAllString(first.Prompt, -1))
		})
	}

	t.Run("未知の操作なのだ", func(t *testing.T) {
		_, err := c.Compose("upscale", domain.Request{})
		assert.True(t, errors.Is(err, ErrUnknownOperation))
	})
}

func TestComposer_ComposeInpaint(t *testing.T) {
	c := NewComposer(nil, nil)

	t.Run("編集指示が埋め込まれるのだ", func(t *testing.T) {
		got, err := c.ComposeInpaint(domain.RenderRequestContext{EditInstruction: "  add a balcony  ", HasReference: true})
		require.NoError(t, err)
		assert.Equal(t, "inpaint_with_reference", got.Template)
		assert.Contains(t, got.Prompt, "   add a balcony\n")
	})

	t.Run("空の編集指示はエラーなのだ", func(t *testing.T) {
		_, err := c.ComposeInpaint(domain.RenderRequestContext{EditInstruction: " "})
		assert.ErrorIs(t, err, ErrEmptyEditInstruction)
	})
}

func TestComposer_ComposePlanning(t *testing.T) {
	c := NewComposer(nil, nil)

	t.Run("区画が入力順に並ぶのだ", func(t *testing.T) {
		got, err := c.ComposePlanning(domain.AreaContext{Lots: sampleLots()})
		require.NoError(t, err)

		first := strings.Index(got.Prompt, "   LOT 1: 4-storey brick apartment block")
		second := strings.Index(got.Prompt, "   LOT 2: glass office tower, 12 floors")
		assert.GreaterOrEqual(t, first, 0)
		assert.Greater(t, second, first)
		assert.Contains(t, got.Prompt, c.Tables().Resolve(TableCameraAngle, domain.DefaultCameraAngle))
		assert.Contains(t, got.Prompt, c.Tables().Resolve(TableTimeOfDay, domain.DefaultTimeOfDay))
		assert.Contains(t, got.Prompt, fallbackStyleKeywords)
		assert.Equal(t, "planning", got.Template)
	})

	t.Run("不正な区画記述は解決前に失敗するのだ", func(t *testing.T) {
		tests := []struct {
			name     string
			lots     []domain.LotDescription
			problems []LotProblem
		}{
			{
				name:     "nil",
				lots:     nil,
				problems: []LotProblem{{Index: -1, Field: "lots", Reason: "少なくとも1件の区画記述が必要です"}},
			},
			{
				name:     "空",
				lots:     []domain.LotDescription{},
				problems: []LotProblem{{Index: -1, Field: "lots", Reason: "少なくとも1件の区画記述が必要です"}},
			},
			{
				name: "欠けた項目",
				lots: []domain.LotDescription{{LotNumber: "1", Description: "ok"}, {LotNumber: " ", Description: "x"}, {LotNumber: "3"}},
				problems: []LotProblem{
					{Index: 1, Field: "lot_number", Reason: "必須項目です"},
					{Index: 2, Field: "description", Reason: "必須項目です"},
				},
			},
			{
				name:     "重複",
				lots:     []domain.LotDescription{{LotNumber: "1", Description: "a"}, {LotNumber: "1 ", Description: "b"}},
				problems: []LotProblem{{Index: -1, Field: "lot_number", Reason: "区画番号が重複しています: 1"}},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := c.ComposePlanning(domain.AreaContext{Lots: tt.lots})
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedLots)
				assert.NotErrorIs(t, err, ErrUnresolvedPlaceholder)

				var mle *MalformedLotsError
				require.ErrorAs(t, err, &mle)
				if diff := cmp.Diff(tt.problems, mle.Problems); diff != "" {
					t.Errorf("問題の一覧が違うのだ (-want +got):\n%s", diff)
				}
			})
		}
	})
}

func TestComposer_ComposePlanningDetail(t *testing.T) {
	c := NewComposer(nil, nil)

	t.Run("既定値なのだ", func(t *testing.T) {
		got, err := c.ComposePlanningDetail(domain.AreaContext{})
		require.NoError(t, err)
		lt := c.Tables()
		assert.Contains(t, got.Prompt, lt.Resolve(TableWeather, "clear"))
		assert.Contains(t, got.Prompt, lt.Resolve(TableQualityTier, "standard"))
		assert.Contains(t, got.Prompt, InteriorLightingNarrative(CategoryGolden, "standard"))
		assert.Contains(t, got.Prompt, RooftopNarrative(true, "standard"))
		assert.Contains(t, got.Prompt, FormatQualityEffects(lt.QualityEffects(), nil))
	})

	t.Run("夜のultraなのだ", func(t *testing.T) {
		got, err := c.ComposePlanningDetail(domain.AreaContext{TimeOfDay: "night", CameraAngle: "isometric", QualityTier: QualityTierUltra})
		require.NoError(t, err)
		assert.Contains(t, got.Prompt, InteriorLightingNarrative(CategoryNight, QualityTierUltra))
		assert.Contains(t, got.Prompt, RooftopNarrative(false, QualityTierUltra))
	})

	t.Run("未知のティアは既定扱いなのだ", func(t *testing.T) {
		a, err := c.ComposePlanningDetail(domain.AreaContext{QualityTier: "cinematic"})
		require.NoError(t, err)
		b, err := c.ComposePlanningDetail(domain.AreaContext{QualityTier: "standard"})
		require.NoError(t, err)
		assert.Equal(t, a.Prompt, b.Prompt)
	})

	t.Run("全ての効果を無効にすると標準の1行なのだ", func(t *testing.T) {
		flags := map[string]bool{}
		for _, eff := range c.Tables().QualityEffects() {
			flags[eff.Key] = false
		}
		got, err := c.ComposePlanningDetail(domain.AreaContext{QualityEffects: flags})
		require.NoError(t, err)
		assert.Contains(t, got.Prompt, "   ✓ standard photorealistic rendering")
	})
}

func TestComposer_UnresolvedPlaceholder(t *testing.T) {
	tmpl, err := ParseTemplate("render_without_reference", "{floor_count} {unknown_slot}")
	require.NoError(t, err)
	catalog := &Catalog{templates: map[TemplateKey]*Template{KeyFor(domain.OperationRender, false): tmpl}}

	_, err = NewComposer(catalog, nil).ComposeRender(domain.RenderRequestContext{}, townhouse())
	assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)
	assert.Contains(t, err.Error(), "unknown_slot")
}

func TestComposer_ValuesWithPlaceholderTokens(t *testing.T) {
	c := NewComposer(nil, nil)
	scene := townhouse()
	scene.BuildingType = "{materials}"
	scene.FacadeStyle = "{facade_style} revival"

	out, err := c.ComposeRender(domain.RenderRequestContext{}.WithDefaults(), scene)
	require.NoError(t, err)
	assert.Empty(t, placeholderToken.FindAllString(out.Prompt, -1))
	assert.Contains(t, out.Prompt, "(materials)")
	assert.Contains(t, out.Prompt, "(facade_style) revival")
}
