package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

func TestFormatFloorCount(t *testing.T) {
	tests := []struct {
		name  string
		scene domain.SceneDescription
		want  string
	}{
		{name: "1階は単数形", scene: domain.SceneDescription{FloorCount: domain.Floors(1)}, want: "EXACTLY 1 floor"},
		{name: "複数階は接尾辞なし", scene: domain.SceneDescription{FloorCount: domain.Floors(4)}, want: "EXACTLY 4 floors"},
		{name: "未指定は3階", scene: domain.SceneDescription{}, want: "EXACTLY 3 floors"},
		{
			name:  "中二階",
			scene: domain.SceneDescription{FloorCount: domain.Floors(3), HasMezzanine: true},
			want:  "EXACTLY 3 floors plus one mezzanine/loft level",
		},
		{
			name:  "floor_detailsが中二階より優先",
			scene: domain.SceneDescription{FloorCount: domain.Floors(2), HasMezzanine: true, FloorDetails: "attic under gable roof"},
			want:  "EXACTLY 2 floors (attic under gable roof)",
		},
		{
			name:  "空白だけのfloor_detailsは無視して中二階を反映",
			scene: domain.SceneDescription{FloorCount: domain.Floors(3), HasMezzanine: true, FloorDetails: "   "},
			want:  "EXACTLY 3 floors plus one mezzanine/loft level",
		},
		{name: "空白だけのfloor_detailsは括弧を付けない", scene: domain.SceneDescription{FloorCount: domain.Floors(3), FloorDetails: " \t "}, want: "EXACTLY 3 floors"},
		{name: "旧形式はそのまま", scene: domain.SceneDescription{FloorCount: domain.LegacyFloors("3 floors + attic")}, want: "3 floors + attic"},
		{
			name:  "旧形式にもfloor_details",
			scene: domain.SceneDescription{FloorCount: domain.LegacyFloors("2.5"), FloorDetails: "split level", HasMezzanine: true},
			want:  "2.5 (split level)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatFloorCount(tt.scene)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, strings.Count(got, mezzanineSuffix), 1)
		})
	}
}

func TestFormatMaterials(t *testing.T) {
	t.Run("先頭3件までなのだ", func(t *testing.T) {
		materials := []domain.Material{
			{Type: "wall", Description: "concrete"},
			{Type: "roof", Description: "zinc"},
			{Type: "window", Description: "low-e glass"},
			{Type: "door", Description: "oak"},
		}
		got := FormatMaterials(materials)
		assert.Equal(t, "wall - concrete, roof - zinc, window - low-e glass", got)
		assert.Equal(t, 3, strings.Count(got, " - "))
	})

	t.Run("先頭3件を取ってから種類のない素材を除くのだ", func(t *testing.T) {
		materials := []domain.Material{
			{Type: "wall", Description: "concrete"},
			{Type: "", Description: "ignored"},
			{Type: "roof", Description: "zinc"},
			{Type: "window", Description: "glass"},
		}
		assert.Equal(t, "wall - concrete, roof - zinc", FormatMaterials(materials))
	})

	t.Run("先頭3件が全て種類なしなら既定の文言なのだ", func(t *testing.T) {
		materials := []domain.Material{
			{Description: "a"}, {Description: "b"}, {Description: "c"},
			{Type: "wall", Description: "concrete"},
		}
		assert.Equal(t, fallbackMaterials, FormatMaterials(materials))
	})

	t.Run("説明は50文字で切り詰めるのだ", func(t *testing.T) {
		long := strings.Repeat("あ", 60)
		got := FormatMaterials([]domain.Material{{Type: "wall", Description: long}})
		assert.Equal(t, "wall - "+strings.Repeat("あ", 50), got)
	})

	t.Run("空なら既定の文言なのだ", func(t *testing.T) {
		assert.Equal(t, "context-appropriate materials", FormatMaterials(nil))
		assert.Equal(t, "context-appropriate materials", FormatMaterials([]domain.Material{{Description: "no type"}}))
	})
}

func TestFormatEnvironment(t *testing.T) {
	t.Run("種類と説明の両方が必要なのだ", func(t *testing.T) {
		got := FormatEnvironment([]domain.EnvironmentItem{
			{Type: "people", Description: "two pedestrians"},
			{Type: "vehicles", Description: ""},
			{Type: "", Description: "orphan"},
			{Type: "vegetation", Description: "street trees"},
		})
		assert.Equal(t, "people: two pedestrians. vegetation: street trees", got)
	})

	t.Run("空なら既定の文言なのだ", func(t *testing.T) {
		assert.Equal(t, "urban context", FormatEnvironment(nil))
	})
}

func TestFormatQualityEffects(t *testing.T) {
	catalog := DefaultLookupTables().QualityEffects()

	t.Run("未指定の効果は全て有効なのだ", func(t *testing.T) {
		got := FormatQualityEffects(catalog, nil)
		assert.Len(t, strings.Split(got, "\n"), len(catalog))
	})

	t.Run("無効化した効果は出力されないのだ", func(t *testing.T) {
		got := FormatQualityEffects(catalog, map[string]bool{"bloom": false, "reflections": true})
		assert.Len(t, strings.Split(got, "\n"), len(catalog)-1)
		assert.NotContains(t, got, "bloom")
	})

	t.Run("全て無効なら標準の1行なのだ", func(t *testing.T) {
		flags := map[string]bool{}
		for _, eff := range catalog {
			flags[eff.Key] = false
		}
		assert.Equal(t, "   ✓ standard photorealistic rendering", FormatQualityEffects(catalog, flags))
	})
}

func TestFormatMisc(t *testing.T) {
	t.Run("スタイルキーワードが空白なら既定なのだ", func(t *testing.T) {
		assert.Equal(t, fallbackStyleKeywords, FormatStyleKeywords("  \t"))
		assert.Equal(t, "brutalist", FormatStyleKeywords("brutalist"))
	})

	t.Run("区画は入力順に1行ずつなのだ", func(t *testing.T) {
		got := FormatLots([]domain.LotDescription{{LotNumber: "2", Description: "park"}, {LotNumber: "1", Description: "school"}})
		assert.Equal(t, "   LOT 2: park\n   LOT 1: school", got)
	})

	t.Run("建物の説明は既定値で補うのだ", func(t *testing.T) {
		assert.Equal(t, "building, modern architecture", FormatUserDescription(domain.SceneDescription{}))
		assert.Equal(t, "villa, tropical", FormatUserDescription(domain.SceneDescription{BuildingType: "villa", FacadeStyle: "tropical"}))
	})

	t.Run("スケッチ忠実度は小数2桁なのだ", func(t *testing.T) {
		assert.Equal(t, "0.95", FormatSketchAdherence(0.95))
		assert.Equal(t, "0.50", FormatSketchAdherence(0.5))
	})

	t.Run("撮影条件の既定値なのだ", func(t *testing.T) {
		got := ResolveTechnicalSpecs(domain.TechnicalSpecs{Lens: "50mm"})
		assert.Equal(t, domain.TechnicalSpecs{
			Camera:      DefaultCamera,
			Lens:        "50mm",
			Lighting:    DefaultLighting,
			Perspective: DefaultPerspective,
		}, got)
	})
}

func TestNarratives(t *testing.T) {
	t.Run("夜ほど点灯する窓が多いのだ", func(t *testing.T) {
		assert.Contains(t, InteriorLightingNarrative(CategoryNight, "standard"), "70-80%")
		assert.Contains(t, InteriorLightingNarrative(CategoryEvening, "standard"), "40-60%")
		assert.Contains(t, InteriorLightingNarrative(CategoryGolden, "standard"), "10-20%")
		assert.Contains(t, InteriorLightingNarrative(CategoryDay, "standard"), "under 10%")
	})

	t.Run("ultraは描写を追加するのだ", func(t *testing.T) {
		base := InteriorLightingNarrative(CategoryNight, "high")
		ultra := InteriorLightingNarrative(CategoryNight, QualityTierUltra)
		assert.True(t, strings.HasPrefix(ultra, base))
		assert.Greater(t, len(ultra), len(base))

		assert.Greater(t, len(RooftopNarrative(true, QualityTierUltra)), len(RooftopNarrative(true, "standard")))
		assert.Greater(t, len(RooftopNarrative(false, QualityTierUltra)), len(RooftopNarrative(false, "standard")))
	})

	t.Run("空撮では屋上設備が必須なのだ", func(t *testing.T) {
		assert.Contains(t, RooftopNarrative(true, "standard"), "MANDATORY")
		assert.NotContains(t, RooftopNarrative(false, "standard"), "MANDATORY")
	})
}
