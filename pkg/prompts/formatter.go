package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

const (
	maxMaterials              = 3
	maxMaterialDescriptionLen = 50

	fallbackMaterials      = "context-appropriate materials"
	fallbackEnvironment    = "urban context"
	fallbackQualityEffects = "standard photorealistic rendering"
	fallbackStyleKeywords  = "None specified - use professional architectural visualization standards"

	mezzanineSuffix = " plus one mezzanine/loft level"
)

// 撮影条件の既定値です。
const (
	DefaultCamera      = "Professional DSLR (Canon 5D Mark IV equivalent)"
	DefaultLens        = "24mm wide-angle lens"
	DefaultLighting    = "natural daylight, golden hour"
	DefaultPerspective = "Two-point perspective"

	defaultBuildingType = "building"
	defaultFacadeStyle  = "modern architecture"
)

// FormatFloorCount は階数を "EXACTLY 3 floors" の形式に整形します。
// floor_details があれば括弧書きで付け加え、なければ中二階の有無を反映します。
func FormatFloorCount(scene domain.SceneDescription) string {
	floors := scene.Floors()
	n, ok := floors.Int()
	details := strings.TrimSpace(scene.FloorDetails)
	if !ok {
		// 旧形式の文字列はそのまま出力するのだ
		out := floors.String()
		if details != "" {
			out += fmt.Sprintf(" (%s)", details)
		}
		return out
	}

	unit := "floors"
	if n == 1 {
		unit = "floor"
	}
	out := fmt.Sprintf("EXACTLY %d %s", n, unit)
	switch {
	case details != "":
		out += fmt.Sprintf(" (%s)", details)
	case scene.HasMezzanine:
		out += mezzanineSuffix
	}
	return out
}

// FormatMaterials は先頭3件の素材のうち、種類のあるものを "type - description" で連結します。
// 4件目以降の素材は、先頭3件に種類のない素材があっても使いません。
func FormatMaterials(materials []domain.Material) string {
	if len(materials) > maxMaterials {
		materials = materials[:maxMaterials]
	}
	var parts []string
	for _, m := range materials {
		if m.Type == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s - %s", m.Type, truncateRunes(m.Description, maxMaterialDescriptionLen)))
	}
	if len(parts) == 0 {
		return fallbackMaterials
	}
	return strings.Join(parts, ", ")
}

// FormatEnvironment は種類と説明の両方がある周辺要素を "type: description" で連結します。
func FormatEnvironment(items []domain.EnvironmentItem) string {
	var parts []string
	for _, e := range items {
		if e.Type == "" || e.Description == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.Type, e.Description))
	}
	if len(parts) == 0 {
		return fallbackEnvironment
	}
	return strings.Join(parts, ". ")
}

// FormatNegativeItems はネガティブ項目をカンマ区切りで連結します。
func FormatNegativeItems(items []string) string {
	return strings.Join(items, ", ")
}

// FormatQualityEffects は有効な品質効果を箇条書きの行にします。
// flags に含まれない効果は有効として扱います。
func FormatQualityEffects(catalog []QualityEffect, flags map[string]bool) string {
	var lines []string
	for _, eff := range catalog {
		if enabled, ok := flags[eff.Key]; ok && !enabled {
			continue
		}
		lines = append(lines, bullet(eff.Phrase))
	}
	if len(lines) == 0 {
		return bullet(fallbackQualityEffects)
	}
	return strings.Join(lines, "\n")
}

func bullet(s string) string {
	return "   ✓ " + s
}

// FormatStyleKeywords は空白のみのキーワードを既定の文言に置き換えます。
func FormatStyleKeywords(keywords string) string {
	if strings.TrimSpace(keywords) == "" {
		return fallbackStyleKeywords
	}
	return keywords
}

// FormatLots は区画記述を入力順に1行ずつ "LOT n: description" の形式にします。
func FormatLots(lots []domain.LotDescription) string {
	lines := make([]string, len(lots))
	for i, l := range lots {
		lines[i] = fmt.Sprintf("   LOT %s: %s", l.LotNumber, l.Description)
	}
	return strings.Join(lines, "\n")
}

// FormatUserDescription は建物種別とファサードのスタイルを連結します。
func FormatUserDescription(scene domain.SceneDescription) string {
	return fmt.Sprintf("%s, %s",
		orDefault(scene.BuildingType, defaultBuildingType),
		orDefault(scene.FacadeStyle, defaultFacadeStyle))
}

// FormatSketchAdherence はスケッチ忠実度を小数点以下2桁で表示します。
func FormatSketchAdherence(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// ResolveTechnicalSpecs は未指定の撮影条件を既定値で補います。
func ResolveTechnicalSpecs(ts domain.TechnicalSpecs) domain.TechnicalSpecs {
	return domain.TechnicalSpecs{
		Camera:      orDefault(ts.Camera, DefaultCamera),
		Lens:        orDefault(ts.Lens, DefaultLens),
		Lighting:    orDefault(ts.Lighting, DefaultLighting),
		Perspective: orDefault(ts.Perspective, DefaultPerspective),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
