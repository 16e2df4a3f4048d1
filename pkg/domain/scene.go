package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultFloorCount は floor_count が省略された場合の階数です。
const DefaultFloorCount = 3

// SceneDescription は翻訳ステップが出力する、英語に正規化された建物の構造化記述です。
type SceneDescription struct {
	BuildingType     string            `json:"building_type"`
	FacadeStyle      string            `json:"facade_style"`
	FloorCount       FloorCount        `json:"floor_count"`
	FloorDetails     string            `json:"floor_details,omitempty"` // 指定があれば HasMezzanine より優先されます
	HasMezzanine     bool              `json:"has_mezzanine"`
	MaterialsPrecise []Material        `json:"materials_precise"`
	Environment      []EnvironmentItem `json:"environment"`
	TechnicalSpecs   TechnicalSpecs    `json:"technical_specs"`
}

// Material は素材の種類と説明の組です。
type Material struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// EnvironmentItem は周辺環境（人物、車両、植栽など）の要素です。
type EnvironmentItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TechnicalSpecs は撮影条件の任意指定です。空文字の項目は既定値で補われます。
type TechnicalSpecs struct {
	Camera      string `json:"camera,omitempty"`
	Lens        string `json:"lens,omitempty"`
	Lighting    string `json:"lighting,omitempty"`
	Perspective string `json:"perspective,omitempty"`
}

// ParseScene は JSON バイト列から SceneDescription をデコードします。
func ParseScene(data []byte) (SceneDescription, error) {
	var scene SceneDescription
	if err := json.Unmarshal(data, &scene); err != nil {
		return SceneDescription{}, fmt.Errorf("シーン記述のJSONパースに失敗しました: %w", err)
	}
	return scene, nil
}

// Floors は階数を返します。未指定の場合は DefaultFloorCount を返します。
func (s SceneDescription) Floors() FloorCount {
	if s.FloorCount.IsZero() {
		return Floors(DefaultFloorCount)
	}
	return s.FloorCount
}

// FloorCount は階数を表します。
// 正の整数か、旧形式から引き継いだ表示用の文字列のどちらか一方を保持します。
type FloorCount struct {
	n   int
	raw string
}

// Floors は整数の階数を生成します。正でない値は表示用の文字列として保持されます。
func Floors(n int) FloorCount {
	if n <= 0 {
		return FloorCount{raw: strconv.Itoa(n)}
	}
	return FloorCount{n: n}
}

// LegacyFloors は旧形式（"3 floors + attic" など）の文字列階数を生成します。
func LegacyFloors(s string) FloorCount {
	return FloorCount{raw: s}
}

// Int は整数の階数を返します。表示用文字列の場合は false を返します。
func (f FloorCount) Int() (int, bool) {
	return f.n, f.n > 0
}

// IsZero は階数が指定されていないかどうかを返します。
func (f FloorCount) IsZero() bool {
	return f.n == 0 && f.raw == ""
}

// String は階数の表示用文字列を返します。
func (f FloorCount) String() string {
	if f.n > 0 {
		return strconv.Itoa(f.n)
	}
	return f.raw
}

// UnmarshalJSON は数値と文字列の両方を受け付けます。
// 整数でない数値や 0 以下の整数は、そのままの表記で表示用文字列として保持します。
func (f *FloorCount) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		*f = FloorCount{}
		return nil
	}

	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("floor_count の文字列デコードに失敗しました: %w", err)
		}
		*f = LegacyFloors(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		// bool などの想定外の型も表示用文字列として扱います
		*f = LegacyFloors(text)
		return nil
	}
	if n, err := strconv.Atoi(num.String()); err == nil {
		*f = Floors(n)
		return nil
	}
	*f = LegacyFloors(num.String())
	return nil
}

// MarshalJSON は整数なら数値、表示用文字列なら文字列として出力します。
func (f FloorCount) MarshalJSON() ([]byte, error) {
	if f.n > 0 {
		return []byte(strconv.Itoa(f.n)), nil
	}
	if f.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(f.raw)
}
