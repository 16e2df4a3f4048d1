// Package translation は翻訳ステップが出力した構造化レコードを検証します。
package translation

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// RequiredFields は合成に必要な翻訳済みレコードのフィールドです。エラーではこの順に報告されます。
var RequiredFields = []string{
	"building_type",
	"facade_style",
	"critical_elements",
	"materials_precise",
	"environment",
	"technical_specs",
}

// MaterialRetentionRatio を下回る素材数になった翻訳は情報欠落の可能性があります。
const MaterialRetentionRatio = 0.8

const materialsField = "materials_precise"

// ErrMissingRequiredField は翻訳済みレコードに必須フィールドが欠けていることを示します。
var ErrMissingRequiredField = errors.New("翻訳結果に必須フィールドがありません")

// MissingFieldsError は欠けている全てのフィールド名を保持します。
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: [%s]", ErrMissingRequiredField.Error(), strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// MaterialLoss は翻訳で素材が失われた可能性を示す警告です。エラーではありません。
type MaterialLoss struct {
	Original   int `json:"original"`
	Translated int `json:"translated"`
}

// Lost は失われた素材の数です。
func (m MaterialLoss) Lost() int {
	return m.Original - m.Translated
}

// Report は検証結果です。
type Report struct {
	MaterialLoss *MaterialLoss
}

// HasWarnings は警告があるかどうかを返します。
func (r Report) HasWarnings() bool {
	return r.MaterialLoss != nil
}

// Validate は翻訳済みレコードが必須フィールドを全て含むことを確認します。
// 素材数が元の 80% を下回った場合は Report に警告を記録し、ログに出力します。
func Validate(translated, original map[string]any) (Report, error) {
	var missing []string
	for _, field := range RequiredFields {
		if isFalsy(translated[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Report{}, &MissingFieldsError{Fields: missing}
	}

	var report Report
	origCount := countOf(original[materialsField])
	transCount := countOf(translated[materialsField])
	if float64(transCount) < float64(origCount)*MaterialRetentionRatio {
		report.MaterialLoss = &MaterialLoss{Original: origCount, Translated: transCount}
		slog.Warn("翻訳で素材が失われた可能性があります",
			"original", origCount,
			"translated", transCount,
			"lost", report.MaterialLoss.Lost())
	}
	return report, nil
}

// isFalsy は値が存在しないか、空または偽であるかを返します。
func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// countOf は値がリストであればその長さを、そうでなければ 0 を返します。
func countOf(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len()
	}
	return 0
}
