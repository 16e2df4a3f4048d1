// Package parser は人が書いた Markdown の区画シートを区画記述のリストに変換します。
package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

const (
	fieldKeyDescription = "description"
	fieldKeyCameraAngle = "camera_angle"
	fieldKeyTimeOfDay   = "time_of_day"
	fieldKeyStyle       = "style"
)

// ErrNoLots は区画シートに区画が1件もないことを示します。
var ErrNoLots = errors.New("有効な区画情報が見つかりませんでした")

// LotSheet は区画シートの解析結果です。
// 最初の区画より前に書かれたフィールドはシート全体の指定として扱います。
type LotSheet struct {
	Title         string
	CameraAngle   string
	TimeOfDay     string
	StyleKeywords string
	Lots          domain.Lots
}

// ApplyTo はシートの指定を AreaContext に反映したコピーを返します。
// AreaContext 側で指定済みの項目は上書きしません。
func (s *LotSheet) ApplyTo(ac domain.AreaContext) domain.AreaContext {
	ac.Lots = s.Lots
	if ac.CameraAngle == "" {
		ac.CameraAngle = s.CameraAngle
	}
	if ac.TimeOfDay == "" {
		ac.TimeOfDay = s.TimeOfDay
	}
	if ac.StyleKeywords == "" {
		ac.StyleKeywords = s.StyleKeywords
	}
	return ac
}

// Parser は区画シートを解析するためのインターフェースなのだ。
type Parser interface {
	Parse(input string) (*LotSheet, error)
}

// MarkdownParser は Markdown 形式の区画シートを解析する構造体です。
//
//	# 駅前再開発
//	- camera_angle: drone_45deg
//
//	## Lot 1
//	- description: 4-storey brick apartment block
//
//	## Lot 2
//	Glass office tower with a landscaped plaza.
type MarkdownParser struct {
}

// NewMarkdownParser は Parser を初期化するのだ。
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse は Markdown テキストを解析して LotSheet に変換します。
// 区画の説明は description フィールドと自由記述の段落を空白で連結したものです。
func (p *MarkdownParser) Parse(input string) (*LotSheet, error) {
	sheet := &LotSheet{}
	var current *lotBuilder

	addPreviousLot := func() {
		if current != nil {
			sheet.Lots = append(sheet.Lots, current.build())
		}
	}

	for _, line := range strings.Split(input, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}

		if m := LotRegex.FindStringSubmatch(trimmedLine); m != nil {
			addPreviousLot()
			current = &lotBuilder{number: m[1], heading: strings.TrimSpace(m[2])}
			continue
		}

		if m := TitleRegex.FindStringSubmatch(trimmedLine); m != nil && !strings.HasPrefix(trimmedLine, "##") {
			sheet.Title = strings.TrimSpace(m[1])
			continue
		}

		if m := FieldRegex.FindStringSubmatch(trimmedLine); m != nil {
			key, val := strings.ToLower(m[1]), strings.TrimSpace(m[2])
			if current != nil {
				current.field(key, val)
			} else {
				sheet.field(key, val)
			}
			continue
		}

		// 区画内の自由記述は説明として連結するのだ
		if current != nil && !strings.HasPrefix(trimmedLine, "#") {
			current.paragraphs = append(current.paragraphs, trimmedLine)
		}
	}
	addPreviousLot()

	if len(sheet.Lots) == 0 {
		return nil, ErrNoLots
	}

	slog.Debug("区画シートを解析しました", "title", sheet.Title, "lots", len(sheet.Lots))
	return sheet, nil
}

func (s *LotSheet) field(key, val string) {
	switch key {
	case fieldKeyCameraAngle:
		s.CameraAngle = val
	case fieldKeyTimeOfDay:
		s.TimeOfDay = val
	case fieldKeyStyle:
		s.StyleKeywords = val
	default:
		slog.Debug("Markdown内に未知のフィールドキーが見つかりました", "key", key)
	}
}

type lotBuilder struct {
	number      string
	heading     string
	description string
	paragraphs  []string
}

func (b *lotBuilder) field(key, val string) {
	switch key {
	case fieldKeyDescription:
		b.description = val
	default:
		slog.Debug("Markdown内に未知のフィールドキーが見つかりました", "key", key, "lot", b.number)
	}
}

// build は説明が空の区画もそのまま返します。欠落は合成時の検証で報告されます。
func (b *lotBuilder) build() domain.LotDescription {
	parts := make([]string, 0, len(b.paragraphs)+2)
	// 見出しの説明、description フィールド、自由記述の順に連結するのだ
	if b.heading != "" {
		parts = append(parts, b.heading)
	}
	if b.description != "" {
		parts = append(parts, b.description)
	}
	parts = append(parts, b.paragraphs...)
	return domain.LotDescription{
		LotNumber:   b.number,
		Description: strings.Join(parts, " "),
	}
}
