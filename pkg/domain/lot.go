package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LotDescription はエリア生成モードにおける1区画の記述です。
type LotDescription struct {
	LotNumber   string `json:"lot_number" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Lots は区画記述の順序付きリストです。
type Lots []LotDescription

// UnmarshalJSON は lot_number として文字列と数値の両方を受け付けます。
func (l *LotDescription) UnmarshalJSON(data []byte) error {
	var raw struct {
		LotNumber   json.RawMessage `json:"lot_number"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("区画記述のデコードに失敗しました: %w", err)
	}

	l.Description = raw.Description
	l.LotNumber = ""

	num := bytes.TrimSpace(raw.LotNumber)
	if len(num) == 0 || string(num) == "null" {
		return nil
	}
	if num[0] == '"' {
		return json.Unmarshal(num, &l.LotNumber)
	}

	var n json.Number
	if err := json.Unmarshal(num, &n); err != nil {
		return fmt.Errorf("lot_number は文字列か数値である必要があります: %s", num)
	}
	l.LotNumber = n.String()
	return nil
}

// Normalized は前後の空白を除去したコピーを返します。
func (l LotDescription) Normalized() LotDescription {
	return LotDescription{
		LotNumber:   strings.TrimSpace(l.LotNumber),
		Description: strings.TrimSpace(l.Description),
	}
}

// Normalized はすべての区画記述を正規化したコピーを返します。
func (ls Lots) Normalized() Lots {
	if ls == nil {
		return nil
	}
	out := make(Lots, len(ls))
	for i, l := range ls {
		out[i] = l.Normalized()
	}
	return out
}

// DuplicateNumbers は2回以上現れる区画番号を、最初に重複した順に返します。
func (ls Lots) DuplicateNumbers() []string {
	seen := make(map[string]int, len(ls))
	var dups []string
	for _, l := range ls {
		if l.LotNumber == "" {
			continue
		}
		seen[l.LotNumber]++
		if seen[l.LotNumber] == 2 {
			dups = append(dups, l.LotNumber)
		}
	}
	return dups
}

// ParseLots は JSON 配列から区画記述のリストをデコードします。
func ParseLots(data []byte) (Lots, error) {
	var lots Lots
	if err := json.Unmarshal(data, &lots); err != nil {
		return nil, fmt.Errorf("区画記述のJSONパースに失敗しました: %w", err)
	}
	return lots, nil
}
