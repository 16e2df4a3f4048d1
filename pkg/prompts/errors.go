package prompts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedPlaceholder はテンプレートのプレースホルダーに値が与えられなかったことを示します。
	// テンプレートとフォーマッタの不整合を意味する不具合であり、入力の誤りではありません。
	ErrUnresolvedPlaceholder = errors.New("未解決のプレースホルダーがあります")

	// ErrMalformedLots は区画記述のリストが不正であることを示します。
	ErrMalformedLots = errors.New("区画記述が不正です")

	// ErrUnknownOperation はサポートされていない操作が要求されたことを示します。
	ErrUnknownOperation = errors.New("不明な操作です")
)

// LotProblem は1つの区画記述に対する問題です。
type LotProblem struct {
	Index  int    // 入力順の 0 始まりのインデックス。リスト全体の問題では -1
	Field  string // "lot_number", "description" または "lots"
	Reason string
}

func (p LotProblem) String() string {
	if p.Index < 0 {
		return fmt.Sprintf("%s: %s", p.Field, p.Reason)
	}
	return fmt.Sprintf("lots[%d].%s: %s", p.Index, p.Field, p.Reason)
}

// MalformedLotsError は区画記述の検証で見つかった全ての問題を保持します。
type MalformedLotsError struct {
	Problems []LotProblem
}

func (e *MalformedLotsError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s: %s", ErrMalformedLots.Error(), strings.Join(parts, "; "))
}

// Is により errors.Is(err, ErrMalformedLots) が成立します。
func (e *MalformedLotsError) Is(target error) bool {
	return target == ErrMalformedLots
}
