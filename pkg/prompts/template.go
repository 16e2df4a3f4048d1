package prompts

import (
	"fmt"
	"strings"
)

// segment はテンプレートを構成する要素で、リテラル文字列かプレースホルダー名のどちらかです。
type segment struct {
	literal     string
	placeholder string
}

// Template は解析済みのプロンプトテンプレートです。
// `{name}` 形式のプレースホルダーとリテラル文字列の順序付きリストとして保持します。
type Template struct {
	name     string
	segments []segment
}

// ParseTemplate はテンプレート文字列を解析します。
// 識別子として解釈できない波括弧はリテラルとして扱います。
func ParseTemplate(name, text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("プロンプトテンプレート '%s' の読み込みに失敗しました: 内容が空です", name)
	}

	var segments []segment
	var lit strings.Builder
	for i := 0; i < len(text); {
		if text[i] == '{' {
			if end := placeholderEnd(text, i+1); end > 0 {
				if lit.Len() > 0 {
					segments = append(segments, segment{literal: lit.String()})
					lit.Reset()
				}
				segments = append(segments, segment{placeholder: text[i+1 : end]})
				i = end + 1
				continue
			}
		}
		lit.WriteByte(text[i])
		i++
	}
	if lit.Len() > 0 {
		segments = append(segments, segment{literal: lit.String()})
	}

	return &Template{name: name, segments: segments}, nil
}

// placeholderEnd は start から始まる識別子の直後にある '}' の位置を返します。
// 識別子として成立しない場合は -1 を返します。
func placeholderEnd(text string, start int) int {
	for j := start; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '}':
			if j == start {
				return -1
			}
			return j
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9':
			if j == start {
				return -1
			}
		default:
			return -1
		}
	}
	return -1
}

// Name はテンプレートの識別子を返します。
func (t *Template) Name() string {
	return t.name
}

// Placeholders はテンプレートに現れるプレースホルダー名を、初出順に重複なく返します。
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range t.segments {
		if s.placeholder == "" || seen[s.placeholder] {
			continue
		}
		seen[s.placeholder] = true
		names = append(names, s.placeholder)
	}
	return names
}

// Render は全てのプレースホルダーを values の値で置き換えます。
// 値のないプレースホルダーが1つでもあれば ErrUnresolvedPlaceholder を返します。
// 値に含まれるプレースホルダー形式のトークンは `(name)` に書き換えるため、出力に `{name}` は残りません。
func (t *Template) Render(values map[string]string) (string, error) {
	var missing []string
	for _, name := range t.Placeholders() {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("テンプレート '%s': %w: %s", t.name, ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}

	var sb strings.Builder
	for _, s := range t.segments {
		if s.placeholder != "" {
			sb.WriteString(neutralizePlaceholders(values[s.placeholder]))
			continue
		}
		sb.WriteString(s.literal)
	}
	return sb.String(), nil
}

// neutralizePlaceholders は値の中の `{name}` 形式のトークンを `(name)` に置き換えます。
// 識別子として成立しない波括弧はそのまま残します。
func neutralizePlaceholders(value string) string {
	if !strings.Contains(value, "{") {
		return value
	}
	var sb strings.Builder
	for i := 0; i < len(value); {
		if value[i] == '{' {
			if end := placeholderEnd(value, i+1); end > 0 {
				sb.WriteByte('(')
				sb.WriteString(value[i+1 : end])
				sb.WriteByte(')')
				i = end + 1
				continue
			}
		}
		sb.WriteByte(value[i])
		i++
	}
	return sb.String()
}
