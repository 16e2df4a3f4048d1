package parser

import "regexp"

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// LotRegex は "## Lot 3" で始まる区画の区切り行から区画番号をキャプチャします。
	// "## Lot 3: 説明" のようにコロンの後に続く文字列は2番目のグループで説明としてキャプチャします。
	LotRegex = regexp.MustCompile(`(?i)^##\s+lot\s+([^\s:]+)(?:\s*:\s*(.*))?`)

	// FieldRegex は "- key: value" 形式のフィールド行をキャプチャします。
	FieldRegex = regexp.MustCompile(`^\s*-\s*([a-zA-Z_]+):\s*(.+)`)
)
