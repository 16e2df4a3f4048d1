package prompts

import (
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shouni/go-s2r-kit/pkg/domain"
)

//go:embed templates/*.md
var templateFS embed.FS

// TemplateKey はテンプレートを一意に特定するキーです。
// エリアモードは参照画像の有無でテンプレートを切り替えないため、Reference は常に false に正規化されます。
type TemplateKey struct {
	Operation domain.Operation
	Reference bool
}

// KeyFor は操作と参照画像の有無からテンプレートキーを生成します。
func KeyFor(op domain.Operation, hasReference bool) TemplateKey {
	if op.IsAreaWide() {
		hasReference = false
	}
	return TemplateKey{Operation: op, Reference: hasReference}
}

func (k TemplateKey) String() string {
	if k.Operation.IsAreaWide() {
		return string(k.Operation)
	}
	if k.Reference {
		return string(k.Operation) + "_with_reference"
	}
	return string(k.Operation) + "_without_reference"
}

// templateFiles はテンプレートキーと埋め込みファイル名を紐づけるマップなのだ。
var templateFiles = map[TemplateKey]string{
	{domain.OperationRender, true}:          "templates/render_with_reference.md",
	{domain.OperationRender, false}:         "templates/render_without_reference.md",
	{domain.OperationInpaint, true}:         "templates/inpaint_with_reference.md",
	{domain.OperationInpaint, false}:        "templates/inpaint_without_reference.md",
	{domain.OperationPlanning, false}:       "templates/planning.md",
	{domain.OperationPlanningDetail, false}: "templates/planning_detail.md",
}

// Catalog は解析済みテンプレートの不変なコレクションです。
type Catalog struct {
	templates map[TemplateKey]*Template
}

var defaultCatalog = mustLoadCatalog()

// DefaultCatalog は埋め込みテンプレートから構築されたカタログを返します。
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog は埋め込みテンプレートを全て解析してカタログを構築します。
func LoadCatalog() (*Catalog, error) {
	templates := make(map[TemplateKey]*Template, len(templateFiles))
	for key, file := range templateFiles {
		content, err := templateFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: %w", file, err)
		}
		tmpl, err := ParseTemplate(key.String(), strings.TrimSpace(string(content))+"\n")
		if err != nil {
			return nil, err
		}
		templates[key] = tmpl
	}
	return &Catalog{templates: templates}, nil
}

func mustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Get はキーに対応するテンプレートを返します。
func (c *Catalog) Get(key TemplateKey) (*Template, bool) {
	t, ok := c.templates[key]
	return t, ok
}

// MustGet はキーに対応するテンプレートを返します。
// 未登録のキーはプログラムの誤りであるため panic します。
func (c *Catalog) MustGet(key TemplateKey) *Template {
	t, ok := c.templates[key]
	if !ok {
		panic(fmt.Sprintf("テンプレートが登録されていません: '%s'", key))
	}
	return t
}

// Keys は登録されている全てのキーを名前順に返します。
func (c *Catalog) Keys() []TemplateKey {
	return slices.SortedFunc(maps.Keys(c.templates), func(a, b TemplateKey) int {
		return strings.Compare(a.String(), b.String())
	})
}
