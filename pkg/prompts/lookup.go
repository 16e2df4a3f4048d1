package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed lookup_tables.yaml
var defaultLookupYAML []byte

// TableName はルックアップテーブルの識別子です。
type TableName string

const (
	TableViewpoint   TableName = "viewpoints"
	TableCameraAngle TableName = "camera_angles"
	TableTimeOfDay   TableName = "times_of_day"
	TableWeather     TableName = "weather"
	TableQualityTier TableName = "quality_tiers"
)

// 時間帯の照明カテゴリです。
const (
	CategoryDay     = "day"
	CategoryGolden  = "golden"
	CategoryEvening = "evening"
	CategoryNight   = "night"
)

var lightingCategories = []string{CategoryDay, CategoryGolden, CategoryEvening, CategoryNight}

// Entry はテーブルの1項目です。
type Entry struct {
	Phrase   string `yaml:"phrase"`
	Aerial   bool   `yaml:"aerial,omitempty"`   // camera_angles のみ
	Category string `yaml:"category,omitempty"` // times_of_day のみ
}

// Table は既定キーを持つキーとフレーズの対応表です。
type Table struct {
	Default string           `yaml:"default"`
	Entries map[string]Entry `yaml:"entries"`
}

// Lookup は未知のキーに対して既定の項目を返します。
func (t Table) Lookup(key string) Entry {
	if e, ok := t.Entries[key]; ok {
		return e
	}
	return t.Entries[t.Default]
}

// QualityEffect は品質効果の名前と、有効時に出力される説明です。
type QualityEffect struct {
	Key    string `yaml:"key"`
	Phrase string `yaml:"phrase"`
}

// LookupTables はプロセス全体で共有される読み取り専用のルックアップテーブル群です。
// 読み込み後に変更されることはなく、並行して安全に参照できます。
type LookupTables struct {
	Viewpoints    Table           `yaml:"viewpoints"`
	CameraAngles  Table           `yaml:"camera_angles"`
	TimesOfDay    Table           `yaml:"times_of_day"`
	Weather       Table           `yaml:"weather"`
	QualityTiers  Table           `yaml:"quality_tiers"`
	Negatives     []string        `yaml:"negative_items"`
	EffectCatalog []QualityEffect `yaml:"quality_effects"`
}

var defaultLookupTables = mustLoadDefaultLookupTables()

func mustLoadDefaultLookupTables() *LookupTables {
	lt, err := ParseLookupTables(defaultLookupYAML)
	if err != nil {
		panic(fmt.Sprintf("埋め込みルックアップテーブルの読み込みに失敗しました: %v", err))
	}
	return lt
}

// DefaultLookupTables は埋め込みの YAML から読み込まれたテーブルを返します。
func DefaultLookupTables() *LookupTables {
	return defaultLookupTables
}

// LoadLookupTables はファイルからテーブルを読み込みます。path が空の場合は埋め込みのテーブルを返します。
func LoadLookupTables(path string) (*LookupTables, error) {
	if path == "" {
		return DefaultLookupTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ルックアップテーブル '%s' の読み込みに失敗しました: %w", path, err)
	}
	lt, err := ParseLookupTables(data)
	if err != nil {
		return nil, fmt.Errorf("ルックアップテーブル '%s': %w", path, err)
	}
	return lt, nil
}

// ParseLookupTables は YAML をデコードし、各テーブルが既定キーを含むことを検証します。
func ParseLookupTables(data []byte) (*LookupTables, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var lt LookupTables
	if err := dec.Decode(&lt); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗しました: %w", err)
	}
	if err := lt.validate(); err != nil {
		return nil, err
	}
	return &lt, nil
}

func (lt *LookupTables) validate() error {
	var errs []error
	for _, name := range []TableName{TableViewpoint, TableCameraAngle, TableTimeOfDay, TableWeather, TableQualityTier} {
		t := lt.table(name)
		if t.Default == "" {
			errs = append(errs, fmt.Errorf("テーブル '%s' に既定キーが指定されていません", name))
			continue
		}
		if _, ok := t.Entries[t.Default]; !ok {
			errs = append(errs, fmt.Errorf("テーブル '%s' に既定キー '%s' が存在しません", name, t.Default))
		}
		for key, e := range t.Entries {
			if e.Phrase == "" {
				errs = append(errs, fmt.Errorf("テーブル '%s' のキー '%s' のフレーズが空です", name, key))
			}
		}
	}
	for key, e := range lt.TimesOfDay.Entries {
		if !slices.Contains(lightingCategories, e.Category) {
			errs = append(errs, fmt.Errorf("時間帯 '%s' の照明カテゴリ '%s' は不正です", key, e.Category))
		}
	}
	if len(lt.Negatives) == 0 {
		errs = append(errs, errors.New("既定のネガティブ項目が空です"))
	}
	seen := make(map[string]bool, len(lt.EffectCatalog))
	for i, eff := range lt.EffectCatalog {
		if eff.Key == "" || eff.Phrase == "" {
			errs = append(errs, fmt.Errorf("品質効果 %d 番目のキーまたはフレーズが空です", i))
			continue
		}
		if seen[eff.Key] {
			errs = append(errs, fmt.Errorf("品質効果 '%s' が重複しています", eff.Key))
		}
		seen[eff.Key] = true
	}
	return errors.Join(errs...)
}

// table は名前に対応するテーブルを返します。未知の名前はプログラムの誤りです。
func (lt *LookupTables) table(name TableName) Table {
	switch name {
	case TableViewpoint:
		return lt.Viewpoints
	case TableCameraAngle:
		return lt.CameraAngles
	case TableTimeOfDay:
		return lt.TimesOfDay
	case TableWeather:
		return lt.Weather
	case TableQualityTier:
		return lt.QualityTiers
	}
	panic(fmt.Sprintf("不明なルックアップテーブルです: '%s'", name))
}

// Resolve はキーに対応するフレーズを返します。未知のキーは既定の項目に解決されます。
func (lt *LookupTables) Resolve(name TableName, key string) string {
	return lt.table(name).Lookup(key).Phrase
}

// Entry はキーに対応する項目を、既定へのフォールバック込みで返します。
func (lt *LookupTables) Entry(name TableName, key string) Entry {
	return lt.table(name).Lookup(key)
}

// DefaultNegativeItems はシステム既定のネガティブ項目のコピーを返します。
func (lt *LookupTables) DefaultNegativeItems() []string {
	return slices.Clone(lt.Negatives)
}

// QualityEffects は順序付きの品質効果カタログのコピーを返します。
func (lt *LookupTables) QualityEffects() []QualityEffect {
	return slices.Clone(lt.EffectCatalog)
}
