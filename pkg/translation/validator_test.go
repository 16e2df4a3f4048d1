package translation

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func complete(t *testing.T) map[string]any {
	return decode(t, `{
		"building_type": "townhouse",
		"facade_style": "minimalist",
		"critical_elements": ["large corner window"],
		"materials_precise": [
			{"type": "wall", "description": "concrete"},
			{"type": "roof", "description": "zinc"},
			{"type": "window", "description": "glass"},
			{"type": "door", "description": "oak"},
			{"type": "floor", "description": "stone"}
		],
		"environment": [{"type": "people", "description": "a cyclist"}],
		"technical_specs": {"lens": "24mm"}
	}`)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestValidate(t *testing.T) {
	t.Run("全て揃っていれば成功なのだ", func(t *testing.T) {
		report, err := Validate(complete(t), complete(t))
		require.NoError(t, err)
		assert.False(t, report.HasWarnings())
	})

	t.Run("technical_specsが欠けていればそれだけを報告するのだ", func(t *testing.T) {
		translated := complete(t)
		delete(translated, "technical_specs")

		_, err := Validate(translated, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingRequiredField))

		var mfe *MissingFieldsError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, []string{"technical_specs"}, mfe.Fields)
	})

	t.Run("偽とみなされる値は全て欠落扱いで順序通りに報告するのだ", func(t *testing.T) {
		translated := decode(t, `{
			"building_type": "",
			"facade_style": false,
			"critical_elements": [],
			"materials_precise": [{"type": "wall"}],
			"environment": {},
			"technical_specs": 0
		}`)

		_, err := Validate(translated, nil)
		var mfe *MissingFieldsError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, []string{"building_type", "facade_style", "critical_elements", "environment", "technical_specs"}, mfe.Fields)
		assert.Contains(t, err.Error(), "building_type, facade_style")
	})

	t.Run("nilのレコードは全て欠落なのだ", func(t *testing.T) {
		_, err := Validate(nil, nil)
		var mfe *MissingFieldsError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, RequiredFields, mfe.Fields)
	})

	t.Run("素材が8割未満になると警告するのだ", func(t *testing.T) {
		logs := captureLogs(t)

		original := complete(t)
		translated := complete(t)
		translated["materials_precise"] = translated["materials_precise"].([]any)[:3]

		report, err := Validate(translated, original)
		require.NoError(t, err)
		require.NotNil(t, report.MaterialLoss)
		assert.Equal(t, MaterialLoss{Original: 5, Translated: 3}, *report.MaterialLoss)
		assert.Equal(t, 2, report.MaterialLoss.Lost())
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "lost=2")
	})

	t.Run("ちょうど8割なら警告しないのだ", func(t *testing.T) {
		logs := captureLogs(t)

		original := complete(t)
		translated := complete(t)
		translated["materials_precise"] = translated["materials_precise"].([]any)[:4]

		report, err := Validate(translated, original)
		require.NoError(t, err)
		assert.Nil(t, report.MaterialLoss)
		assert.Empty(t, logs.String())
	})
}
