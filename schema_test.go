package resqtalk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	t.Parallel()

	type args struct {
		Location string `json:"location" description:"City name"`
		Unit     string `json:"unit,omitempty" enum:"celsius,fahrenheit"`
	}
	m, resolved, err := generateSchema[args]()
	require.NoError(t, err)
	require.NotNil(t, resolved)

	props, ok := m["properties"].(map[string]any)
	require.True(t, ok)
	loc, ok := props["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "City name", loc["description"])
	unit, ok := props["unit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"celsius", "fahrenheit"}, unit["enum"])
}

func TestGenerateSchema_ValidatorAgreesWithSchema(t *testing.T) {
	t.Parallel()

	type args struct {
		X int `json:"x"`
	}
	_, resolved, err := generateSchema[args]()
	require.NoError(t, err)

	var good any
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1}`), &good))
	assert.NoError(t, resolved.Validate(good))

	var bad any
	require.NoError(t, json.Unmarshal([]byte(`{"x": "one"}`), &bad))
	assert.Error(t, resolved.Validate(bad))
}

func TestStripSchemaIDs(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"$id":  "root",
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"id": "nested", "type": "string"},
		},
	}
	stripSchemaIDs(m)
	assert.NotContains(t, m, "$id")
	nested := m["properties"].(map[string]any)["a"].(map[string]any)
	assert.NotContains(t, nested, "id")
	assert.Equal(t, "string", nested["type"])
}

func TestWalkSchema_VisitsNestedNodes(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
		},
		"anyOf": []any{
			map[string]any{"type": "null"},
		},
	}
	var visited int
	walkSchema(m, func(map[string]any) { visited++ })
	assert.Equal(t, 4, visited)
}
