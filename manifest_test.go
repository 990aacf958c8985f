package resqtalk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Manifest(t *testing.T) {
	t.Parallel()

	newReg := func() *Registry {
		reg := NewRegistry()
		reg.Register(NewVoidTool("playSound", "Play a loud siren sound", nil,
			func(context.Context, map[string]any) error { return nil },
			WithUsageGuideline("Use when the user asks to attract attention."),
		))
		reg.Register(NewTool("addToList", "Add an item to the emergency checklist",
			[]Param{{Name: "item", Type: "string", Required: true}},
			func(context.Context, map[string]any) (string, error) { return "", nil },
		))
		reg.Register(NewTool("navigateToMaps", "Open the maps screen", nil,
			func(context.Context, map[string]any) (string, error) { return "", nil },
			WithFixedResult("Taking you to Maps."),
		))
		return reg
	}

	t.Run("contains preamble, guidance and tool table", func(t *testing.T) {
		t.Parallel()
		m := newReg().Manifest()

		assert.Contains(t, m, "You have access to functions.")
		assert.Contains(t, m, `{"name": function name, "parameters": dictionary of argument name and its value}`)
		assert.Contains(t, m, "Usage guidance:")
		assert.Contains(t, m, "- playSound: Use when the user asks to attract attention.")
		assert.Contains(t, m, `"name": "addToList"`)
		assert.Contains(t, m, `"description": "Add an item to the emergency checklist"`)
		assert.Contains(t, m, `"item"`)
	})

	t.Run("fixed results never leak into the manifest", func(t *testing.T) {
		t.Parallel()
		m := newReg().Manifest()
		assert.NotContains(t, m, "Taking you to Maps.")
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		reg := newReg()
		assert.Equal(t, reg.Manifest(), reg.Manifest())
	})

	t.Run("tools appear in insertion order", func(t *testing.T) {
		t.Parallel()
		m := newReg().Manifest()
		i := strings.Index(m, `"name": "playSound"`)
		j := strings.Index(m, `"name": "addToList"`)
		k := strings.Index(m, `"name": "navigateToMaps"`)
		require.True(t, i >= 0 && j >= 0 && k >= 0)
		assert.Less(t, i, j)
		assert.Less(t, j, k)
	})

	t.Run("empty registry still renders the preamble", func(t *testing.T) {
		t.Parallel()
		m := NewRegistry().Manifest()
		assert.Contains(t, m, "You have access to functions.")
		assert.True(t, strings.HasSuffix(m, "[]"))
	})

	t.Run("guidance section omitted when no tool declares one", func(t *testing.T) {
		t.Parallel()
		reg := NewRegistry()
		reg.Register(NewVoidTool("stopSound", "Stop the siren", nil,
			func(context.Context, map[string]any) error { return nil },
		))
		assert.NotContains(t, reg.Manifest(), "Usage guidance:")
	})
}
