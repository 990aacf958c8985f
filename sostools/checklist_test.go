package sostools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklistStore_Append(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checklist.json")
	store := NewChecklistStore(path)

	require.NoError(t, store.Append("water"))
	require.NoError(t, store.Append("flashlight"))

	items, err := store.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "flashlight"}, items)

	// The on-disk shape keeps items and checked flags in step.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var file struct {
		Checklist    []string `json:"checklist"`
		CheckedItems []bool   `json:"checkedItems"`
	}
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, []string{"water", "flashlight"}, file.Checklist)
	assert.Equal(t, []bool{false, false}, file.CheckedItems)
}

func TestChecklistStore_BlankItem(t *testing.T) {
	t.Parallel()

	store := NewChecklistStore(filepath.Join(t.TempDir(), "checklist.json"))
	assert.Error(t, store.Append("   "))
	items, err := store.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChecklistStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewChecklistStore(filepath.Join(t.TempDir(), "never-created.json"))
	items, err := store.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChecklistStore_PreservesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checklist.json")
	seed := `{"checklist":["rope"],"checkedItems":[true]}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := NewChecklistStore(path)
	require.NoError(t, store.Append("batteries"))

	items, err := store.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"rope", "batteries"}, items)
}

func TestChecklistStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checklist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewChecklistStore(path)
	assert.Error(t, store.Append("water"))
	_, err := store.Items()
	assert.Error(t, err)
}
