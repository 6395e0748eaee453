package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RulesStore_RoundTrip(t *testing.T) {
	store := NewRulesStore(t.TempDir())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got, "missing file reads as empty rules")

	text := "1. Maksimal meminjam 3 buku.\n2. Denda keterlambatan Rp1.000/hari."
	require.NoError(t, store.Save(text))

	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func Test_RulesStore_KeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal_settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	store := NewRulesStore(dir)
	require.NoError(t, store.Save("tata tertib"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "dark", m["theme"])
	assert.Equal(t, "tata tertib", m["library_rules"])
}
