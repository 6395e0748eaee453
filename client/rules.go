package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// rulesKey is the storage key the portal has always used for the
// library rules text; keeping it stable preserves data written by
// older builds.
const rulesKey = "library_rules"

// RulesStore persists the library rules text locally so the rules page
// renders without a server round-trip. The file holds a small JSON map
// keyed by rulesKey.
type RulesStore struct {
	path string
}

func NewRulesStore(dir string) *RulesStore {
	return &RulesStore{path: filepath.Join(dir, "portal_settings.json")}
}

func (s *RulesStore) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}
	return m[rulesKey], nil
}

func (s *RulesStore) Save(text string) error {
	m := map[string]string{}
	if raw, err := os.ReadFile(s.path); err == nil {
		// Keep unrelated keys a future build may have written.
		_ = json.Unmarshal(raw, &m)
	}
	m[rulesKey] = text

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
