// Package snapshot persists the minimal record needed to resume a
// worship session after the application is suspended and resumed.
package snapshot

import (
	"encoding/json"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/peterbourgon/diskv/v3"
)

const recordKey = "session"

// Record is the on-disk mirror of session, display and cursor state.
// Absence of the record means there is no session to resume.
type Record struct {
	DisplayStateTag   string   `json:"displayStateTag"`
	Active            bool     `json:"isWorshipSessionActive"`
	CurrentHymnID     string   `json:"currentHymnId,omitempty"`
	CurrentHymnTitle  string   `json:"currentHymnTitle,omitempty"`
	CurrentVerseIndex int      `json:"currentVerseIndex"`
	PresentedHymns    []string `json:"presentedHymns,omitempty"`
}

// Store is the snapshot persistence contract.
type Store interface {
	Save(r Record) error
	Load() (*Record, error)
	Clear() error
}

// DiskStore keeps the snapshot in durable key-value storage.
type DiskStore struct {
	d *diskv.Diskv
}

// DefaultDir returns the default snapshot directory.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "cantor", "session")
}

// Open creates a store rooted at basePath (DefaultDir when empty).
func Open(basePath string) *DiskStore {
	if basePath == "" {
		basePath = DefaultDir()
	}
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 64 * 1024,
	})}
}

// Save writes the record synchronously. Saving an inactive record is a
// no-op: stale "active" data must never be able to resurrect a stopped
// session.
func (s *DiskStore) Save(r Record) error {
	if !r.Active {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.d.Write(recordKey, raw)
}

// Load reads the persisted record. Missing, malformed or partial data
// is treated as absent: resume falls back to live state, never crashes.
func (s *DiskStore) Load() (*Record, error) {
	if !s.d.Has(recordKey) {
		return nil, nil
	}
	raw, err := s.d.Read(recordKey)
	if err != nil {
		return nil, nil //nolint:nilerr // unreadable snapshot is treated as absent
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, nil //nolint:nilerr // malformed snapshot is treated as absent
	}
	if r.DisplayStateTag == "" {
		return nil, nil
	}
	return &r, nil
}

// Clear erases the persisted record. Called only on explicit session
// stop; every other write path is additive.
func (s *DiskStore) Clear() error {
	if !s.d.Has(recordKey) {
		return nil
	}
	return s.d.Erase(recordKey)
}

// Verify DiskStore implements Store at compile time.
var _ Store = (*DiskStore)(nil)
