package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func activeRecord() Record {
	return Record{
		DisplayStateTag:   "WorshipPresenting",
		Active:            true,
		CurrentHymnID:     "h1",
		CurrentHymnTitle:  "Amazing Grace",
		CurrentVerseIndex: 2,
		PresentedHymns:    []string{"Amazing Grace", "To God Be the Glory"},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := Open(t.TempDir())

	require.NoError(t, s.Save(activeRecord()))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, activeRecord(), *got)
}

func TestSave_InactiveIsNoOp(t *testing.T) {
	s := Open(t.TempDir())

	r := activeRecord()
	r.Active = false
	require.NoError(t, s.Save(r))

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got, "inactive save must not persist anything")
}

func TestLoad_Missing(t *testing.T) {
	s := Open(t.TempDir())

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestLoad_MalformedTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	require.NoError(t, s.Save(activeRecord()))

	// Corrupt the stored record in place.
	var path string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			path = p
		}
		return err
	})
	require.NoError(t, err)
	require.NotEmpty(t, path)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestLoad_MissingTagTreatedAsAbsent(t *testing.T) {
	s := Open(t.TempDir())
	require.NoError(t, s.Save(Record{Active: true}))

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestClear(t *testing.T) {
	s := Open(t.TempDir())
	require.NoError(t, s.Save(activeRecord()))

	require.NoError(t, s.Clear())

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got)

	// Clearing an empty store is fine.
	require.NoError(t, s.Clear())
}
