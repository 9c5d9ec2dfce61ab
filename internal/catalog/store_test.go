// ABOUTME: Tests for the catalog store
// ABOUTME: Runs against a temporary sqlite database
package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestAddAndGet(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddRecord("grabaciones/a.wav", "Episode 1", "pilot", 12.5))

	rec, err := s.Get("grabaciones/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "Episode 1", rec.Title)
	assert.Equal(t, "pilot", rec.Description)
	assert.InDelta(t, 12.5, rec.Duration, 1e-9)
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestAddRecordIgnoresDuplicatePath(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddRecord("a.wav", "first", "", 1))
	require.NoError(t, s.AddRecord("a.wav", "second", "", 2))

	records, err := s.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].Title)
	assert.InDelta(t, 1.0, records[0].Duration, 1e-9)
}

func TestListRecordsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for _, p := range []string{"1.wav", "2.wav", "3.wav"} {
		require.NoError(t, s.AddRecord(p, p, "", 0))
	}

	records, err := s.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "3.wav", records[0].Path)
	assert.Equal(t, "2.wav", records[1].Path)
	assert.Equal(t, "1.wav", records[2].Path)
}

func TestListRecordsEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateTitleDescription(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddRecord("a.wav", "a.wav", "", 3))

	require.NoError(t, s.UpdateTitleDescription("a.wav", "Interview", "with guest"))

	rec, err := s.Get("a.wav")
	require.NoError(t, err)
	assert.Equal(t, "Interview", rec.Title)
	assert.Equal(t, "with guest", rec.Description)
	assert.InDelta(t, 3.0, rec.Duration, 1e-9)

	assert.ErrorIs(t, s.UpdateTitleDescription("missing.wav", "x", "y"), ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddRecord("a.wav", "a", "", 1))
	require.NoError(t, s.AddRecord("b.wav", "b", "", 1))

	require.NoError(t, s.DeleteRecord("a.wav"))

	_, err := s.Get("a.wav")
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := s.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b.wav", records[0].Path)

	assert.ErrorIs(t, s.DeleteRecord("a.wav"), ErrNotFound)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddRecord("a.wav", "kept", "", 1))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Get("a.wav")
	require.NoError(t, err)
	assert.Equal(t, "kept", rec.Title)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "a.wav", Record{Path: "a.wav"}.DisplayTitle())
	assert.Equal(t, "Show", Record{Path: "a.wav", Title: "Show"}.DisplayTitle())
}
