package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicsol/listforge/internal/domain"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	base := t.TempDir()
	s, err := New(filepath.Join(base, "metadata"), filepath.Join(base, "history"))
	require.NoError(t, err)
	return s
}

func testRecord(filename string) *domain.ListingRecord {
	return &domain.ListingRecord{
		Filename:    filename,
		Title:       "Sunset Over Dunes",
		Description: "A calm evening scene",
		Tags:        "sunset, dunes",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readIndex(t *testing.T, s *RecordStore) [][]string {
	t.Helper()
	f, err := os.Open(s.indexPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("dunes.png")
	require.NoError(t, s.Put(rec))

	got, err := s.Get("dunes.png")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// The structured document sits beside the index.
	_, err = os.Stat(filepath.Join(s.metadataDir, "dunes.json"))
	require.NoError(t, err)
}

func TestExistsReadsIndexFresh(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.Exists("dunes.png")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(testRecord("dunes.png")))

	exists, err = s.Exists("dunes.png")
	require.NoError(t, err)
	assert.True(t, exists)

	// An external index rewrite is picked up without restarting the store.
	require.NoError(t, os.Remove(s.indexPath))
	exists, err = s.Exists("dunes.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPutUpsertsIndexRow(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("dunes.png")
	require.NoError(t, s.Put(rec))
	require.NoError(t, s.Put(testRecord("mist.png")))

	// Updating a record replaces its row instead of appending.
	refinedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rec.RefinedTitle = "Golden Dunes at Dusk"
	rec.RefinedAt = &refinedAt
	require.NoError(t, s.Put(rec))

	rows := readIndex(t, s)
	require.Len(t, rows, 3) // header + 2 records
	assert.Equal(t, indexHeader, rows[0])
	assert.Equal(t, "dunes.png", rows[1][0])
	assert.Equal(t, "Golden Dunes at Dusk", rows[1][1], "index carries the effective title")
	assert.Equal(t, refinedAt.Format(time.RFC3339), rows[1][5])
	assert.Equal(t, "mist.png", rows[2][0])
}

func TestIndexEscapesEmbeddedDelimiters(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("dunes.png")
	rec.Title = `Dunes, "Gold", and Sky`
	rec.Description = "line one\nline two, with comma"
	require.NoError(t, s.Put(rec))

	rows := readIndex(t, s)
	require.Len(t, rows, 2)
	assert.Equal(t, rec.Title, rows[1][1])
	assert.Equal(t, rec.Description, rows[1][2])
}

func TestAppendHistoryIsAppendOnly(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("dunes.png")

	require.NoError(t, s.AppendHistory("dunes.png", rec))
	time.Sleep(2 * time.Millisecond)
	rec.Title = "Second State"
	require.NoError(t, s.AppendHistory("dunes.png", rec))

	entries, err := os.ReadDir(s.historyDir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "each refinement writes its own snapshot")
	assert.NotEqual(t, entries[0].Name(), entries[1].Name())
	for _, e := range entries {
		assert.Regexp(t, `^dunes_v\d+\.json$`, e.Name())
	}
}

func TestRebuildIsPureProjection(t *testing.T) {
	s := newTestStore(t)

	refinedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	refined := testRecord("dunes.png")
	refined.RefinedTitle = "Golden Dunes"
	refined.RefinedDescription = "refined description"
	refined.RefinedAt = &refinedAt
	require.NoError(t, s.Put(refined))
	require.NoError(t, s.Put(testRecord("mist.png")))

	// Corrupt the index; rebuild must not depend on its prior contents.
	require.NoError(t, os.WriteFile(s.indexPath, []byte("garbage,,,\nmore garbage"), 0o644))

	count, err := s.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows := readIndex(t, s)
	require.Len(t, rows, 3)
	assert.Equal(t, indexHeader, rows[0])
	assert.Equal(t, []string{
		"dunes.png",
		"Golden Dunes",
		"refined description",
		"sunset, dunes",
		refined.CreatedAt.Format(time.RFC3339),
		refinedAt.Format(time.RFC3339),
	}, rows[1])
	assert.Equal(t, "mist.png", rows[2][0])
	assert.Empty(t, rows[2][5], "unrefined record has no refined_at")
}

func TestListSkipsVisualIndexAndCorruptDocs(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(testRecord("dunes.png")))
	require.NoError(t, s.WriteVisualIndex([]domain.VisualAnalysis{{File: "dunes.png"}}))
	require.NoError(t, os.WriteFile(filepath.Join(s.metadataDir, "broken.json"), []byte("{not json"), 0o644))

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dunes.png", records[0].Filename)
}
