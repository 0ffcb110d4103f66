// Package store persists listing records in dual form: one JSON document per
// asset plus a tabular master index used for fast existence checks and
// export. The two are not written transactionally; Rebuild is the sole and
// authoritative recovery path for any inconsistency.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cosmicsol/listforge/internal/domain"
)

const (
	indexName       = "metadata_master.csv"
	visualIndexName = "visual_index.json"
)

var indexHeader = []string{"filename", "title", "description", "tags", "created_at", "refined_at"}

// RecordStore handles listing record persistence and idempotency lookups.
type RecordStore struct {
	metadataDir string
	historyDir  string
	indexPath   string

	// mu serializes index rewrites; watch-mode generation can overlap a
	// previous invocation's store write.
	mu sync.Mutex
}

// New creates a RecordStore rooted at the given directories.
// Parameters:
//   - metadataDir: directory holding record documents and the master index.
//   - historyDir: directory holding refinement history snapshots.
//
// Returns:
//   - *RecordStore: store instance with both directories created.
//   - error: non-nil if a directory cannot be created.
func New(metadataDir, historyDir string) (*RecordStore, error) {
	for _, dir := range []string{metadataDir, historyDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}
	return &RecordStore{
		metadataDir: metadataDir,
		historyDir:  historyDir,
		indexPath:   filepath.Join(metadataDir, indexName),
	}, nil
}

// stem strips the asset extension: "sunset.png" -> "sunset".
func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func (s *RecordStore) recordPath(filename string) string {
	return filepath.Join(s.metadataDir, stem(filename)+".json")
}

// Exists reports whether a record for filename is present in the master
// index. The index is read fresh on every call: this is the idempotency gate
// before generation work, and the cost of a stale answer is a duplicate
// completion call.
func (s *RecordStore) Exists(filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readIndexRows()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] == filename {
			return true, nil
		}
	}
	return false, nil
}

// Get loads the record document for filename.
// Returns:
//   - *domain.ListingRecord: decoded record.
//   - error: wraps fs.ErrNotExist when no document exists.
func (s *RecordStore) Get(filename string) (*domain.ListingRecord, error) {
	data, err := os.ReadFile(s.recordPath(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read record for %s: %w", filename, err)
	}
	var rec domain.ListingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record for %s: %w", filename, err)
	}
	return &rec, nil
}

// List returns all record documents, sorted by file name for deterministic
// stage ordering. Documents that fail to decode are skipped so that one
// corrupt draft does not block a batch stage or a rebuild.
func (s *RecordStore) List() ([]domain.ListingRecord, error) {
	entries, err := os.ReadDir(s.metadataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan metadata directory: %w", err)
	}

	var records []domain.ListingRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == visualIndexName || filepath.Ext(name) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.metadataDir, name))
		if err != nil {
			continue
		}
		var rec domain.ListingRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.Filename == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Put upserts the record document and its master index row. The document is
// written first; a crash between the two writes leaves the index behind the
// records, which Rebuild recovers.
func (s *RecordStore) Put(rec *domain.ListingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", rec.Filename, err)
	}
	if err := os.WriteFile(s.recordPath(rec.Filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record for %s: %w", rec.Filename, err)
	}

	rows, err := s.readIndexRows()
	if err != nil {
		return err
	}
	row := indexRow(rec)
	replaced := false
	for i := range rows {
		if len(rows[i]) > 0 && rows[i][0] == rec.Filename {
			rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, row)
	}
	return s.writeIndexRows(rows)
}

// AppendHistory writes an immutable pre-refinement snapshot keyed by the
// asset name and a millisecond version stamp. Snapshots are never read back
// by the pipeline; they exist as an audit trail. Two snapshots of one asset
// within the same millisecond collide; accepted.
func (s *RecordStore) AppendHistory(filename string, rec *domain.ListingRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history snapshot for %s: %w", filename, err)
	}
	name := fmt.Sprintf("%s_v%d.json", stem(filename), time.Now().UnixMilli())
	if err := os.WriteFile(filepath.Join(s.historyDir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write history snapshot for %s: %w", filename, err)
	}
	return nil
}

// Rebuild recomputes the entire master index from the record documents,
// projecting effective fields. It is a pure function of the current records
// and needs no completion service; prior index contents are irrelevant.
// Returns the number of rows written.
func (s *RecordStore) Rebuild() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, indexRow(&records[i]))
	}
	if err := s.writeIndexRows(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteVisualIndex overwrites the visual analysis index document.
func (s *RecordStore) WriteVisualIndex(entries []domain.VisualAnalysis) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode visual index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.metadataDir, visualIndexName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write visual index: %w", err)
	}
	return nil
}

// indexRow projects a record into its master index row: effective fields
// plus both timestamps.
func indexRow(rec *domain.ListingRecord) []string {
	created := ""
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt.Format(time.RFC3339)
	}
	refined := ""
	if rec.RefinedAt != nil {
		refined = rec.RefinedAt.Format(time.RFC3339)
	}
	return []string{
		rec.Filename,
		rec.EffectiveTitle(),
		rec.EffectiveDescription(),
		rec.EffectiveTags(),
		created,
		refined,
	}
}

func (s *RecordStore) readIndexRows() ([][]string, error) {
	f, err := os.Open(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open master index: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse master index: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 && rows[0][0] == indexHeader[0] {
		rows = rows[1:]
	}
	return rows, nil
}

func (s *RecordStore) writeIndexRows(rows [][]string) error {
	f, err := os.Create(s.indexPath)
	if err != nil {
		return fmt.Errorf("failed to write master index: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(indexHeader); err != nil {
		f.Close()
		return fmt.Errorf("failed to write master index header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write master index rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush master index: %w", err)
	}
	return f.Close()
}
