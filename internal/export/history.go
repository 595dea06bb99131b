package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// HistoryWriter persists the full enriched day as JSON, one file per date,
// so a later run (or a human) can inspect exactly what was produced.
type HistoryWriter struct {
	dir   string
	runID string
}

// NewHistoryWriter creates a HistoryWriter rooted at dir, stamping every
// file with the given run ID.
func NewHistoryWriter(dir, runID string) *HistoryWriter {
	return &HistoryWriter{dir: dir, runID: runID}
}

// HistoryFile is the on-disk shape of one processed date.
type HistoryFile struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Date        civil.Date       `json:"date"`
	Groups      []model.DayGroup `json:"groups"`
}

// WriteDay writes the day's groups to <dir>/history-<date>.json, replacing
// any file from an earlier run.
func (w *HistoryWriter) WriteDay(date civil.Date, groups []model.DayGroup) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	file := HistoryFile{
		RunID:       w.runID,
		GeneratedAt: time.Now().UTC(),
		Date:        date,
		Groups:      groups,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history for %s: %w", date, err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("history-%s.json", date))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing history %s: %w", path, err)
	}
	return nil
}

// ReadHistory loads a previously written day, if present.
func ReadHistory(dir string, date civil.Date) (*HistoryFile, error) {
	path := filepath.Join(dir, fmt.Sprintf("history-%s.json", date))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}
	var file HistoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding history %s: %w", path, err)
	}
	return &file, nil
}
