package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/marrowai/finetune/types"
)

// SnapshotMarkerFile is the marker whose presence indicates a directory
// holds a pre-normalized dataset snapshot instead of raw source files.
const SnapshotMarkerFile = "dataset_info.json"

// snapshotDataFile holds the snapshot payload, one JSON record per line.
const snapshotDataFile = "data.jsonl"

// SnapshotInfo is the content of the snapshot marker file.
type SnapshotInfo struct {
	Fingerprint string    `json:"fingerprint"`
	NumRecords  int       `json:"num_records"`
	Fields      []string  `json:"fields"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveSnapshot persists the dataset into dir as a snapshot and returns the
// marker content. The payload is written first, then the marker, so a
// crashed save never leaves a marker pointing at a missing payload.
func SaveSnapshot(dir string, d *Dataset, schema Schema) (*SnapshotInfo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	dataPath := filepath.Join(dir, snapshotDataFile)
	f, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, rec := range d.Records() {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("snapshot: encoding record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	info := &SnapshotInfo{
		Fingerprint: uuid.NewString(),
		NumRecords:  d.Len(),
		Fields:      schema.Fields(),
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SnapshotMarkerFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return info, nil
}

// HasSnapshot reports whether dir contains a snapshot marker.
func HasSnapshot(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, SnapshotMarkerFile))
	return err == nil && !st.IsDir()
}

// LoadSnapshot loads a pre-normalized dataset from dir in one step. The
// payload is validated against the marker's record count and every record
// against the schema.
func LoadSnapshot(dir string, schema Schema) (*Dataset, error) {
	markerPath := filepath.Join(dir, SnapshotMarkerFile)
	raw, err := os.ReadFile(markerPath)
	if err != nil {
		return nil, types.NewError(types.ErrSnapshotCorrupt, "reading snapshot marker").
			WithPath(markerPath).WithCause(err)
	}
	var info SnapshotInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, types.NewError(types.ErrSnapshotCorrupt, "parsing snapshot marker").
			WithPath(markerPath).WithCause(err)
	}

	dataPath := filepath.Join(dir, snapshotDataFile)
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, types.NewError(types.ErrSnapshotCorrupt, "opening snapshot payload").
			WithPath(dataPath).WithCause(err)
	}
	defer f.Close()

	d := New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, types.NewError(types.ErrSnapshotCorrupt,
				fmt.Sprintf("parsing snapshot record at line %d", lineNum)).
				WithPath(dataPath).WithCause(err)
		}
		if err := schema.Validate(rec); err != nil {
			return nil, types.NewError(types.ErrSnapshotCorrupt,
				fmt.Sprintf("snapshot record at line %d violates schema", lineNum)).
				WithPath(dataPath).WithCause(err)
		}
		d.Append(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewError(types.ErrSnapshotCorrupt, "reading snapshot payload").
			WithPath(dataPath).WithCause(err)
	}

	if d.Len() != info.NumRecords {
		return nil, types.NewError(types.ErrSnapshotCorrupt,
			fmt.Sprintf("marker declares %d records, payload has %d", info.NumRecords, d.Len())).
			WithPath(dir)
	}
	return d, nil
}
