package save

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ashvale/duskfall/internal/core"
)

// CheckpointStore persists checkpoint records as individual files, one
// per event, named by the record's integer timestamp. Checkpoints are
// crash-recovery artifacts, not user-facing saves, so they stay as
// readable JSON with no compression or encryption.
type CheckpointStore struct {
	dir       string
	retention int
	logger    *log.Logger
}

// NewCheckpointStore creates the store and its directory. retention caps
// how many checkpoint files are kept; zero disables pruning.
func NewCheckpointStore(dir string, retention int, logger *log.Logger) (*CheckpointStore, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("save: cannot create checkpoint directory: %w", err)
	}
	return &CheckpointStore{dir: dir, retention: retention, logger: logger}, nil
}

// WriteCheckpoint implements core.CheckpointSink. Writes go through the
// same temp-file and rename discipline as save slots.
func (s *CheckpointStore) WriteCheckpoint(rec core.CheckpointRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("save: checkpoint encode: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("cp_%d.json", rec.Timestamp.UnixNano()))
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save: checkpoint write: %w", err)
	}
	s.logger.Debug("checkpoint written", "file", filepath.Base(path))

	if s.retention > 0 {
		if err := s.Prune(s.retention); err != nil {
			s.logger.Warn("checkpoint pruning failed", "error", err)
		}
	}
	return nil
}

// List returns checkpoint filenames, newest first.
func (s *CheckpointStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("save: list checkpoints: %w", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "cp_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	// Fixed-width nanosecond timestamps sort lexically; reverse for
	// newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Load reads one checkpoint file by name.
func (s *CheckpointStore) Load(name string) (core.CheckpointRecord, error) {
	var rec core.CheckpointRecord
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return rec, fmt.Errorf("save: read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("save: checkpoint decode: %w", err)
	}
	return rec, nil
}

// Latest returns the most recent checkpoint record.
func (s *CheckpointStore) Latest() (core.CheckpointRecord, error) {
	names, err := s.List()
	if err != nil {
		return core.CheckpointRecord{}, err
	}
	if len(names) == 0 {
		return core.CheckpointRecord{}, fmt.Errorf("save: no checkpoints")
	}
	return s.Load(names[0])
}

// Prune deletes all but the newest keep checkpoint files.
func (s *CheckpointStore) Prune(keep int) error {
	if keep < 1 {
		keep = 1
	}
	names, err := s.List()
	if err != nil {
		return err
	}
	for _, name := range names[min(keep, len(names)):] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("save: prune checkpoint %s: %w", name, err)
		}
	}
	return nil
}

var _ core.CheckpointSink = (*CheckpointStore)(nil)
