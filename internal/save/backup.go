package save

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ashvale/duskfall/internal/core"
)

// backupSlot moves the current slot file, if any, to a timestamped backup
// before it gets overwritten.
func (e *Engine) backupSlot(slot int, path string, ts time.Time) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	dst := filepath.Join(e.backupDir, fmt.Sprintf("slot_%d_%d.sav", slot, ts.UnixNano()))
	if err := os.Rename(path, dst); err != nil {
		return err
	}

	if e.retention > 0 {
		if err := e.PruneBackups(slot, e.retention); err != nil {
			e.logger.Warn("backup pruning failed", "slot", slot, "error", err)
		}
	}
	return nil
}

// backupsForSlot returns backup file paths for a slot, newest first.
func (e *Engine) backupsForSlot(slot int) ([]string, error) {
	pattern := filepath.Join(e.backupDir, fmt.Sprintf("slot_%d_*.sav", slot))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	// The suffix is a nanosecond timestamp of fixed magnitude, so a
	// reverse lexical sort orders newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// recoverFromBackups tries each backup for the slot, newest first, and
// returns the first one that passes the full load pipeline.
func (e *Engine) recoverFromBackups(slot int) (core.GameSnapshot, SaveMetadata, error) {
	backups, err := e.backupsForSlot(slot)
	if err != nil {
		return core.GameSnapshot{}, SaveMetadata{}, err
	}
	for _, path := range backups {
		snap, meta, err := e.loadFile(path)
		if err != nil {
			e.logger.Warn("backup unreadable", "file", filepath.Base(path), "error", err)
			continue
		}
		return snap, meta, nil
	}
	return core.GameSnapshot{}, SaveMetadata{}, ErrSlotNotFound
}

// PruneBackups deletes all but the newest keep backups for a slot.
func (e *Engine) PruneBackups(slot, keep int) error {
	if keep < 1 {
		keep = 1
	}
	backups, err := e.backupsForSlot(slot)
	if err != nil {
		return err
	}
	for _, path := range backups[min(keep, len(backups)):] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("save: prune %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// ListBackups returns backup filenames per slot for diagnostic listings.
func (e *Engine) ListBackups() (map[int][]string, error) {
	entries, err := os.ReadDir(e.backupDir)
	if err != nil {
		return nil, fmt.Errorf("save: list backups: %w", err)
	}
	out := make(map[int][]string)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "slot_") || !strings.HasSuffix(name, ".sav") {
			continue
		}
		var slot int
		var ts int64
		if _, err := fmt.Sscanf(name, "slot_%d_%d.sav", &slot, &ts); err != nil {
			continue
		}
		out[slot] = append(out[slot], name)
	}
	return out, nil
}
