// Package save implements the durable persistence engine: encrypted,
// compressed, checksummed save slots with backup recovery and versioned
// migration, plus plain-text checkpoint files for crash recovery.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ashvale/duskfall/internal/config"
	"github.com/ashvale/duskfall/internal/core"
	"github.com/ashvale/duskfall/internal/validate"
)

// CurrentVersion is the schema version written to new saves. Loads of
// older versions run the migration chain before returning.
const CurrentVersion = 3

var (
	// ErrSlotNotFound means no valid save exists for the slot, including
	// after exhausting every backup.
	ErrSlotNotFound = errors.New("save: slot not found")

	// ErrCorrupt means a blob failed integrity checking. Callers normally
	// never see it; it drives the internal backup fallback.
	ErrCorrupt = errors.New("save: corrupt data")

	// ErrValidation means the snapshot failed validation with blocking
	// issues.
	ErrValidation = errors.New("save: validation failed")
)

// SaveMetadata describes a stored slot without requiring the snapshot to
// be decoded.
type SaveMetadata struct {
	Version     int       `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	PlayerName  string    `json:"playerName"`
	PlayerLevel int       `json:"playerLevel"`
	Location    string    `json:"location"`
	Playtime    float64   `json:"playtime"` // cumulative seconds
	LastSave    time.Time `json:"lastSave,omitempty"`
	Checksum    string    `json:"checksum"`
}

// SlotInfo pairs a slot id with its metadata for listings.
type SlotInfo struct {
	Slot int
	Meta SaveMetadata
}

// payload is the serialized unit: metadata plus the snapshot.
type payload struct {
	Meta     SaveMetadata    `json:"metadata"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Engine reads and writes save slots. File operations go through a temp
// file and an atomic rename, so a slot file is always either the previous
// valid save or the new one, never a partial write.
type Engine struct {
	saveDir   string
	backupDir string
	key       []byte
	logger    *log.Logger
	index     *Index
	steps     []migration
	retention int
	now       func() time.Time
}

// NewEngine creates a persistence engine rooted at the configured
// directories. The slot index is best-effort: if it cannot be opened the
// engine logs a warning and falls back to directory scans for listings.
func NewEngine(cfg config.Config, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	for _, dir := range []string{cfg.SaveDir, cfg.BackupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("save: cannot create directory %s: %w", dir, err)
		}
	}

	e := &Engine{
		saveDir:   cfg.SaveDir,
		backupDir: cfg.BackupDir,
		key:       deriveKey(cfg.Passphrase),
		logger:    logger,
		steps:     defaultMigrations(),
		retention: cfg.BackupRetention,
		now:       time.Now,
	}

	index, err := OpenIndex(filepath.Join(cfg.SaveDir, "slots.db"))
	if err != nil {
		logger.Warn("slot index unavailable, falling back to directory scans", "error", err)
	} else {
		e.index = index
	}
	return e, nil
}

// Close releases the slot index.
func (e *Engine) Close() error {
	if e.index != nil {
		return e.index.Close()
	}
	return nil
}

func (e *Engine) slotPath(slot int) string {
	return filepath.Join(e.saveDir, fmt.Sprintf("slot_%d.sav", slot))
}

// Save persists a snapshot to the slot. The previous slot file, if any,
// is moved to a timestamped backup before the new file is put in place.
func (e *Engine) Save(slot int, snap core.GameSnapshot, playtime time.Duration) error {
	if slot < 0 {
		return fmt.Errorf("save: invalid slot %d", slot)
	}
	if rep := validate.All(&snap); rep.HasBlocking() {
		return fmt.Errorf("%w: %s", ErrValidation, rep.Blocking())
	}

	sum, err := snapshotChecksum(snap)
	if err != nil {
		return fmt.Errorf("save: checksum: %w", err)
	}

	nowTS := e.now()
	meta := SaveMetadata{
		Version:     CurrentVersion,
		Timestamp:   nowTS,
		PlayerName:  snap.Player.Name,
		PlayerLevel: snap.Player.Level,
		Location:    snap.Location,
		Playtime:    playtime.Seconds(),
		Checksum:    sum,
	}
	if prev, err := e.readMetadata(slot); err == nil {
		meta.LastSave = prev.Timestamp
	}

	blob, err := e.encode(meta, snap)
	if err != nil {
		return fmt.Errorf("save: encode: %w", err)
	}

	path := e.slotPath(slot)
	if err := e.backupSlot(slot, path, nowTS); err != nil {
		return fmt.Errorf("save: backup: %w", err)
	}
	if err := writeFileAtomic(path, blob); err != nil {
		return fmt.Errorf("save: write: %w", err)
	}

	if e.index != nil {
		if err := e.index.Put(slot, meta); err != nil {
			e.logger.Warn("slot index update failed", "slot", slot, "error", err)
		}
	}

	e.logger.Info("saved", "slot", slot, "player", meta.PlayerName,
		"location", meta.Location, "bytes", len(blob))
	return nil
}

// Load reads a slot, verifying integrity and migrating old versions. Any
// failure on the live file falls back to the newest valid backup; only
// when every backup fails does the caller see ErrSlotNotFound.
func (e *Engine) Load(slot int) (core.GameSnapshot, SaveMetadata, error) {
	snap, meta, err := e.loadFile(e.slotPath(slot))
	if err == nil {
		return snap, meta, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("slot unreadable, trying backups", "slot", slot, "error", err)
	}

	snap, meta, berr := e.recoverFromBackups(slot)
	if berr != nil {
		return core.GameSnapshot{}, SaveMetadata{}, ErrSlotNotFound
	}
	e.logger.Info("recovered from backup", "slot", slot, "timestamp", meta.Timestamp)
	return snap, meta, nil
}

// loadFile runs the full load pipeline on one file.
func (e *Engine) loadFile(path string) (core.GameSnapshot, SaveMetadata, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return core.GameSnapshot{}, SaveMetadata{}, err
	}

	snap, meta, err := e.decode(blob)
	if err != nil {
		return core.GameSnapshot{}, SaveMetadata{}, err
	}

	if rep := validate.All(&snap); rep.HasBlocking() {
		return core.GameSnapshot{}, SaveMetadata{}, fmt.Errorf("%w: %s", ErrValidation, rep.Blocking())
	}
	return snap, meta, nil
}

// readMetadata decodes only the metadata of a slot.
func (e *Engine) readMetadata(slot int) (SaveMetadata, error) {
	if e.index != nil {
		if meta, err := e.index.Get(slot); err == nil {
			return meta, nil
		}
	}
	_, meta, err := e.loadFile(e.slotPath(slot))
	return meta, err
}

// Delete removes a slot file and its index entry. Backups are kept;
// deleting a save is not the same as destroying its history.
func (e *Engine) Delete(slot int) error {
	path := e.slotPath(slot)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("save: delete slot %d: %w", slot, err)
	}
	if e.index != nil {
		if err := e.index.Remove(slot); err != nil {
			e.logger.Warn("slot index remove failed", "slot", slot, "error", err)
		}
	}
	e.logger.Info("deleted", "slot", slot)
	return nil
}

// ListSlots returns every known slot, newest first. The sqlite index
// answers when available; otherwise the save directory is scanned.
func (e *Engine) ListSlots() ([]SlotInfo, error) {
	if e.index != nil {
		infos, err := e.index.List()
		if err == nil {
			return infos, nil
		}
		e.logger.Warn("slot index list failed, scanning directory", "error", err)
	}
	return e.scanSlots()
}

// scanSlots decodes every slot file in the save directory.
func (e *Engine) scanSlots() ([]SlotInfo, error) {
	entries, err := os.ReadDir(e.saveDir)
	if err != nil {
		return nil, fmt.Errorf("save: scan: %w", err)
	}

	var infos []SlotInfo
	for _, entry := range entries {
		slot, ok := slotFromFilename(entry.Name())
		if !ok {
			continue
		}
		_, meta, err := e.loadFile(filepath.Join(e.saveDir, entry.Name()))
		if err != nil {
			e.logger.Warn("skipping unreadable slot", "file", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, SlotInfo{Slot: slot, Meta: meta})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Meta.Timestamp.After(infos[j].Meta.Timestamp)
	})
	return infos, nil
}

// RebuildIndex rescans the save directory and repopulates the sqlite
// index from scratch.
func (e *Engine) RebuildIndex() error {
	if e.index == nil {
		return fmt.Errorf("save: no index to rebuild")
	}
	infos, err := e.scanSlots()
	if err != nil {
		return err
	}
	if err := e.index.Clear(); err != nil {
		return err
	}
	for _, info := range infos {
		if err := e.index.Put(info.Slot, info.Meta); err != nil {
			return err
		}
	}
	return nil
}

// slotFromFilename parses "slot_<N>.sav" names.
func slotFromFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, "slot_") || !strings.HasSuffix(name, ".sav") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "slot_"), ".sav"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers only ever see complete files.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
