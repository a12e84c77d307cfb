// Package session binds the state controller to the persistence engine:
// manual saves, the reserved auto-save slot, and load/adopt round trips.
package session

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ashvale/duskfall/internal/config"
	"github.com/ashvale/duskfall/internal/core"
	"github.com/ashvale/duskfall/internal/save"
	"github.com/ashvale/duskfall/internal/state"
)

// Session orchestrates one running game: in-memory state on one side,
// durable slots on the other. Save and load entry points return plain
// booleans; a refused or failed operation leaves the prior state intact.
type Session struct {
	mu sync.Mutex

	ctrl        *state.Controller
	engine      *save.Engine
	checkpoints *save.CheckpointStore
	cfg         config.Config
	logger      *log.Logger
	now         func() time.Time

	started      time.Time
	playtimeBase time.Duration
	lastAutoSave time.Time
}

// Options configures a Session.
type Options struct {
	Controller *state.Controller
	Engine     *save.Engine
	Config     config.Config
	Logger     *log.Logger

	// Checkpoints, when set, receives the checkpoint records the
	// controller creates: the session installs itself as the
	// controller's sink and forwards records to this store.
	Checkpoints *save.CheckpointStore

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// New creates a session over an existing controller and engine.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	s := &Session{
		ctrl:        opts.Controller,
		engine:      opts.Engine,
		checkpoints: opts.Checkpoints,
		cfg:         opts.Config,
		logger:      logger,
		now:         clock,
	}
	s.started = clock()
	s.lastAutoSave = clock()
	if s.checkpoints != nil && s.ctrl != nil {
		s.ctrl.SetSink(s)
	}
	return s
}

var _ core.CheckpointSink = (*Session)(nil)

// WriteCheckpoint forwards a checkpoint record from the controller to
// the checkpoint store.
func (s *Session) WriteCheckpoint(rec core.CheckpointRecord) error {
	if s.checkpoints == nil {
		return nil
	}
	if err := s.checkpoints.WriteCheckpoint(rec); err != nil {
		s.logger.Error("checkpoint write failed", "error", err)
		return err
	}
	return nil
}

// Controller exposes the underlying state controller.
func (s *Session) Controller() *state.Controller {
	return s.ctrl
}

// Playtime returns cumulative playtime including the current session.
func (s *Session) Playtime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playtimeLocked()
}

func (s *Session) playtimeLocked() time.Duration {
	return s.playtimeBase + s.now().Sub(s.started)
}

// SaveGame persists the current state to a slot. Auto-saves must use the
// reserved auto-save slot; manual saves must not. Returns false when the
// save is disallowed or fails; the slot on disk is untouched in either
// case.
func (s *Session) SaveGame(slot int, autoSave bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if autoSave != (slot == s.cfg.AutoSaveSlot) {
		s.logger.Warn("save refused: wrong slot for save kind", "slot", slot, "auto", autoSave)
		return false
	}
	if autoSave && !s.autoSaveAllowedLocked() {
		return false
	}

	snap := s.ctrl.Snapshot()
	if err := s.engine.Save(slot, snap, s.playtimeLocked()); err != nil {
		s.logger.Error("save failed", "slot", slot, "error", err)
		return false
	}
	if autoSave {
		s.lastAutoSave = s.now()
	}
	return true
}

// LoadGame loads a slot and hands the snapshot to the controller.
func (s *Session) LoadGame(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, meta, err := s.engine.Load(slot)
	if err != nil {
		s.logger.Error("load failed", "slot", slot, "error", err)
		return false
	}

	s.ctrl.Adopt(snap)
	s.playtimeBase = time.Duration(meta.Playtime * float64(time.Second))
	s.started = s.now()
	s.logger.Info("loaded", "slot", slot, "player", meta.PlayerName, "location", meta.Location)
	return true
}

// ListSaveSlots returns every slot with metadata, newest first.
func (s *Session) ListSaveSlots() ([]save.SlotInfo, error) {
	return s.engine.ListSlots()
}

// DeleteSave removes a slot.
func (s *Session) DeleteSave(slot int) bool {
	if err := s.engine.Delete(slot); err != nil {
		s.logger.Warn("delete failed", "slot", slot, "error", err)
		return false
	}
	return true
}

// CheckAutoSave reports whether an auto-save is both due and permitted.
func (s *Session) CheckAutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSaveDueLocked() && s.autoSaveAllowedLocked()
}

// PerformAutoSave writes the reserved auto-save slot if permitted.
func (s *Session) PerformAutoSave() bool {
	return s.SaveGame(s.cfg.AutoSaveSlot, true)
}

func (s *Session) autoSaveDueLocked() bool {
	interval := s.cfg.AutoSaveInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return s.now().Sub(s.lastAutoSave) >= interval
}

// autoSaveAllowedLocked enforces the mid-peril rule: never auto-save
// during battle, during combat, or at high danger.
func (s *Session) autoSaveAllowedLocked() bool {
	if s.ctrl.CurrentMode() == core.ModeBattle {
		return false
	}
	snap := s.ctrl.Snapshot()
	if snap.World.InCombat {
		return false
	}
	if s.ctrl.DangerLevel() >= 0.7 {
		return false
	}
	return true
}
