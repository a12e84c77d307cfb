// Package state implements the game-mode state machine: guarded
// transitions, the derived danger level, and the checkpoint heuristics
// that decide when progress is worth freezing.
package state

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ashvale/duskfall/internal/config"
	"github.com/ashvale/duskfall/internal/core"
	"github.com/ashvale/duskfall/internal/validate"
)

// Controller owns the current game snapshot and is its sole mutator.
// All mutations go through the controller's mutex, so concurrent readers
// never observe a torn snapshot.
type Controller struct {
	mu sync.Mutex

	snap core.GameSnapshot

	profiles *config.ProfileTable
	profile  *config.Profile

	sink   core.CheckpointSink
	logger *log.Logger
	now    func() time.Time

	baseInterval time.Duration

	// Bookkeeping for checkpoint heuristics. Recorded values are
	// refreshed whenever a checkpoint fires.
	lastCheckpoint    time.Time
	lastSaveLocation  string
	consecutiveDeaths int
	lastHealthPct     float64
	lastFactions      map[string]int
	recentValuables   bool

	flags triggerFlags
}

// Options configures a Controller. Collaborators are injected here;
// the controller holds no process-wide state.
type Options struct {
	Profiles *config.ProfileTable
	Tier     config.Tier

	// Sink receives checkpoint records. May be nil, in which case
	// checkpoints are created but not persisted.
	Sink core.CheckpointSink

	Logger *log.Logger

	// CheckpointInterval is the base interval for time-based checkpoint
	// triggers. Zero means the default of three minutes.
	CheckpointInterval time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// New creates a Controller owning snap. The snapshot must pass validation
// with no blocking issues.
func New(snap core.GameSnapshot, opts Options) (*Controller, error) {
	if opts.Profiles == nil {
		return nil, fmt.Errorf("state: difficulty profile table is required")
	}
	if rep := validate.All(&snap); rep.HasBlocking() {
		return nil, fmt.Errorf("state: initial snapshot invalid: %s", rep.Blocking())
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := opts.CheckpointInterval
	if interval <= 0 {
		interval = 3 * time.Minute
	}

	tier := opts.Tier
	if tier == "" {
		if parsed, err := config.ParseTier(snap.DifficultyTier); err == nil {
			tier = parsed
		} else {
			tier = config.TierNormal
		}
	}

	c := &Controller{
		snap:         snap.Clone(),
		profiles:     opts.Profiles,
		profile:      opts.Profiles.Profile(tier),
		sink:         opts.Sink,
		logger:       logger,
		now:          clock,
		baseInterval: interval,
	}
	c.snap.DifficultyTier = string(tier)
	c.recordBaselines()
	c.lastCheckpoint = clock()
	return c, nil
}

// recordBaselines refreshes the values deltas are measured against.
// Callers hold c.mu (or the controller is not yet shared).
func (c *Controller) recordBaselines() {
	c.lastHealthPct = c.healthPct()
	c.lastFactions = make(map[string]int, len(c.snap.Factions))
	for name, v := range c.snap.Factions {
		c.lastFactions[name] = v
	}
	c.lastSaveLocation = c.snap.Location
}

func (c *Controller) healthPct() float64 {
	if c.snap.Player.MaxHealth <= 0 {
		return 0
	}
	return float64(c.snap.Player.Health) / float64(c.snap.Player.MaxHealth) * 100
}

// CurrentMode returns the active game mode.
func (c *Controller) CurrentMode() core.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Mode
}

// Location returns the current location name.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Location
}

// Snapshot returns a deep copy of the current snapshot.
func (c *Controller) Snapshot() core.GameSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Clone()
}

// RequestTransition attempts to switch to a new mode. Illegal transitions
// are a normal outcome: the state is left unchanged and false is returned.
// On success the checkpoint heuristics run before returning.
func (c *Controller) RequestTransition(to core.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.snap.Mode
	if from == to {
		return true
	}
	if !c.transitionAllowed(from, to) {
		c.logger.Debug("transition rejected", "from", from, "to", to)
		return false
	}

	c.snap.Mode = to
	c.logger.Debug("transition", "from", from, "to", to)

	if to == core.ModeTown {
		c.flags.enteredSafeHub = true
	}

	c.checkAutoCheckpointLocked()
	return true
}

// SetDifficulty switches the active difficulty profile.
func (c *Controller) SetDifficulty(tier config.Tier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = c.profiles.Profile(tier)
	c.snap.DifficultyTier = string(c.profile.Tier())
	c.logger.Info("difficulty changed", "tier", c.profile.Tier())
}

// GetDifficultyModifier returns the named multiplier from the active
// profile. Unknown names return 1.0.
func (c *Controller) GetDifficultyModifier(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Modifier(name)
}

// CreateCheckpoint freezes the current state into an immutable record and
// hands it to the checkpoint sink. The record is returned even when the
// sink write fails; the failure is logged and the game keeps running.
func (c *Controller) CreateCheckpoint() (core.CheckpointRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createCheckpointLocked()
}

func (c *Controller) createCheckpointLocked() (core.CheckpointRecord, error) {
	rec := core.CheckpointRecord{
		Timestamp: c.now(),
		Snapshot:  c.snap.Clone(),
	}

	if rep := validate.All(&rec.Snapshot); rep.HasBlocking() {
		return rec, fmt.Errorf("state: checkpoint snapshot invalid: %s", rep.Blocking())
	}

	var err error
	if c.sink != nil {
		if err = c.sink.WriteCheckpoint(rec); err != nil {
			c.logger.Warn("checkpoint write failed", "error", err)
		}
	}

	c.lastCheckpoint = rec.Timestamp
	c.recordBaselines()
	c.recentValuables = false
	c.flags = triggerFlags{}
	return rec, err
}

// LoadCheckpoint adopts the snapshot stored in a checkpoint record.
func (c *Controller) LoadCheckpoint(rec core.CheckpointRecord) error {
	if rep := validate.All(&rec.Snapshot); rep.HasBlocking() {
		return fmt.Errorf("state: checkpoint snapshot invalid: %s", rep.Blocking())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.adoptLocked(rec.Snapshot)
	c.logger.Info("checkpoint restored", "timestamp", rec.Timestamp, "location", c.snap.Location)
	return nil
}

// Adopt replaces the controller state with a loaded snapshot. The save
// facade calls this after a successful load; the snapshot has already
// been validated by the persistence engine.
func (c *Controller) Adopt(snap core.GameSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adoptLocked(snap)
}

// SetSink replaces the checkpoint sink. A nil sink detaches persistence;
// checkpoints are still created but no longer written anywhere.
func (c *Controller) SetSink(sink core.CheckpointSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

func (c *Controller) adoptLocked(snap core.GameSnapshot) {
	c.snap = snap.Clone()
	if tier, err := config.ParseTier(c.snap.DifficultyTier); err == nil {
		c.profile = c.profiles.Profile(tier)
	}
	c.consecutiveDeaths = 0
	c.recentValuables = false
	c.flags = triggerFlags{}
	c.recordBaselines()
	c.lastCheckpoint = c.now()
}

// DebugState returns a one-line description of the controller state for
// diagnostic output.
func (c *Controller) DebugState() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("mode=%s location=%s tier=%s hp=%d/%d danger=%.2f",
		c.snap.Mode, c.snap.Location, c.snap.DifficultyTier,
		c.snap.Player.Health, c.snap.Player.MaxHealth, c.dangerLevelLocked())
}
