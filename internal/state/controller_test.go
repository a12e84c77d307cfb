package state

import (
	"testing"
	"time"

	"github.com/ashvale/duskfall/internal/config"
	"github.com/ashvale/duskfall/internal/core"
)

// testClock is a hand-cranked clock for deterministic trigger timing.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// memorySink records checkpoint writes in memory.
type memorySink struct {
	records []core.CheckpointRecord
}

func (s *memorySink) WriteCheckpoint(rec core.CheckpointRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func baseSnapshot() core.GameSnapshot {
	return core.GameSnapshot{
		Mode:           core.ModeTown,
		Location:       "emberhold",
		DifficultyTier: "normal",
		Player: core.PlayerData{
			Name:      "Rivena",
			Level:     5,
			Health:    100,
			MaxHealth: 100,
			Stamina:   1,
			Mana:      1,
			Inventory: []core.Item{
				{ID: "sword_iron", Name: "Iron Sword", Quantity: 1},
			},
		},
		Environment: core.EnvironmentConditions{
			Weather:    "clear",
			TimeOfDay:  10,
			LightLevel: 1,
			Visibility: 1,
		},
		Factions: map[string]int{"merchants_guild": 20},
	}
}

func newTestController(t *testing.T, snap core.GameSnapshot) (*Controller, *memorySink, *testClock) {
	t.Helper()
	profiles, err := config.LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles() failed: %v", err)
	}
	sink := &memorySink{}
	clock := newTestClock()
	ctrl, err := New(snap, Options{
		Profiles:           profiles,
		Sink:               sink,
		Clock:              clock.Now,
		CheckpointInterval: 3 * time.Minute,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return ctrl, sink, clock
}

func TestNewRejectsInvalidSnapshot(t *testing.T) {
	profiles, err := config.LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles() failed: %v", err)
	}
	snap := baseSnapshot()
	snap.Player.Name = ""
	if _, err := New(snap, Options{Profiles: profiles}); err == nil {
		t.Error("Expected New() to reject an invalid snapshot")
	}
}

func TestSelfTransitionAlwaysAllowed(t *testing.T) {
	ctrl, _, _ := newTestController(t, baseSnapshot())
	if !ctrl.RequestTransition(core.ModeTown) {
		t.Error("Self transition should succeed")
	}
}

func TestUnreachableTransitionRejected(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeShop
	ctrl, _, _ := newTestController(t, snap)

	if ctrl.RequestTransition(core.ModeBattle) {
		t.Error("shop -> battle is not adjacent and must be rejected")
	}
	if ctrl.CurrentMode() != core.ModeShop {
		t.Errorf("Mode changed after rejected transition: %s", ctrl.CurrentMode())
	}
}

func TestShopHoursGuard(t *testing.T) {
	// Daytime: the shop is open.
	snap := baseSnapshot()
	snap.Environment.TimeOfDay = 10
	ctrl, _, _ := newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeShop) {
		t.Error("town -> shop at 10:00 should be allowed")
	}

	// Evening: shops are closed after 20:00.
	snap = baseSnapshot()
	snap.Environment.TimeOfDay = 21
	ctrl, _, _ = newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeShop) {
		t.Error("town -> shop at 21:00 should be rejected")
	}
	if ctrl.CurrentMode() != core.ModeTown {
		t.Errorf("Mode changed after rejected transition: %s", ctrl.CurrentMode())
	}
}

func TestBattleInventoryGuard(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeBattle
	snap.World.InCombat = true
	snap.World.Enemies = []core.Enemy{{ID: "drake_1", Name: "Drake", Boss: true}}
	snap.World.BossBattle = true
	snap.World.CombatTurnsSinceInventory = 5
	ctrl, _, _ := newTestController(t, snap)

	if ctrl.RequestTransition(core.ModeInventory) {
		t.Error("battle -> inventory during a boss battle must be rejected")
	}

	// Same fight, no boss, three turns since last access: allowed.
	snap.World.BossBattle = false
	snap.World.Enemies = []core.Enemy{{ID: "wolf_1", Name: "Wolf"}}
	snap.World.CombatTurnsSinceInventory = 3
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeInventory) {
		t.Error("battle -> inventory with bossBattle=false and 3 turns should be allowed")
	}

	// Too soon after the last access: rejected.
	snap.World.CombatTurnsSinceInventory = 2
	ctrl, _, _ = newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeInventory) {
		t.Error("battle -> inventory after only 2 turns should be rejected")
	}
}

func TestSaveModeBlockedInCombat(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeExploration
	snap.World.InCombat = true
	snap.World.Enemies = []core.Enemy{{ID: "wolf_1", Name: "Wolf"}}
	ctrl, _, _ := newTestController(t, snap)

	if ctrl.RequestTransition(core.ModeSave) {
		t.Error("exploration -> save while in combat must be rejected")
	}

	ctrl.EndCombat(true)
	if !ctrl.RequestTransition(core.ModeSave) {
		t.Error("exploration -> save after combat ends should be allowed")
	}
}

func TestFactionGateOnTown(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeExploration
	snap.Location = "ashen_reach"
	snap.World.ControllingFaction = map[string]string{"ashen_reach": "ironpact"}
	snap.Factions = map[string]int{"ironpact": -60}
	ctrl, _, _ := newTestController(t, snap)

	if ctrl.RequestTransition(core.ModeTown) {
		t.Error("Standing -60 with the controlling faction must bar town entry")
	}

	ctrl.SetFactionStanding("ironpact", -40)
	if !ctrl.RequestTransition(core.ModeTown) {
		t.Error("Standing -40 should permit town entry")
	}
}

func TestFactionGateOnShop(t *testing.T) {
	snap := baseSnapshot()
	snap.World.ControllingFaction = map[string]string{"emberhold": "merchants_guild"}
	snap.Factions = map[string]int{"merchants_guild": 0}
	ctrl, _, _ := newTestController(t, snap)

	// Shops demand strictly positive standing.
	if ctrl.RequestTransition(core.ModeShop) {
		t.Error("Standing 0 must bar the shop")
	}
	ctrl.SetFactionStanding("merchants_guild", 1)
	if !ctrl.RequestTransition(core.ModeShop) {
		t.Error("Standing 1 should permit the shop")
	}
}

func TestNightExplorationNeedsLight(t *testing.T) {
	snap := baseSnapshot()
	snap.Environment.TimeOfDay = 23
	ctrl, _, _ := newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeExploration) {
		t.Error("Exploring at 23:00 without a light source must be rejected")
	}

	snap.Player.HasLightSource = true
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeExploration) {
		t.Error("Exploring at 23:00 with a light source should be allowed")
	}

	snap.Player.HasLightSource = false
	snap.Player.NightVision = true
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeExploration) {
		t.Error("Night vision should also permit night exploration")
	}
}

func TestHazardousWeatherBlocksExploration(t *testing.T) {
	snap := baseSnapshot()
	snap.Environment.Weather = "blizzard"
	ctrl, _, _ := newTestController(t, snap)
	if ctrl.IsSafeToExplore() {
		t.Error("A blizzard without protection is not safe")
	}
	if ctrl.RequestTransition(core.ModeExploration) {
		t.Error("town -> exploration in a blizzard must be rejected")
	}

	snap.Player.WeatherWard = true
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.IsSafeToExplore() {
		t.Error("Weather protection should override the blizzard guard")
	}
}

func TestExtremeConditionsBlockExploration(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*core.GameSnapshot)
	}{
		{"low visibility", func(s *core.GameSnapshot) { s.Environment.Visibility = 0.1 }},
		{"extreme cold", func(s *core.GameSnapshot) { s.Environment.Temperature = -30 }},
		{"extreme heat", func(s *core.GameSnapshot) { s.Environment.Temperature = 50 }},
		{"high wind", func(s *core.GameSnapshot) { s.Environment.WindSpeed = 40 }},
	}
	for _, tc := range cases {
		snap := baseSnapshot()
		tc.mutate(&snap)
		ctrl, _, _ := newTestController(t, snap)
		if ctrl.IsSafeToExplore() {
			t.Errorf("%s: expected unsafe conditions", tc.name)
		}
	}
}

func TestEnhancedVisionOverridesLowVisibility(t *testing.T) {
	snap := baseSnapshot()
	snap.Environment.Visibility = 0.1
	snap.Player.EnhancedVision = true
	ctrl, _, _ := newTestController(t, snap)
	if !ctrl.IsSafeToExplore() {
		t.Error("Enhanced vision should override the visibility guard")
	}
}

func TestEffectRestrictions(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeExploration
	snap.Environment.ActiveEffects = []string{"lockdown"}
	ctrl, _, _ := newTestController(t, snap)

	if ctrl.RequestTransition(core.ModeTown) {
		t.Error("A lockdown must bar town entry")
	}

	snap.Environment.ActiveEffects = nil
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeTown) {
		t.Error("Town entry should succeed once the lockdown lifts")
	}
}

func TestCharacterCreationOnlyForFreshCharacters(t *testing.T) {
	snap := baseSnapshot()
	snap.Mode = core.ModeMenu
	snap.Player.Level = 5
	ctrl, _, _ := newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeCharacterCreation) {
		t.Error("A level 5 character must not re-enter character creation")
	}

	snap.Player.Level = 1
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeCharacterCreation) {
		t.Error("A level 1 character should enter character creation")
	}
}

func TestGuardChainIndependence(t *testing.T) {
	// Two independent blocking conditions: clearing one must not open the
	// transition while the other still holds.
	snap := baseSnapshot()
	snap.Environment.TimeOfDay = 23
	snap.Environment.Weather = "blizzard"
	ctrl, _, _ := newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeExploration) {
		t.Fatal("Expected rejection with two blocking conditions")
	}

	// Clear the darkness problem only.
	snap.Player.HasLightSource = true
	ctrl, _, _ = newTestController(t, snap)
	if ctrl.RequestTransition(core.ModeExploration) {
		t.Error("The blizzard must still block after fixing the light")
	}

	// Clear both.
	snap.Player.WeatherWard = true
	ctrl, _, _ = newTestController(t, snap)
	if !ctrl.RequestTransition(core.ModeExploration) {
		t.Error("Both conditions cleared; transition should succeed")
	}
}

func TestDangerLevel(t *testing.T) {
	snap := baseSnapshot()
	ctrl, _, _ := newTestController(t, snap)
	if got := ctrl.DangerLevel(); got != 0 {
		t.Errorf("Peaceful snapshot danger = %v, want 0", got)
	}

	snap.World.InCombat = true
	snap.World.Enemies = []core.Enemy{{ID: "drake_1", Name: "Drake", Boss: true}}
	snap.World.BossBattle = true
	ctrl, _, _ = newTestController(t, snap)
	if got := ctrl.DangerLevel(); got < 0.79 || got > 0.81 {
		t.Errorf("Boss combat danger = %v, want 0.8", got)
	}

	// Pile everything on; the score clamps at 1.
	snap.World.EliteEnemies = true
	snap.Environment.Hazard = true
	snap.Environment.LightLevel = 0.1
	snap.Environment.Visibility = 0.25
	ctrl, _, _ = newTestController(t, snap)
	if got := ctrl.DangerLevel(); got != 1 {
		t.Errorf("Stacked danger = %v, want clamp at 1", got)
	}
}

func TestHostileTerritoryRaisesDanger(t *testing.T) {
	snap := baseSnapshot()
	snap.Location = "ashen_reach"
	snap.World.ControllingFaction = map[string]string{"ashen_reach": "ironpact"}
	snap.Factions = map[string]int{"ironpact": -80}
	ctrl, _, _ := newTestController(t, snap)
	if got := ctrl.DangerLevel(); got < 0.29 || got > 0.31 {
		t.Errorf("Hostile territory danger = %v, want 0.3", got)
	}
}

func TestDifficultyModifier(t *testing.T) {
	ctrl, _, _ := newTestController(t, baseSnapshot())

	if got := ctrl.GetDifficultyModifier("damage_dealt"); got != 1.0 {
		t.Errorf("normal damage_dealt = %v, want 1.0", got)
	}
	if got := ctrl.GetDifficultyModifier("no_such_modifier"); got != 1.0 {
		t.Errorf("Unknown modifier = %v, want 1.0", got)
	}

	ctrl.SetDifficulty(config.TierStory)
	if got := ctrl.GetDifficultyModifier("damage_taken"); got >= 1.0 {
		t.Errorf("story damage_taken = %v, want below 1.0", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ctrl, _, _ := newTestController(t, baseSnapshot())
	snap := ctrl.Snapshot()
	snap.Factions["merchants_guild"] = -99
	snap.Player.Inventory[0].Quantity = 999

	fresh := ctrl.Snapshot()
	if fresh.Factions["merchants_guild"] != 20 {
		t.Error("Mutating a returned snapshot leaked into controller state")
	}
	if fresh.Player.Inventory[0].Quantity != 1 {
		t.Error("Mutating a returned inventory leaked into controller state")
	}
}

func TestAdoptReplacesState(t *testing.T) {
	ctrl, _, _ := newTestController(t, baseSnapshot())

	loaded := baseSnapshot()
	loaded.Mode = core.ModeExploration
	loaded.Location = "mirefen"
	loaded.DifficultyTier = "hard"
	ctrl.Adopt(loaded)

	if ctrl.CurrentMode() != core.ModeExploration {
		t.Errorf("Mode = %s after adopt", ctrl.CurrentMode())
	}
	if ctrl.Location() != "mirefen" {
		t.Errorf("Location = %q after adopt", ctrl.Location())
	}
	if got := ctrl.GetDifficultyModifier("damage_taken"); got <= 1.0 {
		t.Errorf("hard damage_taken = %v, want above 1.0", got)
	}
}
