// Package core defines the shared game-state vocabulary: modes, the
// snapshot types that are persisted as a unit, and checkpoint records.
// It has no dependencies so every other package can build on it.
package core

import "time"

// QuestState is the lifecycle stage of a single quest.
type QuestState string

const (
	QuestNotStarted QuestState = "not_started"
	QuestActive     QuestState = "active"
	QuestCompleted  QuestState = "completed"
	QuestFailed     QuestState = "failed"
)

// Item is a single inventory entry.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Rare     bool   `json:"rare,omitempty"`
}

// PlayerData carries everything owned by the player character.
type PlayerData struct {
	Name      string `json:"name"`
	Level     int    `json:"level"`
	XP        int    `json:"xp"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
	Stamina   float64 `json:"stamina"`
	Mana      float64 `json:"mana"`

	Inventory []Item            `json:"inventory"`
	Equipped  map[string]string `json:"equipped"` // slot -> item id

	StatusEffects []string `json:"statusEffects,omitempty"`

	HasLightSource bool `json:"hasLightSource,omitempty"`
	NightVision    bool `json:"nightVision,omitempty"`
	EnhancedVision bool `json:"enhancedVision,omitempty"`
	WeatherWard    bool `json:"weatherWard,omitempty"` // overrides hazardous-weather guard
}

// Enemy is a combatant currently engaged with the player.
type Enemy struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Elite bool   `json:"elite,omitempty"`
	Boss  bool   `json:"boss,omitempty"`
}

// ActiveEvent is a world event currently in effect.
type ActiveEvent struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// WorldData carries combat and world-simulation state.
type WorldData struct {
	InCombat                 bool    `json:"inCombat"`
	BossBattle               bool    `json:"bossBattle"`
	EliteEnemies             bool    `json:"eliteEnemies"`
	CombatIntensity          float64 `json:"combatIntensity"`
	CombatTurnsSinceInventory int    `json:"combatTurnsSinceInventory"`

	Enemies        []Enemy  `json:"enemies,omitempty"`
	InitiativeOrder []string `json:"initiativeOrder,omitempty"`

	ActiveEvents []ActiveEvent `json:"activeEvents,omitempty"`

	// LocationDanger maps a location name to its [0,1] danger rating.
	LocationDanger map[string]float64 `json:"locationDanger,omitempty"`

	// ControllingFaction maps a location name to the faction that holds it.
	ControllingFaction map[string]string `json:"controllingFaction,omitempty"`
}

// EnvironmentConditions is the mutable environment owned by the Controller
// and updated by world-simulation callers.
type EnvironmentConditions struct {
	Weather     string  `json:"weather"`
	TimeOfDay   float64 `json:"timeOfDay"`   // hours, [0, 24)
	Temperature float64 `json:"temperature"` // celsius
	WindSpeed   float64 `json:"windSpeed"`
	Hazard      bool    `json:"hazard"`
	Terrain     string  `json:"terrain"`
	LightLevel  float64 `json:"lightLevel"` // [0, 1]
	Visibility  float64 `json:"visibility"` // [0, 1]

	ActiveEffects []string `json:"activeEffects,omitempty"`
}

// GameSnapshot is the unit of truth: the complete game state at one
// instant, persisted as a single value.
type GameSnapshot struct {
	Mode           Mode                  `json:"mode"`
	Location       string                `json:"location"`
	DifficultyTier string                `json:"difficultyTier"`
	QuestStatus    map[string]QuestState `json:"questStatusMap"`
	Player         PlayerData            `json:"playerData"`
	World          WorldData             `json:"worldData"`
	Environment    EnvironmentConditions `json:"environmentConditions"`
	Factions       map[string]int        `json:"factionStandings"`
}

// Clone returns a deep copy of the snapshot so readers never alias
// Controller-owned maps and slices.
func (s GameSnapshot) Clone() GameSnapshot {
	out := s
	out.QuestStatus = copyMap(s.QuestStatus)
	out.Factions = copyMap(s.Factions)
	out.Player.Inventory = append([]Item(nil), s.Player.Inventory...)
	out.Player.Equipped = copyMap(s.Player.Equipped)
	out.Player.StatusEffects = append([]string(nil), s.Player.StatusEffects...)
	out.World.Enemies = append([]Enemy(nil), s.World.Enemies...)
	out.World.InitiativeOrder = append([]string(nil), s.World.InitiativeOrder...)
	out.World.ActiveEvents = append([]ActiveEvent(nil), s.World.ActiveEvents...)
	out.World.LocationDanger = copyMap(s.World.LocationDanger)
	out.World.ControllingFaction = copyMap(s.World.ControllingFaction)
	out.Environment.ActiveEffects = append([]string(nil), s.Environment.ActiveEffects...)
	return out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CheckpointRecord is an immutable timestamped snapshot written for crash
// recovery. Later checkpoints supersede earlier ones; a record is never
// edited after creation.
type CheckpointRecord struct {
	Timestamp time.Time    `json:"timestamp"`
	Snapshot  GameSnapshot `json:"snapshot"`
}

// CheckpointSink receives checkpoint records as they are created. The
// persistence layer implements this; the Controller never touches disk.
type CheckpointSink interface {
	WriteCheckpoint(rec CheckpointRecord) error
}
