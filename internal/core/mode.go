package core

import "fmt"

// Mode represents the current game mode. Exactly one mode is active at a
// time and the Controller is its sole owner.
type Mode int

const (
	ModeMenu Mode = iota
	ModeCharacterCreation
	ModeTown
	ModeExploration
	ModeBattle
	ModeShop
	ModeInventory
	ModeQuestLog
	ModeSave
	ModePaused
	ModeLoading
)

var modeNames = map[Mode]string{
	ModeMenu:              "menu",
	ModeCharacterCreation: "character_creation",
	ModeTown:              "town",
	ModeExploration:       "exploration",
	ModeBattle:            "battle",
	ModeShop:              "shop",
	ModeInventory:         "inventory",
	ModeQuestLog:          "quest_log",
	ModeSave:              "save",
	ModePaused:            "paused",
	ModeLoading:           "loading",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a mode name back to a Mode. Used when adopting
// persisted snapshots.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeMenu, fmt.Errorf("core: unknown mode %q", name)
}

// MarshalText implements encoding.TextMarshaler so modes persist by name,
// not by ordinal. Reordering the enum must never corrupt old saves.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// adjacency lists the modes reachable from each mode. A requested
// transition outside this table is rejected before any guard runs.
// Self-transitions are always legal and are not listed.
var adjacency = map[Mode][]Mode{
	ModeMenu:              {ModeCharacterCreation, ModeLoading, ModeSave},
	ModeCharacterCreation: {ModeTown, ModeMenu},
	ModeTown:              {ModeExploration, ModeShop, ModeInventory, ModeQuestLog, ModeSave, ModePaused, ModeMenu},
	ModeExploration:       {ModeTown, ModeBattle, ModeInventory, ModeQuestLog, ModeSave, ModePaused},
	ModeBattle:            {ModeExploration, ModeInventory, ModePaused},
	ModeShop:              {ModeTown},
	ModeInventory:         {ModeTown, ModeExploration, ModeBattle, ModeQuestLog},
	ModeQuestLog:          {ModeTown, ModeExploration, ModeInventory},
	ModeSave:              {ModeMenu, ModeTown, ModeExploration},
	ModePaused:            {ModeTown, ModeExploration, ModeBattle, ModeMenu},
	ModeLoading:           {ModeTown, ModeExploration, ModeMenu},
}

// Reachable reports whether the static adjacency table lists to as a
// neighbor of from.
func Reachable(from, to Mode) bool {
	for _, m := range adjacency[from] {
		if m == to {
			return true
		}
	}
	return false
}

// IsOpenWorld reports whether a mode exposes the player to the outdoor
// world, which subjects transitions into it to environment guards.
func IsOpenWorld(m Mode) bool {
	return m == ModeExploration
}

// IsTownLike reports whether entering a mode requires tolerable standing
// with the faction controlling the current location.
func IsTownLike(m Mode) bool {
	return m == ModeTown
}

// IsShopLike reports whether a mode involves trading with location NPCs.
func IsShopLike(m Mode) bool {
	return m == ModeShop
}
