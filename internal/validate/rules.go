package validate

import (
	"fmt"

	"github.com/ashvale/duskfall/internal/core"
)

// checkPlayer applies structural and semantic rules to player data.
func checkPlayer(snap *core.GameSnapshot) Report {
	var out Report
	p := &snap.Player

	if p.Name == "" {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "playerData.name",
			Message:  "player name is required",
			Value:    p.Name,
			Expected: "non-empty string",
		})
	}
	if p.Level < 1 {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "playerData.level",
			Message:  "level below minimum",
			Value:    p.Level,
			Expected: ">= 1",
		})
	}
	if p.MaxHealth <= 0 {
		out = append(out, Issue{
			Severity: SeverityCritical,
			Path:     "playerData.maxHealth",
			Message:  "max health must be positive",
			Value:    p.MaxHealth,
			Expected: "> 0",
		})
	}
	if p.Health < 0 {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "playerData.health",
			Message:  "health is negative",
			Value:    p.Health,
			Expected: ">= 0",
		})
	}
	if p.MaxHealth > 0 && p.Health > p.MaxHealth {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "playerData.health",
			Message:  "health exceeds max health",
			Value:    p.Health,
			Expected: fmt.Sprintf("<= %d", p.MaxHealth),
		})
	}

	// Every equipped slot must reference an item present in the inventory.
	have := make(map[string]bool, len(p.Inventory))
	for _, it := range p.Inventory {
		have[it.ID] = true
	}
	for slot, id := range p.Equipped {
		if !have[id] {
			out = append(out, Issue{
				Severity: SeverityError,
				Path:     "playerData.equipped." + slot,
				Message:  "equipped item not present in inventory",
				Value:    id,
				Expected: "inventory item id",
			})
		}
	}

	for n, it := range p.Inventory {
		if it.ID == "" {
			out = append(out, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("playerData.inventory[%d].id", n),
				Message:  "inventory item missing id",
				Value:    it.Name,
				Expected: "non-empty string",
			})
		}
		if it.Quantity < 0 {
			out = append(out, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("playerData.inventory[%d].quantity", n),
				Message:  "negative item quantity",
				Value:    it.Quantity,
				Expected: ">= 0",
			})
		}
	}

	return out
}

// checkWorld applies rules to world, environment and faction data.
func checkWorld(snap *core.GameSnapshot) Report {
	var out Report

	if snap.Location == "" {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "location",
			Message:  "location is required",
			Value:    snap.Location,
			Expected: "non-empty string",
		})
	}

	for name, standing := range snap.Factions {
		if standing < -100 || standing > 100 {
			out = append(out, Issue{
				Severity: SeverityError,
				Path:     "factionStandings." + name,
				Message:  "faction standing out of range",
				Value:    standing,
				Expected: "[-100, 100]",
			})
		}
	}

	env := &snap.Environment
	if env.TimeOfDay < 0 || env.TimeOfDay >= 24 {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "environmentConditions.timeOfDay",
			Message:  "time of day out of range",
			Value:    env.TimeOfDay,
			Expected: "[0, 24)",
		})
	}
	if env.Visibility < 0 || env.Visibility > 1 {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     "environmentConditions.visibility",
			Message:  "visibility out of range",
			Value:    env.Visibility,
			Expected: "[0.0, 1.0]",
		})
	}
	if env.LightLevel < 0 || env.LightLevel > 1 {
		out = append(out, Issue{
			Severity: SeverityWarning,
			Path:     "environmentConditions.lightLevel",
			Message:  "light level out of range",
			Value:    env.LightLevel,
			Expected: "[0.0, 1.0]",
		})
	}
	if env.Weather == "" {
		out = append(out, Issue{
			Severity: SeverityInfo,
			Path:     "environmentConditions.weather",
			Message:  "weather not set",
			Value:    env.Weather,
		})
	}

	// Active events must have unique ids.
	seen := make(map[string]bool, len(snap.World.ActiveEvents))
	for n, ev := range snap.World.ActiveEvents {
		if seen[ev.ID] {
			out = append(out, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("worldData.activeEvents[%d].id", n),
				Message:  "duplicate active event id",
				Value:    ev.ID,
				Expected: "unique id",
			})
		}
		seen[ev.ID] = true
	}

	for loc, danger := range snap.World.LocationDanger {
		if danger < 0 || danger > 1 {
			out = append(out, Issue{
				Severity: SeverityWarning,
				Path:     "worldData.locationDanger." + loc,
				Message:  "danger rating out of range",
				Value:    danger,
				Expected: "[0.0, 1.0]",
			})
		}
	}

	return out
}

// checkCombat applies combat-consistency rules. An empty enemy list while
// inCombat is only a WARNING: combat can legitimately end mid-validation.
func checkCombat(snap *core.GameSnapshot) Report {
	var out Report
	w := &snap.World

	if w.InCombat && len(w.Enemies) == 0 {
		out = append(out, Issue{
			Severity: SeverityWarning,
			Path:     "worldData.enemies",
			Message:  "in combat with no enemies",
			Value:    len(w.Enemies),
			Expected: ">= 1 enemy while inCombat",
		})
	}
	if w.BossBattle && !w.InCombat {
		out = append(out, Issue{
			Severity: SeverityWarning,
			Path:     "worldData.bossBattle",
			Message:  "boss battle flagged outside combat",
			Value:    w.BossBattle,
		})
	}
	if w.CombatIntensity < 0 || w.CombatIntensity > 1 {
		out = append(out, Issue{
			Severity: SeverityWarning,
			Path:     "worldData.combatIntensity",
			Message:  "combat intensity out of range",
			Value:    w.CombatIntensity,
			Expected: "[0.0, 1.0]",
		})
	}

	// Initiative order must contain no duplicate entries.
	seen := make(map[string]bool, len(w.InitiativeOrder))
	for n, id := range w.InitiativeOrder {
		if seen[id] {
			out = append(out, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("worldData.initiativeOrder[%d]", n),
				Message:  "duplicate initiative entry",
				Value:    id,
				Expected: "unique combatant id",
			})
		}
		seen[id] = true
	}

	return out
}
