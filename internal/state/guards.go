package state

import "github.com/ashvale/duskfall/internal/core"

// hazardousWeather lists weather kinds that block open-world modes unless
// the player carries weather protection.
var hazardousWeather = map[string]bool{
	"blizzard":  true,
	"tornado":   true,
	"sandstorm": true,
}

// effectRestrictions maps an active environmental effect to the modes it
// forbids while in effect.
var effectRestrictions = map[string][]core.Mode{
	"lockdown":      {core.ModeTown, core.ModeShop},
	"combat_lock":   {core.ModeInventory, core.ModeSave},
	"dread_miasma":  {core.ModeExploration},
	"market_curfew": {core.ModeShop},
}

// transitionAllowed evaluates the full guard chain for a transition.
// Every condition must hold; each is independent so clearing one blocking
// condition never invalidates another. Callers hold c.mu.
func (c *Controller) transitionAllowed(from, to core.Mode) bool {
	if !core.Reachable(from, to) {
		return false
	}
	if !c.modeGuard(from, to) {
		return false
	}
	if !c.effectsAllow(to) {
		return false
	}
	if !c.factionAllows(to) {
		return false
	}
	if !c.timeOfDayAllows(to) {
		return false
	}
	if core.IsOpenWorld(to) && !c.safeToExplore() {
		return false
	}
	return true
}

// modeGuard is the per-edge guard predicate, dispatched by target mode.
func (c *Controller) modeGuard(from, to core.Mode) bool {
	w := &c.snap.World
	switch to {
	case core.ModeInventory:
		// Opening the pack mid-battle needs breathing room: never during
		// a boss fight, and only after a few turns without access.
		if from == core.ModeBattle {
			return !w.BossBattle && w.CombatTurnsSinceInventory >= 3
		}
		return true
	case core.ModeSave:
		return !w.InCombat
	case core.ModeExploration:
		if from == core.ModeBattle {
			return !w.InCombat
		}
		return true
	case core.ModeTown:
		if from == core.ModeBattle {
			return !w.InCombat
		}
		return true
	case core.ModeCharacterCreation:
		// Only a fresh session may create a character.
		return c.snap.Player.Level <= 1
	default:
		return true
	}
}

// effectsAllow checks the active environmental effects against the
// restriction table.
func (c *Controller) effectsAllow(to core.Mode) bool {
	for _, effect := range c.snap.Environment.ActiveEffects {
		for _, forbidden := range effectRestrictions[effect] {
			if forbidden == to {
				return false
			}
		}
	}
	return true
}

// factionAllows checks standing with the faction controlling the current
// location. Locations without a controlling faction impose no restriction.
func (c *Controller) factionAllows(to core.Mode) bool {
	faction, ok := c.snap.World.ControllingFaction[c.snap.Location]
	if !ok || faction == "" {
		return true
	}
	standing := c.snap.Factions[faction]

	switch {
	case core.IsTownLike(to):
		return standing > -50
	case core.IsShopLike(to):
		return standing > 0
	case to == core.ModeQuestLog:
		return standing > -25
	default:
		return true
	}
}

// timeOfDayAllows enforces local-hour restrictions.
func (c *Controller) timeOfDayAllows(to core.Mode) bool {
	hour := c.snap.Environment.TimeOfDay

	if core.IsShopLike(to) {
		return hour >= 6 && hour < 20
	}

	if core.IsOpenWorld(to) && (hour >= 22 || hour < 5) {
		p := &c.snap.Player
		return p.HasLightSource || p.NightVision
	}

	return true
}

// IsSafeToExplore reports whether current environmental conditions permit
// entering an open-world mode.
func (c *Controller) IsSafeToExplore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.safeToExplore()
}

func (c *Controller) safeToExplore() bool {
	env := &c.snap.Environment
	p := &c.snap.Player

	if hazardousWeather[env.Weather] && !p.WeatherWard {
		return false
	}
	if env.Visibility < 0.2 && !p.EnhancedVision {
		return false
	}
	if env.Temperature < -20 || env.Temperature > 45 {
		return false
	}
	if env.WindSpeed > 30 {
		return false
	}
	return true
}
