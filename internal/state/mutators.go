package state

import "github.com/ashvale/duskfall/internal/core"

// Mutators used by world-simulation callers. Each applies a change to the
// owned snapshot and arms any checkpoint triggers the change implies.

// SetLocation moves the player to a new named location.
func (c *Controller) SetLocation(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == c.snap.Location {
		return
	}
	c.snap.Location = name

	// Location changes only arm the trigger outside danger; fleeing
	// through hostile ground should not freeze progress mid-rout.
	// Backtracking to the spot of the last checkpoint adds nothing
	// worth preserving either.
	if c.dangerLevelLocked() < 0.5 && name != c.lastSaveLocation {
		c.flags.locationChanged = true
	}
}

// SetEnvironment replaces the environment conditions, detecting weather,
// terrain, hazard and day/night boundary changes along the way.
func (c *Controller) SetEnvironment(env core.EnvironmentConditions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.snap.Environment
	c.snap.Environment = env

	if env.Weather != old.Weather {
		c.flags.weatherChanged = true
	}
	if env.Terrain != old.Terrain {
		c.flags.terrainChanged = true
	}
	if env.Hazard && !old.Hazard {
		c.flags.enteredHazard = true
	}
	if crossesBoundary(old.TimeOfDay, env.TimeOfDay, 18) ||
		crossesBoundary(old.TimeOfDay, env.TimeOfDay, 6) {
		c.flags.dayNightCrossed = true
	}
}

// crossesBoundary reports whether the clock moved across the given hour,
// accounting for midnight wraparound.
func crossesBoundary(from, to, hour float64) bool {
	if from == to {
		return false
	}
	if from < to {
		return from < hour && to >= hour
	}
	// Wrapped past midnight.
	return from < hour || to >= hour
}

// SetHealth sets the player's health, clamped to [0, maxHealth]. Reaching
// zero records a death; recovering to half health after repeated deaths
// arms the recovery trigger.
func (c *Controller) SetHealth(health int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &c.snap.Player
	if health < 0 {
		health = 0
	}
	if health > p.MaxHealth {
		health = p.MaxHealth
	}
	p.Health = health

	if health == 0 {
		c.consecutiveDeaths++
		return
	}
	if c.consecutiveDeaths >= 2 && c.healthPct() >= 50 {
		c.flags.recoveredFromDeaths = true
		c.consecutiveDeaths = 0
	}
}

// ApplyDamage reduces health by n points.
func (c *Controller) ApplyDamage(n int) {
	c.SetHealth(c.healthSnapshot() - n)
}

// Heal restores n health points.
func (c *Controller) Heal(n int) {
	c.SetHealth(c.healthSnapshot() + n)
}

func (c *Controller) healthSnapshot() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Player.Health
}

// SetResources sets the player's normalized stamina and mana pools.
func (c *Controller) SetResources(stamina, mana float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Player.Stamina = clamp01(stamina)
	c.snap.Player.Mana = clamp01(mana)
}

// SetFactionStanding sets a faction standing, clamped to [-100, 100].
func (c *Controller) SetFactionStanding(faction string, standing int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if standing < -100 {
		standing = -100
	}
	if standing > 100 {
		standing = 100
	}
	if c.snap.Factions == nil {
		c.snap.Factions = make(map[string]int)
	}
	c.snap.Factions[faction] = standing
}

// UpdateQuest sets a quest's state. A transition into the completed state
// arms the progression trigger.
func (c *Controller) UpdateQuest(id string, qs core.QuestState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.QuestStatus == nil {
		c.snap.QuestStatus = make(map[string]core.QuestState)
	}
	prev := c.snap.QuestStatus[id]
	c.snap.QuestStatus[id] = qs

	if qs == core.QuestCompleted && prev != core.QuestCompleted {
		c.flags.questCompleted = true
	}
}

// SetPlayerLevel sets the player's level; an increase arms the level-up
// trigger.
func (c *Controller) SetPlayerLevel(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level > c.snap.Player.Level {
		c.flags.levelUp = true
	}
	c.snap.Player.Level = level
}

// AddItem adds an item to the inventory, stacking by id. Rare items arm
// the rare-item trigger and tighten the time-based checkpoint interval.
func (c *Controller) AddItem(item core.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &c.snap.Player
	for n := range p.Inventory {
		if p.Inventory[n].ID == item.ID {
			p.Inventory[n].Quantity += item.Quantity
			if item.Rare {
				c.flags.rareItemFound = true
				c.recentValuables = true
			}
			return
		}
	}
	p.Inventory = append(p.Inventory, item)
	if item.Rare {
		c.flags.rareItemFound = true
		c.recentValuables = true
	}
}

// EquipItem assigns an inventory item to an equipment slot. Equipping an
// item not in the inventory is rejected.
func (c *Controller) EquipItem(slot, itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &c.snap.Player
	found := false
	for _, it := range p.Inventory {
		if it.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if p.Equipped == nil {
		p.Equipped = make(map[string]string)
	}
	p.Equipped[slot] = itemID
	return true
}

// EnterCombat marks the start of an engagement.
func (c *Controller) EnterCombat(enemies []core.Enemy, boss, elite bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &c.snap.World
	w.InCombat = true
	w.BossBattle = boss
	w.EliteEnemies = elite
	w.Enemies = append([]core.Enemy(nil), enemies...)
	w.CombatTurnsSinceInventory = 0
}

// EndCombat marks the end of an engagement and arms the combat triggers.
func (c *Controller) EndCombat(victory bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &c.snap.World
	wasBoss := w.BossBattle
	wasElite := w.EliteEnemies

	w.InCombat = false
	w.BossBattle = false
	w.EliteEnemies = false
	w.CombatIntensity = 0
	w.Enemies = nil
	w.InitiativeOrder = nil

	c.flags.leftCombat = true
	if victory && wasBoss {
		c.flags.bossDefeated = true
	}
	if victory && wasElite {
		c.flags.eliteDefeated = true
	}
}

// SetCombatIntensity records the current combat intensity in [0, 1].
func (c *Controller) SetCombatIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.World.CombatIntensity = clamp01(v)
}

// AdvanceCombatTurn increments the turn counter used by the inventory
// guard during battle.
func (c *Controller) AdvanceCombatTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.World.CombatTurnsSinceInventory++
}

// SetWorld replaces the world data wholesale. Intended for world
// simulation bulk updates; no triggers are derived from the diff.
func (c *Controller) SetWorld(w core.WorldData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.World = w
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
