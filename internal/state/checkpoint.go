package state

import (
	"math"
	"time"

	"github.com/ashvale/duskfall/internal/core"
)

// Event is a one-shot world occurrence reported by game-logic callers.
// Each event arms a checkpoint trigger that stays set until the next
// heuristic evaluation that fires.
type Event int

const (
	// Location events.
	EventAreaDiscovered Event = iota
	EventSecretFound
	EventMapUpdated
	EventStrategicPosition
	EventResourceNodeFound

	// Combat events.
	EventPerfectCombat
	EventComboAchieved
	EventAmbushSurvived

	// Health and resource events.
	EventMajorBuff
	EventStatusCleared

	// Progression events.
	EventSkillUnlocked
	EventEquipmentUpgraded
	EventAchievement
	EventMilestone
	EventCollectionComplete

	// Faction events.
	EventTerritoryControl
	EventFactionQuestCompleted

	// Special events.
	EventWorldBoss
	EventInvasion
	EventLimitedEvent
	EventRareSpawn
	EventTreasureFound
	EventCutscene
	EventDialogueChoice
	EventStoryBranch
)

// triggerFlags holds the one-shot checkpoint triggers. The whole struct
// is zeroed after a checkpoint fires, so multiple triggers in the same
// evaluation cycle still produce exactly one checkpoint.
type triggerFlags struct {
	// Location family.
	areaDiscovered     bool
	secretFound        bool
	mapUpdated         bool
	strategicPosition  bool
	resourceNodeFound  bool
	locationChanged    bool
	enteredSafeHub     bool

	// Combat family.
	leftCombat     bool
	bossDefeated   bool
	eliteDefeated  bool
	perfectCombat  bool
	comboAchieved  bool
	ambushSurvived bool

	// Health/resource family.
	recoveredFromDeaths bool
	majorBuff           bool
	statusCleared       bool

	// Progression family.
	questCompleted     bool
	levelUp            bool
	skillUnlocked      bool
	rareItemFound      bool
	equipmentUpgraded  bool
	achievement        bool
	milestone          bool
	collectionComplete bool

	// Environmental family.
	weatherChanged  bool
	dayNightCrossed bool
	enteredHazard   bool
	terrainChanged  bool

	// Faction family.
	territoryControl      bool
	factionQuestCompleted bool

	// Special-event family.
	worldBoss      bool
	invasion       bool
	limitedEvent   bool
	rareSpawn      bool
	treasureFound  bool
	cutscene       bool
	dialogueChoice bool
	storyBranch    bool
}

// NotifyEvent arms the trigger for a one-shot event.
func (c *Controller) NotifyEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := &c.flags
	switch ev {
	case EventAreaDiscovered:
		f.areaDiscovered = true
	case EventSecretFound:
		f.secretFound = true
	case EventMapUpdated:
		f.mapUpdated = true
	case EventStrategicPosition:
		f.strategicPosition = true
	case EventResourceNodeFound:
		f.resourceNodeFound = true
	case EventPerfectCombat:
		f.perfectCombat = true
	case EventComboAchieved:
		f.comboAchieved = true
	case EventAmbushSurvived:
		f.ambushSurvived = true
	case EventMajorBuff:
		f.majorBuff = true
	case EventStatusCleared:
		f.statusCleared = true
	case EventSkillUnlocked:
		f.skillUnlocked = true
	case EventEquipmentUpgraded:
		f.equipmentUpgraded = true
	case EventAchievement:
		f.achievement = true
	case EventMilestone:
		f.milestone = true
	case EventCollectionComplete:
		f.collectionComplete = true
	case EventTerritoryControl:
		f.territoryControl = true
	case EventFactionQuestCompleted:
		f.factionQuestCompleted = true
	case EventWorldBoss:
		f.worldBoss = true
	case EventInvasion:
		f.invasion = true
	case EventLimitedEvent:
		f.limitedEvent = true
	case EventRareSpawn:
		f.rareSpawn = true
	case EventTreasureFound:
		f.treasureFound = true
	case EventCutscene:
		f.cutscene = true
	case EventDialogueChoice:
		f.dialogueChoice = true
	case EventStoryBranch:
		f.storyBranch = true
	}
}

// CheckAutoCheckpoint evaluates every trigger family and creates exactly
// one checkpoint if any fires. Returns true when a checkpoint was created.
func (c *Controller) CheckAutoCheckpoint() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkAutoCheckpointLocked()
}

func (c *Controller) checkAutoCheckpointLocked() bool {
	if !c.anyTriggerLocked() {
		return false
	}
	if _, err := c.createCheckpointLocked(); err != nil {
		c.logger.Warn("auto checkpoint skipped", "error", err)
		return false
	}
	return true
}

// anyTriggerLocked evaluates the union of all trigger families.
func (c *Controller) anyTriggerLocked() bool {
	return c.timeTrigger() ||
		c.locationTrigger() ||
		c.combatTrigger() ||
		c.healthTrigger() ||
		c.progressionTrigger() ||
		c.environmentTrigger() ||
		c.factionTrigger() ||
		c.specialTrigger()
}

// timeTrigger fires when enough wall-clock time has passed since the last
// checkpoint. The interval shrinks with danger, with recent valuable
// finds, and in high-danger locations.
func (c *Controller) timeTrigger() bool {
	interval := c.baseInterval
	scale := 1 - c.dangerLevelLocked()
	if scale < 0.1 {
		scale = 0.1
	}
	interval = scaleDuration(interval, scale)
	if c.recentValuables {
		interval = scaleDuration(interval, 0.75)
	}
	if c.localDanger() > 0.7 {
		interval = scaleDuration(interval, 0.5)
	}
	return c.now().Sub(c.lastCheckpoint) >= interval
}

func (c *Controller) locationTrigger() bool {
	f := &c.flags
	return f.enteredSafeHub || f.locationChanged || f.areaDiscovered ||
		f.secretFound || f.mapUpdated || f.strategicPosition || f.resourceNodeFound
}

func (c *Controller) combatTrigger() bool {
	f := &c.flags
	if f.leftCombat || f.bossDefeated || f.eliteDefeated ||
		f.perfectCombat || f.comboAchieved || f.ambushSurvived {
		return true
	}
	return c.snap.World.CombatIntensity > 0.8
}

func (c *Controller) healthTrigger() bool {
	f := &c.flags
	if f.recoveredFromDeaths || f.majorBuff || f.statusCleared {
		return true
	}

	// Health percentage dropped significantly since the last recording.
	// The threshold loosens with danger so frantic fights do not spam
	// checkpoints on every hit.
	drop := c.lastHealthPct - c.healthPct()
	threshold := 25 * (1 + c.dangerLevelLocked())
	if drop >= threshold {
		return true
	}

	return c.resourceStatus() < 0.2
}

// resourceStatus is the lowest of the player's normalized resource pools.
func (c *Controller) resourceStatus() float64 {
	return math.Min(c.snap.Player.Stamina, c.snap.Player.Mana)
}

func (c *Controller) progressionTrigger() bool {
	f := &c.flags
	return f.questCompleted || f.levelUp || f.skillUnlocked || f.rareItemFound ||
		f.equipmentUpgraded || f.achievement || f.milestone || f.collectionComplete
}

func (c *Controller) environmentTrigger() bool {
	f := &c.flags
	if f.weatherChanged || f.dayNightCrossed || f.enteredHazard || f.terrainChanged {
		return true
	}
	// Reaching a safe hub during extreme weather is worth remembering on
	// its own, even if the hub flag was already consumed.
	return c.snap.Mode == core.ModeTown && hazardousWeather[c.snap.Environment.Weather]
}

// factionTrigger fires on large standing swings and hostility threshold
// crossings relative to the last recorded standings.
func (c *Controller) factionTrigger() bool {
	f := &c.flags
	if f.territoryControl || f.factionQuestCompleted {
		return true
	}
	for name, cur := range c.snap.Factions {
		prev, ok := c.lastFactions[name]
		if !ok {
			continue
		}
		if abs(cur-prev) >= 25 {
			return true
		}
		if crossed(prev, cur, 75) || crossed(prev, cur, -75) {
			return true
		}
	}
	return false
}

func (c *Controller) specialTrigger() bool {
	f := &c.flags
	return f.worldBoss || f.invasion || f.limitedEvent || f.rareSpawn ||
		f.treasureFound || f.cutscene || f.dialogueChoice || f.storyBranch
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// crossed reports whether the value moved across the threshold between
// the two observations.
func crossed(prev, cur, threshold int) bool {
	if threshold >= 0 {
		return prev < threshold && cur >= threshold
	}
	return prev > threshold && cur <= threshold
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
