package state

// DangerLevel returns a [0, 1] score describing how risky the current
// situation is. It scales checkpoint frequency and the auto-save gate.
func (c *Controller) DangerLevel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dangerLevelLocked()
}

func (c *Controller) dangerLevelLocked() float64 {
	var danger float64
	w := &c.snap.World
	env := &c.snap.Environment

	if w.InCombat {
		danger += 0.3
		if w.BossBattle {
			danger += 0.5
		}
	}
	if w.EliteEnemies {
		danger += 0.2
	}
	if env.Hazard {
		danger += 0.2
	}
	if env.LightLevel < 0.3 {
		danger += 0.1
	}
	if env.Visibility < 0.3 {
		danger += 0.1
	}

	if faction, ok := w.ControllingFaction[c.snap.Location]; ok && faction != "" {
		standing := c.snap.Factions[faction]
		switch {
		case standing < -75:
			danger += 0.3
		case standing < -25:
			danger += 0.1
		}
	}

	if danger > 1 {
		danger = 1
	}
	return danger
}

// localDanger returns the danger rating of the current location, as
// mapped by the world simulation. Unknown locations rate 0.
func (c *Controller) localDanger() float64 {
	return c.snap.World.LocationDanger[c.snap.Location]
}
