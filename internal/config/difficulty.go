package config

import "fmt"

// Tier is a named difficulty tier.
type Tier string

const (
	TierStory     Tier = "story"
	TierNormal    Tier = "normal"
	TierHard      Tier = "hard"
	TierNightmare Tier = "nightmare"
)

// Tiers lists every difficulty tier in ascending order.
func Tiers() []Tier {
	return []Tier{TierStory, TierNormal, TierHard, TierNightmare}
}

// ParseTier converts a tier name to a Tier.
func ParseTier(name string) (Tier, error) {
	for _, t := range Tiers() {
		if string(t) == name {
			return t, nil
		}
	}
	return TierNormal, fmt.Errorf("config: unknown difficulty tier %q", name)
}

// Profile is an immutable record of named multipliers for one tier.
// Selected once per session and read-only thereafter except via an
// explicit difficulty change.
type Profile struct {
	tier      Tier
	modifiers map[string]float64
}

// Tier returns the tier this profile belongs to.
func (p *Profile) Tier() Tier {
	return p.tier
}

// Modifier returns the named multiplier. Unknown names return 1.0 so a
// missing tuning entry never zeroes out game math.
func (p *Profile) Modifier(name string) float64 {
	if v, ok := p.modifiers[name]; ok {
		return v
	}
	return 1.0
}

// Names returns the modifier names defined for this profile.
func (p *Profile) Names() []string {
	out := make([]string, 0, len(p.modifiers))
	for name := range p.modifiers {
		out = append(out, name)
	}
	return out
}

// ProfileTable maps each difficulty tier to its profile. Built once at
// load time and never mutated afterwards.
type ProfileTable struct {
	profiles map[Tier]*Profile
}

// profileFile is the YAML shape of the difficulty table.
type profileFile struct {
	Tiers map[string]map[string]float64 `yaml:"tiers"`
}

func newProfileTable(raw profileFile) (*ProfileTable, error) {
	t := &ProfileTable{profiles: make(map[Tier]*Profile, len(raw.Tiers))}
	for name, mods := range raw.Tiers {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, err
		}
		copied := make(map[string]float64, len(mods))
		for k, v := range mods {
			copied[k] = v
		}
		t.profiles[tier] = &Profile{tier: tier, modifiers: copied}
	}
	for _, tier := range Tiers() {
		if _, ok := t.profiles[tier]; !ok {
			return nil, fmt.Errorf("config: difficulty table missing tier %q", tier)
		}
	}
	return t, nil
}

// Profile returns the profile for a tier. Unknown tiers fall back to
// normal so the controller always has usable numbers.
func (t *ProfileTable) Profile(tier Tier) *Profile {
	if p, ok := t.profiles[tier]; ok {
		return p
	}
	return t.profiles[TierNormal]
}
