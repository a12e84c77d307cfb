package save

import (
	"encoding/json"
	"fmt"
)

// migration rewrites a snapshot from one schema version to the next.
// Steps operate on the untyped JSON form so old shapes that no longer
// match the current structs can still be carried forward.
type migration struct {
	from  int
	apply func(snap map[string]any) error
}

// defaultMigrations is the chain shipped with this release. Steps must
// form a contiguous chain ending at CurrentVersion.
func defaultMigrations() []migration {
	return []migration{
		{from: 1, apply: migrateV1EnvironmentDefaults},
		{from: 2, apply: migrateV2FactionRename},
	}
}

// migrate applies every step from the stored version up to CurrentVersion.
func (e *Engine) migrate(raw json.RawMessage, from int) (json.RawMessage, error) {
	if from > CurrentVersion {
		return nil, fmt.Errorf("stored version %d is newer than supported %d", from, CurrentVersion)
	}

	var snap map[string]any
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}

	version := from
	for version < CurrentVersion {
		step, ok := e.stepFrom(version)
		if !ok {
			return nil, fmt.Errorf("no migration from version %d", version)
		}
		if err := step.apply(snap); err != nil {
			return nil, fmt.Errorf("step v%d: %w", version, err)
		}
		e.logger.Info("migrated save", "from", version, "to", version+1)
		version++
	}

	return json.Marshal(snap)
}

func (e *Engine) stepFrom(version int) (migration, bool) {
	for _, step := range e.steps {
		if step.from == version {
			return step, true
		}
	}
	return migration{}, false
}

// migrateV1EnvironmentDefaults backfills the environment block that v1
// saves predate.
func migrateV1EnvironmentDefaults(snap map[string]any) error {
	if _, ok := snap["environmentConditions"]; ok {
		return nil
	}
	snap["environmentConditions"] = map[string]any{
		"weather":     "clear",
		"timeOfDay":   12.0,
		"temperature": 18.0,
		"windSpeed":   5.0,
		"hazard":      false,
		"terrain":     "plains",
		"lightLevel":  1.0,
		"visibility":  1.0,
	}
	return nil
}

// migrateV2FactionRename renames the v2 "reputations" key to
// "factionStandings".
func migrateV2FactionRename(snap map[string]any) error {
	if _, ok := snap["factionStandings"]; ok {
		return nil
	}
	if reps, ok := snap["reputations"]; ok {
		snap["factionStandings"] = reps
		delete(snap, "reputations")
	} else {
		snap["factionStandings"] = map[string]any{}
	}
	return nil
}
