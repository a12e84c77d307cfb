package core

import (
	"encoding/json"
	"testing"
)

func TestModeRoundTrip(t *testing.T) {
	for m := ModeMenu; m <= ModeLoading; m++ {
		parsed, err := ParseMode(m.String())
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", m.String(), err)
		}
		if parsed != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), parsed, m)
		}
	}
}

func TestParseModeUnknown(t *testing.T) {
	if _, err := ParseMode("dungeon"); err == nil {
		t.Error("Expected error for unknown mode name")
	}
}

func TestModePersistsByName(t *testing.T) {
	data, err := json.Marshal(ModeBattle)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"battle"` {
		t.Errorf("Marshal = %s, modes must persist by name", data)
	}

	var m Mode
	if err := json.Unmarshal([]byte(`"quest_log"`), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if m != ModeQuestLog {
		t.Errorf("Unmarshal = %v, want quest_log", m)
	}
}

func TestAdjacencySymmetryOfTownAndExploration(t *testing.T) {
	// The two hub modes must connect in both directions.
	if !Reachable(ModeTown, ModeExploration) || !Reachable(ModeExploration, ModeTown) {
		t.Error("town and exploration must be mutually reachable")
	}
}

func TestShopCannotReachBattle(t *testing.T) {
	if Reachable(ModeShop, ModeBattle) {
		t.Error("shop -> battle must not be adjacent")
	}
}

func TestModeClassification(t *testing.T) {
	if !IsOpenWorld(ModeExploration) || IsOpenWorld(ModeTown) {
		t.Error("exploration is the only open-world mode")
	}
	if !IsTownLike(ModeTown) || IsTownLike(ModeShop) {
		t.Error("town is the only town-like mode")
	}
	if !IsShopLike(ModeShop) || IsShopLike(ModeInventory) {
		t.Error("shop is the only shop-like mode")
	}
}

func TestCloneIsDeep(t *testing.T) {
	snap := GameSnapshot{
		Mode:     ModeExploration,
		Location: "emberhold",
		QuestStatus: map[string]QuestState{
			"q1": QuestActive,
		},
		Player: PlayerData{
			Name:      "Rivena",
			Inventory: []Item{{ID: "sword_iron", Quantity: 1}},
			Equipped:  map[string]string{"weapon": "sword_iron"},
		},
		World: WorldData{
			Enemies:            []Enemy{{ID: "wolf_1"}},
			LocationDanger:     map[string]float64{"emberhold": 0.1},
			ControllingFaction: map[string]string{"emberhold": "merchants_guild"},
		},
		Factions: map[string]int{"merchants_guild": 20},
	}

	clone := snap.Clone()
	clone.QuestStatus["q1"] = QuestFailed
	clone.Player.Inventory[0].Quantity = 99
	clone.Player.Equipped["weapon"] = "other"
	clone.World.Enemies[0].ID = "changed"
	clone.World.LocationDanger["emberhold"] = 0.9
	clone.Factions["merchants_guild"] = -50

	if snap.QuestStatus["q1"] != QuestActive {
		t.Error("QuestStatus aliased between clone and original")
	}
	if snap.Player.Inventory[0].Quantity != 1 {
		t.Error("Inventory aliased between clone and original")
	}
	if snap.Player.Equipped["weapon"] != "sword_iron" {
		t.Error("Equipped aliased between clone and original")
	}
	if snap.World.Enemies[0].ID != "wolf_1" {
		t.Error("Enemies aliased between clone and original")
	}
	if snap.World.LocationDanger["emberhold"] != 0.1 {
		t.Error("LocationDanger aliased between clone and original")
	}
	if snap.Factions["merchants_guild"] != 20 {
		t.Error("Factions aliased between clone and original")
	}
}

func TestCloneNilMapsStayNil(t *testing.T) {
	var snap GameSnapshot
	clone := snap.Clone()
	if clone.QuestStatus != nil || clone.Factions != nil {
		t.Error("Cloning nil maps should keep them nil")
	}
}
