package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCustomPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
save_dir: /tmp/duskfall/saves
backup_dir: /tmp/duskfall/backups
auto_save_slot: 9
auto_save_interval: 90s
backup_retention: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SaveDir != "/tmp/duskfall/saves" {
		t.Errorf("SaveDir = %q", cfg.SaveDir)
	}
	if cfg.AutoSaveSlot != 9 {
		t.Errorf("AutoSaveSlot = %d, want 9", cfg.AutoSaveSlot)
	}
	if cfg.AutoSaveInterval != 90*time.Second {
		t.Errorf("AutoSaveInterval = %v, want 90s", cfg.AutoSaveInterval)
	}
	if cfg.BackupRetention != 3 {
		t.Errorf("BackupRetention = %d, want 3", cfg.BackupRetention)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config path")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DUSKFALL_SAVE_DIR", "/env/saves")
	t.Setenv("DUSKFALL_PASSPHRASE", "hollow-crown")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("save_dir: /file/saves\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SaveDir != "/env/saves" {
		t.Errorf("SaveDir = %q, environment should win over the file", cfg.SaveDir)
	}
	if cfg.Passphrase != "hollow-crown" {
		t.Errorf("Passphrase = %q, want value from environment", cfg.Passphrase)
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(string(tier))
		if err != nil {
			t.Errorf("ParseTier(%q) failed: %v", tier, err)
		}
		if got != tier {
			t.Errorf("ParseTier(%q) = %q", tier, got)
		}
	}

	if _, err := ParseTier("impossible"); err == nil {
		t.Error("Expected error for unknown tier name")
	}
}

func TestEmbeddedProfileTable(t *testing.T) {
	table, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles() failed: %v", err)
	}

	for _, tier := range Tiers() {
		p := table.Profile(tier)
		if p == nil {
			t.Fatalf("No profile for tier %q", tier)
		}
		if p.Tier() != tier {
			t.Errorf("Profile(%q).Tier() = %q", tier, p.Tier())
		}
		if len(p.Names()) == 0 {
			t.Errorf("Profile %q has no modifiers", tier)
		}
	}

	// Harder tiers take more damage.
	story := table.Profile(TierStory).Modifier("damage_taken")
	nightmare := table.Profile(TierNightmare).Modifier("damage_taken")
	if story >= nightmare {
		t.Errorf("damage_taken: story %v should be below nightmare %v", story, nightmare)
	}
}

func TestUnknownModifierDefaultsToOne(t *testing.T) {
	table, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles() failed: %v", err)
	}
	if got := table.Profile(TierNormal).Modifier("not_a_real_modifier"); got != 1.0 {
		t.Errorf("Unknown modifier = %v, want 1.0", got)
	}
}

func TestProfileTableRequiresAllTiers(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "difficulty.yaml")
	content := `
tiers:
  normal:
    damage_dealt: 1.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing table: %v", err)
	}
	if _, err := LoadProfiles(path); err == nil {
		t.Error("Expected error for a table missing tiers")
	}
}

func TestUnknownTierFallsBackToNormal(t *testing.T) {
	table, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles() failed: %v", err)
	}
	p := table.Profile(Tier("brutal"))
	if p == nil || p.Tier() != TierNormal {
		t.Error("Unknown tier should fall back to the normal profile")
	}
}
