package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/config.yaml
var defaultConfigYAML []byte

//go:embed defaults/difficulty.yaml
var defaultDifficultyYAML []byte

// Default returns the hardcoded fallback configuration, used only if the
// embedded default fails to parse.
func Default() Config {
	return Config{
		SaveDir:             "saves",
		CheckpointDir:       "saves/checkpoints",
		BackupDir:           "saves/backups",
		Passphrase:          "",
		AutoSaveSlot:        0,
		AutoSaveInterval:    5 * time.Minute,
		CheckpointInterval:  3 * time.Minute,
		BackupRetention:     5,
		CheckpointRetention: 20,
	}
}
