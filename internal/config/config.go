// Package config provides YAML-based configuration loading and the static
// difficulty profile table for the persistence subsystem.
package config

import "time"

// Config holds the configuration consumed by the persistence engine and
// the session facade. Directory locations and key material are inputs to
// the subsystem, never hard-coded inside it.
type Config struct {
	// SaveDir holds the durable save slots.
	SaveDir string `yaml:"save_dir" env:"SAVE_DIR"`

	// CheckpointDir holds crash-recovery checkpoint files.
	CheckpointDir string `yaml:"checkpoint_dir" env:"CHECKPOINT_DIR"`

	// BackupDir holds pre-overwrite slot backups.
	BackupDir string `yaml:"backup_dir" env:"BACKUP_DIR"`

	// Passphrase is the symmetric key material for save encryption.
	// Kept out of source; the DUSKFALL_PASSPHRASE environment variable
	// takes precedence over any file value.
	Passphrase string `yaml:"passphrase" env:"PASSPHRASE"`

	// AutoSaveSlot is the slot id reserved for auto-saves.
	AutoSaveSlot int `yaml:"auto_save_slot" env:"AUTO_SAVE_SLOT"`

	// AutoSaveInterval is the minimum wall-clock gap between auto-saves.
	AutoSaveInterval time.Duration `yaml:"auto_save_interval" env:"AUTO_SAVE_INTERVAL"`

	// CheckpointInterval is the base interval for time-based checkpoint
	// triggers, before danger scaling.
	CheckpointInterval time.Duration `yaml:"checkpoint_interval" env:"CHECKPOINT_INTERVAL"`

	// BackupRetention is how many backups to keep per slot when pruning.
	BackupRetention int `yaml:"backup_retention" env:"BACKUP_RETENTION"`

	// CheckpointRetention is how many checkpoint files to keep when pruning.
	CheckpointRetention int `yaml:"checkpoint_retention" env:"CHECKPOINT_RETENTION"`
}
