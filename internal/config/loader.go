package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load loads the subsystem configuration.
// Search order: customPath -> ~/.duskfall/config.yaml -> ./configs/config.yaml
// -> embedded default. Environment variables (DUSKFALL_ prefix) are applied
// last and override any file value.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DUSKFALL_"}); err != nil {
		return cfg, fmt.Errorf("config: environment overrides: %w", err)
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	var cfg Config

	// Explicit path must parse; anything else falls through.
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userPath := userConfigPath("config.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if the
// home directory is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".duskfall", filename)
}

// LoadProfiles loads the difficulty profile table.
// Search order: customPath -> ~/.duskfall/difficulty.yaml ->
// ./configs/difficulty.yaml -> embedded default.
func LoadProfiles(customPath string) (*ProfileTable, error) {
	var raw profileFile

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return newProfileTable(raw)
	}

	if userPath := userConfigPath("difficulty.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, &raw); err == nil {
				return newProfileTable(raw)
			}
		}
	}

	if data, err := os.ReadFile("configs/difficulty.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &raw); err == nil {
			return newProfileTable(raw)
		}
	}

	if err := yaml.Unmarshal(defaultDifficultyYAML, &raw); err != nil {
		return nil, fmt.Errorf("config: embedded difficulty table is invalid: %w", err)
	}
	return newProfileTable(raw)
}
