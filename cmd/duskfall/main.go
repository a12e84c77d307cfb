// duskfall is the save-data maintenance tool for the Duskfall persistence
// subsystem.
//
// Usage:
//
//	duskfall slots                - List save slots with metadata
//	duskfall verify <slot>        - Decode and validate a save slot
//	duskfall delete <slot>        - Delete a save slot
//	duskfall checkpoints          - List crash-recovery checkpoints
//	duskfall prune                - Prune old backups and checkpoints
//	duskfall reindex              - Rebuild the slot metadata index
//
// Global flags:
//
//	--config <path>    - Config file path (default: search path)
//	--save-dir <path>  - Override the save directory
//	--verbose          - Debug-level logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ashvale/duskfall/internal/config"
	"github.com/ashvale/duskfall/internal/save"
)

var (
	// Global flags
	flagConfig  string
	flagSaveDir string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duskfall",
	Short: "Duskfall save-data maintenance",
	Long: `Inspect and maintain Duskfall save data: list slots, verify save
integrity, delete slots, and prune old backups and checkpoints.

Examples:
  duskfall slots
  duskfall verify 1
  duskfall delete 2
  duskfall checkpoints
  duskfall prune
  duskfall reindex`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&flagSaveDir, "save-dir", "", "Override save directory")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Debug-level logging")

	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(checkpointsCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(reindexCmd)
}

// newLogger builds the shared CLI logger.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// loadConfig applies the global flags on top of the loaded config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSaveDir != "" {
		cfg.SaveDir = flagSaveDir
	}
	return cfg, nil
}

// openEngine is the shared setup path for slot-touching subcommands.
func openEngine() (*save.Engine, config.Config) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	engine, err := save.NewEngine(cfg, newLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save directory: %v\n", err)
		os.Exit(1)
	}
	return engine, cfg
}
