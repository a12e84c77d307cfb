package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashvale/duskfall/internal/save"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old backups and checkpoints",
	Long: `Delete slot backups and checkpoint files beyond the configured
retention counts. The newest files are always kept.

Examples:
  duskfall prune`,
	Args: cobra.NoArgs,
	Run:  runPrune,
}

func runPrune(cmd *cobra.Command, args []string) {
	engine, cfg := openEngine()
	defer engine.Close()

	backups, err := engine.ListBackups()
	if err != nil {
		fatalf("Error listing backups: %v", err)
	}
	for slot, files := range backups {
		if len(files) <= cfg.BackupRetention {
			continue
		}
		if err := engine.PruneBackups(slot, cfg.BackupRetention); err != nil {
			fatalf("Error pruning backups for slot %d: %v", slot, err)
		}
		fmt.Printf("Slot %d: removed %d old backup(s).\n", slot, len(files)-cfg.BackupRetention)
	}

	store, err := save.NewCheckpointStore(cfg.CheckpointDir, cfg.CheckpointRetention, newLogger())
	if err != nil {
		fatalf("Error opening checkpoint directory: %v", err)
	}
	names, err := store.List()
	if err != nil {
		fatalf("Error listing checkpoints: %v", err)
	}
	if len(names) > cfg.CheckpointRetention {
		if err := store.Prune(cfg.CheckpointRetention); err != nil {
			fatalf("Error pruning checkpoints: %v", err)
		}
		fmt.Printf("Removed %d old checkpoint(s).\n", len(names)-cfg.CheckpointRetention)
	}

	fmt.Println("Prune complete.")
}
