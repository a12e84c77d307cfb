package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashvale/duskfall/internal/save"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "List crash-recovery checkpoints",
	Long: `Display the checkpoint files in the checkpoint directory, newest
first, with the mode and location captured in each.

Examples:
  duskfall checkpoints`,
	Args: cobra.NoArgs,
	Run:  runCheckpoints,
}

func runCheckpoints(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}

	store, err := save.NewCheckpointStore(cfg.CheckpointDir, cfg.CheckpointRetention, newLogger())
	if err != nil {
		fatalf("Error opening checkpoint directory: %v", err)
	}

	names, err := store.List()
	if err != nil {
		fatalf("Error listing checkpoints: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No checkpoints found.")
		return
	}

	fmt.Printf("  %-32s  %-19s  %-12s  %s\n", "File", "Time", "Mode", "Location")
	fmt.Printf("  %-32s  %-19s  %-12s  %s\n", "----", "----", "----", "--------")
	for _, name := range names {
		rec, err := store.Load(name)
		if err != nil {
			fmt.Printf("  %-32s  (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("  %-32s  %-19s  %-12s  %s\n",
			name,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Snapshot.Mode,
			rec.Snapshot.Location)
	}
}
