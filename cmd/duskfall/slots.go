package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List save slots with metadata",
	Long: `Display every save slot with player, location, and timing metadata,
newest first.

Examples:
  duskfall slots
  duskfall slots --save-dir ./saves`,
	Args: cobra.NoArgs,
	Run:  runSlots,
}

func runSlots(cmd *cobra.Command, args []string) {
	engine, cfg := openEngine()
	defer engine.Close()

	infos, err := engine.ListSlots()
	if err != nil {
		fatalf("Error listing slots: %v", err)
	}

	if len(infos) == 0 {
		fmt.Println("No save slots found.")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-5s  %-20s  %-10s  %s\n",
		"Slot", "Player", "Level", "Location", "Playtime", "Saved")
	fmt.Printf("  %-4s  %-16s  %-5s  %-20s  %-10s  %s\n",
		"----", "------", "-----", "--------", "--------", "-----")

	for _, info := range infos {
		label := fmt.Sprintf("%d", info.Slot)
		if info.Slot == cfg.AutoSaveSlot {
			label += "*"
		}
		playtime := time.Duration(info.Meta.Playtime * float64(time.Second)).Round(time.Second)
		fmt.Printf("  %-4s  %-16s  %-5d  %-20s  %-10s  %s\n",
			label,
			info.Meta.PlayerName,
			info.Meta.PlayerLevel,
			info.Meta.Location,
			playtime,
			info.Meta.Timestamp.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Printf("* auto-save slot (%d)\n", cfg.AutoSaveSlot)
}
