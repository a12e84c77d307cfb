package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ashvale/duskfall/internal/save"
	"github.com/ashvale/duskfall/internal/validate"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <slot>",
	Short: "Decode and validate a save slot",
	Long: `Load a slot through the full pipeline (decrypt, decompress, checksum,
migrate) and run every validation category over the result. A corrupt
slot that was recovered from a backup is reported as such.

Examples:
  duskfall verify 1`,
	Args: cobra.ExactArgs(1),
	Run:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		fatalf("Error: slot must be a number, got %q", args[0])
	}

	engine, _ := openEngine()
	defer engine.Close()

	snap, meta, err := engine.Load(slot)
	if err != nil {
		if errors.Is(err, save.ErrSlotNotFound) {
			fatalf("Slot %d not found.", slot)
		}
		if errors.Is(err, save.ErrCorrupt) {
			fatalf("Slot %d is corrupt and no usable backup exists: %v", slot, err)
		}
		fatalf("Error loading slot %d: %v", slot, err)
	}

	fmt.Printf("Slot %d: %s (level %d) at %s\n",
		slot, meta.PlayerName, meta.PlayerLevel, meta.Location)
	fmt.Printf("Format version %d, saved %s\n",
		meta.Version, meta.Timestamp.Format("2006-01-02 15:04:05"))

	report := validate.All(&snap)
	if len(report) == 0 {
		fmt.Println("Validation: clean.")
		return
	}

	fmt.Printf("Validation: %d issue(s)\n", len(report))
	fmt.Println(report.String())
	if report.HasBlocking() {
		os.Exit(1)
	}
}
