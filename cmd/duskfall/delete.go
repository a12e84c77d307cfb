package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ashvale/duskfall/internal/save"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a save slot",
	Long: `Remove a slot file and its index entry. Backups for the slot are
kept; use 'duskfall prune' to clear those.

Examples:
  duskfall delete 2`,
	Args: cobra.ExactArgs(1),
	Run:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		fatalf("Error: slot must be a number, got %q", args[0])
	}

	engine, _ := openEngine()
	defer engine.Close()

	if err := engine.Delete(slot); err != nil {
		if errors.Is(err, save.ErrSlotNotFound) {
			fatalf("Slot %d not found.", slot)
		}
		fatalf("Error deleting slot %d: %v", slot, err)
	}
	fmt.Printf("Deleted slot %d.\n", slot)
}
