package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the slot metadata index",
	Long: `Rescan every slot file and rebuild the metadata index from scratch.
Useful after copying save files in from another machine.

Examples:
  duskfall reindex`,
	Args: cobra.NoArgs,
	Run:  runReindex,
}

func runReindex(cmd *cobra.Command, args []string) {
	engine, _ := openEngine()
	defer engine.Close()

	if err := engine.RebuildIndex(); err != nil {
		fatalf("Error rebuilding index: %v", err)
	}
	fmt.Println("Index rebuilt.")
}
