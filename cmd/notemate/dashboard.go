package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notemate/notemate/internal/client"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show statistics about your notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}

		stats := client.ComputeStats(rec.Working())
		fmt.Printf("Notes:          %d\n", stats.Total)
		if stats.Total == 0 {
			return
		}
		fmt.Printf("Empty:          %d\n", stats.Empty)
		fmt.Printf("Average length: %.1f characters\n", stats.AverageLength)
		if stats.Longest != nil {
			fmt.Printf("Longest:        %s (%d chars)\n", shortID(stats.Longest.ID), len([]rune(stats.Longest.Text)))
		}
		if stats.Shortest != nil {
			fmt.Printf("Shortest:       %s (%d chars)\n", shortID(stats.Shortest.ID), len([]rune(stats.Shortest.Text)))
		}
		if stats.TopColorName != "" {
			fmt.Printf("Favorite color: %s\n", stats.TopColorName)
		}
		for _, c := range stats.Colors {
			fmt.Printf("  %-8s %d\n", c.Name, c.Count)
		}
		if len(stats.Recent) > 0 {
			fmt.Println("Recent:")
			for _, n := range stats.Recent {
				printNoteLine(n)
			}
		}
	},
}

var exportListOnly bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot your notes to the server's object storage",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := newStore()
		remote := newAPIClient(store)

		if exportListOnly {
			keys, err := remote.ListExports(context.Background())
			if err != nil {
				fatal("Could not list exports", err)
			}
			if len(keys) == 0 {
				fmt.Println("No exports yet.")
				return
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return
		}

		result, err := remote.Export(context.Background())
		if err != nil {
			fatal("Export failed", err)
		}
		fmt.Printf("Exported %d notes to %s\n", result.NoteCount, result.Key)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportListOnly, "list", false, "List past exports instead of creating one")
}
