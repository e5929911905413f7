package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notemate/notemate/internal/client"
	"github.com/notemate/notemate/internal/notes"
)

var (
	listJSON bool
	listView string
	addColor string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}
		display := rec.Displayed()

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(display); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		// The view preference persists across runs; --view changes it.
		view := "compact"
		store.Get(client.ScopeDurable, client.KeyViewMode, &view)
		if listView != "" {
			if listView != "compact" && listView != "full" {
				fatal("Unknown view mode", fmt.Errorf("%q is not compact or full", listView))
			}
			view = listView
			_ = store.Set(client.ScopeDurable, client.KeyViewMode, view)
		}

		if len(display) == 0 {
			fmt.Println("No notes yet. Create one with `notemate add \"...\"`.")
			return
		}
		for _, n := range display {
			if view == "full" {
				printNoteFull(n)
			} else {
				printNoteLine(n)
			}
		}
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}

		note, err := rec.CreateNote(context.Background(), args[0], addColor)
		if err != nil {
			fatal("Could not create note", err)
		}
		fmt.Printf("Created %s\n", shortID(note.ID))
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Replace a note's text",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}

		note, err := rec.UpdateText(context.Background(), resolveID(rec.Working(), args[0]), args[1])
		if err != nil {
			fatal("Could not edit note", err)
		}
		fmt.Printf("Updated %s\n", shortID(note.ID))
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}

		if err := rec.DeleteNote(context.Background(), resolveID(rec.Working(), args[0])); err != nil {
			fatal("Could not delete note", err)
		}
		fmt.Println("Note deleted")
	},
}

var colorCmd = &cobra.Command{
	Use:   "color <id> <color>",
	Short: "Change a note's color",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}

		note, err := rec.SetColor(context.Background(), resolveID(rec.Working(), args[0]), args[1])
		if err != nil {
			fatal("Could not recolor note", err)
		}
		fmt.Printf("Recolored %s to %s\n", shortID(note.ID), colorName(note.Color))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Filter notes by text (persists until changed)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		rec.SetSearchTerm(term)

		if _, err := rec.Reconcile(context.Background()); err != nil {
			fatal("Could not load notes", err)
		}
		display := rec.Displayed()
		if len(display) == 0 {
			fmt.Println("No matching notes.")
			return
		}
		for _, n := range display {
			printNoteLine(n)
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local cache with the server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, rec := newReconciler()
		list, err := rec.Reconcile(context.Background())
		if err != nil {
			fatal("Sync failed", err)
		}
		fmt.Printf("%d notes in your workspace\n", len(list))
	},
}

func printNoteLine(n notes.Note) {
	preview := strings.ReplaceAll(notes.ContentPreview(n.Text, 1), "\n", " ")
	fmt.Printf("%s  [%s]  %s\n", shortID(n.ID), colorName(n.Color), notes.TruncateRunes(preview, 72))
}

func printNoteFull(n notes.Note) {
	fmt.Printf("%s  [%s]  %s\n", shortID(n.ID), colorName(n.Color), n.CreatedAt)
	fmt.Println(notes.ContentPreview(n.Text, 6))
	fmt.Println()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func colorName(color string) string {
	if name, ok := notes.ColorNames[color]; ok {
		return name
	}
	return color
}

// resolveID lets users pass a unique id prefix instead of the full UUID.
func resolveID(list []notes.Note, prefix string) string {
	match := prefix
	count := 0
	for _, n := range list {
		if strings.HasPrefix(n.ID, prefix) {
			match = n.ID
			count++
		}
	}
	if count > 1 {
		fatal("Ambiguous note id", fmt.Errorf("%q matches %d notes", prefix, count))
	}
	return match
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(syncCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listView, "view", "", "Listing layout: compact or full (persists)")
	addCmd.Flags().StringVar(&addColor, "color", "", "Note color (default #FBEB95)")
}
