package client

import (
	"testing"

	"github.com/notemate/notemate/internal/notes"
)

func TestComputeStats_Empty(t *testing.T) {
	t.Parallel()

	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.Longest != nil || stats.Shortest != nil {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	list := []notes.Note{
		{ID: "n1", Text: "short", Color: "#FBEB95", CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: "n2", Text: "a much longer note body", Color: "#97D2BC", CreatedAt: "2026-08-03T10:00:00Z"},
		{ID: "n3", Text: "", Color: "#FBEB95", CreatedAt: "2026-08-02T10:00:00Z"},
		{ID: "n4", Text: "mid", Color: "#FBEB95", CreatedAt: "2026-08-04T10:00:00Z"},
	}

	stats := ComputeStats(list)

	if stats.Total != 4 || stats.Empty != 1 {
		t.Fatalf("total/empty = %d/%d", stats.Total, stats.Empty)
	}
	if stats.Longest == nil || stats.Longest.ID != "n2" {
		t.Fatalf("longest = %+v", stats.Longest)
	}
	if stats.Shortest == nil || stats.Shortest.ID != "n3" {
		t.Fatalf("shortest = %+v", stats.Shortest)
	}

	// Average is over the three notes with content; the empty note does not
	// dilute it.
	wantAvg := float64(len([]rune("short"))+len([]rune("a much longer note body"))+len([]rune("mid"))) / 3
	if stats.AverageLength != wantAvg {
		t.Fatalf("average = %v, want %v", stats.AverageLength, wantAvg)
	}

	if stats.TopColorName != "Yellow" {
		t.Fatalf("top color = %q", stats.TopColorName)
	}
	if len(stats.Colors) != 2 || stats.Colors[0].Count != 3 || stats.Colors[1].Count != 1 {
		t.Fatalf("colors = %+v", stats.Colors)
	}

	// Recent: newest three by createdAt.
	if len(stats.Recent) != 3 {
		t.Fatalf("recent len = %d", len(stats.Recent))
	}
	for i, want := range []string{"n4", "n2", "n3"} {
		if stats.Recent[i].ID != want {
			t.Fatalf("recent[%d] = %s, want %s", i, stats.Recent[i].ID, want)
		}
	}
}

func TestComputeStats_AllEmptyNotes(t *testing.T) {
	t.Parallel()

	stats := ComputeStats([]notes.Note{
		{ID: "n1", Text: "", Color: "#FBEB95"},
		{ID: "n2", Text: "", Color: "#97D2BC"},
	})
	if stats.Total != 2 || stats.Empty != 2 {
		t.Fatalf("total/empty = %d/%d", stats.Total, stats.Empty)
	}
	if stats.AverageLength != 0 {
		t.Fatalf("average = %v, want 0", stats.AverageLength)
	}
}

func TestComputeStats_UnknownColorKeepsHex(t *testing.T) {
	t.Parallel()

	stats := ComputeStats([]notes.Note{{ID: "n1", Text: "x", Color: "#123456"}})
	if len(stats.Colors) != 1 || stats.Colors[0].Name != "#123456" {
		t.Fatalf("colors = %+v", stats.Colors)
	}
}
