package client

import (
	"sort"
	"time"

	"github.com/notemate/notemate/internal/notes"
)

// ColorCount is one slice of the color distribution.
type ColorCount struct {
	Color string `json:"color"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes a user's notes for the dashboard.
type Stats struct {
	Total         int          `json:"total"`
	Empty         int          `json:"empty"`
	AverageLength float64      `json:"averageLength"`
	Longest       *notes.Note  `json:"longest,omitempty"`
	Shortest      *notes.Note  `json:"shortest,omitempty"`
	Colors        []ColorCount `json:"colors"`
	TopColorName  string       `json:"topColorName"`
	Recent        []notes.Note `json:"recent"`
}

// ComputeStats derives dashboard statistics from a set of notes.
func ComputeStats(list []notes.Note) Stats {
	stats := Stats{Total: len(list)}
	if len(list) == 0 {
		return stats
	}

	totalLen := 0
	colorCounts := make(map[string]int)
	for i := range list {
		n := &list[i]
		length := len([]rune(n.Text))
		totalLen += length
		if length == 0 {
			stats.Empty++
		}
		colorCounts[n.Color]++

		if stats.Longest == nil || length > len([]rune(stats.Longest.Text)) {
			stats.Longest = n
		}
		if stats.Shortest == nil || length < len([]rune(stats.Shortest.Text)) {
			stats.Shortest = n
		}
	}
	// Average over notes that have content; empty drafts would drag it down.
	if withContent := len(list) - stats.Empty; withContent > 0 {
		stats.AverageLength = float64(totalLen) / float64(withContent)
	}

	for color, count := range colorCounts {
		name, ok := notes.ColorNames[color]
		if !ok {
			name = color
		}
		stats.Colors = append(stats.Colors, ColorCount{Color: color, Name: name, Count: count})
	}
	sort.Slice(stats.Colors, func(i, j int) bool {
		if stats.Colors[i].Count != stats.Colors[j].Count {
			return stats.Colors[i].Count > stats.Colors[j].Count
		}
		return stats.Colors[i].Name < stats.Colors[j].Name
	})
	if len(stats.Colors) > 0 {
		stats.TopColorName = stats.Colors[0].Name
	}

	recent := make([]notes.Note, len(list))
	copy(recent, list)
	sort.SliceStable(recent, func(i, j int) bool {
		return parseWhen(recent[i].CreatedAt).After(parseWhen(recent[j].CreatedAt))
	})
	if len(recent) > 3 {
		recent = recent[:3]
	}
	stats.Recent = recent

	return stats
}

func parseWhen(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
