package client

import "github.com/notemate/notemate/internal/notes"

// DefaultSeed is the starter content shown when a returning session has no
// cached notes and the server has nothing (or cannot be reached). First
// sessions never see it.
var DefaultSeed = []notes.Note{
	{
		Text:  "Welcome back to NoteMate!\nYour notes live here. Create one with `notemate add`.",
		Color: "#FBEB95",
	},
	{
		Text:  "Tip: every note can have its own color.\nTry `notemate color <id> \"#97D2BC\"`.",
		Color: "#AED8FE",
	},
	{
		Text:  "Your notes are cached locally and sync to the server when you're online.",
		Color: "#97D2BC",
	},
}
