// Package notes implements the note model, ownership rules, and CRUD service.
package notes

// Note is the canonical note record. Timestamps are RFC 3339 strings so they
// round-trip unchanged through the JSON API and the client cache.
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Color     string `json:"color"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

// DefaultColor is the color applied when a note is created without one.
const DefaultColor = "#FBEB95"

// Palette is the set of colors the clients offer.
var Palette = []string{"#FBEB95", "#97D2BC", "#FDBAA3", "#AED8FE", "#E8E8E8"}

// ColorNames maps palette colors to display names for dashboards.
var ColorNames = map[string]string{
	"#FBEB95": "Yellow",
	"#97D2BC": "Green",
	"#FDBAA3": "Coral",
	"#AED8FE": "Blue",
	"#E8E8E8": "Grey",
}

// CreateNoteParams are the inputs for creating a note. Text is a pointer so
// an absent field can be told apart from an empty string: absent is rejected,
// empty is stored as-is.
type CreateNoteParams struct {
	Text  *string
	Color string
}

// UpdateNoteParams are the inputs for a partial update. Nil fields keep
// their stored values.
type UpdateNoteParams struct {
	ID    string
	Text  *string
	Color *string
}
