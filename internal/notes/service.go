package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/notemate/notemate/internal/db"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/obs"
)

// Service implements note CRUD over the shared database. Every method takes
// the acting user's ID and enforces ownership.
type Service struct {
	db *db.DB
}

// NewService creates a notes service.
func NewService(database *db.DB) *Service {
	return &Service{db: database}
}

// Create stores a new note owned by actorID. An absent text field is
// rejected; an explicitly empty string is stored as-is. A missing color
// falls back to the default.
func (s *Service) Create(ctx context.Context, actorID string, params CreateNoteParams) (Note, error) {
	decision := Authorize(actorID, Note{}, ActionCreate)
	if !decision.Allowed {
		return Note{}, errs.New(errs.Unauthenticated, decision.Reason)
	}

	if params.Text == nil {
		return Note{}, errs.New(errs.InvalidArgument, "text is required")
	}

	color := params.Color
	if color == "" {
		color = DefaultColor
	}

	now := time.Now().UTC().Format(time.RFC3339)
	note := Note{
		ID:        uuid.NewString(),
		Text:      *params.Text,
		Color:     color,
		UserID:    actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertNote(ctx, toRow(note)); err != nil {
		return Note{}, errs.Wrap(errs.Internal, "failed to create note", err)
	}

	obs.From(ctx).Debug("note_created", "note_id", note.ID)
	return note, nil
}

// Get returns a single note. Only the owner may read it; the owner can still
// read a soft-deleted note (IsDeleted is set), everyone else gets 403.
func (s *Service) Get(ctx context.Context, actorID, id string) (Note, error) {
	row, err := s.db.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, errs.New(errs.NotFound, "note not found")
		}
		return Note{}, errs.Wrap(errs.Internal, "failed to load note", err)
	}

	note := fromRow(row)
	decision := Authorize(actorID, note, ActionRead)
	if !decision.Allowed {
		return Note{}, errs.New(errs.PermissionDenied, "you do not own this note")
	}
	return note, nil
}

// List returns the actor's live notes, newest first. Soft-deleted notes and
// other users' notes never appear.
func (s *Service) List(ctx context.Context, actorID string) ([]Note, error) {
	if actorID == "" {
		return nil, errs.New(errs.Unauthenticated, "unauthenticated")
	}

	rows, err := s.db.ListNotesByUser(ctx, actorID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to list notes", err)
	}

	notes := make([]Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, fromRow(row))
	}
	return notes, nil
}

// Update applies a partial update to a note the actor owns. The write is a
// single conditional UPDATE keyed on both id and owner, so a concurrent
// delete can never be overwritten; a zero-row result is disambiguated into
// not_found vs permission_denied afterwards.
func (s *Service) Update(ctx context.Context, actorID string, params UpdateNoteParams) (Note, error) {
	if actorID == "" {
		return Note{}, errs.New(errs.Unauthenticated, "unauthenticated")
	}
	if params.ID == "" {
		return Note{}, errs.New(errs.InvalidArgument, "note id is required")
	}
	if params.Text == nil && params.Color == nil {
		return Note{}, errs.New(errs.InvalidArgument, "nothing to update")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated, err := s.db.UpdateNoteOwned(ctx, params.ID, actorID, params.Text, params.Color, now)
	if err != nil {
		return Note{}, errs.Wrap(errs.Internal, "failed to update note", err)
	}
	if !updated {
		return Note{}, s.mutationFailure(ctx, actorID, params.ID)
	}

	row, err := s.db.GetNote(ctx, params.ID)
	if err != nil {
		return Note{}, errs.Wrap(errs.Internal, "failed to load updated note", err)
	}
	return fromRow(row), nil
}

// Delete soft-deletes a note the actor owns. The row survives with
// is_deleted set; List stops returning it but the owner can still Get it.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == "" {
		return errs.New(errs.Unauthenticated, "unauthenticated")
	}
	if id == "" {
		return errs.New(errs.InvalidArgument, "note id is required")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	deleted, err := s.db.SoftDeleteNoteOwned(ctx, id, actorID, now)
	if err != nil {
		return errs.Wrap(errs.Internal, "failed to delete note", err)
	}
	if !deleted {
		return s.mutationFailure(ctx, actorID, id)
	}

	obs.From(ctx).Debug("note_deleted", "note_id", id)
	return nil
}

// mutationFailure explains a zero-row conditional write: the note either
// does not exist (or is already deleted), or belongs to someone else.
func (s *Service) mutationFailure(ctx context.Context, actorID, id string) error {
	row, err := s.db.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.New(errs.NotFound, "note not found")
		}
		return errs.Wrap(errs.Internal, "failed to load note", err)
	}
	if row.UserID != actorID {
		return errs.New(errs.PermissionDenied, "you do not own this note")
	}
	// Owned but already soft-deleted.
	return errs.New(errs.NotFound, "note not found")
}

func toRow(n Note) db.Note {
	return db.Note{
		ID:        n.ID,
		UserID:    n.UserID,
		Text:      n.Text,
		Color:     n.Color,
		IsDeleted: n.IsDeleted,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func fromRow(row db.Note) Note {
	return Note{
		ID:        row.ID,
		UserID:    row.UserID,
		Text:      row.Text,
		Color:     row.Color,
		IsDeleted: row.IsDeleted,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
