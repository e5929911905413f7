package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/notes"
	"github.com/notemate/notemate/internal/obs"
)

// DefaultCreateInterval is the minimum time between local note creations.
const DefaultCreateInterval = 2 * time.Second

// Reconciler merges the durable note cache with the remote API and maintains
// the working set shown to the user.
//
// The cache is a single shared bucket: notes from previously logged-in users
// coexist with the current user's notes and must survive every write. Notes
// cached without an owner (written by older clients) are repaired by
// stamping the current user's id onto them.
type Reconciler struct {
	store  *Store
	remote *APIClient

	userID    string
	token     string
	firstLoad bool

	// seed provides starter notes when the remote fetch fails or comes
	// back empty on a returning session.
	seed []notes.Note

	searchTerm     string
	working        []notes.Note
	others         []notes.Note
	createInterval time.Duration
	now            func() time.Time
}

// NewReconciler creates a reconciler. remote may be nil for offline use.
func NewReconciler(store *Store, remote *APIClient, seed []notes.Note) *Reconciler {
	r := &Reconciler{
		store:          store,
		remote:         remote,
		seed:           seed,
		createInterval: DefaultCreateInterval,
		now:            time.Now,
	}

	var token, userID string
	store.Get(ScopeSession, KeyAuthToken, &token)
	store.Get(ScopeSession, KeyUserID, &userID)
	r.token = token
	r.userID = userID

	// The welcome tour marker doubles as the first-load flag: when it has
	// never been written, this is the account's very first session and the
	// seed fallback must not fire.
	var seen bool
	r.firstLoad = !store.Get(ScopeSession, KeyWelcomeTour, &seen)

	store.Get(ScopeDurable, KeySearchTerm, &r.searchTerm)
	if remote != nil {
		remote.SetToken(token)
	}
	return r
}

// SetActor overrides the identity read from the store. Used by tests and by
// commands that just logged in.
func (r *Reconciler) SetActor(userID, token string) {
	r.userID = userID
	r.token = token
	if r.remote != nil {
		r.remote.SetToken(token)
	}
}

// SetCreateInterval overrides the local create rate limit.
func (r *Reconciler) SetCreateInterval(d time.Duration) {
	r.createInterval = d
}

// Reconcile runs one full reconciliation cycle and returns the working set:
//
//  1. load the cached bucket and partition it into the actor's notes and
//     everyone else's; repair ownerless notes by stamping the actor's id
//  2. prune notes whose text trims to empty - they are drafts that must
//     never survive
//  3. cache first: any surviving owned notes win outright, no network
//  4. otherwise fetch from the remote when a token is present and this is
//     not the first session; adopt a non-empty result into the cache,
//     preserving other users' notes
//  5. when the fetch fails or returns nothing, fall back to the seed notes -
//     except on the first session, which always starts empty
func (r *Reconciler) Reconcile(ctx context.Context) ([]notes.Note, error) {
	if r.userID == "" {
		return nil, errs.New(errs.Unauthenticated, "not logged in")
	}

	var cached []notes.Note
	r.store.Get(ScopeDurable, KeyNotesData, &cached)

	mine := make([]notes.Note, 0, len(cached))
	others := make([]notes.Note, 0)
	repaired := false
	for _, n := range cached {
		switch n.UserID {
		case r.userID:
			mine = append(mine, n)
		case "":
			n.UserID = r.userID
			mine = append(mine, n)
			repaired = true
		default:
			others = append(others, n)
		}
	}

	pruned := make([]notes.Note, 0, len(mine))
	for _, n := range mine {
		if strings.TrimSpace(n.Text) == "" {
			repaired = true
			continue
		}
		pruned = append(pruned, n)
	}
	mine = pruned
	r.others = others

	if len(mine) > 0 {
		r.working = mine
		if repaired {
			r.persist()
		}
		r.markLoaded()
		return r.Displayed(), nil
	}

	if r.token != "" && !r.firstLoad && r.remote != nil {
		fetched, err := r.remote.AllNotes(ctx)
		if err == nil && len(fetched) > 0 {
			adopted := make([]notes.Note, 0, len(fetched))
			for _, n := range fetched {
				if strings.TrimSpace(n.Text) == "" {
					continue
				}
				n.UserID = r.userID
				adopted = append(adopted, n)
			}
			r.working = adopted
			r.persist()
			r.markLoaded()
			return r.Displayed(), nil
		}
		if err != nil {
			obs.From(ctx).Warn("notes_fetch_failed", "error", err)
		}
		r.working = r.stampedSeed()
		r.persist()
		r.markLoaded()
		return r.Displayed(), nil
	}

	// First session or no token: start empty, never seed.
	r.working = nil
	if repaired {
		r.persist()
	}
	r.markLoaded()
	return r.Displayed(), nil
}

func (r *Reconciler) stampedSeed() []notes.Note {
	stamped := make([]notes.Note, 0, len(r.seed))
	for _, n := range r.seed {
		if strings.TrimSpace(n.Text) == "" {
			continue
		}
		n.UserID = r.userID
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt == "" {
			n.CreatedAt = r.now().UTC().Format(time.RFC3339)
		}
		stamped = append(stamped, n)
	}
	return stamped
}

func (r *Reconciler) markLoaded() {
	if r.firstLoad {
		r.firstLoad = false
		_ = r.store.Set(ScopeSession, KeyWelcomeTour, true)
	}
}

// persist writes the working set merged with other users' notes back to the
// durable cache. Other users' notes are always preserved.
func (r *Reconciler) persist() {
	merged := make([]notes.Note, 0, len(r.working)+len(r.others))
	merged = append(merged, r.working...)
	merged = append(merged, r.others...)
	_ = r.store.Set(ScopeDurable, KeyNotesData, merged)
}

// Displayed returns the working set filtered by the search term: a
// case-insensitive substring match on note text. An empty term shows
// everything.
func (r *Reconciler) Displayed() []notes.Note {
	term := strings.ToLower(strings.TrimSpace(r.searchTerm))
	if term == "" {
		out := make([]notes.Note, len(r.working))
		copy(out, r.working)
		return out
	}

	filtered := make([]notes.Note, 0, len(r.working))
	for _, n := range r.working {
		if strings.Contains(strings.ToLower(n.Text), term) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// SetSearchTerm updates and persists the search filter.
func (r *Reconciler) SetSearchTerm(term string) {
	r.searchTerm = term
	_ = r.store.Set(ScopeDurable, KeySearchTerm, term)
}

// CreateNote adds a note locally and best-effort syncs it to the server.
// Empty text (after trimming) is rejected, never saved. New notes are
// prepended so the freshest note renders first. When the server accepts the
// note, its authoritative record replaces the local draft.
func (r *Reconciler) CreateNote(ctx context.Context, text, color string) (notes.Note, error) {
	if r.userID == "" {
		return notes.Note{}, errs.New(errs.Unauthenticated, "not logged in")
	}
	if strings.TrimSpace(text) == "" {
		return notes.Note{}, errs.New(errs.InvalidArgument, "cannot save an empty note")
	}

	var last string
	if r.store.Get(ScopeDurable, KeyLastNoteCreated, &last) {
		if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
			if r.now().Sub(t) < r.createInterval {
				return notes.Note{}, errs.New(errs.ResourceExhausted, "you're creating notes too quickly")
			}
		}
	}

	if color == "" {
		color = notes.DefaultColor
	}
	draft := notes.Note{
		ID:        uuid.NewString(),
		Text:      text,
		Color:     color,
		UserID:    r.userID,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
	}

	r.working = append([]notes.Note{draft}, r.working...)
	r.persist()
	_ = r.store.Set(ScopeDurable, KeyLastNoteCreated, r.now().UTC().Format(time.RFC3339Nano))

	if r.token != "" && r.remote != nil {
		created, err := r.remote.CreateNote(ctx, text, color)
		if err != nil {
			obs.From(ctx).Warn("note_create_sync_failed", "error", err)
		} else {
			created.UserID = r.userID
			r.working[0] = created
			r.persist()
			return created, nil
		}
	}
	return draft, nil
}

// UpdateText edits a note's text locally and best-effort syncs. Last write
// wins: there is no version check against the server copy.
func (r *Reconciler) UpdateText(ctx context.Context, id, text string) (notes.Note, error) {
	return r.update(ctx, id, &text, nil)
}

// SetColor changes a note's color locally and best-effort syncs.
func (r *Reconciler) SetColor(ctx context.Context, id, color string) (notes.Note, error) {
	return r.update(ctx, id, nil, &color)
}

func (r *Reconciler) update(ctx context.Context, id string, text, color *string) (notes.Note, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return notes.Note{}, errs.New(errs.NotFound, "note not found")
	}

	if text != nil {
		if strings.TrimSpace(*text) == "" {
			return notes.Note{}, errs.New(errs.InvalidArgument, "cannot save an empty note")
		}
		r.working[idx].Text = *text
	}
	if color != nil {
		r.working[idx].Color = *color
	}
	r.working[idx].UpdatedAt = r.now().UTC().Format(time.RFC3339)
	r.persist()

	if r.token != "" && r.remote != nil {
		if synced, err := r.remote.UpdateNote(ctx, id, text, color); err != nil {
			obs.From(ctx).Warn("note_update_sync_failed", "note_id", id, "error", err)
		} else {
			synced.UserID = r.userID
			r.working[idx] = synced
			r.persist()
		}
	}
	return r.working[idx], nil
}

// DeleteNote removes a note from the local cache and best-effort syncs the
// (soft) delete to the server.
func (r *Reconciler) DeleteNote(ctx context.Context, id string) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return errs.New(errs.NotFound, "note not found")
	}

	r.working = append(r.working[:idx], r.working[idx+1:]...)
	r.persist()

	if r.token != "" && r.remote != nil {
		if err := r.remote.DeleteNote(ctx, id); err != nil {
			obs.From(ctx).Warn("note_delete_sync_failed", "note_id", id, "error", err)
		}
	}
	return nil
}

// Working returns the current working set without filtering.
func (r *Reconciler) Working() []notes.Note {
	out := make([]notes.Note, len(r.working))
	copy(out, r.working)
	return out
}

func (r *Reconciler) indexOf(id string) int {
	for i, n := range r.working {
		if n.ID == id {
			return i
		}
	}
	return -1
}
