package client_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/notemate/notemate/internal/api"
	"github.com/notemate/notemate/internal/auth"
	"github.com/notemate/notemate/internal/client"
	"github.com/notemate/notemate/internal/email"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/notes"
	"github.com/notemate/notemate/internal/ratelimit"
	"github.com/notemate/notemate/internal/s3client"
	"github.com/notemate/notemate/internal/testdb"
)

const testSecret = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// newRemote spins up a real server so reconciliation runs against the actual
// REST surface rather than a scripted fake.
func newRemote(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := testdb.NewInMemory()
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	mail := email.NewMockEmailService()
	storage := s3client.TestClient(t, "notemate-test")
	notesService := notes.NewService(database)
	exporter := notes.NewExporter(notesService, storage, mail)
	users := auth.NewUserService(database, tokens, mail)

	limiter := ratelimit.NewRateLimiter(ratelimit.Config{RPS: 1000, Burst: 1000, CleanupInterval: time.Hour})
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(users, notesService, exporter), tokens, limiter))
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, store *client.Store, baseURL, emailAddr string) (userID, token string) {
	t.Helper()
	remote := client.NewAPIClient(baseURL)
	resp, err := remote.Signup(context.Background(), "Tester", emailAddr, "s3cret")
	require.NoError(t, err)

	require.NoError(t, store.Set(client.ScopeSession, client.KeyAuthToken, resp.Token))
	require.NoError(t, store.Set(client.ScopeSession, client.KeyUserID, resp.UserID))
	return resp.UserID, resp.Token
}

func newTestStore(t *testing.T) *client.Store {
	t.Helper()
	return client.NewStore(t.TempDir(), t.TempDir())
}

func cachedNotes(t *testing.T, store *client.Store) []notes.Note {
	t.Helper()
	var cached []notes.Note
	store.Get(client.ScopeDurable, client.KeyNotesData, &cached)
	return cached
}

func TestReconcile_RequiresLogin(t *testing.T) {
	t.Parallel()

	rec := client.NewReconciler(newTestStore(t), nil, nil)
	_, err := rec.Reconcile(context.Background())
	assert.Equal(t, errs.Unauthenticated, errs.CodeOf(err))
}

func TestReconcile_FirstSessionStartsEmpty(t *testing.T) {
	t.Parallel()
	srv := newRemote(t)
	store := newTestStore(t)
	signup(t, store, srv.URL, "a@b.com")

	// The welcome tour marker has never been written, so even with a valid
	// token the seed must not fire.
	rec := client.NewReconciler(store, client.NewAPIClient(srv.URL), client.DefaultSeed)
	working, err := rec.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, working)

	// The first cycle stamps the marker; a fresh session with nothing cached
	// and nothing remote now falls back to the seed.
	rec2 := client.NewReconciler(store, client.NewAPIClient(srv.URL), client.DefaultSeed)
	working, err = rec2.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Len(t, working, len(client.DefaultSeed))
	for _, n := range working {
		assert.NotEmpty(t, n.ID)
		assert.NotEmpty(t, n.UserID)
	}
}

func TestReconcile_CacheWinsWithoutNetwork(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	store.Set(client.ScopeSession, client.KeyAuthToken, "tok")
	store.Set(client.ScopeSession, client.KeyUserID, "u1")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)
	store.Set(client.ScopeDurable, client.KeyNotesData, []notes.Note{
		{ID: "n1", Text: "cached", UserID: "u1"},
	})

	// A dead remote proves the cache path never touches the network.
	dead := httptest.NewServer(nil)
	dead.Close()

	rec := client.NewReconciler(store, client.NewAPIClient(dead.URL), client.DefaultSeed)
	working, err := rec.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, "n1", working[0].ID)
}

func TestReconcile_RepairsAndPrunes(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	store.Set(client.ScopeSession, client.KeyAuthToken, "tok")
	store.Set(client.ScopeSession, client.KeyUserID, "u1")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)
	store.Set(client.ScopeDurable, client.KeyNotesData, []notes.Note{
		{ID: "orphan", Text: "written by an old client"},
		{ID: "draft", Text: "   \n\t  ", UserID: "u1"},
		{ID: "mine", Text: "keep", UserID: "u1"},
		{ID: "theirs", Text: "someone else's", UserID: "u2"},
	})

	rec := client.NewReconciler(store, nil, nil)
	working, err := rec.Reconcile(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(working))
	for _, n := range working {
		ids = append(ids, n.ID)
		assert.Equal(t, "u1", n.UserID)
	}
	assert.ElementsMatch(t, []string{"orphan", "mine"}, ids)

	// The rewritten cache keeps the other user's note and drops the draft.
	cached := cachedNotes(t, store)
	cachedIDs := make([]string, 0, len(cached))
	for _, n := range cached {
		cachedIDs = append(cachedIDs, n.ID)
	}
	assert.ElementsMatch(t, []string{"orphan", "mine", "theirs"}, cachedIDs)
}

func TestReconcile_AdoptsRemoteNotes(t *testing.T) {
	t.Parallel()
	srv := newRemote(t)
	store := newTestStore(t)
	userID, token := signup(t, store, srv.URL, "a@b.com")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)

	// Another user's notes already live in the shared cache.
	store.Set(client.ScopeDurable, client.KeyNotesData, []notes.Note{
		{ID: "theirs", Text: "someone else's", UserID: "other"},
	})

	// Server-side notes exist, nothing cached for this user.
	remote := client.NewAPIClient(srv.URL)
	remote.SetToken(token)
	serverNote, err := remote.CreateNote(context.Background(), "from the server", "#97D2BC")
	require.NoError(t, err)

	rec := client.NewReconciler(store, client.NewAPIClient(srv.URL), client.DefaultSeed)
	working, err := rec.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, serverNote.ID, working[0].ID)
	assert.Equal(t, userID, working[0].UserID)

	// Adoption persisted the fetch and preserved the other user's note.
	cached := cachedNotes(t, store)
	require.Len(t, cached, 2)
	assert.Equal(t, serverNote.ID, cached[0].ID)
	assert.Equal(t, "theirs", cached[1].ID)
}

func TestCreateNote(t *testing.T) {
	t.Parallel()
	srv := newRemote(t)
	store := newTestStore(t)
	userID, _ := signup(t, store, srv.URL, "a@b.com")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)

	rec := client.NewReconciler(store, client.NewAPIClient(srv.URL), nil)
	rec.SetCreateInterval(0)
	_, err := rec.Reconcile(context.Background())
	require.NoError(t, err)

	// Empty drafts never save.
	_, err = rec.CreateNote(context.Background(), "   \n ", "")
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))

	first, err := rec.CreateNote(context.Background(), "first note", "")
	require.NoError(t, err)
	assert.Equal(t, notes.DefaultColor, first.Color)
	assert.Equal(t, userID, first.UserID)

	second, err := rec.CreateNote(context.Background(), "second note", "#97D2BC")
	require.NoError(t, err)

	// New notes are prepended.
	working := rec.Working()
	require.Len(t, working, 2)
	assert.Equal(t, second.ID, working[0].ID)
	assert.Equal(t, first.ID, working[1].ID)

	// The server accepted both, so the cached ids are authoritative.
	remote := client.NewAPIClient(srv.URL)
	var token string
	store.Get(client.ScopeSession, client.KeyAuthToken, &token)
	remote.SetToken(token)
	serverNotes, err := remote.AllNotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, serverNotes, 2)
}

func TestCreateNote_LocalRateLimit(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	store.Set(client.ScopeSession, client.KeyUserID, "u1")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)

	rec := client.NewReconciler(store, nil, nil)
	rec.SetCreateInterval(time.Hour)

	_, err := rec.CreateNote(context.Background(), "first", "")
	require.NoError(t, err)

	_, err = rec.CreateNote(context.Background(), "too soon", "")
	assert.Equal(t, errs.ResourceExhausted, errs.CodeOf(err))
	assert.Equal(t, "you're creating notes too quickly", errs.MessageOf(err))

	// The throttle is per-store, so a fresh reconciler still sees it.
	rec2 := client.NewReconciler(store, nil, nil)
	rec2.SetCreateInterval(time.Hour)
	_, err = rec2.CreateNote(context.Background(), "still too soon", "")
	assert.Equal(t, errs.ResourceExhausted, errs.CodeOf(err))
}

func TestUpdateAndDelete(t *testing.T) {
	t.Parallel()
	srv := newRemote(t)
	store := newTestStore(t)
	signup(t, store, srv.URL, "a@b.com")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)

	rec := client.NewReconciler(store, client.NewAPIClient(srv.URL), nil)
	rec.SetCreateInterval(0)
	_, err := rec.Reconcile(context.Background())
	require.NoError(t, err)

	note, err := rec.CreateNote(context.Background(), "original", "")
	require.NoError(t, err)

	// Text edits reject empty, otherwise last write wins.
	_, err = rec.UpdateText(context.Background(), note.ID, "  ")
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))

	edited, err := rec.UpdateText(context.Background(), note.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)

	colored, err := rec.SetColor(context.Background(), note.ID, "#AED8FE")
	require.NoError(t, err)
	assert.Equal(t, "#AED8FE", colored.Color)
	assert.Equal(t, "edited", colored.Text)

	_, err = rec.UpdateText(context.Background(), "no-such-id", "x")
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))

	// Delete drops the note locally and on the server.
	require.NoError(t, rec.DeleteNote(context.Background(), note.ID))
	assert.Empty(t, rec.Working())
	assert.Equal(t, errs.NotFound, errs.CodeOf(rec.DeleteNote(context.Background(), note.ID)))

	remote := client.NewAPIClient(srv.URL)
	var token string
	store.Get(client.ScopeSession, client.KeyAuthToken, &token)
	remote.SetToken(token)
	serverNotes, err := remote.AllNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, serverNotes)
}

func TestDisplayed_SearchFilter(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	store.Set(client.ScopeSession, client.KeyUserID, "u1")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)
	store.Set(client.ScopeDurable, client.KeyNotesData, []notes.Note{
		{ID: "n1", Text: "Grocery list", UserID: "u1"},
		{ID: "n2", Text: "meeting notes", UserID: "u1"},
		{ID: "n3", Text: "GROCERY run", UserID: "u1"},
	})

	rec := client.NewReconciler(store, nil, nil)
	_, err := rec.Reconcile(context.Background())
	require.NoError(t, err)

	rec.SetSearchTerm("grocery")
	displayed := rec.Displayed()
	require.Len(t, displayed, 2)

	rec.SetSearchTerm("")
	assert.Len(t, rec.Displayed(), 3)

	// The term persists; a fresh reconciler picks it up from the store.
	rec.SetSearchTerm("meeting")
	rec2 := client.NewReconciler(store, nil, nil)
	_, err = rec2.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, rec2.Displayed(), 1)
	assert.Equal(t, "n2", rec2.Displayed()[0].ID)
}

func testReconcileIsIdempotent(t *rapid.T) {
	durable, err := os.MkdirTemp("", "notemate-rapid-durable-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	defer os.RemoveAll(durable)
	session, err := os.MkdirTemp("", "notemate-rapid-session-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	defer os.RemoveAll(session)

	store := client.NewStore(durable, session)
	store.Set(client.ScopeSession, client.KeyUserID, "u1")
	store.Set(client.ScopeSession, client.KeyWelcomeTour, true)

	count := rapid.IntRange(0, 6).Draw(t, "count")
	cached := make([]notes.Note, 0, count)
	for i := 0; i < count; i++ {
		cached = append(cached, notes.Note{
			ID:     rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "id"),
			Text:   rapid.StringMatching(`[A-Za-z0-9 ]{0,40}`).Draw(t, "text"),
			UserID: rapid.SampledFrom([]string{"u1", "u2", ""}).Draw(t, "owner"),
		})
	}
	store.Set(client.ScopeDurable, client.KeyNotesData, cached)

	rec := client.NewReconciler(store, nil, nil)
	first, err := rec.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("first Reconcile failed: %v", err)
	}

	// A second cycle over the rewritten cache must be a fixed point.
	rec2 := client.NewReconciler(store, nil, nil)
	second, err := rec2.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cycle not idempotent: %d then %d notes", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("note %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testReconcileIsIdempotent)
}
