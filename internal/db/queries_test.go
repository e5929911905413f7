package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notemate/notemate/internal/db"
	"github.com/notemate/notemate/internal/testdb"
)

func setup(t *testing.T) *db.DB {
	t.Helper()
	database, err := testdb.NewInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	return database
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func TestUserRoundtrip(t *testing.T) {
	t.Parallel()
	database := setup(t)
	ctx := context.Background()

	user := db.User{ID: "u1", Name: "Alice", Email: "a@b.com", PasswordHash: "hash", CreatedAt: now()}
	if err := database.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := database.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail != user {
		t.Fatalf("byEmail = %+v, want %+v", byEmail, user)
	}

	byID, err := database.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID != user {
		t.Fatalf("byID = %+v, want %+v", byID, user)
	}

	if _, err := database.GetUserByEmail(ctx, "nobody@b.com"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing email err = %v", err)
	}

	// Email is unique.
	dup := db.User{ID: "u2", Name: "Other", Email: "a@b.com", PasswordHash: "x", CreatedAt: now()}
	if err := database.CreateUser(ctx, dup); err == nil {
		t.Fatal("duplicate email accepted")
	}
}

func TestNoteListOrderingAndSoftDelete(t *testing.T) {
	t.Parallel()
	database := setup(t)
	ctx := context.Background()

	insert := func(id, userID, createdAt string) {
		t.Helper()
		err := database.InsertNote(ctx, db.Note{
			ID: id, UserID: userID, Text: "t-" + id, Color: "#FBEB95",
			CreatedAt: createdAt, UpdatedAt: createdAt,
		})
		if err != nil {
			t.Fatalf("InsertNote(%s) failed: %v", id, err)
		}
	}

	insert("n1", "alice", "2026-08-01T10:00:00Z")
	insert("n2", "alice", "2026-08-02T10:00:00Z")
	insert("n3", "bob", "2026-08-03T10:00:00Z")

	list, err := database.ListNotesByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListNotesByUser failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n2" || list[1].ID != "n1" {
		t.Fatalf("list order = %+v, want n2 then n1", list)
	}

	ok, err := database.SoftDeleteNoteOwned(ctx, "n2", "alice", now())
	if err != nil || !ok {
		t.Fatalf("SoftDeleteNoteOwned = %v, %v", ok, err)
	}

	list, _ = database.ListNotesByUser(ctx, "alice")
	if len(list) != 1 || list[0].ID != "n1" {
		t.Fatalf("list after delete = %+v", list)
	}

	// The row is still fetchable, flagged deleted.
	note, err := database.GetNote(ctx, "n2")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if !note.IsDeleted {
		t.Fatal("IsDeleted not set")
	}

	// A second delete hits no live row.
	ok, err = database.SoftDeleteNoteOwned(ctx, "n2", "alice", now())
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v, want false", ok, err)
	}
}

func TestUpdateNoteOwned(t *testing.T) {
	t.Parallel()
	database := setup(t)
	ctx := context.Background()

	created := "2026-08-01T10:00:00Z"
	err := database.InsertNote(ctx, db.Note{
		ID: "n1", UserID: "alice", Text: "original", Color: "#FBEB95",
		CreatedAt: created, UpdatedAt: created,
	})
	if err != nil {
		t.Fatalf("InsertNote failed: %v", err)
	}

	text := "edited"
	ok, err := database.UpdateNoteOwned(ctx, "n1", "alice", &text, nil, "2026-08-01T11:00:00Z")
	if err != nil || !ok {
		t.Fatalf("UpdateNoteOwned = %v, %v", ok, err)
	}

	note, _ := database.GetNote(ctx, "n1")
	if note.Text != "edited" {
		t.Fatalf("text = %q", note.Text)
	}
	if note.Color != "#FBEB95" {
		t.Fatalf("nil color overwrote stored value: %q", note.Color)
	}
	if note.UpdatedAt != "2026-08-01T11:00:00Z" {
		t.Fatalf("updatedAt = %q", note.UpdatedAt)
	}

	// Ownership gates the write.
	hijack := "hijacked"
	ok, err = database.UpdateNoteOwned(ctx, "n1", "bob", &hijack, nil, now())
	if err != nil || ok {
		t.Fatalf("foreign update = %v, %v, want false", ok, err)
	}

	// Deleted rows are not updatable.
	if _, err := database.SoftDeleteNoteOwned(ctx, "n1", "alice", now()); err != nil {
		t.Fatalf("SoftDeleteNoteOwned failed: %v", err)
	}
	ok, err = database.UpdateNoteOwned(ctx, "n1", "alice", &text, nil, now())
	if err != nil || ok {
		t.Fatalf("update after delete = %v, %v, want false", ok, err)
	}

	ok, err = database.UpdateNoteOwned(ctx, "missing", "alice", &text, nil, now())
	if err != nil || ok {
		t.Fatalf("update missing = %v, %v, want false", ok, err)
	}
}

func TestOpenOnDisk(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/nested/notemate.db"
	database, err := db.Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	user := db.User{ID: "u1", Name: "A", Email: "a@b.com", PasswordHash: "h", CreatedAt: now()}
	if err := database.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser on disk failed: %v", err)
	}
	if _, err := database.GetUserByID(ctx, "u1"); err != nil {
		t.Fatalf("GetUserByID on disk failed: %v", err)
	}
}
