package db

import (
	"context"
	"database/sql"
	"fmt"
)

// User is a stored account row.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    string
}

// Note is a stored note row. Timestamps are RFC 3339 strings.
type Note struct {
	ID        string
	UserID    string
	Text      string
	Color     string
	IsDeleted bool
	CreatedAt string
	UpdatedAt string
}

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = sql.ErrNoRows

// CreateUser inserts a new account row.
func (d *DB) CreateUser(ctx context.Context, u User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the account with the given email, or ErrNotFound.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetUserByID returns the account with the given id, or ErrNotFound.
func (d *DB) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// InsertNote inserts a new note row.
func (d *DB) InsertNote(ctx context.Context, n Note) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, text, color, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Text, n.Color, boolToInt(n.IsDeleted), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetNote returns the note with the given id regardless of owner or deletion
// state, or ErrNotFound. Ownership checks belong to the caller.
func (d *DB) GetNote(ctx context.Context, id string) (Note, error) {
	var n Note
	var isDeleted int
	err := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, color, is_deleted, created_at, updated_at FROM notes WHERE id = ?`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Text, &n.Color, &isDeleted, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, err
	}
	n.IsDeleted = isDeleted != 0
	return n, nil
}

// ListNotesByUser returns the user's live (not soft-deleted) notes,
// newest first.
func (d *DB) ListNotesByUser(ctx context.Context, userID string) ([]Note, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, text, color, is_deleted, created_at, updated_at
		 FROM notes WHERE user_id = ? AND is_deleted = 0
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var isDeleted int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &n.Color, &isDeleted, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.IsDeleted = isDeleted != 0
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

// UpdateNoteOwned applies a partial update to a live note, but only when the
// row belongs to userID. Nil fields keep their stored values. Returns true
// when a row was updated; false means the note is missing, deleted, or owned
// by someone else.
func (d *DB) UpdateNoteOwned(ctx context.Context, id, userID string, text, color *string, updatedAt string) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notes
		 SET text = COALESCE(?, text), color = COALESCE(?, color), updated_at = ?
		 WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		text, color, updatedAt, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// SoftDeleteNoteOwned marks a live note deleted, but only when the row
// belongs to userID. Returns true when a row was updated.
func (d *DB) SoftDeleteNoteOwned(ctx context.Context, id, userID, updatedAt string) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notes SET is_deleted = 1, updated_at = ?
		 WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		updatedAt, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
