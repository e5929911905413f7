// Package client implements the NoteMate client core: a persistent
// key-value store, an API client, the cache/remote reconciliation engine,
// and dashboard statistics.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scope selects which backing directory a key lives in.
type Scope int

const (
	// ScopeDurable survives restarts (notes cache, view preferences).
	ScopeDurable Scope = iota
	// ScopeSession is cleared on logout and lost on reboot (auth material).
	ScopeSession
)

// Well-known store keys. Auth material is session-scoped; everything else
// is durable.
const (
	KeyAuthToken       = "auth_key"
	KeyUserID          = "user_id"
	KeyUserName        = "user_name"
	KeyWelcomeTour     = "welcome_tour"
	KeyNotesData       = "notes_data"
	KeyViewMode        = "view_mode"
	KeySearchTerm      = "search_term"
	KeyLastNoteCreated = "last_note_created"
)

// Store is a directory-backed key-value store with JSON-encoded values.
// A Store with empty directories is a no-op: writes vanish, reads miss.
type Store struct {
	durableDir string
	sessionDir string
}

// NewStore creates a store over the given directories. Either may be empty
// to disable that scope.
func NewStore(durableDir, sessionDir string) *Store {
	return &Store{
		durableDir: durableDir,
		sessionDir: sessionDir,
	}
}

func (s *Store) dir(scope Scope) string {
	if scope == ScopeSession {
		return s.sessionDir
	}
	return s.durableDir
}

func (s *Store) path(scope Scope, key string) string {
	return filepath.Join(s.dir(scope), key+".json")
}

// Set stores value under key, JSON-encoded. Values are written atomically so
// a crash mid-write never leaves a torn cache file.
func (s *Store) Set(scope Scope, key string, value any) error {
	dir := s.dir(scope)
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: failed to create dir: %w", err)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: failed to encode %q: %w", key, err)
	}

	finalPath := s.path(scope, key)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		return fmt.Errorf("store: failed to write %q: %w", key, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("store: failed to commit %q: %w", key, err)
	}
	return nil
}

// Get loads the value stored under key into out and reports whether the key
// existed. A value that fails to decode as JSON falls back to the raw file
// contents when out is a *string; for any other out type it counts as a
// miss. Missing keys are not errors.
func (s *Store) Get(scope Scope, key string, out any) bool {
	dir := s.dir(scope)
	if dir == "" {
		return false
	}

	raw, err := os.ReadFile(s.path(scope, key))
	if err != nil {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if sp, ok := out.(*string); ok {
			*sp = string(raw)
			return true
		}
		return false
	}
	return true
}

// Remove deletes the key. Removing a missing key is a no-op.
func (s *Store) Remove(scope Scope, key string) {
	dir := s.dir(scope)
	if dir == "" {
		return
	}
	_ = os.Remove(s.path(scope, key))
}

// ClearSession removes all session-scoped keys. Called on logout.
func (s *Store) ClearSession() {
	for _, key := range []string{KeyAuthToken, KeyUserID, KeyUserName, KeyWelcomeTour} {
		s.Remove(ScopeSession, key)
	}
}
