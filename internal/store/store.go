// Package store holds the process-wide shared state: the single active
// building layout, persisted in SQLite under one well-known key, and the
// single active user session, which lives in memory only. Layout
// replacement is an explicit replace-and-notify operation - observers are
// called synchronously with a consistent snapshot, never a half-updated
// layout. An optional filesystem watcher relays layout changes written by
// other processes.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
)

// layoutKey is the well-known storage key for the serialized layout record.
const layoutKey = "building_layout"

// Store is the process-wide session and layout store. At most one Layout
// and at most one active UserSession exist at any time.
type Store struct {
	db     *sql.DB
	dbPath string

	mu        sync.RWMutex
	layout    *layout.Layout // immutable snapshot, swapped whole
	layoutRaw string         // serialized form, for external-change comparison
	session   *layout.UserSession

	observersMu  sync.Mutex
	observers    map[int]func(*layout.Layout)
	nextObserver int

	watch *watcher
}

// New opens (or creates) the store at the given database path and loads the
// persisted layout. A stored record that does not conform to the current
// layout schema is treated as absent.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "New")
	defer timer.Stop()

	logging.Store("Initializing store at path: %s", path)

	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &Store{
		db:        db,
		dbPath:    path,
		observers: make(map[int]func(*layout.Layout)),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.loadLayout(); err != nil {
		// Non-conforming record: treated as absent, not fatal.
		logging.StoreWarn("Persisted layout unusable, treating as absent: %v", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// loadLayout reads the persisted layout record into the in-memory snapshot.
func (s *Store) loadLayout() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, layoutKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read layout record: %w", err)
	}

	l, err := decodeLayout(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.layout = l
	s.layoutRaw = raw
	s.mu.Unlock()

	logging.StoreDebug("Loaded persisted layout %q (%d rooms)", l.BuildingName, l.RoomCount())
	return nil
}

// decodeLayout parses and validates a serialized layout record.
func decodeLayout(raw string) (*layout.Layout, error) {
	var l layout.Layout
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("layout record is not valid JSON: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("layout record fails validation: %w", err)
	}
	return &l, nil
}

// SetLayout validates, persists, and installs a new layout, replacing the
// singleton atomically, then notifies all observers synchronously. The
// installed pointer is immutable by convention: callers must not mutate a
// layout after handing it to the store.
func (s *Store) SetLayout(l *layout.Layout) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("refusing to install invalid layout: %w", err)
	}

	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to serialize layout: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		layoutKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to persist layout: %w", err)
	}

	s.mu.Lock()
	s.layout = l
	s.layoutRaw = string(data)
	s.mu.Unlock()

	logging.Store("Layout replaced: %q floors=%d rooms=%d", l.BuildingName, len(l.Floors), l.RoomCount())
	s.notify(l)
	return nil
}

// GetLayout returns the current layout snapshot, or nil when none has been
// uploaded. The returned pointer must be treated as read-only.
func (s *Store) GetLayout() *layout.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// Subscribe registers an observer called synchronously after every layout
// replacement. Returns an unsubscribe function.
func (s *Store) Subscribe(fn func(*layout.Layout)) func() {
	s.observersMu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.observersMu.Unlock()

	return func() {
		s.observersMu.Lock()
		delete(s.observers, id)
		s.observersMu.Unlock()
	}
}

// notify calls every observer with the given snapshot. Callbacks run
// outside the state lock so they may read the store freely.
func (s *Store) notify(l *layout.Layout) {
	s.observersMu.Lock()
	fns := make([]func(*layout.Layout), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.observersMu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

// SetSession installs the single active user session.
func (s *Store) SetSession(sess layout.UserSession) {
	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()
	logging.Session("Session set: role=%s user=%q institution=%q", sess.Role, sess.Username, sess.InstitutionName)
}

// Session returns a copy of the active session, or nil when signed out.
func (s *Store) Session() *layout.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

// ClearSession destroys the active session.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	logging.Session("Session cleared")
}

// Close stops the watcher (if running) and closes the database.
func (s *Store) Close() error {
	if s.watch != nil {
		s.watch.stop()
		s.watch = nil
	}
	return s.db.Close()
}
