package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
)

// debounceWindow coalesces the burst of filesystem events a single SQLite
// commit produces (db, -wal, -shm writes).
const debounceWindow = 200 * time.Millisecond

// watcher relays layout changes written by other processes. It is the
// cross-context "storage changed" signal: when another process replaces the
// persisted layout record, every open view re-reads it.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts observing the database file for external writes. On change
// the persisted layout record is re-read and, if it differs from the
// in-memory snapshot, installed and broadcast to observers.
func (s *Store) Watch() error {
	if s.dbPath == ":memory:" {
		return fmt.Errorf("cannot watch an in-memory store")
	}
	if s.watch != nil {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: SQLite swaps -wal/-shm files, and watching the
	// db file directly misses renames.
	if err := fs.Add(filepath.Dir(s.dbPath)); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.dbPath), err)
	}

	w := &watcher{fs: fs, done: make(chan struct{})}
	s.watch = w
	go s.watchLoop(w)

	logging.Store("Watching %s for external layout changes", s.dbPath)
	return nil
}

func (s *Store) watchLoop(w *watcher) {
	var debounce *time.Timer
	var fire <-chan time.Time

	base := filepath.Base(s.dbPath)
	relevant := func(name string) bool {
		b := filepath.Base(name)
		return b == base || b == base+"-wal" || b == base+"-shm"
	}

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
				fire = debounce.C
			} else {
				debounce.Reset(debounceWindow)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.StoreWarn("Watcher error: %v", err)
		case <-fire:
			debounce = nil
			fire = nil
			s.reloadIfChanged()
		}
	}
}

// reloadIfChanged re-reads the persisted layout record and installs it when
// the serialized form differs from the in-memory snapshot. Self-writes are
// suppressed by the comparison.
func (s *Store) reloadIfChanged() {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, layoutKey).Scan(&raw)
	if err != nil {
		return
	}

	s.mu.RLock()
	unchanged := raw == s.layoutRaw
	s.mu.RUnlock()
	if unchanged {
		return
	}

	l, err := decodeLayout(raw)
	if err != nil {
		logging.StoreWarn("External layout record unusable, ignoring: %v", err)
		return
	}

	s.mu.Lock()
	s.layout = l
	s.layoutRaw = raw
	s.mu.Unlock()

	logging.Store("External layout change detected: %q", l.BuildingName)
	s.notify(l)
}

func (w *watcher) stop() {
	close(w.done)
	w.fs.Close()
}
