package authorship

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Session marks one tracker lifetime in the store.
type Session struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Commits   int    `json:"commits"`
}

// storeData is the on-disk layout. The three top-level keys are the wire
// format and must round-trip byte-compatible with prior versions.
type storeData struct {
	Commits    []Metadata     `json:"commits"`
	Sessions   []Session      `json:"sessions"`
	Statistics map[string]any `json:"statistics"`
}

// Store is the JSON-file-backed record of tracked commits. One Store owns
// one file for its lifetime; Load and Flush are the explicit lifecycle.
//
// Concurrent writers are not coordinated. Two processes flushing the same
// file race and the last flush wins; earlier writes in the losing process
// are dropped. Accepted for this tool's stakes.
type Store struct {
	path    string
	data    storeData
	index   map[string]int // sha -> position in data.Commits
	session *Session
	dirty   bool
}

// NewStore creates a store backed by dataDir/authorship_data.json.
func NewStore(dataDir string) *Store {
	return &Store{
		path:  filepath.Join(dataDir, "authorship_data.json"),
		index: map[string]int{},
	}
}

// Load reads the store file, starting empty when it does not exist yet,
// and opens a new session.
func (s *Store) Load() error {
	s.data = storeData{
		Commits:    []Metadata{},
		Sessions:   []Session{},
		Statistics: map[string]any{},
	}
	s.index = map[string]int{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading authorship store: %w", err)
		}
	} else if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("parsing authorship store %s: %w", s.path, err)
	}
	if s.data.Commits == nil {
		s.data.Commits = []Metadata{}
	}
	if s.data.Sessions == nil {
		s.data.Sessions = []Session{}
	}
	if s.data.Statistics == nil {
		s.data.Statistics = map[string]any{}
	}
	for i, c := range s.data.Commits {
		s.index[c.SHA] = i
	}

	s.session = &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.data.Sessions = append(s.data.Sessions, *s.session)
	return nil
}

// Put records metadata for its SHA. Re-tracking a known SHA replaces the
// existing record in place; the store never holds two records for one SHA.
func (s *Store) Put(meta Metadata) {
	if i, ok := s.index[meta.SHA]; ok {
		s.data.Commits[i] = meta
	} else {
		s.index[meta.SHA] = len(s.data.Commits)
		s.data.Commits = append(s.data.Commits, meta)
	}
	if s.session != nil {
		s.session.Commits++
		s.data.Sessions[len(s.data.Sessions)-1] = *s.session
	}
	s.dirty = true
}

// All returns the tracked commits in insertion order.
func (s *Store) All() []Metadata {
	return s.data.Commits
}

// Len reports the number of tracked commits.
func (s *Store) Len() int {
	return len(s.data.Commits)
}

// Flush writes the store atomically (temp file + rename). A failed flush
// leaves the store dirty so the next Flush retries the write; FlushQuiet
// callers lose at most that one window.
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing authorship store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing authorship store: %w", err)
	}
	s.dirty = false
	return nil
}

// FlushQuiet flushes and downgrades failure to a warning log.
func (s *Store) FlushQuiet() {
	if err := s.Flush(); err != nil {
		slog.Warn("authorship store flush failed, will retry on next flush", "error", err)
	}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }
