// Package velocity keeps per-project activity snapshots and derives simple
// momentum metrics from them.
package velocity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
	"github.com/friendlyparakeet/parakeet-cli/internal/scanner"
)

// Snapshot is one observation of a project at scan time.
type Snapshot struct {
	Timestamp string          `json:"timestamp"`
	Kind      string          `json:"kind"`
	Git       *gitcmd.Summary `json:"git,omitempty"`
}

// Metrics summarizes a project's momentum over a window.
type Metrics struct {
	CommitsPerDay float64 `json:"commits_per_day"`
	ActiveDays    int     `json:"active_days"`
	Trend         string  `json:"trend"`
}

// History stores snapshots keyed by project path in project_history.json.
type History struct {
	path    string
	entries map[string][]Snapshot
	now     func() time.Time
}

// NewHistory creates a history store under dataDir.
func NewHistory(dataDir string) *History {
	return &History{
		path:    filepath.Join(dataDir, "project_history.json"),
		entries: map[string][]Snapshot{},
		now:     time.Now,
	}
}

// Load reads the history file; a missing file starts empty.
func (h *History) Load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading project history: %w", err)
	}
	if err := json.Unmarshal(data, &h.entries); err != nil {
		return fmt.Errorf("parsing project history %s: %w", h.path, err)
	}
	return nil
}

// Flush writes the history atomically.
func (h *History) Flush() error {
	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing project history: %w", err)
	}
	return os.Rename(tmp, h.path)
}

// Update appends a snapshot for a scanned project.
func (h *History) Update(p scanner.Project) {
	h.entries[p.Path] = append(h.entries[p.Path], Snapshot{
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Kind:      string(p.Kind),
		Git:       p.Git,
	})
}

// Velocity computes momentum over the trailing windowDays.
func (h *History) Velocity(projectPath string, windowDays int) Metrics {
	snaps := h.entries[projectPath]
	if len(snaps) < 2 {
		return Metrics{Trend: "unknown"}
	}

	cutoff := h.now().AddDate(0, 0, -windowDays)
	var recent []Snapshot
	for _, s := range snaps {
		if t, err := time.Parse(time.RFC3339, s.Timestamp); err == nil && t.After(cutoff) {
			recent = append(recent, s)
		}
	}
	if len(recent) < 2 {
		return Metrics{Trend: "stale"}
	}

	activeDates := map[string]struct{}{}
	for _, s := range recent {
		if t, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
			activeDates[t.Format("2006-01-02")] = struct{}{}
		}
	}
	m := Metrics{ActiveDays: len(activeDates)}
	if windowDays > 0 {
		m.CommitsPerDay = float64(len(activeDates)) / float64(windowDays)
	}

	// Trend compares snapshot density between the two halves of the window,
	// split at its time midpoint.
	mid := h.now().AddDate(0, 0, -windowDays/2)
	var older, newer float64
	for _, s := range recent {
		if t, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
			if t.Before(mid) {
				older++
			} else {
				newer++
			}
		}
	}
	switch {
	case newer > older*1.2:
		m.Trend = "increasing"
	case newer < older*0.8:
		m.Trend = "decreasing"
	default:
		m.Trend = "stable"
	}
	return m
}

// InactivityDays reports days since the project last showed activity. The
// last commit time wins over the snapshot time when the project is a repo,
// since snapshots happen on every scan regardless of real work.
func (h *History) InactivityDays(projectPath string) int {
	snaps := h.entries[projectPath]
	if len(snaps) == 0 {
		return 0
	}
	last := snaps[len(snaps)-1]

	ref := last.Timestamp
	if last.Git != nil && last.Git.LastCommitAt != "" {
		ref = last.Git.LastCommitAt
	}
	t, err := time.Parse(time.RFC3339, ref)
	if err != nil {
		return 0
	}
	days := int(h.now().Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Summary is one row of the all-projects overview.
type Summary struct {
	Path           string  `json:"path"`
	Name           string  `json:"name"`
	LastActivity   string  `json:"last_activity"`
	InactivityDays int     `json:"inactivity_days"`
	Velocity       Metrics `json:"velocity"`
}

// AllProjects summarizes every tracked project.
func (h *History) AllProjects(windowDays int) []Summary {
	var out []Summary
	for path, snaps := range h.entries {
		if len(snaps) == 0 {
			continue
		}
		out = append(out, Summary{
			Path:           path,
			Name:           filepath.Base(path),
			LastActivity:   snaps[len(snaps)-1].Timestamp,
			InactivityDays: h.InactivityDays(path),
			Velocity:       h.Velocity(path, windowDays),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
