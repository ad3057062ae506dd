package authorship

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

// Tracker runs the detection pipeline over commits and persists the results.
type Tracker struct {
	store    *Store
	pipeline []Signal

	// EmbedNotes additionally writes each record into the repository's
	// refs/notes/authorship when enabled. Failures there only log.
	EmbedNotes bool

	// newInput is swapped in tests to inject fake env/process sources.
	newInput func(repoPath string, commit gitcmd.Commit) *Input
}

// NewTracker builds a tracker over a loaded store.
func NewTracker(store *Store) *Tracker {
	return &Tracker{
		store:    store,
		pipeline: defaultPipeline(),
		newInput: NewInput,
	}
}

// Store exposes the backing store for lifecycle control.
func (t *Tracker) Store() *Store { return t.store }

// TrackGitCommit classifies one commit and records the result. An invalid
// repository or unresolvable revision degrades to an all-unknown record with
// zero confidence; it never returns an error for that case.
func (t *Tracker) TrackGitCommit(ctx context.Context, repoPath, sha string) Metadata {
	commit, err := gitcmd.Show(ctx, repoPath, sha)
	if err != nil {
		slog.Warn("cannot resolve commit, recording unknown authorship",
			"repo", repoPath, "sha", sha, "error", err)
		meta := unknownMetadata(sha)
		t.store.Put(meta)
		return meta
	}

	meta := runPipeline(ctx, t.pipeline, t.newInput(repoPath, commit))
	meta.SHA = commit.SHA
	meta.Timestamp = commit.When.Format(time.RFC3339)
	if commit.When.IsZero() {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	t.store.Put(meta)

	if t.EmbedNotes {
		if err := t.embedInGitNotes(ctx, repoPath, meta); err != nil {
			slog.Warn("embedding authorship note failed", "repo", repoPath,
				"sha", meta.SHA, "error", err)
		}
	}
	return meta
}

func unknownMetadata(sha string) Metadata {
	return Metadata{
		SHA:           sha,
		Agent:         AgentUnknown,
		IDE:           IDEUnknown,
		Environment:   EnvUnknown,
		Tools:         []string{},
		Skills:        []string{},
		Orchestration: "none",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Confidence:    0.0,
	}
}

// QueryByAgent returns all tracked commits attributed to agent, in tracking
// order. Unmatched agents yield an empty slice.
func (t *Tracker) QueryByAgent(agent Agent) []Metadata {
	out := []Metadata{}
	for _, c := range t.store.All() {
		if c.Agent == agent {
			out = append(out, c)
		}
	}
	return out
}

// QueryByIDE returns all tracked commits attributed to ide.
func (t *Tracker) QueryByIDE(ide IDE) []Metadata {
	out := []Metadata{}
	for _, c := range t.store.All() {
		if c.IDE == ide {
			out = append(out, c)
		}
	}
	return out
}

// Statistics aggregates counts over the full store.
type Statistics struct {
	TotalCommits      int            `json:"total_commits"`
	ByAgent           map[string]int `json:"by_agent"`
	ByIDE             map[string]int `json:"by_ide"`
	ByEnvironment     map[string]int `json:"by_environment"`
	TopTools          map[string]int `json:"top_tools"`
	TopSkills         map[string]int `json:"top_skills"`
	AIAssistedPercent float64        `json:"ai_assisted_percent"`
}

// GetStatistics recomputes aggregates from the store. Always fresh, O(n) in
// tracked commits, never cached.
func (t *Tracker) GetStatistics() Statistics {
	stats := Statistics{
		ByAgent:       map[string]int{},
		ByIDE:         map[string]int{},
		ByEnvironment: map[string]int{},
		TopTools:      map[string]int{},
		TopSkills:     map[string]int{},
	}

	aiCommits := 0
	for _, c := range t.store.All() {
		stats.TotalCommits++
		stats.ByAgent[string(c.Agent)]++
		stats.ByIDE[string(c.IDE)]++
		stats.ByEnvironment[string(c.Environment)]++
		for _, tool := range c.Tools {
			stats.TopTools[tool]++
		}
		for _, skill := range c.Skills {
			stats.TopSkills[skill]++
		}
		if c.Agent != AgentHuman && c.Agent != AgentUnknown {
			aiCommits++
		}
	}
	if stats.TotalCommits > 0 {
		stats.AIAssistedPercent = 100 * float64(aiCommits) / float64(stats.TotalCommits)
	}
	return stats
}

func (t *Tracker) embedInGitNotes(ctx context.Context, repoPath string, meta Metadata) error {
	content, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return gitcmd.NotesAdd(ctx, repoPath, gitcmd.NotesRef, meta.SHA, string(content))
}

// ReadFromGitNotes reads a previously embedded record back from the notes
// ref. Returns nil when no note exists or it cannot be parsed.
func ReadFromGitNotes(ctx context.Context, repoPath, sha string) *Metadata {
	content, err := gitcmd.NotesShow(ctx, repoPath, gitcmd.NotesRef, sha)
	if err != nil {
		return nil
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(content), &meta); err != nil {
		return nil
	}
	return &meta
}
