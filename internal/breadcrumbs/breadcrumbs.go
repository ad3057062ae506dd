// Package breadcrumbs generates resumption notes for projects that have
// gone quiet: where you left off and what to ask an assistant to pick the
// work back up.
package breadcrumbs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
	"github.com/friendlyparakeet/parakeet-cli/internal/scanner"
)

// Breadcrumb captures a project's state at the moment it was deemed stale.
type Breadcrumb struct {
	Timestamp         string   `json:"timestamp"`
	ProjectName       string   `json:"project_name"`
	ProjectKind       string   `json:"project_type"`
	InactivityDays    int      `json:"inactivity_days"`
	Status            string   `json:"status"`
	Branch            string   `json:"branch,omitempty"`
	LastCommit        string   `json:"last_commit,omitempty"`
	ModifiedFiles     []string `json:"modified_files,omitempty"`
	UntrackedFiles    []string `json:"untracked_files,omitempty"`
	PromptSuggestions []string `json:"prompt_suggestions"`
}

// Generator creates and persists breadcrumbs, keyed by project path in
// breadcrumbs.json.
type Generator struct {
	path    string
	entries map[string][]Breadcrumb
}

// NewGenerator creates a generator storing under dataDir.
func NewGenerator(dataDir string) *Generator {
	return &Generator{
		path:    filepath.Join(dataDir, "breadcrumbs.json"),
		entries: map[string][]Breadcrumb{},
	}
}

// Load reads persisted breadcrumbs; a missing file starts empty.
func (g *Generator) Load() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading breadcrumbs: %w", err)
	}
	if err := json.Unmarshal(data, &g.entries); err != nil {
		return fmt.Errorf("parsing breadcrumbs %s: %w", g.path, err)
	}
	return nil
}

// Flush writes breadcrumbs atomically.
func (g *Generator) Flush() error {
	data, err := json.MarshalIndent(g.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing breadcrumbs: %w", err)
	}
	return os.Rename(tmp, g.path)
}

// Generate builds and records a breadcrumb for a stale project.
func (g *Generator) Generate(ctx context.Context, p scanner.Project, inactivityDays int) Breadcrumb {
	crumb := Breadcrumb{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProjectName:    p.Name,
		ProjectKind:    string(p.Kind),
		InactivityDays: inactivityDays,
		Status:         status(inactivityDays),
	}

	if p.Git != nil {
		crumb.Branch = p.Git.Branch
		crumb.LastCommit = p.Git.LastMessage
	}
	if st, err := gitcmd.StatusPorcelain(ctx, p.Path); err == nil {
		crumb.ModifiedFiles = st.Modified
		crumb.UntrackedFiles = st.Untracked
	}
	crumb.PromptSuggestions = suggestions(p, crumb)

	g.entries[p.Path] = append(g.entries[p.Path], crumb)
	return crumb
}

func status(inactivityDays int) string {
	switch {
	case inactivityDays < 7:
		return "active"
	case inactivityDays < 30:
		return "slowing"
	default:
		return "dormant"
	}
}

// suggestions produces short prompts a developer can paste into an
// assistant to resume the project.
func suggestions(p scanner.Project, crumb Breadcrumb) []string {
	var out []string
	out = append(out, fmt.Sprintf(
		"I'm resuming work on %s, a %s project untouched for %d days. Summarize where it likely stands.",
		p.Name, crumb.ProjectKind, crumb.InactivityDays))
	if crumb.LastCommit != "" {
		out = append(out, fmt.Sprintf(
			"The last commit on branch %s was %q. Suggest the logical next step.",
			crumb.Branch, crumb.LastCommit))
	}
	if len(crumb.ModifiedFiles) > 0 {
		out = append(out, fmt.Sprintf(
			"There are %d uncommitted modified files, starting with %s. Help me decide what to finish or discard.",
			len(crumb.ModifiedFiles), crumb.ModifiedFiles[0]))
	}
	if len(crumb.UntrackedFiles) > 0 {
		out = append(out, fmt.Sprintf(
			"There are %d untracked files. Help me triage them into commit, ignore, or delete.",
			len(crumb.UntrackedFiles)))
	}
	return out
}

// ForProject returns breadcrumbs recorded for one project path.
func (g *Generator) ForProject(path string) []Breadcrumb {
	return g.entries[path]
}

// All returns every breadcrumb keyed by project path.
func (g *Generator) All() map[string][]Breadcrumb {
	return g.entries
}
