// Package maintenance performs light git hygiene on tracked projects:
// auto-committing uncommitted work (stacked by category when large) and
// optionally pushing.
package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

// state is the persisted per-project toggle set in git_maintenance.json.
type state struct {
	AutoCommitEnabled map[string]bool   `json:"auto_commit_enabled"`
	AutoPushEnabled   map[string]bool   `json:"auto_push_enabled"`
	LastMaintenance   map[string]string `json:"last_maintenance"`
}

// Maintainer runs maintenance and remembers per-project preferences.
type Maintainer struct {
	path string
	st   state

	// MaxFilesPerCommit is the threshold above which changes are split
	// into stacked per-category commits.
	MaxFilesPerCommit int
}

// NewMaintainer creates a maintainer storing its state under dataDir.
func NewMaintainer(dataDir string, maxFilesPerCommit int) *Maintainer {
	if maxFilesPerCommit <= 0 {
		maxFilesPerCommit = 10
	}
	return &Maintainer{
		path: filepath.Join(dataDir, "git_maintenance.json"),
		st: state{
			AutoCommitEnabled: map[string]bool{},
			AutoPushEnabled:   map[string]bool{},
			LastMaintenance:   map[string]string{},
		},
		MaxFilesPerCommit: maxFilesPerCommit,
	}
}

// Load reads persisted toggles; missing file keeps defaults (all enabled).
func (m *Maintainer) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading maintenance state: %w", err)
	}
	if err := json.Unmarshal(data, &m.st); err != nil {
		return fmt.Errorf("parsing maintenance state %s: %w", m.path, err)
	}
	if m.st.AutoCommitEnabled == nil {
		m.st.AutoCommitEnabled = map[string]bool{}
	}
	if m.st.AutoPushEnabled == nil {
		m.st.AutoPushEnabled = map[string]bool{}
	}
	if m.st.LastMaintenance == nil {
		m.st.LastMaintenance = map[string]string{}
	}
	return nil
}

func (m *Maintainer) flush() error {
	data, err := json.MarshalIndent(m.st, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

// AutoCommitEnabled reports the per-project toggle, defaulting to true.
func (m *Maintainer) AutoCommitEnabled(projectPath string) bool {
	if v, ok := m.st.AutoCommitEnabled[projectPath]; ok {
		return v
	}
	return true
}

// AutoPushEnabled reports the per-project toggle, defaulting to true.
func (m *Maintainer) AutoPushEnabled(projectPath string) bool {
	if v, ok := m.st.AutoPushEnabled[projectPath]; ok {
		return v
	}
	return true
}

// SetAutoCommit persists the auto-commit toggle for a project.
func (m *Maintainer) SetAutoCommit(projectPath string, enabled bool) error {
	m.st.AutoCommitEnabled[projectPath] = enabled
	return m.flush()
}

// SetAutoPush persists the auto-push toggle for a project.
func (m *Maintainer) SetAutoPush(projectPath string, enabled bool) error {
	m.st.AutoPushEnabled[projectPath] = enabled
	return m.flush()
}

// Result reports what maintenance did for one project.
type Result struct {
	ProjectPath string   `json:"project_path"`
	Timestamp   string   `json:"timestamp"`
	Actions     []string `json:"actions"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
}

// Perform commits (and optionally pushes) uncommitted work in projectPath.
// Failures are reported in the Result, never returned as errors: one broken
// repo must not abort maintenance of the rest.
func (m *Maintainer) Perform(ctx context.Context, projectPath string) Result {
	res := Result{
		ProjectPath: projectPath,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Success:     true,
	}

	if !gitcmd.IsRepo(ctx, projectPath) {
		res.Success = false
		res.Error = "not a git repository"
		return res
	}
	if !m.AutoCommitEnabled(projectPath) {
		res.Actions = append(res.Actions, "auto-commit disabled, skipping")
		return res
	}

	st, err := gitcmd.StatusPorcelain(ctx, projectPath)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return res
	}
	all := append(append([]string{}, st.Modified...), st.Untracked...)
	if len(all) == 0 {
		res.Actions = append(res.Actions, "no uncommitted changes")
		return res
	}

	if len(all) > m.MaxFilesPerCommit {
		n, err := m.stackedCommits(ctx, projectPath, all)
		if err != nil {
			res.Success = false
			res.Error = err.Error()
			return res
		}
		res.Actions = append(res.Actions, fmt.Sprintf("created %d stacked commits", n))
	} else {
		if err := gitcmd.Add(ctx, projectPath, all...); err != nil {
			res.Success = false
			res.Error = err.Error()
			return res
		}
		msg := commitMessage(all)
		if err := gitcmd.CommitStaged(ctx, projectPath, msg); err != nil {
			res.Success = false
			res.Error = err.Error()
			return res
		}
		res.Actions = append(res.Actions, "created commit: "+msg)
	}

	if m.AutoPushEnabled(projectPath) && gitcmd.HasRemote(ctx, projectPath) {
		if err := gitcmd.Push(ctx, projectPath); err != nil {
			res.Actions = append(res.Actions, "push failed: "+err.Error())
			res.Success = false
		} else {
			res.Actions = append(res.Actions, "pushed changes to remote")
		}
	}

	m.st.LastMaintenance[projectPath] = res.Timestamp
	if err := m.flush(); err != nil {
		res.Actions = append(res.Actions, "state save failed: "+err.Error())
	}
	return res
}

// categorize buckets changed files for commit grouping.
func categorize(files []string) map[string][]string {
	cats := map[string][]string{}
	for _, f := range files {
		lower := strings.ToLower(f)
		var cat string
		switch {
		case strings.Contains(lower, "test") || strings.Contains(lower, "spec"):
			cat = "tests"
		case hasAnySuffix(lower, ".py", ".js", ".ts", ".java", ".go", ".rs", ".cpp", ".c"):
			cat = "code"
		case hasAnySuffix(lower, ".md", ".rst", ".txt") || strings.Contains(lower, "readme"):
			cat = "docs"
		case hasAnySuffix(lower, ".yml", ".yaml", ".json", ".toml", ".ini") || strings.Contains(lower, "config"):
			cat = "config"
		default:
			cat = "other"
		}
		cats[cat] = append(cats[cat], f)
	}
	return cats
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// commitMessage summarizes a small change set in one line.
func commitMessage(files []string) string {
	cats := categorize(files)
	var parts []string
	for _, cat := range []string{"code", "docs", "config", "tests", "other"} {
		if n := len(cats[cat]); n > 0 {
			parts = append(parts, fmt.Sprintf("update %s (%d files)", cat, n))
		}
	}
	if len(parts) == 0 {
		return "Auto-commit: general updates"
	}
	return "Auto-commit: " + strings.Join(parts, ", ")
}

// stackedCommits creates one commit per category, chunked to the max file
// count, and returns how many commits were made.
func (m *Maintainer) stackedCommits(ctx context.Context, projectPath string, files []string) (int, error) {
	cats := categorize(files)
	commits := 0
	for _, cat := range []string{"code", "docs", "config", "tests", "other"} {
		catFiles := cats[cat]
		for i := 0; i < len(catFiles); i += m.MaxFilesPerCommit {
			end := i + m.MaxFilesPerCommit
			if end > len(catFiles) {
				end = len(catFiles)
			}
			chunk := catFiles[i:end]
			if err := gitcmd.Add(ctx, projectPath, chunk...); err != nil {
				return commits, err
			}
			msg := fmt.Sprintf("Auto-commit: update %s (%d files)", cat, len(chunk))
			if len(catFiles) > m.MaxFilesPerCommit {
				msg = fmt.Sprintf("Auto-commit: update %s (part %d, %d files)",
					cat, i/m.MaxFilesPerCommit+1, len(chunk))
			}
			if err := gitcmd.CommitStaged(ctx, projectPath, msg); err != nil {
				return commits, err
			}
			commits++
		}
	}
	return commits, nil
}
