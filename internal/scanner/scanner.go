// Package scanner discovers project directories under configured watch paths.
package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

// Kind classifies a detected project by its strongest indicator.
type Kind string

const (
	KindPython     Kind = "python"
	KindNode       Kind = "node"
	KindRuby       Kind = "ruby"
	KindGo         Kind = "go"
	KindJava       Kind = "java"
	KindRust       Kind = "rust"
	KindCCpp       Kind = "c_cpp"
	KindDotnet     Kind = "dotnet"
	KindGitGeneric Kind = "git_generic"
)

// indicator pairs a filename (or glob) with the project kind it implies.
// Order matters twice over: a directory's kind is taken from the first
// matching entry, and language-specific indicators sit above the generic
// .git entry so a Go repo is "go", not "git_generic".
type indicator struct {
	Pattern string
	Glob    bool
	Kind    Kind
}

var indicators = []indicator{
	{Pattern: "setup.py", Kind: KindPython},
	{Pattern: "pyproject.toml", Kind: KindPython},
	{Pattern: "requirements.txt", Kind: KindPython},
	{Pattern: "Pipfile", Kind: KindPython},
	{Pattern: "package.json", Kind: KindNode},
	{Pattern: "yarn.lock", Kind: KindNode},
	{Pattern: "package-lock.json", Kind: KindNode},
	{Pattern: "Gemfile", Kind: KindRuby},
	{Pattern: "Rakefile", Kind: KindRuby},
	{Pattern: "go.mod", Kind: KindGo},
	{Pattern: "go.sum", Kind: KindGo},
	{Pattern: "pom.xml", Kind: KindJava},
	{Pattern: "build.gradle", Kind: KindJava},
	{Pattern: "build.gradle.kts", Kind: KindJava},
	{Pattern: "Cargo.toml", Kind: KindRust},
	{Pattern: "Makefile", Kind: KindCCpp},
	{Pattern: "CMakeLists.txt", Kind: KindCCpp},
	{Pattern: "*.csproj", Glob: true, Kind: KindDotnet},
	{Pattern: "*.fsproj", Glob: true, Kind: KindDotnet},
	{Pattern: "*.sln", Glob: true, Kind: KindDotnet},
	{Pattern: ".git", Kind: KindGitGeneric},
}

// Project describes one detected project directory.
type Project struct {
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	Kind       Kind            `json:"kind"`
	Indicators []string        `json:"indicators"`
	Git        *gitcmd.Summary `json:"git,omitempty"`
}

// Scanner walks watch paths looking for project roots.
type Scanner struct {
	WatchPaths      []string
	ExcludePatterns []string
	Recursive       bool
	MaxDepth        int

	// WithGitSummary enriches detected repositories with branch/HEAD state.
	WithGitSummary bool
}

// Scan enumerates subdirectories of each watch path and returns detected
// projects in traversal order. The watch path itself is never a candidate.
// A missing or unreadable watch path is logged and skipped, never fatal.
func (s *Scanner) Scan(ctx context.Context) []Project {
	var projects []Project
	for _, watch := range s.WatchPaths {
		entries, err := os.ReadDir(watch)
		if err != nil {
			slog.Warn("skipping watch path", "path", watch, "error", err)
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || s.excluded(e.Name()) {
				continue
			}
			s.walk(ctx, filepath.Join(watch, e.Name()), 0, &projects)
		}
	}
	return projects
}

// walk detects a project at dir or, when recursion is on, descends up to
// MaxDepth. Detection stops at a project root: nothing inside an already
// qualified project is reported as a separate project.
func (s *Scanner) walk(ctx context.Context, dir string, depth int, projects *[]Project) {
	if p, ok := s.detect(ctx, dir); ok {
		*projects = append(*projects, p)
		return
	}
	if !s.Recursive || depth >= s.MaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("unreadable directory", "path", dir, "error", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() || s.excluded(e.Name()) {
			continue
		}
		s.walk(ctx, filepath.Join(dir, e.Name()), depth+1, projects)
	}
}

// detect checks dir for indicator files. The kind comes from the first
// matching table entry; Indicators collects every filename that matched.
func (s *Scanner) detect(ctx context.Context, dir string) (Project, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Project{}, false
	}
	names := make(map[string]bool, len(entries))
	var all []string
	for _, e := range entries {
		names[e.Name()] = true
		all = append(all, e.Name())
	}

	var kind Kind
	var matched []string
	for _, ind := range indicators {
		hits := matchIndicator(ind, names, all)
		if len(hits) == 0 {
			continue
		}
		if kind == "" {
			kind = ind.Kind
		}
		matched = append(matched, hits...)
	}
	if kind == "" {
		return Project{}, false
	}
	sort.Strings(matched)

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	p := Project{
		Name:       filepath.Base(dir),
		Path:       abs,
		Kind:       kind,
		Indicators: matched,
	}
	if s.WithGitSummary && names[".git"] {
		if sum, err := gitcmd.Summarize(ctx, abs); err == nil {
			p.Git = sum
		} else {
			slog.Debug("git summary failed", "path", abs, "error", err)
		}
	}
	return p, true
}

func matchIndicator(ind indicator, names map[string]bool, all []string) []string {
	if !ind.Glob {
		if names[ind.Pattern] {
			return []string{ind.Pattern}
		}
		return nil
	}
	var hits []string
	for _, name := range all {
		if ok, _ := filepath.Match(ind.Pattern, name); ok {
			hits = append(hits, name)
		}
	}
	return hits
}

// excluded applies the substring match from the original exclude semantics.
func (s *Scanner) excluded(name string) bool {
	for _, pat := range s.ExcludePatterns {
		if pat != "" && strings.Contains(name, pat) {
			return true
		}
	}
	return false
}
