// Package gitcmd is the git plumbing layer. Every operation shells out to
// the git binary with a bounded timeout so a wedged repository can never
// hang a scan.
package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds every git invocation.
const DefaultTimeout = 5 * time.Second

// NotesRef is the notes namespace authorship metadata is written under.
const NotesRef = "refs/notes/authorship"

var (
	// ErrNotARepository is returned when the path is not inside a git work tree.
	ErrNotARepository = errors.New("not a git repository")
	// ErrUnknownRevision is returned when a revision cannot be resolved.
	ErrUnknownRevision = errors.New("unknown revision")
)

// Commit is the subset of commit data the detection pipeline needs.
type Commit struct {
	SHA         string
	Message     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
}

func run(ctx context.Context, repoPath string, args ...string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

// IsRepo reports whether path is inside a git work tree.
func IsRepo(ctx context.Context, path string) bool {
	out, err := run(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RepoRoot returns the top-level directory of the repository containing path.
func RepoRoot(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", ErrNotARepository
	}
	return strings.TrimSpace(out), nil
}

// Show resolves rev and returns its commit data.
func Show(ctx context.Context, repoPath, rev string) (Commit, error) {
	if !IsRepo(ctx, repoPath) {
		return Commit{}, ErrNotARepository
	}
	// %x00 separators keep the free-text message unambiguous.
	out, err := run(ctx, repoPath, "show", "-s", "--format=%H%x00%an%x00%ae%x00%aI%x00%B", rev)
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %s", ErrUnknownRevision, rev)
	}
	parts := strings.SplitN(out, "\x00", 5)
	if len(parts) != 5 {
		return Commit{}, fmt.Errorf("%w: %s", ErrUnknownRevision, rev)
	}
	c := Commit{
		SHA:         strings.TrimSpace(parts[0]),
		AuthorName:  parts[1],
		AuthorEmail: parts[2],
		Message:     strings.TrimSpace(parts[4]),
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[3])); err == nil {
		c.When = t
	}
	return c, nil
}

// RecentSHAs returns up to n commit SHAs reachable from HEAD, newest first.
func RecentSHAs(ctx context.Context, repoPath string, n int) ([]string, error) {
	out, err := run(ctx, repoPath, "log", fmt.Sprintf("-%d", n), "--format=%H")
	if err != nil {
		return nil, err
	}
	var shas []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			shas = append(shas, line)
		}
	}
	return shas, nil
}

// ConfigValue reads a git config key (e.g. core.editor) from the repository,
// falling back to the global scope the way git itself resolves it.
// Missing keys return "" with no error.
func ConfigValue(ctx context.Context, repoPath, key string) (string, error) {
	out, err := run(ctx, repoPath, "config", "--get", key)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// Summary is a lightweight view of a repository's current state,
// attached to scanned project descriptors.
type Summary struct {
	Branch        string `json:"branch"`
	LastSHA       string `json:"last_sha"`
	LastMessage   string `json:"last_message"`
	LastAuthor    string `json:"last_author"`
	LastCommitAt  string `json:"last_commit_at"`
	Dirty         bool   `json:"dirty"`
	RemoteURL     string `json:"remote_url,omitempty"`
	AheadOfRemote bool   `json:"-"`
}

// Summarize collects branch, HEAD and dirtiness for a repository.
func Summarize(ctx context.Context, repoPath string) (*Summary, error) {
	head, err := Show(ctx, repoPath, "HEAD")
	if err != nil {
		return nil, err
	}
	s := &Summary{
		LastSHA:      head.SHA,
		LastMessage:  firstLine(head.Message),
		LastAuthor:   head.AuthorName,
		LastCommitAt: head.When.Format(time.RFC3339),
	}
	if out, err := run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		s.Branch = strings.TrimSpace(out)
		if s.Branch == "HEAD" {
			s.Branch = "detached"
		}
	}
	status, err := StatusPorcelain(ctx, repoPath)
	if err == nil {
		s.Dirty = len(status.Modified)+len(status.Untracked) > 0
	}
	if out, err := run(ctx, repoPath, "remote", "get-url", "origin"); err == nil {
		s.RemoteURL = strings.TrimSpace(out)
	}
	return s, nil
}

// Status describes uncommitted work in a repository.
type Status struct {
	Modified  []string
	Untracked []string
}

// StatusPorcelain parses `git status --porcelain`.
func StatusPorcelain(ctx context.Context, repoPath string) (Status, error) {
	out, err := run(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return Status{}, err
	}
	return parsePorcelain(out), nil
}

func parsePorcelain(out string) Status {
	var st Status
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code, path := line[:2], strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new"; the new path is what matters.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		if strings.HasPrefix(code, "??") {
			st.Untracked = append(st.Untracked, path)
		} else {
			st.Modified = append(st.Modified, path)
		}
	}
	return st
}

// Add stages the given paths.
func Add(ctx context.Context, repoPath string, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := run(ctx, repoPath, args...)
	return err
}

// CommitStaged commits staged changes with the given message.
func CommitStaged(ctx context.Context, repoPath, message string) error {
	_, err := run(ctx, repoPath, "commit", "-m", message)
	return err
}

// Push pushes the current branch to origin.
func Push(ctx context.Context, repoPath string) error {
	_, err := run(ctx, repoPath, "push", "origin", "HEAD")
	return err
}

// HasRemote reports whether origin is configured.
func HasRemote(ctx context.Context, repoPath string) bool {
	_, err := run(ctx, repoPath, "remote", "get-url", "origin")
	return err == nil
}

// NotesAdd writes (force-overwriting) a note for sha under ref.
func NotesAdd(ctx context.Context, repoPath, ref, sha, content string) error {
	_, err := run(ctx, repoPath, "notes", "--ref", ref, "add", "-f", "-m", content, sha)
	return err
}

// NotesShow reads the note for sha under ref. Missing notes return an error.
func NotesShow(ctx context.Context, repoPath, ref, sha string) (string, error) {
	out, err := run(ctx, repoPath, "notes", "--ref", ref, "show", sha)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
