// Package hooks installs the git hook that feeds the authorship tracker:
// a post-commit hook invoking `parakeet _track` so every new commit gets
// classified while its authoring context still exists. Hook content is
// fenced by markers so install and removal never disturb a user's own
// hook lines.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const startMarker = "# --- PARAKEET HOOK ---"
const endMarker = "# --- END PARAKEET HOOK ---"

const postCommitHook = `# --- PARAKEET HOOK ---
if command -v parakeet >/dev/null 2>&1; then
  parakeet _track --hook post-commit
fi
# --- END PARAKEET HOOK ---`

// Install adds the post-commit hook to the repository.
func Install(repoRoot string) error {
	hooksDir := filepath.Join(repoRoot, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return err
	}
	if err := installHook(hooksDir, "post-commit", postCommitHook); err != nil {
		return fmt.Errorf("post-commit: %w", err)
	}
	return ensureGitignore(repoRoot)
}

// Uninstall removes parakeet's hook section from post-commit.
func Uninstall(repoRoot string) error {
	return removeHookSection(filepath.Join(repoRoot, ".git", "hooks"), "post-commit")
}

// IsInstalled reports whether the parakeet hook section is present.
func IsInstalled(repoRoot string) bool {
	path := filepath.Join(repoRoot, ".git", "hooks", "post-commit")
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), startMarker)
}

func installHook(hooksDir, name, content string) error {
	path := filepath.Join(hooksDir, name)
	existing, err := os.ReadFile(path)

	var newContent string
	switch {
	case err != nil && os.IsNotExist(err):
		newContent = "#!/bin/sh\n" + content + "\n"
	case err != nil:
		return err
	case strings.Contains(string(existing), startMarker):
		newContent = replaceSection(string(existing), content)
	default:
		s := string(existing)
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		newContent = s + content + "\n"
	}
	return os.WriteFile(path, []byte(newContent), 0o755)
}

func removeHookSection(hooksDir, name string) error {
	path := filepath.Join(hooksDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	content := string(data)
	if !strings.Contains(content, startMarker) {
		return nil
	}

	cleaned := strings.TrimSpace(stripSection(content))
	if cleaned == "" || cleaned == "#!/bin/sh" {
		return os.Remove(path)
	}
	return os.WriteFile(path, []byte(cleaned+"\n"), 0o755)
}

func replaceSection(content, newSection string) string {
	out := stripSection(content)
	lines := strings.Split(out, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	out = strings.Join(lines, "\n")
	if out != "" {
		out += "\n"
	}
	return out + newSection + "\n"
}

// stripSection removes the marker-fenced lines, keeping everything else.
func stripSection(content string) string {
	lines := strings.Split(content, "\n")
	var result []string
	inSection := false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case startMarker:
			inSection = true
			continue
		case endMarker:
			inSection = false
			continue
		}
		if !inSection {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

func ensureGitignore(repoRoot string) error {
	path := filepath.Join(repoRoot, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(data)
	if strings.Contains(content, ".parakeet/") {
		return nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += ".parakeet/\n"
	return os.WriteFile(path, []byte(content), 0o644)
}
