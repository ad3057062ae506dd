package authorship

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// structureSignal inspects the repository's file inventory for tool markers,
// language skills and CI orchestration. Purely filesystem-driven, so it
// works identically for live repos and backfilled history.
type structureSignal struct{}

func (structureSignal) Name() string { return "project-structure" }

// walkLimit caps how many entries the skills walk visits.
const walkLimit = 20000

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

func (structureSignal) Extract(_ context.Context, in *Input) (Partial, error) {
	root := in.RepoPath
	if _, err := os.Stat(root); err != nil {
		return Partial{}, err
	}
	var p Partial
	p.Tools = detectTools(root)
	p.Skills = detectSkills(root)
	p.Orchestration = detectOrchestration(root)
	return p, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readSmall(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) > 1<<20 {
		return ""
	}
	return string(data)
}

func detectTools(root string) []string {
	set := map[string]struct{}{}
	add := func(tool string) { set[tool] = struct{}{} }

	if exists(filepath.Join(root, ".git")) {
		add("git")
	}

	// Python
	if exists(filepath.Join(root, "pytest.ini")) {
		add("pytest")
	}
	if cfg := readSmall(filepath.Join(root, "setup.cfg")); strings.Contains(cfg, "pytest") {
		add("pytest")
	}
	if exists(filepath.Join(root, "requirements.txt")) {
		add("pip")
	}
	if exists(filepath.Join(root, "Pipfile")) {
		add("pipenv")
	}
	if pt := parsePyproject(filepath.Join(root, "pyproject.toml")); pt != nil {
		if _, ok := pt.Tool["poetry"]; ok {
			add("poetry")
		}
		if _, ok := pt.Tool["pytest"]; ok {
			add("pytest")
		}
	}

	// Node
	if pkg := readSmall(filepath.Join(root, "package.json")); pkg != "" {
		add("npm")
		for _, t := range []string{"jest", "webpack", "vite"} {
			if strings.Contains(pkg, t) {
				add(t)
			}
		}
	}
	if exists(filepath.Join(root, "yarn.lock")) {
		add("yarn")
	}

	// Rust
	if parseCargoPackage(filepath.Join(root, "Cargo.toml")) {
		add("cargo")
	}

	// Containers
	if exists(filepath.Join(root, "Dockerfile")) {
		add("docker")
	}
	if exists(filepath.Join(root, "docker-compose.yml")) || exists(filepath.Join(root, "docker-compose.yaml")) {
		add("docker-compose")
	}
	if hasKubernetesManifests(root) {
		add("kubernetes")
	}

	if exists(filepath.Join(root, "Makefile")) {
		add("make")
	}

	return sortedKeys(set)
}

// pyproject is the slice of pyproject.toml the tool detector cares about.
type pyproject struct {
	Tool map[string]any `toml:"tool"`
}

func parsePyproject(path string) *pyproject {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var pt pyproject
	if err := toml.Unmarshal(data, &pt); err != nil {
		return nil
	}
	return &pt
}

// parseCargoPackage reports whether Cargo.toml declares a [package] table.
func parseCargoPackage(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var manifest struct {
		Package   map[string]any `toml:"package"`
		Workspace map[string]any `toml:"workspace"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return false
	}
	return manifest.Package != nil || manifest.Workspace != nil
}

// hasKubernetesManifests looks for a k8s/ directory containing at least one
// YAML document whose kind is a known workload or service resource.
func hasKubernetesManifests(root string) bool {
	dir := filepath.Join(root, "k8s")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		var doc struct {
			Kind string `yaml:"kind"`
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if yaml.Unmarshal(data, &doc) == nil && doc.Kind != "" {
			return true
		}
	}
	return false
}

func detectSkills(root string) []string {
	set := map[string]struct{}{}
	visited := 0

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		visited++
		if visited > walkLimit {
			return fs.SkipAll
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if skill, ok := skillExtensions[ext]; ok {
			set[skill] = struct{}{}
		}
		return nil
	})

	// Manifest sniffing on top of raw extensions. A package.json is
	// javascript evidence on its own, even before any .js file exists.
	if pkg := readSmall(filepath.Join(root, "package.json")); pkg != "" {
		set["javascript"] = struct{}{}
		for _, fw := range []string{"react", "vue", "angular"} {
			if strings.Contains(pkg, fw) {
				set[fw] = struct{}{}
			}
		}
	}
	if reqs := readSmall(filepath.Join(root, "requirements.txt")); reqs != "" {
		for _, fw := range []string{"django", "flask"} {
			if strings.Contains(reqs, fw) {
				set[fw] = struct{}{}
			}
		}
	}

	return sortedKeys(set)
}

func detectOrchestration(root string) string {
	for _, m := range orchestrationMarkers {
		path := filepath.Join(root, m.Path)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() != m.IsDir {
			continue
		}
		if m.Name == "github_actions" && !hasWorkflowFiles(path) {
			continue
		}
		return m.Name
	}
	return ""
}

// hasWorkflowFiles requires at least one parseable workflow under
// .github/workflows; an empty directory is not orchestration.
func hasWorkflowFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml")) {
			continue
		}
		var doc map[string]any
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if yaml.Unmarshal(data, &doc) == nil && len(doc) > 0 {
			return true
		}
	}
	return false
}
