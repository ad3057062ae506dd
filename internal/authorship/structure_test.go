package authorship

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStructureSignal_Tools(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"package.json":       `{"devDependencies": {"jest": "^29", "vite": "^5"}}`,
		"yarn.lock":          "",
		"requirements.txt":   "flask==3.0\n",
		"Pipfile":            "",
		"pyproject.toml":     "[tool.poetry]\nname = \"demo\"\n\n[tool.pytest.ini_options]\naddopts = \"-q\"\n",
		"Cargo.toml":         "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n",
		"Dockerfile":         "FROM alpine\n",
		"docker-compose.yml": "services: {}\n",
		"Makefile":           "all:\n",
		"k8s/deploy.yaml":    "apiVersion: apps/v1\nkind: Deployment\n",
	}
	for name, content := range files {
		if err := writeFile(filepath.Join(root, name), content); err != nil {
			t.Fatal(err)
		}
	}

	tools := detectTools(root)
	for _, want := range []string{
		"npm", "jest", "vite", "yarn", "pip", "pipenv", "poetry", "pytest",
		"cargo", "docker", "docker-compose", "kubernetes", "make",
	} {
		if !contains(tools, want) {
			t.Errorf("tools missing %q: %v", want, tools)
		}
	}
	if contains(tools, "webpack") {
		t.Errorf("webpack detected without marker: %v", tools)
	}
	if contains(tools, "git") {
		t.Errorf("git detected without .git dir: %v", tools)
	}
}

func TestStructureSignal_KubernetesNeedsManifest(t *testing.T) {
	root := t.TempDir()
	// A k8s dir with a non-manifest YAML is not kubernetes usage.
	if err := writeFile(filepath.Join(root, "k8s", "notes.yaml"), "title: scratch\n"); err != nil {
		t.Fatal(err)
	}
	if tools := detectTools(root); contains(tools, "kubernetes") {
		t.Errorf("kubernetes detected from kind-less yaml: %v", tools)
	}
}

func TestStructureSignal_Skills(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.py":          "print('hi')",
		"web/app.tsx":      "export {}",
		"cmd/tool.go":      "package main",
		"scripts/run.sh":   "#!/bin/sh",
		"requirements.txt": "django>=4\n",
		"package.json":     `{"dependencies": {"react": "^18", "vue": "^3"}}`,
	}
	for name, content := range files {
		if err := writeFile(filepath.Join(root, name), content); err != nil {
			t.Fatal(err)
		}
	}

	skills := detectSkills(root)
	for _, want := range []string{"python", "react", "go", "bash", "django", "vue"} {
		if !contains(skills, want) {
			t.Errorf("skills missing %q: %v", want, skills)
		}
	}
	if contains(skills, "rust") {
		t.Errorf("rust detected without .rs files: %v", skills)
	}
}

func TestStructureSignal_PackageJSONAloneIsJavascript(t *testing.T) {
	root := t.TempDir()
	if err := writeFile(filepath.Join(root, "package.json"), `{"name": "demo"}`); err != nil {
		t.Fatal(err)
	}
	if skills := detectSkills(root); !contains(skills, "javascript") {
		t.Errorf("skills = %v, want javascript from package.json alone", skills)
	}
}

func TestStructureSignal_SkillsSkipsVendorDirs(t *testing.T) {
	root := t.TempDir()
	if err := writeFile(filepath.Join(root, "node_modules", "dep", "index.js"), "x"); err != nil {
		t.Fatal(err)
	}
	if skills := detectSkills(root); contains(skills, "javascript") {
		t.Errorf("javascript picked up from node_modules: %v", skills)
	}
}

func TestStructureSignal_Orchestration(t *testing.T) {
	tests := []struct {
		name  string
		setup map[string]string
		want  string
	}{
		{
			"github actions",
			map[string]string{".github/workflows/ci.yml": "name: CI\non: push\n"},
			"github_actions",
		},
		{
			"empty workflows dir is not orchestration",
			map[string]string{".github/workflows/.keep": ""},
			"",
		},
		{
			"gitlab",
			map[string]string{".gitlab-ci.yml": "stages: [test]\n"},
			"gitlab_ci",
		},
		{
			"jenkins",
			map[string]string{"Jenkinsfile": "pipeline {}\n"},
			"jenkins",
		},
		{
			"circleci",
			map[string]string{".circleci/config.yml": "version: 2.1\n"},
			"circleci",
		},
		{
			"travis",
			map[string]string{".travis.yml": "language: go\n"},
			"travis_ci",
		},
		{
			"azure",
			map[string]string{"azure-pipelines.yml": "trigger: [main]\n"},
			"azure_pipelines",
		},
		{
			"none",
			map[string]string{"README.md": "x"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for name, content := range tt.setup {
				if err := writeFile(filepath.Join(root, name), content); err != nil {
					t.Fatal(err)
				}
			}
			if got := detectOrchestration(root); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructureSignal_MissingRepo(t *testing.T) {
	in := &Input{RepoPath: "/nonexistent/repo"}
	if _, err := (structureSignal{}).Extract(context.Background(), in); err == nil {
		t.Error("expected error for missing repo path")
	}
}
