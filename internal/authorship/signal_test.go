package authorship

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

func TestMergeResults_HumanFallback(t *testing.T) {
	meta := mergeResults(nil)
	if meta.Agent != AgentHuman {
		t.Errorf("agent = %q, want human", meta.Agent)
	}
	if meta.IDE != IDEUnknown || meta.Environment != EnvUnknown {
		t.Errorf("ide/env = %q/%q, want unknown/unknown", meta.IDE, meta.Environment)
	}
	if meta.Orchestration != "none" {
		t.Errorf("orchestration = %q, want none", meta.Orchestration)
	}
	if meta.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", meta.Confidence)
	}
	if meta.Tools == nil || meta.Skills == nil {
		t.Error("tools and skills should be empty slices, not nil")
	}
}

func TestMergeResults_FirstWins(t *testing.T) {
	meta := mergeResults([]Partial{
		{Agent: AgentClaude, IDE: "vscode"},
		{Agent: AgentCursorAI, IDE: "cursor", Environment: "ci_github"},
		{Environment: EnvLocal, Orchestration: "jenkins"},
	})
	if meta.Agent != AgentClaude {
		t.Errorf("agent = %q, want claude", meta.Agent)
	}
	if meta.IDE != "vscode" {
		t.Errorf("ide = %q, want vscode", meta.IDE)
	}
	if meta.Environment != "ci_github" {
		t.Errorf("environment = %q, want ci_github", meta.Environment)
	}
	if meta.Orchestration != "jenkins" {
		t.Errorf("orchestration = %q, want jenkins", meta.Orchestration)
	}
}

func TestMergeResults_SetUnion(t *testing.T) {
	meta := mergeResults([]Partial{
		{Tools: []string{"npm", "git"}, Skills: []string{"python"}},
		{Tools: []string{"git", "docker"}, Skills: []string{"go", "python"}},
	})
	if !reflect.DeepEqual(meta.Tools, []string{"docker", "git", "npm"}) {
		t.Errorf("tools = %v", meta.Tools)
	}
	if !reflect.DeepEqual(meta.Skills, []string{"go", "python"}) {
		t.Errorf("skills = %v", meta.Skills)
	}
}

func TestMergeResults_Confidence(t *testing.T) {
	tests := []struct {
		name     string
		partials []Partial
		want     float64
	}{
		{"nothing", nil, 0},
		{"agent only", []Partial{{Agent: AgentClaude}}, 0.4},
		{"ide only", []Partial{{IDE: "vim"}}, 0.2},
		{"environment only", []Partial{{Environment: EnvLocal}}, 0.1},
		{"tools only", []Partial{{Tools: []string{"git"}}}, 0.15},
		{"skills only", []Partial{{Skills: []string{"go"}}}, 0.15},
		{
			"everything",
			[]Partial{{
				Agent:       AgentClaude,
				IDE:         "cursor",
				Environment: EnvLocal,
				Tools:       []string{"git"},
				Skills:      []string{"go"},
			}},
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := mergeResults(tt.partials)
			if !closeTo(meta.Confidence, tt.want) {
				t.Errorf("confidence = %v, want %v", meta.Confidence, tt.want)
			}
		})
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}

func TestMergeResults_HumanGetsNoAgentWeight(t *testing.T) {
	// A commit with IDE and tools evidence but no agent signal stays human
	// and the agent weight is not counted.
	meta := mergeResults([]Partial{{IDE: "vim", Tools: []string{"git"}}})
	if meta.Agent != AgentHuman {
		t.Errorf("agent = %q, want human", meta.Agent)
	}
	if want := WeightIDE + WeightTools; !closeTo(meta.Confidence, want) {
		t.Errorf("confidence = %v, want %v", meta.Confidence, want)
	}
}

// testPipeline mirrors defaultPipeline minus the git-config extractor, which
// depends on the host's git installation.
func testPipeline(t *testing.T) []Signal {
	t.Helper()
	return []Signal{
		messageSignal{},
		envSignal{dockerEnvPath: filepath.Join(t.TempDir(), "absent")},
		processSignal{},
		structureSignal{},
	}
}

func emptyEnv(string) (string, bool) { return "", false }

func TestPipeline_MessageBeatsProcess(t *testing.T) {
	repo := t.TempDir()
	in := &Input{
		RepoPath:  repo,
		Commit:    gitcmd.Commit{SHA: "abc123", Message: "[Claude] add feature"},
		LookupEnv: emptyEnv,
		ListProcesses: func(context.Context) ([]Process, error) {
			return []Process{{Name: "cursor", Cmdline: "cursor ."}}, nil
		},
	}

	meta := runPipeline(context.Background(), testPipeline(t), in)
	if meta.Agent != AgentClaude {
		t.Errorf("agent = %q, want claude", meta.Agent)
	}
	if meta.IDE != "cursor" {
		t.Errorf("ide = %q, want cursor", meta.IDE)
	}
	if meta.Environment != EnvLocal {
		t.Errorf("environment = %q, want local", meta.Environment)
	}
	if meta.Confidence < 0.6 {
		t.Errorf("confidence = %v, want >= 0.6", meta.Confidence)
	}
}

func TestPipeline_HumanWithProjectEvidence(t *testing.T) {
	// The only artifact is package.json: no source files at all. That
	// alone must still count as javascript skill evidence.
	repo := t.TempDir()
	if err := writeFile(filepath.Join(repo, "package.json"), `{"name": "demo"}`); err != nil {
		t.Fatal(err)
	}
	in := &Input{
		RepoPath:      repo,
		Commit:        gitcmd.Commit{SHA: "def456", Message: "fix pagination bug"},
		LookupEnv:     emptyEnv,
		ListProcesses: func(context.Context) ([]Process, error) { return nil, nil },
	}

	meta := runPipeline(context.Background(), testPipeline(t), in)
	if meta.Agent != AgentHuman {
		t.Errorf("agent = %q, want human", meta.Agent)
	}
	if !contains(meta.Skills, "javascript") {
		t.Errorf("skills = %v, want javascript", meta.Skills)
	}
	if !contains(meta.Tools, "npm") {
		t.Errorf("tools = %v, want npm", meta.Tools)
	}
	// environment + tools + skills, no agent, no IDE
	if want := WeightEnvironment + WeightTools + WeightSkills; !closeTo(meta.Confidence, want) {
		t.Errorf("confidence = %v, want %v", meta.Confidence, want)
	}
}

func TestPipeline_FailingSignalIsSkipped(t *testing.T) {
	in := &Input{
		RepoPath:  t.TempDir(),
		Commit:    gitcmd.Commit{SHA: "abc", Message: "built with claude code"},
		LookupEnv: emptyEnv,
		ListProcesses: func(context.Context) ([]Process, error) {
			return nil, context.DeadlineExceeded
		},
	}
	meta := runPipeline(context.Background(), testPipeline(t), in)
	if meta.Agent != AgentClaude {
		t.Errorf("agent = %q, want claude despite failing process signal", meta.Agent)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	repo := t.TempDir()
	if err := writeFile(filepath.Join(repo, "main.go"), "package main"); err != nil {
		t.Fatal(err)
	}
	in := &Input{
		RepoPath:      repo,
		Commit:        gitcmd.Commit{SHA: "abc", Message: "refactor scanner"},
		LookupEnv:     emptyEnv,
		ListProcesses: func(context.Context) ([]Process, error) { return nil, nil },
	}

	pipeline := testPipeline(t)
	first := runPipeline(context.Background(), pipeline, in)
	second := runPipeline(context.Background(), pipeline, in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pipeline not deterministic:\n%+v\n%+v", first, second)
	}
}
