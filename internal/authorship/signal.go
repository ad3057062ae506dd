package authorship

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

// Input carries everything the signal extractors may inspect for one commit.
// The environment lookup and process lister are injectable so extractors
// stay deterministic under test.
type Input struct {
	RepoPath string
	Commit   gitcmd.Commit

	LookupEnv     func(string) (string, bool)
	ListProcesses func(context.Context) ([]Process, error)
}

// NewInput builds an Input wired to the real environment and process table.
func NewInput(repoPath string, commit gitcmd.Commit) *Input {
	return &Input{
		RepoPath:      repoPath,
		Commit:        commit,
		LookupEnv:     os.LookupEnv,
		ListProcesses: listProcesses,
	}
}

// Partial is one extractor's contribution. Zero values mean "no signal":
// empty Agent/IDE/Environment strings and nil sets are all absent, not
// unknown. The human/unknown fallbacks belong to the merge step alone.
type Partial struct {
	Agent         Agent
	IDE           IDE
	Environment   Environment
	Tools         []string
	Skills        []string
	Orchestration string
}

// Signal is one independent evidence source. Extract must never panic and
// should return an error only for operational failures (a failed subprocess,
// an unreadable tree); "nothing found" is a zero Partial with a nil error.
type Signal interface {
	Name() string
	Extract(ctx context.Context, in *Input) (Partial, error)
}

// defaultPipeline returns the extractors in precedence order. Agent and IDE
// conflicts are resolved positionally: the first extractor to produce a
// value wins, so commit-message evidence beats environment variables, which
// beat the process table.
func defaultPipeline() []Signal {
	return []Signal{
		messageSignal{},
		envSignal{},
		processSignal{},
		gitConfigSignal{},
		structureSignal{},
	}
}

// runPipeline executes every extractor and merges the partial results.
// A failing extractor is logged and skipped; it never blocks the others.
func runPipeline(ctx context.Context, pipeline []Signal, in *Input) Metadata {
	partials := make([]Partial, 0, len(pipeline))
	for _, sig := range pipeline {
		p, err := sig.Extract(ctx, in)
		if err != nil {
			slog.Warn("signal unavailable", "signal", sig.Name(), "error", err)
			continue
		}
		slog.Debug("signal extracted", "signal", sig.Name(),
			"agent", p.Agent, "ide", p.IDE, "environment", p.Environment)
		partials = append(partials, p)
	}
	return mergeResults(partials)
}

// mergeResults applies the aggregation policy: first-wins for agent and IDE
// (pipeline order is precedence order), union for the set-valued categories,
// and an additive confidence over categories that produced a signal.
func mergeResults(partials []Partial) Metadata {
	meta := Metadata{
		Agent:         AgentUnknown,
		IDE:           IDEUnknown,
		Environment:   EnvUnknown,
		Orchestration: "none",
	}

	toolSet := map[string]struct{}{}
	skillSet := map[string]struct{}{}

	for _, p := range partials {
		if meta.Agent == AgentUnknown && p.Agent != "" {
			meta.Agent = p.Agent
		}
		if meta.IDE == IDEUnknown && p.IDE != "" && p.IDE != IDEUnknown {
			meta.IDE = p.IDE
		}
		if meta.Environment == EnvUnknown && p.Environment != "" {
			meta.Environment = p.Environment
		}
		if meta.Orchestration == "none" && p.Orchestration != "" {
			meta.Orchestration = p.Orchestration
		}
		for _, t := range p.Tools {
			toolSet[t] = struct{}{}
		}
		for _, s := range p.Skills {
			skillSet[s] = struct{}{}
		}
	}

	meta.Tools = sortedKeys(toolSet)
	meta.Skills = sortedKeys(skillSet)

	// No agent evidence anywhere means a person did it. This is policy, not
	// detection: absence of an agent signal is the human case by definition.
	agentDetected := meta.Agent != AgentUnknown
	if !agentDetected {
		meta.Agent = AgentHuman
	}

	confidence := 0.0
	if agentDetected {
		confidence += WeightAgent
	}
	if meta.IDE != IDEUnknown {
		confidence += WeightIDE
	}
	if meta.Environment != EnvUnknown {
		confidence += WeightEnvironment
	}
	if len(meta.Tools) > 0 {
		confidence += WeightTools
	}
	if len(meta.Skills) > 0 {
		confidence += WeightSkills
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	meta.Confidence = confidence

	return meta
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
