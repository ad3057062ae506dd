package authorship

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// processListTimeout bounds the ps invocation so a wedged process table
// cannot hang a scan.
const processListTimeout = 5 * time.Second

// Process is one running process as seen by the lister.
type Process struct {
	Name    string
	Cmdline string
}

// processSignal infers agent and IDE from the currently running processes.
//
// Known limitation: the process table reflects the moment of detection, not
// the moment the commit was authored. Backfilling old commits attributes
// them to whatever is running now; callers accept that imprecision.
type processSignal struct{}

func (processSignal) Name() string { return "process-list" }

func (processSignal) Extract(ctx context.Context, in *Input) (Partial, error) {
	procs, err := in.ListProcesses(ctx)
	if err != nil {
		return Partial{}, err
	}

	var p Partial
	p.Agent = agentFromProcesses(procs)
	p.IDE = ideFromProcesses(procs)
	return p, nil
}

func agentFromProcesses(procs []Process) Agent {
	for _, proc := range procs {
		name := strings.ToLower(proc.Name)
		cmdline := strings.ToLower(proc.Cmdline)

		if strings.Contains(name, "cursor") {
			return AgentCursorAI
		}
		if (strings.Contains(name, "code") || strings.Contains(name, "vscode")) &&
			(strings.Contains(cmdline, "copilot") || strings.Contains(cmdline, "github.copilot")) {
			return AgentGithubCopilot
		}
		if strings.Contains(name, "windsurf") {
			return AgentWindsurfAI
		}
	}
	return ""
}

func ideFromProcesses(procs []Process) IDE {
	for _, proc := range procs {
		if ide := matchIDE(proc.Name); ide != IDEUnknown {
			return ide
		}
	}
	return IDEUnknown
}

// matchIDE maps a lowercase-folded name against the IDE pattern table.
// Shared with the git-config extractor for core.editor values.
func matchIDE(name string) IDE {
	lower := strings.ToLower(name)
	for _, p := range idePatterns {
		if strings.Contains(lower, p.Substr) {
			return p.IDE
		}
	}
	return IDEUnknown
}

// listProcesses enumerates running processes with a single bounded ps call.
// Windows has no ps; the signal is simply absent there.
func listProcesses(ctx context.Context) ([]Process, error) {
	if runtime.GOOS == "windows" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, processListTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ps", "-eo", "args=")
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.New("ps unavailable")
	}

	var procs []Process
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		argv0 := line
		if i := strings.IndexByte(line, ' '); i > 0 {
			argv0 = line[:i]
		}
		procs = append(procs, Process{
			Name:    filepath.Base(argv0),
			Cmdline: line,
		})
	}
	return procs, nil
}
