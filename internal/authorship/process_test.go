package authorship

import (
	"context"
	"testing"
)

func TestAgentFromProcesses(t *testing.T) {
	tests := []struct {
		name  string
		procs []Process
		want  Agent
	}{
		{
			"cursor running",
			[]Process{{Name: "Cursor", Cmdline: "/Applications/Cursor.app/Contents/MacOS/Cursor"}},
			AgentCursorAI,
		},
		{
			"copilot inside vscode",
			[]Process{{Name: "code", Cmdline: "code --extension github.copilot"}},
			AgentGithubCopilot,
		},
		{
			"vscode without copilot is no agent",
			[]Process{{Name: "code", Cmdline: "code ."}},
			"",
		},
		{
			"windsurf",
			[]Process{{Name: "windsurf", Cmdline: "windsurf"}},
			AgentWindsurfAI,
		},
		{
			"unrelated processes",
			[]Process{{Name: "bash", Cmdline: "bash"}, {Name: "sshd", Cmdline: "sshd"}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agentFromProcesses(tt.procs); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDEFromProcesses(t *testing.T) {
	tests := []struct {
		name  string
		procs []Process
		want  IDE
	}{
		{"cursor", []Process{{Name: "Cursor"}}, "cursor"},
		{"vscode", []Process{{Name: "code"}}, "vscode"},
		{"xcode not swallowed by code", []Process{{Name: "Xcode"}}, "xcode"},
		{"vim", []Process{{Name: "nvim"}}, "vim"},
		{"jetbrains", []Process{{Name: "idea64"}}, "intellij"},
		{"goland before idea", []Process{{Name: "goland"}}, "goland"},
		{"terminal only", []Process{{Name: "bash"}}, IDEUnknown},
		{"first hit wins", []Process{{Name: "zed"}, {Name: "code"}}, "zed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ideFromProcesses(tt.procs); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchIDE_EditorValues(t *testing.T) {
	// The same table serves git core.editor strings.
	tests := []struct {
		editor string
		want   IDE
	}{
		{"vim", "vim"},
		{"code --wait", "vscode"},
		{"subl -w", IDEUnknown},
		{"sublime_text -w", "sublime"},
		{"emacsclient", "emacs"},
		{"", IDEUnknown},
	}
	for _, tt := range tests {
		if got := matchIDE(tt.editor); got != tt.want {
			t.Errorf("matchIDE(%q): got %q, want %q", tt.editor, got, tt.want)
		}
	}
}

func TestProcessSignal_ListerFailure(t *testing.T) {
	sig := processSignal{}
	in := &Input{
		ListProcesses: func(context.Context) ([]Process, error) {
			return nil, context.DeadlineExceeded
		},
	}
	if _, err := sig.Extract(context.Background(), in); err == nil {
		t.Error("expected error from failing lister")
	}
}
