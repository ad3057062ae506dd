package authorship

import (
	"context"
	"testing"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEnvSignal_Agent(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Agent
	}{
		{"anthropic key", map[string]string{"ANTHROPIC_API_KEY": "sk-x"}, AgentClaude},
		{"openai key", map[string]string{"OPENAI_API_KEY": "sk-x"}, AgentChatGPT},
		{"copilot flag", map[string]string{"COPILOT_ENABLED": "1"}, AgentGithubCopilot},
		{"cursor key", map[string]string{"CURSOR_API_KEY": "k"}, AgentCursorAI},
		{"codeium key", map[string]string{"CODEIUM_API_KEY": "k"}, AgentWindsurfAI},
		{"nothing", map[string]string{"PATH": "/usr/bin"}, ""},
		{"allow-list order", map[string]string{
			"ANTHROPIC_API_KEY": "a",
			"OPENAI_API_KEY":    "b",
		}, AgentClaude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := envSignal{dockerEnvPath: "/nonexistent/dockerenv"}
			in := &Input{LookupEnv: lookupFrom(tt.vars)}
			p, err := sig.Extract(context.Background(), in)
			if err != nil {
				t.Fatal(err)
			}
			if p.Agent != tt.want {
				t.Errorf("agent: got %q, want %q", p.Agent, tt.want)
			}
		})
	}
}

func TestEnvSignal_Environment(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Environment
	}{
		{"github actions", map[string]string{"GITHUB_ACTIONS": "true"}, "github_actions"},
		{"gitlab", map[string]string{"GITLAB_CI": "true"}, "gitlab_ci"},
		{"jenkins", map[string]string{"JENKINS_URL": "http://ci"}, "jenkins"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, "kubernetes"},
		{"ssh", map[string]string{"SSH_CONNECTION": "1.2.3.4"}, "ssh"},
		{"docker env var", map[string]string{"DOCKER_CONTAINER": "1"}, "docker"},
		{"aws lambda", map[string]string{"AWS_EXECUTION_ENV": "AWS_Lambda_go1.x"}, "aws_lambda"},
		{"ci beats ssh", map[string]string{"CIRCLECI": "true", "SSH_CLIENT": "x"}, "circleci"},
		{"default local", map[string]string{}, EnvLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := envSignal{dockerEnvPath: "/nonexistent/dockerenv"}
			got := sig.classifyEnvironment(lookupFrom(tt.vars))
			if got != tt.want {
				t.Errorf("environment: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvSignal_DockerEnvFile(t *testing.T) {
	dir := t.TempDir()
	marker := dir + "/.dockerenv"
	if err := writeFile(marker, ""); err != nil {
		t.Fatal(err)
	}
	sig := envSignal{dockerEnvPath: marker}
	got := sig.classifyEnvironment(lookupFrom(nil))
	if got != "docker" {
		t.Errorf("got %q, want docker", got)
	}
}
