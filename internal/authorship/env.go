package authorship

import (
	"context"
	"os"
)

// envSignal reads agent hints and environment classification from
// environment variables. Presence of an allow-listed variable is the whole
// signal; values are never validated.
type envSignal struct {
	// dockerEnvPath lets tests fake the /.dockerenv container marker.
	dockerEnvPath string
}

func (envSignal) Name() string { return "environment" }

func (s envSignal) Extract(_ context.Context, in *Input) (Partial, error) {
	var p Partial
	for _, e := range agentEnvVars {
		if _, ok := in.LookupEnv(e.Var); ok {
			p.Agent = e.Agent
			break
		}
	}
	p.Environment = s.classifyEnvironment(in.LookupEnv)
	return p, nil
}

// classifyEnvironment walks CI variables, then container, SSH and cloud
// markers. Anything unmatched is a local session, so this category always
// classifies; "unknown" only survives if the extractor itself was skipped.
func (s envSignal) classifyEnvironment(lookup func(string) (string, bool)) Environment {
	for _, ci := range ciEnvVars {
		if _, ok := lookup(ci.Var); ok {
			return ci.Env
		}
	}

	dockerEnv := s.dockerEnvPath
	if dockerEnv == "" {
		dockerEnv = "/.dockerenv"
	}
	if _, err := os.Stat(dockerEnv); err == nil {
		return "docker"
	}
	if _, ok := lookup("DOCKER_CONTAINER"); ok {
		return "docker"
	}
	if _, ok := lookup("KUBERNETES_SERVICE_HOST"); ok {
		return "kubernetes"
	}
	if _, ok := lookup("SSH_CONNECTION"); ok {
		return "ssh"
	}
	if _, ok := lookup("SSH_CLIENT"); ok {
		return "ssh"
	}
	if _, ok := lookup("AWS_EXECUTION_ENV"); ok {
		return "aws_lambda"
	}
	if _, ok := lookup("GOOGLE_CLOUD_PROJECT"); ok {
		return "google_cloud"
	}
	if _, ok := lookup("AZURE_HTTP_USER_AGENT"); ok {
		return "azure"
	}
	return EnvLocal
}
