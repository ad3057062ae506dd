package authorship

import (
	"context"
	"regexp"
)

// messageSignal matches the commit message against the agent pattern table.
// It is the most specific agent source and therefore runs first.
type messageSignal struct{}

var compiledMessagePatterns = compileMessagePatterns()

func compileMessagePatterns() []struct {
	re    *regexp.Regexp
	agent Agent
} {
	out := make([]struct {
		re    *regexp.Regexp
		agent Agent
	}, 0, len(agentMessagePatterns))
	for _, p := range agentMessagePatterns {
		out = append(out, struct {
			re    *regexp.Regexp
			agent Agent
		}{regexp.MustCompile(`(?i)` + p.Pattern), p.Agent})
	}
	return out
}

func (messageSignal) Name() string { return "commit-message" }

// Extract returns the first matching agent, or no signal at all when the
// message carries no agent marker. It never concludes "human": that fallback
// is the aggregator's decision once every source has had its say.
func (messageSignal) Extract(_ context.Context, in *Input) (Partial, error) {
	for _, p := range compiledMessagePatterns {
		if p.re.MatchString(in.Commit.Message) {
			return Partial{Agent: p.agent}, nil
		}
	}
	return Partial{}, nil
}
