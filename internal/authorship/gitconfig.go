package authorship

import (
	"context"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
)

// gitConfigSignal reads core.editor from the repository's git config.
// It only ever contributes an IDE, and only when the process table didn't.
type gitConfigSignal struct{}

func (gitConfigSignal) Name() string { return "git-config" }

func (gitConfigSignal) Extract(ctx context.Context, in *Input) (Partial, error) {
	editor, err := gitcmd.ConfigValue(ctx, in.RepoPath, "core.editor")
	if err != nil {
		return Partial{}, err
	}
	if editor == "" {
		return Partial{}, nil
	}
	return Partial{IDE: matchIDE(editor)}, nil
}
