package adapters

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
)

// GitFetcherAdapter clones through the git binary so that user git
// configuration (proxies, credential helpers) applies.
type GitFetcherAdapter struct {
	Runner ports.CommandRunnerPort
	Binary string
}

func NewGitFetcherAdapter(runner ports.CommandRunnerPort) GitFetcherAdapter {
	return GitFetcherAdapter{Runner: runner, Binary: "git"}
}

func (a GitFetcherAdapter) Fetch(ctx context.Context, url string, dir string, onLine ports.LineSink) error {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(dir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("clone url and directory are required")
	}
	binary := a.Binary
	if binary == "" {
		binary = "git"
	}
	result, err := a.Runner.Run(ctx, ports.CommandSpec{
		Argv: []string{binary, "clone", "--depth=1", "--", url, dir},
	}, onLine)
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("git clone failed").
			WithCause(shared.ExitStatusError(binary, result.ExitStatus))
	}
	return nil
}

var _ ports.FetcherPort = GitFetcherAdapter{}
