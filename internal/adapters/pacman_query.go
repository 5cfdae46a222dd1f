package adapters

import (
	"context"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

// PacmanQueryAdapter runs unprivileged pacman queries and buffers their
// output. It never supplies a secret.
type PacmanQueryAdapter struct {
	Runner ports.CommandRunnerPort
	Binary string
}

func NewPacmanQueryAdapter(runner ports.CommandRunnerPort) PacmanQueryAdapter {
	return PacmanQueryAdapter{Runner: runner, Binary: "pacman"}
}

func (a PacmanQueryAdapter) Query(ctx context.Context, args ...string) (types.QueryResult, error) {
	binary := a.Binary
	if binary == "" {
		binary = "pacman"
	}
	argv := append([]string{binary}, args...)
	var lines []string
	result, err := a.Runner.Run(ctx, ports.CommandSpec{Argv: argv}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return types.QueryResult{}, err
	}
	return types.QueryResult{Lines: lines, ExitStatus: result.ExitStatus}, nil
}

var _ ports.PackageDatabasePort = PacmanQueryAdapter{}
