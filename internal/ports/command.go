package ports

import (
	"context"

	"runepkg/internal/types"
)

// LineSink receives one completed output line at a time, in production
// order.
type LineSink func(line string)

// CommandSpec describes one external process invocation. Secret, when set,
// is fed to the process on stdin and never placed in Argv.
type CommandSpec struct {
	Argv   []string
	Dir    string
	Env    []string
	Secret *types.Secret
}

// CommandRunnerPort executes external programs and streams their output.
// A non-zero exit status is reported in the result, not as an error; only a
// failure to start the process returns an error.
type CommandRunnerPort interface {
	Run(ctx context.Context, spec CommandSpec, onLine LineSink) (types.CommandResult, error)
}
