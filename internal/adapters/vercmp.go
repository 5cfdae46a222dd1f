package adapters

import (
	"context"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"runepkg/internal/ports"
)

type VercmpAdapter struct {
	Runner ports.CommandRunnerPort
	Binary string
}

func NewVercmpAdapter(runner ports.CommandRunnerPort) VercmpAdapter {
	return VercmpAdapter{Runner: runner, Binary: "vercmp"}
}

// Vercmp runs `vercmp a b` and normalises its answer to -1, 0 or 1.
func (a VercmpAdapter) Vercmp(ctx context.Context, left string, right string) (int, error) {
	binary := a.Binary
	if binary == "" {
		binary = "vercmp"
	}
	var lines []string
	result, err := a.Runner.Run(ctx, ports.CommandSpec{Argv: []string{binary, left, right}}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return 0, err
	}
	if result.ExitStatus != 0 {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("vercmp exited with status " + strconv.Itoa(result.ExitStatus))
	}
	return ParseVercmpOutput(lines)
}

// ParseVercmpOutput reads the first non-blank line as an integer and
// reduces it to its sign.
func ParseVercmpOutput(lines []string) (int, error) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unparsable vercmp output").
				WithCause(err)
		}
		switch {
		case value < 0:
			return -1, nil
		case value > 0:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("empty vercmp output")
}

var _ ports.VercmpPort = VercmpAdapter{}
