package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
)

const defaultSrcinfoTimeout = 30 * time.Second

// DependencyExtractor lists the build and runtime dependencies a recipe
// declares. It never fails: anything it cannot read yields no
// dependencies and the build step reports the real problem.
type DependencyExtractor struct {
	Runner  ports.CommandRunnerPort
	Timeout time.Duration
}

func NewDependencyExtractor(runner ports.CommandRunnerPort) DependencyExtractor {
	return DependencyExtractor{Runner: runner, Timeout: defaultSrcinfoTimeout}
}

// Extract runs `makepkg --printsrcinfo` next to recipePath.
func (e DependencyExtractor) Extract(ctx context.Context, recipePath string) []string {
	if _, err := os.Stat(recipePath); err != nil {
		log.Debug().Str("recipe", recipePath).Msg("recipe missing, no dependencies extracted")
		return nil
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultSrcinfoTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lines []string
	result, err := e.Runner.Run(ctx, ports.CommandSpec{
		Argv: []string{"makepkg", "--printsrcinfo"},
		Dir:  filepath.Dir(recipePath),
	}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		log.Warn().Err(err).Str("recipe", recipePath).Msg("recipe introspection failed to start")
		return nil
	}
	if !result.Succeeded() {
		log.Warn().Int("status", result.ExitStatus).Str("recipe", recipePath).Msg("recipe introspection failed")
		return nil
	}
	return ParseSrcinfoDependencies(lines)
}

// ParseSrcinfoDependencies collects depends and makedepends entries,
// including architecture specific ones such as depends_x86_64, with
// version constraints removed and duplicates dropped in first-seen order.
func ParseSrcinfoDependencies(lines []string) []string {
	var names []string
	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), " = ")
		if !ok || !isDependencyKey(key) {
			continue
		}
		if name := shared.StripVersionConstraint(value); name != "" {
			names = append(names, name)
		}
	}
	return shared.UniqueStrings(names)
}

func isDependencyKey(key string) bool {
	for _, base := range []string{"depends", "makedepends"} {
		if key == base || strings.HasPrefix(key, base+"_") {
			return true
		}
	}
	return false
}
