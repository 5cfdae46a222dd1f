package adapters

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

const maxLineBuffer = 1024 * 1024

type CommandRunnerAdapter struct {
	// PromptPrefixes are stripped from the start of standard error lines
	// when a secret is supplied. A line that is empty afterwards is dropped.
	PromptPrefixes []string
}

func NewCommandRunnerAdapter(prompt string) CommandRunnerAdapter {
	prefixes := []string{"[sudo]"}
	if strings.TrimSpace(prompt) != "" {
		prefixes = append([]string{prompt}, prefixes...)
	}
	return CommandRunnerAdapter{PromptPrefixes: prefixes}
}

type streamLine struct {
	text   string
	stderr bool
}

func (a CommandRunnerAdapter) Run(ctx context.Context, spec ports.CommandSpec, onLine ports.LineSink) (types.CommandResult, error) {
	if len(spec.Argv) == 0 || strings.TrimSpace(spec.Argv[0]) == "" {
		return types.CommandResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("command argv is empty")
	}
	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = append(append(os.Environ(), "LC_ALL=C"), spec.Env...)

	// Without a secret there is no prompt to filter, so both streams share
	// one pipe and lines keep the order the child wrote them in.
	var merged, mergedWriter *os.File
	var stdout, stderr io.ReadCloser
	var err error
	if spec.Secret.Empty() {
		merged, mergedWriter, err = os.Pipe()
		if err != nil {
			return types.CommandResult{}, startError(spec.Argv[0], err)
		}
		defer merged.Close()
		cmd.Stdout = mergedWriter
		cmd.Stderr = mergedWriter
	} else {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return types.CommandResult{}, startError(spec.Argv[0], err)
		}
		stderr, err = cmd.StderrPipe()
		if err != nil {
			return types.CommandResult{}, startError(spec.Argv[0], err)
		}
	}
	var stdin io.WriteCloser
	if !spec.Secret.Empty() {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return types.CommandResult{}, startError(spec.Argv[0], err)
		}
	}

	log.Debug().Strs("argv", spec.Argv).Str("dir", spec.Dir).Bool("secret", stdin != nil).Msg("running command")
	startErr := cmd.Start()
	if mergedWriter != nil {
		// the child holds its own copy; EOF arrives once it exits
		_ = mergedWriter.Close()
	}
	if startErr != nil {
		return types.CommandResult{}, startError(spec.Argv[0], startErr)
	}

	authenticated := false
	if stdin != nil {
		line := spec.Secret.Line()
		_, writeErr := stdin.Write(line)
		for i := range line {
			line[i] = 0
		}
		closeErr := stdin.Close()
		authenticated = writeErr == nil && closeErr == nil
		if !authenticated {
			log.Warn().Str("command", spec.Argv[0]).Msg("failed to deliver secret on stdin")
		}
	}

	lines := make(chan streamLine, 64)
	var readers sync.WaitGroup
	if merged != nil {
		readers.Add(1)
		go scanLines(merged, false, lines, &readers)
	} else {
		readers.Add(2)
		go scanLines(stdout, false, lines, &readers)
		go scanLines(stderr, true, lines, &readers)
	}
	go func() {
		readers.Wait()
		close(lines)
	}()

	for line := range lines {
		text, keep := a.filterLine(line, spec.Secret)
		if keep && onLine != nil {
			onLine(text)
		}
	}

	waitErr := cmd.Wait()
	result := types.CommandResult{Authenticated: authenticated}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitStatus = exitErr.ExitCode()
			if result.ExitStatus < 0 {
				// killed by a signal, usually ctx cancellation
				result.ExitStatus = 1
			}
			log.Debug().Str("command", spec.Argv[0]).Int("status", result.ExitStatus).Msg("command exited")
			return result, nil
		}
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed waiting for " + spec.Argv[0]).
			WithCause(waitErr)
	}
	return result, nil
}

func (a CommandRunnerAdapter) filterLine(line streamLine, secret *types.Secret) (string, bool) {
	text := line.text
	if line.stderr && !secret.Empty() {
		stripped := a.stripPrompt(text)
		if stripped != text && strings.TrimSpace(stripped) == "" {
			return "", false
		}
		text = stripped
	}
	return secret.Redact(text), true
}

// stripPrompt removes leading prompt text. sudo writes its prompt without a
// trailing newline, so the next message on stderr shares the same line.
func (a CommandRunnerAdapter) stripPrompt(text string) string {
	for {
		trimmed := strings.TrimLeft(text, " ")
		matched := false
		for _, prefix := range a.PromptPrefixes {
			if prefix == "" || !strings.HasPrefix(trimmed, prefix) {
				continue
			}
			rest := trimmed[len(prefix):]
			if prefix == "[sudo]" {
				// generic sudo prompt: "[sudo] password for user: "
				if idx := strings.Index(rest, ": "); idx != -1 {
					rest = rest[idx+2:]
				} else {
					rest = ""
				}
			}
			text = rest
			matched = true
			break
		}
		if !matched || text == "" {
			return text
		}
	}
}

func scanLines(r io.Reader, stderr bool, out chan<- streamLine, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBuffer)
	for scanner.Scan() {
		out <- streamLine{text: strings.TrimRight(scanner.Text(), "\r"), stderr: stderr}
	}
	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Bool("stderr", stderr).Msg("stopped reading command output")
		// drain so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}
}

func startError(argv0 string, err error) error {
	code := errbuilder.CodeInternal
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		code = errbuilder.CodeNotFound
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg("failed to start " + argv0).
		WithCause(err)
}

var _ ports.CommandRunnerPort = CommandRunnerAdapter{}
