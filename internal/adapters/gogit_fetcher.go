package adapters

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
)

// GoGitFetcherAdapter clones in-process, for hosts without a git binary.
type GoGitFetcherAdapter struct{}

func NewGoGitFetcherAdapter() GoGitFetcherAdapter {
	return GoGitFetcherAdapter{}
}

func (a GoGitFetcherAdapter) Fetch(ctx context.Context, url string, dir string, onLine ports.LineSink) error {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(dir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("clone url and directory are required")
	}
	progress := newLineWriter(onLine)
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     progress,
	})
	progress.Flush()
	if err != nil {
		// leave no half-written checkout behind
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", dir).Msg("failed to remove partial clone")
		}
		code := errbuilder.CodeUnavailable
		if errors.Is(err, transport.ErrRepositoryNotFound) || errors.Is(err, transport.ErrEmptyRemoteRepository) {
			code = errbuilder.CodeNotFound
		}
		return errbuilder.New().
			WithCode(code).
			WithMsg("go-git clone failed").
			WithCause(err)
	}
	return nil
}

// lineWriter turns a progress byte stream into completed lines. Both '\n'
// and '\r' terminate a line since sideband progress rewrites in place.
type lineWriter struct {
	mu     sync.Mutex
	onLine ports.LineSink
	buf    []byte
}

func newLineWriter(onLine ports.LineSink) *lineWriter {
	return &lineWriter{onLine: onLine}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range p {
		if b == '\n' || b == '\r' {
			w.emit()
			continue
		}
		w.buf = append(w.buf, b)
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.emit()
}

func (w *lineWriter) emit() {
	if len(w.buf) == 0 {
		return
	}
	line := string(w.buf)
	w.buf = w.buf[:0]
	if w.onLine != nil {
		w.onLine(line)
	}
}

var _ ports.FetcherPort = GoGitFetcherAdapter{}
