package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
)

// BuildRootAdapter owns <root>/<name> working directories. Names are
// validated so a directory can never escape the root.
type BuildRootAdapter struct {
	Root string
}

func NewBuildRootAdapter(root string) BuildRootAdapter {
	return BuildRootAdapter{Root: root}
}

// DefaultBuildRoot is $XDG_CACHE_HOME/runepkg, falling back to the user
// cache directory and finally the temp directory.
func DefaultBuildRoot() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); xdg != "" {
		return filepath.Join(xdg, "runepkg")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", "runepkg")
	}
	return filepath.Join(os.TempDir(), "runepkg")
}

func (a BuildRootAdapter) Dir(name string) (string, error) {
	if strings.TrimSpace(a.Root) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build root is empty")
	}
	if !shared.ValidPackageName(name) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid package name " + quoteName(name))
	}
	return filepath.Join(a.Root, name), nil
}

func (a BuildRootAdapter) Clean(name string) error {
	dir, err := a.Dir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove working directory").
			WithCause(err)
	}
	log.Debug().Str("dir", dir).Msg("removed working directory")
	return nil
}

func (a BuildRootAdapter) Reset() error {
	root := strings.TrimSpace(a.Root)
	if root == "" || filepath.Clean(root) == string(filepath.Separator) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("refusing to reset build root " + quoteName(root))
	}
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read build root").
			WithCause(err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to clean build root").
				WithCause(err)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create build root").
			WithCause(err)
	}
	log.Info().Str("root", root).Int("removed", len(entries)).Msg("build root reset")
	return nil
}

func quoteName(name string) string {
	return "\"" + name + "\""
}

var _ ports.BuildRootPort = BuildRootAdapter{}
