package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"runepkg/internal/adapters"
	"runepkg/internal/ports"
	"runepkg/internal/types"
	"runepkg/tests/testutil"
)

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// fakeFetcher "clones" by creating dir with a PKGBUILD. Like git it refuses
// to clone into an existing directory.
type fakeFetcher struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, dir string, onLine ports.LineSink) error {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	fail := f.fail[url]
	f.mu.Unlock()
	if fail {
		return errors.New("repository not found")
	}
	if _, err := os.Stat(dir); err == nil {
		return errors.New("destination path already exists")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if onLine != nil {
		onLine("Cloning into '" + filepath.Base(dir) + "'...")
	}
	return os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname="+filepath.Base(dir)+"\n"), 0o644)
}

type fakeInspector struct {
	err error
}

func (f fakeInspector) Inspect(path string) (types.ArtifactInfo, error) {
	if f.err != nil {
		return types.ArtifactInfo{}, f.err
	}
	base := filepath.Base(path)
	name := strings.SplitN(base, "-1.0-1", 2)[0]
	return types.ArtifactInfo{Path: path, Name: name, Version: "1.0-1", Arch: "x86_64", Digest: "abc123"}, nil
}

// builtArtifact writes <name>-1.0-1-x86_64.pkg.tar.zst into the build dir,
// mimicking makepkg with PKGDEST set.
func builtArtifact(spec ports.CommandSpec) {
	name := filepath.Base(spec.Dir)
	_ = os.WriteFile(filepath.Join(spec.Dir, name+"-1.0-1-x86_64.pkg.tar.zst"), []byte("pkg"), 0o644)
}

type pipelineFixture struct {
	root     string
	runner   *testutil.FakeRunner
	fetcher  *fakeFetcher
	pipeline BuildPipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	root := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.MkdirAll(root, 0o755))
	runner := testutil.NewFakeRunner().
		On("makepkg --printsrcinfo", testutil.FakeResponse{}).
		On("makepkg -f", testutil.FakeResponse{Do: builtArtifact, Lines: []string{"==> Finished making"}}).
		On("sudo -S -- pacman -U", testutil.FakeResponse{Lines: []string{"installing..."}}).
		On("sudo -S -- pacman -S", testutil.FakeResponse{})
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	pipeline := NewBuildPipeline(runner, fetcher, adapters.NewBuildRootAdapter(root), fakeInspector{})
	pipeline.Elevate = []string{"sudo", "-S", "--"}
	return &pipelineFixture{root: root, runner: runner, fetcher: fetcher, pipeline: pipeline}
}

func refFor(name string) types.PackageRef {
	return types.PackageRef{Name: name, RemoteVersion: "1.0-1", SourceURL: "https://aur.example/" + name + ".git"}
}

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingSink) sink(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.lines...)
}
