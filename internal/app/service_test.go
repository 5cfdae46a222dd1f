package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runepkg/internal/adapters"
	"runepkg/internal/core"
	"runepkg/internal/ports"
	"runepkg/internal/types"
	"runepkg/tests/testutil"
)

type stubMetadata struct {
	records  []types.PackageRecord
	err      error
	searches []types.SearchMode
}

func (s *stubMetadata) Info(_ context.Context, names []string) ([]types.PackageRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	want := map[string]bool{}
	for _, name := range names {
		want[name] = true
	}
	var out []types.PackageRecord
	for _, record := range s.records {
		if want[record.Name] {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubMetadata) Search(_ context.Context, _ string, mode types.SearchMode) ([]types.PackageRecord, error) {
	s.searches = append(s.searches, mode)
	return s.records, s.err
}

// dirFetcher creates the working directory with an empty recipe.
type dirFetcher struct{}

func (dirFetcher) Fetch(_ context.Context, _ string, dir string, _ ports.LineSink) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname=x\n"), 0o644)
}

type serviceFixture struct {
	service  Service
	runner   *testutil.FakeRunner
	metadata *stubMetadata
	root     string
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	runner := testutil.NewFakeRunner().On("makepkg -f", testutil.FakeResponse{Do: func(spec ports.CommandSpec) {
		name := filepath.Base(spec.Dir)
		_ = os.WriteFile(filepath.Join(spec.Dir, name+"-1.0-1-x86_64.pkg.tar.zst"), []byte("pkg"), 0o644)
	}})
	metadata := &stubMetadata{}
	root := filepath.Join(t.TempDir(), "build")
	return &serviceFixture{
		runner:   runner,
		metadata: metadata,
		root:     root,
		service: Service{
			Runner:     runner,
			Database:   adapters.NewPacmanQueryAdapter(runner),
			Metadata:   metadata,
			Fetcher:    dirFetcher{},
			Inspector:  adapters.NewArtifactInspectorAdapter(),
			BuildRoot:  adapters.NewBuildRootAdapter(root),
			Toolchain:  adapters.ToolchainAdapter{LookPath: func(string) (string, error) { return "/usr/bin/tool", nil }},
			Reports:    adapters.NewReportFileAdapter(),
			Comparator: core.NewVersionComparator(nil),
			AURURL:     "https://aur.example",
			BuildDir:   root,
			session:    &sync.Mutex{},
		},
	}
}

func TestServiceInstallReportsEveryName(t *testing.T) {
	fx := newServiceFixture(t)
	fx.metadata.records = []types.PackageRecord{
		{Name: "pkg-a", Version: "1.0-1"},
		{Name: "pkg-b", Version: "1.0-1", PackageBase: "pkg-b-base"},
	}
	fx.runner.On("makepkg -f", testutil.FakeResponse{
		Do: func(spec ports.CommandSpec) {
			_ = os.WriteFile(filepath.Join(spec.Dir, "pkg-b-1.0-1-x86_64.pkg.tar.zst"), []byte("pkg"), 0o644)
		},
		Status: func(spec ports.CommandSpec) int {
			if filepath.Base(spec.Dir) == "pkg-a" {
				return 1
			}
			return 0
		},
	})
	secret := types.NewSecret([]byte("hunter2"))
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	result, err := fx.service.Install(t.Context(), InstallRequest{
		Names:      []string{"pkg-b", "ghost", "pkg-a", "pkg-b"},
		Secret:     secret,
		ReportPath: reportPath,
	})
	require.NoError(t, err)

	want := types.BatchReport{
		Succeeded: []string{"pkg-b"},
		Failed: []types.BatchFailure{
			{Name: "ghost", Reason: core.ReasonNotFound},
			{Name: "pkg-a", Reason: core.ReasonBuild},
		},
	}
	if diff := cmp.Diff(want, result.Report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, secret.Empty(), "secret destroyed at batch end")
	assert.Equal(t, reportPath, result.ReportPath)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: batch-report")
	assert.NotContains(t, string(data), "hunter2")
}

func TestServiceInstallRequiresNames(t *testing.T) {
	fx := newServiceFixture(t)
	_, err := fx.service.Install(t.Context(), InstallRequest{Names: []string{" ", ""}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestServiceInstallMetadataUnavailable(t *testing.T) {
	fx := newServiceFixture(t)
	fx.metadata.err = errbuilder.New().WithCode(errbuilder.CodeUnavailable).WithMsg("aur request failed")
	_, err := fx.service.Install(t.Context(), InstallRequest{Names: []string{"yay"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
	assert.Empty(t, fx.runner.Commands())
}

func TestServiceRejectsConcurrentBatch(t *testing.T) {
	fx := newServiceFixture(t)
	fx.service.session.Lock()
	defer fx.service.session.Unlock()

	secret := types.NewSecret([]byte("pw"))
	_, err := fx.service.Install(t.Context(), InstallRequest{Names: []string{"yay"}, Secret: secret})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.True(t, secret.Empty())

	_, err = fx.service.Remove(t.Context(), RemoveRequest{Names: []string{"yay"}})
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	_, err = fx.service.Update(t.Context(), UpdateRequest{})
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestServiceRemove(t *testing.T) {
	fx := newServiceFixture(t)
	result, err := fx.service.Remove(t.Context(), RemoveRequest{Names: []string{"yay", "paru"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"yay", "paru"}, result.Report.Succeeded)
	assert.Equal(t, []string{"pacman -R --noconfirm yay paru"}, fx.runner.Commands())
}

func TestServiceUpdate(t *testing.T) {
	tests := []struct {
		name      string
		req       UpdateRequest
		succeeded []string
	}{
		{name: "both kinds", req: UpdateRequest{}, succeeded: []string{"yay", "linux"}},
		{name: "external only", req: UpdateRequest{External: true}, succeeded: []string{"yay"}},
		{name: "repo only", req: UpdateRequest{Repo: true}, succeeded: []string{"linux"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newServiceFixture(t)
			fx.runner.
				On("pacman -Qm", testutil.FakeResponse{Lines: []string{"yay 12.0.0-1"}}).
				On("pacman -Qu", testutil.FakeResponse{Lines: []string{"linux 6.9.1-1 -> 6.9.2-1"}})
			fx.metadata.records = []types.PackageRecord{{Name: "yay", Version: "12.0.1-1"}}

			result, err := fx.service.Update(t.Context(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.succeeded, result.Report.Succeeded)
			assert.Empty(t, result.Report.Failed)
		})
	}
}

func TestServiceUpdateNothingToDo(t *testing.T) {
	fx := newServiceFixture(t)
	fx.runner.On("pacman -Qm", testutil.FakeResponse{Lines: []string{"yay 12.0.1-1"}})
	fx.metadata.records = []types.PackageRecord{{Name: "yay", Version: "12.0.1-1"}}

	result, err := fx.service.Update(t.Context(), UpdateRequest{})
	require.NoError(t, err)
	assert.True(t, result.Candidates.Empty())
	assert.Zero(t, result.Report.Total())
	assert.Empty(t, fx.runner.CallsMatching("makepkg"))
}

func TestServiceOutdatedWritesUpdateSet(t *testing.T) {
	fx := newServiceFixture(t)
	fx.runner.On("pacman -Qm", testutil.FakeResponse{Lines: []string{"yay 12.0.0-1"}})
	fx.metadata.records = []types.PackageRecord{{Name: "yay", Version: "12.0.1-1"}}
	path := filepath.Join(t.TempDir(), "outdated.yaml")

	result, err := fx.service.Outdated(t.Context(), OutdatedRequest{ReportPath: path})
	require.NoError(t, err)
	require.Len(t, result.Updates.External, 1)
	assert.Equal(t, "12.0.0-1", result.Updates.External[0].LocalVersion)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: update-set")
}

func TestServiceListDefaultsToAll(t *testing.T) {
	fx := newServiceFixture(t)
	fx.runner.On("pacman -Q", testutil.FakeResponse{Lines: []string{"bash 5.2-1"}})
	got, err := fx.service.List(t.Context(), ListRequest{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bash", got[0].Name)
}

func TestServiceSearch(t *testing.T) {
	fx := newServiceFixture(t)
	_, err := fx.service.Search(t.Context(), SearchRequest{Query: "  "})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = fx.service.Search(t.Context(), SearchRequest{Query: "yay"})
	require.NoError(t, err)
	assert.Equal(t, []types.SearchMode{types.SearchModeNameDesc}, fx.metadata.searches)
}

func TestServiceInfoListsMissing(t *testing.T) {
	fx := newServiceFixture(t)
	fx.metadata.records = []types.PackageRecord{{Name: "yay", Version: "12.0.1-1"}}
	result, err := fx.service.Info(t.Context(), InfoRequest{Names: []string{"ghost", "yay"}})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, []string{"ghost"}, result.Missing)
	assert.Equal(t, "https://aur.example", result.Host)
}

func TestServiceClean(t *testing.T) {
	fx := newServiceFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(fx.root, "demo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(fx.root, "other"), 0o755))

	require.NoError(t, fx.service.Clean(t.Context(), CleanRequest{Name: "demo"}))
	_, err := os.Stat(filepath.Join(fx.root, "demo"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, fx.service.Clean(t.Context(), CleanRequest{}))
	entries, err := os.ReadDir(fx.root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = fx.service.Clean(t.Context(), CleanRequest{Name: "../etc"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestServiceDoctor(t *testing.T) {
	fx := newServiceFixture(t)
	fx.service.Toolchain = adapters.ToolchainAdapter{LookPath: func(file string) (string, error) {
		if file == "makepkg" || file == "vercmp" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}}
	result := fx.service.Doctor(t.Context())
	assert.Equal(t, []string{"makepkg"}, result.MissingRequired)
	assert.Equal(t, []string{"vercmp"}, result.MissingOptional)
	assert.False(t, result.Healthy())
}

func TestNewService(t *testing.T) {
	service, err := NewService(Config{BuildDir: t.TempDir(), AsRoot: true})
	require.NoError(t, err)
	assert.Equal(t, adapters.DefaultAURURL, service.AURURL)
	assert.Empty(t, service.Elevate)
	assert.IsType(t, adapters.GitFetcherAdapter{}, service.Fetcher)

	service, err = NewService(Config{BuildDir: t.TempDir(), FetchBackend: types.FetchBackendGoGit, SudoPrompt: "pw: "})
	require.NoError(t, err)
	assert.IsType(t, adapters.GoGitFetcherAdapter{}, service.Fetcher)
	assert.Equal(t, []string{"sudo", "-S", "-p", "pw: ", "--"}, service.Elevate)

	_, err = NewService(Config{FetchBackend: "svn"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = NewService(Config{Ignore: []string{"apt:foo"}})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestBatchHints(t *testing.T) {
	hints := batchHints(types.BatchReport{
		Succeeded: []string{"ok"},
		Failed: []types.BatchFailure{
			{Name: "ghost", Reason: core.ReasonNotFound},
			{Name: "demo", Reason: core.ReasonBuild},
			{Name: "stopped", Reason: core.ReasonCancelled},
		},
	}, "/cache/runepkg")
	want := []string{
		"hint: ghost is not in the AUR; if it is a repository package use pacman -S ghost",
		"hint: the working directory for demo was kept in /cache/runepkg/demo; remove it with runepkg clean demo",
	}
	if diff := cmp.Diff(want, hints); diff != "" {
		t.Fatalf("hints mismatch (-want +got):\n%s", diff)
	}
}
