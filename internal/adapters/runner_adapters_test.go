package adapters

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runepkg/tests/testutil"
)

func TestPacmanQueryAdapter_BuffersLines(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("pacman -Qm", testutil.FakeResponse{Lines: []string{"yay 12.3.5-1", "paru 2.0.3-1"}})
	adapter := NewPacmanQueryAdapter(runner)

	result, err := adapter.Query(t.Context(), "-Qm")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitStatus)
	assert.Equal(t, []string{"yay 12.3.5-1", "paru 2.0.3-1"}, result.Lines)
	assert.Equal(t, []string{"pacman -Qm"}, runner.Commands())
	assert.Nil(t, runner.Calls()[0].Secret)
}

func TestPacmanQueryAdapter_NonZeroExitWithoutOutput(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("pacman -Qu", testutil.FakeResponse{ExitStatus: 1})
	result, err := NewPacmanQueryAdapter(runner).Query(t.Context(), "-Qu")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitStatus)
	assert.Empty(t, result.Lines)
}

func TestPacmanQueryAdapter_StartFailure(t *testing.T) {
	startErr := errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("failed to start pacman")
	runner := testutil.NewFakeRunner().On("pacman", testutil.FakeResponse{Err: startErr})
	_, err := NewPacmanQueryAdapter(runner).Query(t.Context(), "-Q")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestParseVercmpOutput(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    int
		wantErr bool
	}{
		{name: "less", lines: []string{"-1"}, want: -1},
		{name: "equal", lines: []string{"0"}, want: 0},
		{name: "greater", lines: []string{"1"}, want: 1},
		{name: "magnitude reduced", lines: []string{"", " 7 "}, want: 1},
		{name: "garbage", lines: []string{"usage: vercmp"}, wantErr: true},
		{name: "empty", lines: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVercmpOutput(tt.lines)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVercmpAdapter_PassesVersionsAsArguments(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("vercmp 1.0-1 1.0-2", testutil.FakeResponse{Lines: []string{"-1"}})
	got, err := NewVercmpAdapter(runner).Vercmp(t.Context(), "1.0-1", "1.0-2")
	require.NoError(t, err)
	assert.Equal(t, -1, got)
}

func TestVercmpAdapter_NonZeroExit(t *testing.T) {
	runner := testutil.NewFakeRunner().On("vercmp", testutil.FakeResponse{ExitStatus: 2})
	_, err := NewVercmpAdapter(runner).Vercmp(t.Context(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestGitFetcherAdapter_ShallowClone(t *testing.T) {
	runner := testutil.NewFakeRunner().On("git clone", testutil.FakeResponse{Lines: []string{"Cloning into 'yay'..."}})
	var lines []string
	err := NewGitFetcherAdapter(runner).Fetch(t.Context(), "https://aur.archlinux.org/yay.git", "/tmp/build/yay", func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"git clone --depth=1 -- https://aur.archlinux.org/yay.git /tmp/build/yay"}, runner.Commands())
	assert.Equal(t, []string{"Cloning into 'yay'..."}, lines)
}

func TestGitFetcherAdapter_CloneFailure(t *testing.T) {
	runner := testutil.NewFakeRunner().On("git clone", testutil.FakeResponse{ExitStatus: 128})
	err := NewGitFetcherAdapter(runner).Fetch(t.Context(), "https://aur.archlinux.org/nope.git", t.TempDir()+"/nope", nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}

func TestGitFetcherAdapter_StartFailurePropagates(t *testing.T) {
	runner := testutil.NewFakeRunner().On("git", testutil.FakeResponse{Err: errors.New("boom")})
	err := NewGitFetcherAdapter(runner).Fetch(t.Context(), "u", "d", nil)
	require.Error(t, err)
}
