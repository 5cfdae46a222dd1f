package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"runepkg/internal/types"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestReportFileAdapter_WriteBatchReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "install.yaml")
	adapter := ReportFileAdapter{Now: fixedClock}

	report := types.BatchReport{}
	report.AddFailure("pkg-a", "build failed")
	report.AddSuccess("pkg-b")
	require.NoError(t, adapter.WriteBatchReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := strings.Join([]string{
		"kind: batch-report",
		"generated_at: \"2026-03-01T12:00:00Z\"",
		"total: 2",
		"succeeded:",
		"    - pkg-b",
		"failed:",
		"    - name: pkg-a",
		"      reason: build failed",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("unexpected report content (-want +got):\n%s", diff)
	}
}

func TestReportFileAdapter_EmptyReportUsesEmptyLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, ReportFileAdapter{Now: fixedClock}.WriteBatchReport(path, types.BatchReport{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "succeeded: []")
	assert.Contains(t, string(data), "failed: []")
}

func TestReportFileAdapter_WriteUpdateSetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outdated.yaml")
	set := types.UpdateSet{
		External: []types.InstalledExternalPackage{{
			Record:       types.PackageRecord{Name: "yay", Version: "12.3.5-1"},
			LocalVersion: "12.3.4-1",
		}},
		Repo: []types.RepoUpdate{{Name: "linux", LocalVersion: "6.9.1-1", RepoVersion: "6.9.2-1", Repository: "core"}},
	}
	require.NoError(t, ReportFileAdapter{Now: fixedClock}.WriteUpdateSet(path, set))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		Kind            string `yaml:"kind"`
		types.UpdateSet `yaml:",inline"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "update-set", decoded.Kind)
	if diff := cmp.Diff(set, decoded.UpdateSet); diff != "" {
		t.Fatalf("update set mismatch (-want +got):\n%s", diff)
	}
}

func TestReportFileAdapter_EmptyPath(t *testing.T) {
	err := NewReportFileAdapter().WriteBatchReport(" ", types.BatchReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report path is empty")
}
