package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

// ReportFileAdapter writes batch reports and update sets as YAML documents.
type ReportFileAdapter struct {
	Now func() time.Time
}

func NewReportFileAdapter() ReportFileAdapter {
	return ReportFileAdapter{Now: time.Now}
}

type batchReportDocument struct {
	Kind        string `yaml:"kind"`
	GeneratedAt string `yaml:"generated_at"`
	Total       int    `yaml:"total"`

	types.BatchReport `yaml:",inline"`
}

type updateSetDocument struct {
	Kind        string `yaml:"kind"`
	GeneratedAt string `yaml:"generated_at"`

	types.UpdateSet `yaml:",inline"`
}

func (a ReportFileAdapter) WriteBatchReport(path string, report types.BatchReport) error {
	doc := batchReportDocument{
		Kind:        "batch-report",
		GeneratedAt: a.timestamp(),
		Total:       report.Total(),
		BatchReport: normalizeBatchReport(report),
	}
	return a.write(path, doc)
}

func (a ReportFileAdapter) WriteUpdateSet(path string, set types.UpdateSet) error {
	if set.External == nil {
		set.External = []types.InstalledExternalPackage{}
	}
	if set.Repo == nil {
		set.Repo = []types.RepoUpdate{}
	}
	doc := updateSetDocument{
		Kind:        "update-set",
		GeneratedAt: a.timestamp(),
		UpdateSet:   set,
	}
	return a.write(path, doc)
}

func (a ReportFileAdapter) write(path string, doc any) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create report directory").
				WithCause(err)
		}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode report").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return nil
}

func (a ReportFileAdapter) timestamp() string {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// normalizeBatchReport keeps empty lists as [] rather than null.
func normalizeBatchReport(report types.BatchReport) types.BatchReport {
	out := report.Clone()
	if out.Succeeded == nil {
		out.Succeeded = []string{}
	}
	if out.Failed == nil {
		out.Failed = []types.BatchFailure{}
	}
	return out
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
