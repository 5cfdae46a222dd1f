package app

import (
	"runepkg/internal/core"
	"runepkg/internal/ports"
	"runepkg/internal/types"
)

// Config carries the resolved configuration values the service is built
// from.
type Config struct {
	AURURL        string
	BuildDir      string
	RPCTimeoutSec int
	RPCRatePerSec float64
	FetchBackend  types.FetchBackend
	KeepBuildDirs bool
	Ignore        []string
	SudoPrompt    string
	// AsRoot skips privilege elevation entirely.
	AsRoot bool
}

type InstallRequest struct {
	Names      []string
	Secret     *types.Secret
	ReportPath string
	OnLine     ports.LineSink
	OnProgress core.ProgressSink
}

type RemoveRequest struct {
	Names      []string
	Secret     *types.Secret
	ReportPath string
	OnLine     ports.LineSink
}

type UpdateRequest struct {
	// External and Repo select which candidate kinds are upgraded. Both
	// false means both.
	External   bool
	Repo       bool
	Secret     *types.Secret
	ReportPath string
	OnLine     ports.LineSink
	OnProgress core.ProgressSink
}

type BatchResult struct {
	Report     types.BatchReport
	ReportPath string
	Hints      []string
}

type UpdateResult struct {
	Candidates types.UpdateSet
	BatchResult
}

type OutdatedRequest struct {
	ReportPath string
}

type OutdatedResult struct {
	Updates    types.UpdateSet
	ReportPath string
}

type ListRequest struct {
	View types.InstalledView
}

type SearchRequest struct {
	Query string
	Mode  types.SearchMode
}

type InfoRequest struct {
	Names []string
}

type InfoResult struct {
	Records []types.PackageRecord
	Missing []string
	Host    string
}

type CleanRequest struct {
	// Name selects one working directory; empty resets the build root.
	Name string
}

type DoctorResult struct {
	MissingRequired []string
	MissingOptional []string
	BuildRoot       string
	AURURL          string
}

func (r DoctorResult) Healthy() bool {
	return len(r.MissingRequired) == 0
}
