package app

import (
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/adapters"
	"runepkg/internal/core"
	"runepkg/internal/policies"
	"runepkg/internal/ports"
	"runepkg/internal/types"
)

type Service struct {
	Runner     ports.CommandRunnerPort
	Database   ports.PackageDatabasePort
	Metadata   ports.MetadataSourcePort
	Fetcher    ports.FetcherPort
	Inspector  ports.ArtifactInspectorPort
	BuildRoot  ports.BuildRootPort
	Toolchain  ports.ToolchainPort
	Reports    ports.ReportWriterPort
	Comparator ports.VersionComparatorPort
	Policy     ports.UpdatePolicyPort

	AURURL        string
	BuildDir      string
	Elevate       []string
	KeepBuildDirs bool

	// session admits one batch at a time per process.
	session *sync.Mutex
}

func NewService(cfg Config) (Service, error) {
	aurURL := strings.TrimSpace(cfg.AURURL)
	if aurURL == "" {
		aurURL = adapters.DefaultAURURL
	}
	buildDir := strings.TrimSpace(cfg.BuildDir)
	if buildDir == "" {
		buildDir = adapters.DefaultBuildRoot()
	}
	policy, err := policies.NewIgnorePolicy(cfg.Ignore)
	if err != nil {
		return Service{}, err
	}

	runner := adapters.NewCommandRunnerAdapter(cfg.SudoPrompt)
	var fetcher ports.FetcherPort
	switch cfg.FetchBackend {
	case types.FetchBackendGit, "":
		fetcher = adapters.NewGitFetcherAdapter(runner)
	case types.FetchBackendGoGit:
		fetcher = adapters.NewGoGitFetcherAdapter()
	default:
		return Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown fetch backend " + string(cfg.FetchBackend))
	}
	elevate := core.DefaultElevate(cfg.SudoPrompt)
	if cfg.AsRoot {
		elevate = nil
	}

	service := Service{
		Runner:        runner,
		Database:      adapters.NewPacmanQueryAdapter(runner),
		Metadata:      adapters.NewAURClientAdapter(aurURL, cfg.RPCTimeoutSec, cfg.RPCRatePerSec),
		Fetcher:       fetcher,
		Inspector:     adapters.NewArtifactInspectorAdapter(),
		BuildRoot:     adapters.NewBuildRootAdapter(buildDir),
		Toolchain:     adapters.NewToolchainAdapter(),
		Reports:       adapters.NewReportFileAdapter(),
		Comparator:    core.NewVersionComparator(adapters.NewVercmpAdapter(runner)),
		Policy:        policy,
		AURURL:        aurURL,
		BuildDir:      buildDir,
		Elevate:       elevate,
		KeepBuildDirs: cfg.KeepBuildDirs,
		session:       &sync.Mutex{},
	}
	log.Debug().Str("aur", aurURL).Str("build_dir", buildDir).Str("fetch", string(cfg.FetchBackend)).Msg("service configured")
	return service, nil
}

func (s Service) reconciler() core.Reconciler {
	return core.NewReconciler(s.Database, s.Metadata, s.Comparator, s.Policy)
}

func (s Service) orchestrator() core.BatchOrchestrator {
	pipeline := core.NewBuildPipeline(s.Runner, s.Fetcher, s.BuildRoot, s.Inspector)
	pipeline.Elevate = s.Elevate
	pipeline.KeepWorkDir = s.KeepBuildDirs
	orchestrator := core.NewBatchOrchestrator(pipeline, s.Runner)
	orchestrator.Elevate = s.Elevate
	return orchestrator
}

// acquireSession takes the batch lock or reports that another batch in
// this process still holds it.
func (s Service) acquireSession() (func(), error) {
	if s.session == nil {
		return func() {}, nil
	}
	if !s.session.TryLock() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("another batch is already running")
	}
	return s.session.Unlock, nil
}

func (s Service) writeReport(path string, report types.BatchReport) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if err := s.Reports.WriteBatchReport(path, report); err != nil {
		return "", err
	}
	return path, nil
}
