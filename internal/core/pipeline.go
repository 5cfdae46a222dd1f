package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
	"runepkg/internal/types"
)

// Failure reasons recorded in batch reports.
const (
	ReasonInvalidName = "invalid package name"
	ReasonClone       = "clone failed"
	ReasonBuild       = "build failed"
	ReasonNoArtifacts = "no artifacts produced"
	ReasonInstall     = "install failed"
	ReasonRemove      = "remove failed"
	ReasonUpdate      = "update failed"
	ReasonNotFound    = "not found"
	ReasonCancelled   = "cancelled"
	ReasonInternal    = "internal error"
)

type Stage string

const (
	StageFetch             Stage = "fetch"
	StageExtractDeps       Stage = "extract-deps"
	StageInstallDeps       Stage = "install-deps"
	StageBuild             Stage = "build"
	StageCollectArtifacts  Stage = "collect-artifacts"
	StagePrivilegedInstall Stage = "install"
	StageDone              Stage = "done"
)

// BuildFlags trade source verification for unattended builds: checksums
// and PGP signatures declared by the recipe are not checked.
var BuildFlags = []string{"-f", "--noconfirm", "--skipchecksums", "--skippgpcheck"}

// DefaultElevate prefixes privileged commands. The secret is read by sudo
// from stdin, never from argv.
func DefaultElevate(prompt string) []string {
	if strings.TrimSpace(prompt) == "" {
		prompt = shared.DefaultSudoPrompt
	}
	return []string{"sudo", "-S", "-p", prompt, "--"}
}

// BuildPipeline takes one package from source to installed. Each run owns
// <build root>/<name> exclusively.
type BuildPipeline struct {
	Runner    ports.CommandRunnerPort
	Fetcher   ports.FetcherPort
	BuildRoot ports.BuildRootPort
	Extractor DependencyExtractor
	Inspector ports.ArtifactInspectorPort

	// Elevate is prepended to privileged commands. Empty when already root.
	Elevate     []string
	KeepWorkDir bool
}

func NewBuildPipeline(runner ports.CommandRunnerPort, fetcher ports.FetcherPort, buildRoot ports.BuildRootPort, inspector ports.ArtifactInspectorPort) BuildPipeline {
	return BuildPipeline{
		Runner:    runner,
		Fetcher:   fetcher,
		BuildRoot: buildRoot,
		Extractor: NewDependencyExtractor(runner),
		Inspector: inspector,
		Elevate:   DefaultElevate(""),
	}
}

// Run drives Fetch, ExtractDeps, InstallDeps, Build, CollectArtifacts and
// PrivilegedInstall in order. A returned error carries the failure reason
// as its message; the working directory is kept for diagnosis.
func (p BuildPipeline) Run(ctx context.Context, ref types.PackageRef, secret *types.Secret, onLine ports.LineSink) (types.BuildContext, error) {
	bc := types.BuildContext{Package: ref}
	emit := stageEmitter(ref.Name, onLine)

	if !shared.ValidPackageName(ref.Name) {
		return bc, pipelineFailure(ReasonInvalidName, nil)
	}
	workDir, err := p.BuildRoot.Dir(ref.Name)
	if err != nil {
		return bc, pipelineFailure(ReasonInvalidName, err)
	}
	assert.NotEmpty(ctx, workDir, "build root returned an empty working directory")
	bc.WorkDir = workDir

	emit(StageFetch, "cloning "+ref.SourceURL)
	if err := p.fetch(ctx, ref, workDir, onLine); err != nil {
		emit(StageFetch, "ERROR: "+ReasonClone)
		return bc, pipelineFailure(ReasonClone, err)
	}

	emit(StageExtractDeps, "reading dependencies")
	deps := p.Extractor.Extract(ctx, filepath.Join(workDir, "PKGBUILD"))

	if len(deps) > 0 {
		emit(StageInstallDeps, "installing dependencies: "+strings.Join(deps, ", "))
		argv := append([]string{"pacman", "-S", "--needed", "--noconfirm"}, deps...)
		result, err := p.Runner.Run(ctx, ports.CommandSpec{Argv: p.privileged(argv), Secret: secret}, onLine)
		if err != nil || !result.Succeeded() {
			log.Warn().Err(err).Int("status", result.ExitStatus).Str("package", ref.Name).Msg("dependency install failed, continuing to build")
			emit(StageInstallDeps, "note: some dependencies may need to be installed from the AUR first")
		}
	}

	emit(StageBuild, "building with makepkg")
	result, err := p.Runner.Run(ctx, ports.CommandSpec{
		Argv: append([]string{"makepkg"}, BuildFlags...),
		Dir:  workDir,
		Env:  []string{"PKGDEST=" + workDir},
	}, onLine)
	if err != nil || !result.Succeeded() {
		log.Debug().Err(err).Int("status", result.ExitStatus).Str("package", ref.Name).Msg("makepkg failed")
		emit(StageBuild, "ERROR: "+ReasonBuild)
		return bc, pipelineFailure(ReasonBuild, err)
	}

	emit(StageCollectArtifacts, "collecting built packages")
	artifacts, err := collectArtifacts(workDir)
	if err != nil || len(artifacts) == 0 {
		emit(StageCollectArtifacts, "ERROR: "+ReasonNoArtifacts)
		return bc, pipelineFailure(ReasonNoArtifacts, err)
	}
	bc.Artifacts = artifacts
	p.inspect(artifacts, emit)

	emit(StagePrivilegedInstall, "installing "+strings.Join(baseNames(artifacts), " "))
	argv := append([]string{"pacman", "-U", "--noconfirm"}, artifacts...)
	result, err = p.Runner.Run(ctx, ports.CommandSpec{Argv: p.privileged(argv), Secret: secret}, onLine)
	if err != nil || !result.Succeeded() {
		emit(StagePrivilegedInstall, "ERROR: "+ReasonInstall)
		return bc, pipelineFailure(ReasonInstall, err)
	}

	if !p.KeepWorkDir {
		if err := p.BuildRoot.Clean(ref.Name); err != nil {
			log.Warn().Err(err).Str("package", ref.Name).Msg("failed to remove working directory")
		}
	}
	emit(StageDone, "successfully installed "+ref.Name)
	return bc, nil
}

// fetch clears any previous checkout first so repeated runs start clean.
func (p BuildPipeline) fetch(ctx context.Context, ref types.PackageRef, workDir string, onLine ports.LineSink) error {
	if strings.TrimSpace(ref.SourceURL) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source url is empty")
	}
	if err := p.BuildRoot.Clean(ref.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(workDir), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create build root").
			WithCause(err)
	}
	return p.Fetcher.Fetch(ctx, ref.SourceURL, workDir, onLine)
}

func (p BuildPipeline) inspect(artifacts []string, emit func(Stage, string)) {
	if p.Inspector == nil {
		return
	}
	for _, path := range artifacts {
		info, err := p.Inspector.Inspect(path)
		if err != nil {
			log.Warn().Err(err).Str("artifact", path).Msg("artifact inspection failed")
			continue
		}
		emit(StageCollectArtifacts, fmt.Sprintf("artifact %s: %s %s (%s) blake3:%s",
			filepath.Base(path), info.Name, info.Version, info.Arch, info.Digest))
	}
}

func (p BuildPipeline) privileged(argv []string) []string {
	return elevate(p.Elevate, argv)
}

func elevate(prefix []string, argv []string) []string {
	if len(prefix) == 0 {
		return argv
	}
	out := make([]string, 0, len(prefix)+len(argv))
	out = append(out, prefix...)
	return append(out, argv...)
}

// collectArtifacts lists built package archives in workDir, skipping
// split debug-symbol packages.
func collectArtifacts(workDir string) ([]string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, err
	}
	var artifacts []string
	for _, entry := range entries {
		if entry.IsDir() || !shared.IsPackageArtifact(entry.Name()) || shared.IsDebugArtifact(entry.Name()) {
			continue
		}
		artifacts = append(artifacts, filepath.Join(workDir, entry.Name()))
	}
	sort.Strings(artifacts)
	return artifacts, nil
}

func stageEmitter(name string, onLine ports.LineSink) func(Stage, string) {
	return func(stage Stage, message string) {
		log.Debug().Str("package", name).Str("stage", string(stage)).Msg(message)
		if onLine != nil {
			onLine(fmt.Sprintf("==> [%s] %s", name, message))
		}
	}
}

func pipelineFailure(reason string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeAborted).
		WithMsg(reason)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}

func baseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		out = append(out, filepath.Base(path))
	}
	return out
}
