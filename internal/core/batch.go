package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
	"runepkg/internal/types"
)

// ProgressSink receives (current, total) before each batch item starts.
type ProgressSink func(current int, total int)

// PackagePipeline builds and installs one package.
type PackagePipeline interface {
	Run(ctx context.Context, ref types.PackageRef, secret *types.Secret, onLine ports.LineSink) (types.BuildContext, error)
}

// BatchOrchestrator runs batch items strictly one after another. A failing
// item is recorded and the batch moves on; no item can abort the batch.
type BatchOrchestrator struct {
	Pipeline PackagePipeline
	Runner   ports.CommandRunnerPort
	Elevate  []string

	// ShouldStop is consulted between items. Items not started once it
	// returns true are recorded as cancelled.
	ShouldStop func() bool
}

func NewBatchOrchestrator(pipeline PackagePipeline, runner ports.CommandRunnerPort) BatchOrchestrator {
	return BatchOrchestrator{
		Pipeline: pipeline,
		Runner:   runner,
		Elevate:  DefaultElevate(""),
	}
}

// Install runs the build pipeline for each distinct package in input
// order. The returned report covers every distinct input name exactly once.
func (o BatchOrchestrator) Install(ctx context.Context, refs []types.PackageRef, secret *types.Secret, onLine ports.LineSink, onProgress ProgressSink) types.BatchReport {
	refs = dedupeRefs(refs)
	logger := batchLogger("install", len(refs))
	report := types.BatchReport{}
	total := len(refs)

	for i, ref := range refs {
		if o.stopRequested() {
			logger.Info().Str("package", ref.Name).Msg("batch stopped before item")
			report.AddFailure(ref.Name, ReasonCancelled)
			continue
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
		if onLine != nil {
			onLine(strings.Repeat("=", 50))
			onLine(fmt.Sprintf("Installing %s (%d/%d)", ref.Name, i+1, total))
			onLine(strings.Repeat("=", 50))
		}
		if err := o.runItem(ctx, ref, secret, onLine); err != nil {
			reason := secret.Redact(failureReason(err))
			logger.Warn().Str("package", ref.Name).Str("reason", reason).Msg("batch item failed")
			if onLine != nil {
				onLine("ERROR: " + reason)
			}
			report.AddFailure(ref.Name, reason)
			continue
		}
		logger.Info().Str("package", ref.Name).Msg("batch item succeeded")
		report.AddSuccess(ref.Name)
	}
	logger.Info().Int("succeeded", len(report.Succeeded)).Int("failed", len(report.Failed)).Msg("batch finished")
	return report.Clone()
}

// runItem isolates one pipeline run so a panic becomes an item failure.
func (o BatchOrchestrator) runItem(ctx context.Context, ref types.PackageRef, secret *types.Secret, onLine ports.LineSink) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Str("package", ref.Name).Interface("panic", recovered).Msg("pipeline panicked")
			err = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(ReasonInternal)
		}
	}()
	_, err = o.Pipeline.Run(ctx, ref, secret, onLine)
	return err
}

// Remove uninstalls all names in one transaction; they succeed or fail
// together.
func (o BatchOrchestrator) Remove(ctx context.Context, names []string, secret *types.Secret, onLine ports.LineSink) (types.BatchReport, error) {
	names = shared.UniqueStrings(names)
	if len(names) == 0 {
		return types.BatchReport{}, nil
	}
	if err := validateNames(names); err != nil {
		return types.BatchReport{}, err
	}
	argv := append([]string{"pacman", "-R", "--noconfirm"}, names...)
	return o.privilegedAll(ctx, "remove", argv, names, ReasonRemove, secret, onLine)
}

// UpdateRepo upgrades the named repository packages, or the whole system
// when names is empty.
func (o BatchOrchestrator) UpdateRepo(ctx context.Context, names []string, secret *types.Secret, onLine ports.LineSink) (types.BatchReport, error) {
	names = shared.UniqueStrings(names)
	if err := validateNames(names); err != nil {
		return types.BatchReport{}, err
	}
	argv := []string{"pacman", "-Syu", "--noconfirm"}
	covered := names
	if len(names) > 0 {
		argv = append([]string{"pacman", "-S", "--needed", "--noconfirm"}, names...)
	} else {
		covered = []string{"system"}
	}
	return o.privilegedAll(ctx, "update-repo", argv, covered, ReasonUpdate, secret, onLine)
}

// Update dispatches each candidate on its kind. Repository candidates are
// upgraded in one transaction first; external candidates then go through
// the build pipeline. The report keeps candidate input order.
func (o BatchOrchestrator) Update(ctx context.Context, candidates []types.UpdateCandidate, host string, secret *types.Secret, onLine ports.LineSink, onProgress ProgressSink) (types.BatchReport, error) {
	var repoNames []string
	var refs []types.PackageRef
	for _, candidate := range candidates {
		switch candidate.Kind {
		case types.UpdateKindRepo:
			if candidate.Repo == nil {
				return types.BatchReport{}, invalidCandidate(candidate)
			}
			repoNames = append(repoNames, candidate.Repo.Name)
		case types.UpdateKindExternal:
			if candidate.External == nil {
				return types.BatchReport{}, invalidCandidate(candidate)
			}
			refs = append(refs, candidate.External.Record.Ref(host, candidate.External.LocalVersion))
		default:
			return types.BatchReport{}, invalidCandidate(candidate)
		}
	}

	outcome := map[string]*types.BatchFailure{}
	record := func(report types.BatchReport) {
		for _, name := range report.Succeeded {
			outcome[name] = nil
		}
		for _, failure := range report.Failed {
			outcome[failure.Name] = &failure
		}
	}
	if len(repoNames) > 0 {
		report, err := o.UpdateRepo(ctx, repoNames, secret, onLine)
		if err != nil {
			// only the repository transaction is lost; external builds still run
			log.Warn().Err(err).Strs("packages", repoNames).Msg("repository update could not start")
			if onLine != nil {
				onLine("ERROR: " + secret.Redact(failureReason(err)))
			}
			report = types.BatchReport{}
			for _, name := range shared.UniqueStrings(repoNames) {
				report.AddFailure(name, ReasonUpdate)
			}
		}
		record(report)
	}
	if len(refs) > 0 {
		record(o.Install(ctx, refs, secret, onLine, onProgress))
	}

	merged := types.BatchReport{}
	seen := map[string]bool{}
	for _, candidate := range candidates {
		name := candidate.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		failure, ok := outcome[name]
		switch {
		case !ok:
			merged.AddFailure(name, ReasonInternal)
		case failure != nil:
			merged.AddFailure(name, failure.Reason)
		default:
			merged.AddSuccess(name)
		}
	}
	return merged, nil
}

func (o BatchOrchestrator) privilegedAll(ctx context.Context, op string, argv []string, names []string, reason string, secret *types.Secret, onLine ports.LineSink) (types.BatchReport, error) {
	logger := batchLogger(op, len(names))
	report := types.BatchReport{}
	if o.stopRequested() {
		for _, name := range names {
			report.AddFailure(name, ReasonCancelled)
		}
		return report, nil
	}
	result, err := o.Runner.Run(ctx, ports.CommandSpec{Argv: elevate(o.Elevate, argv), Secret: secret}, onLine)
	if err != nil {
		// the package manager could not be started at all
		return types.BatchReport{}, err
	}
	for _, name := range names {
		if result.Succeeded() {
			report.AddSuccess(name)
		} else {
			report.AddFailure(name, reason)
		}
	}
	logger.Info().Int("status", result.ExitStatus).Msg("batch finished")
	return report, nil
}

func (o BatchOrchestrator) stopRequested() bool {
	return o.ShouldStop != nil && o.ShouldStop()
}

func batchLogger(op string, size int) zerolog.Logger {
	logger := log.With().Str("batch", uuid.NewString()).Str("op", op).Logger()
	logger.Info().Int("items", size).Msg("batch started")
	return logger
}

// failureReason extracts the short reason recorded in batch reports.
func failureReason(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return ReasonInternal
}

func dedupeRefs(refs []types.PackageRef) []types.PackageRef {
	seen := map[string]bool{}
	out := make([]types.PackageRef, 0, len(refs))
	for _, ref := range refs {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		out = append(out, ref)
	}
	return out
}

func validateNames(names []string) error {
	for _, name := range names {
		if !shared.ValidPackageName(name) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid package name " + quoteName(name))
		}
	}
	return nil
}

func invalidCandidate(candidate types.UpdateCandidate) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("update candidate %q has no %s payload", candidate.Name(), candidate.Kind))
}

func quoteName(name string) string {
	return fmt.Sprintf("%q", name)
}
