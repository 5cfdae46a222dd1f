package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/core"
	"runepkg/internal/shared"
	"runepkg/internal/types"
)

// Install looks every name up in one metadata query and builds the ones
// that exist. Unknown names are reported as not found. The secret is
// destroyed when the batch ends.
func (s Service) Install(ctx context.Context, req InstallRequest) (BatchResult, error) {
	defer req.Secret.Destroy()
	names := shared.UniqueStrings(req.Names)
	if len(names) == 0 {
		return BatchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one package name is required")
	}
	release, err := s.acquireSession()
	if err != nil {
		return BatchResult{}, err
	}
	defer release()

	records, err := s.Metadata.Info(ctx, names)
	if err != nil {
		return BatchResult{}, err
	}
	byName := map[string]types.PackageRecord{}
	for _, record := range records {
		byName[record.Name] = record
	}
	refs := make([]types.PackageRef, 0, len(names))
	missing := map[string]string{}
	for _, name := range names {
		record, ok := byName[name]
		if !ok {
			log.Warn().Str("package", name).Msg("package not found in metadata source")
			missing[name] = core.ReasonNotFound
			continue
		}
		refs = append(refs, record.Ref(s.AURURL, ""))
	}

	report := types.BatchReport{}
	if len(refs) > 0 {
		report = s.orchestrator().Install(ctx, refs, req.Secret, req.OnLine, req.OnProgress)
	}
	report = orderReport(names, report, missing)
	path, err := s.writeReport(req.ReportPath, report)
	return BatchResult{Report: report, ReportPath: path, Hints: batchHints(report, s.BuildDir)}, err
}

// Remove uninstalls names in one privileged transaction.
func (s Service) Remove(ctx context.Context, req RemoveRequest) (BatchResult, error) {
	defer req.Secret.Destroy()
	names := shared.UniqueStrings(req.Names)
	if len(names) == 0 {
		return BatchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one package name is required")
	}
	release, err := s.acquireSession()
	if err != nil {
		return BatchResult{}, err
	}
	defer release()

	report, err := s.orchestrator().Remove(ctx, names, req.Secret, req.OnLine)
	if err != nil {
		return BatchResult{}, err
	}
	path, err := s.writeReport(req.ReportPath, report)
	return BatchResult{Report: report, ReportPath: path}, err
}

// Update reconciles the installed set and upgrades every selected
// candidate. Nothing runs when there is nothing to upgrade.
func (s Service) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	defer req.Secret.Destroy()
	release, err := s.acquireSession()
	if err != nil {
		return UpdateResult{}, err
	}
	defer release()

	set, err := s.reconciler().FindUpdates(ctx)
	if err != nil {
		return UpdateResult{}, err
	}
	external, repo := req.External || !req.Repo, req.Repo || !req.External
	if !external {
		set.External = nil
	}
	if !repo {
		set.Repo = nil
	}
	result := UpdateResult{Candidates: set}
	if set.Empty() {
		log.Info().Msg("everything is up to date")
		return result, nil
	}

	report, err := s.orchestrator().Update(ctx, set.Candidates(), s.AURURL, req.Secret, req.OnLine, req.OnProgress)
	if err != nil {
		return UpdateResult{}, err
	}
	result.Report = report
	result.Hints = batchHints(report, s.BuildDir)
	result.ReportPath, err = s.writeReport(req.ReportPath, report)
	return result, err
}

// orderReport rebuilds report so entries follow names, folding in failures
// that never reached the orchestrator.
func orderReport(names []string, report types.BatchReport, failed map[string]string) types.BatchReport {
	for _, failure := range report.Failed {
		failed[failure.Name] = failure.Reason
	}
	succeeded := map[string]bool{}
	for _, name := range report.Succeeded {
		succeeded[name] = true
	}
	out := types.BatchReport{}
	for _, name := range names {
		switch reason, isFailure := failed[name]; {
		case isFailure:
			out.AddFailure(name, reason)
		case succeeded[name]:
			out.AddSuccess(name)
		default:
			out.AddFailure(name, core.ReasonInternal)
		}
	}
	return out
}
