package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"runepkg/internal/shared"
	"runepkg/internal/types"
)

// Outdated reports update candidates without changing the system.
func (s Service) Outdated(ctx context.Context, req OutdatedRequest) (OutdatedResult, error) {
	set, err := s.reconciler().FindUpdates(ctx)
	if err != nil {
		return OutdatedResult{}, err
	}
	result := OutdatedResult{Updates: set}
	if path := strings.TrimSpace(req.ReportPath); path != "" {
		if err := s.Reports.WriteUpdateSet(path, set); err != nil {
			return OutdatedResult{}, err
		}
		result.ReportPath = path
	}
	return result, nil
}

func (s Service) List(ctx context.Context, req ListRequest) ([]types.InstalledPackage, error) {
	view := req.View
	if view == "" {
		view = types.InstalledViewAll
	}
	return s.reconciler().List(ctx, view)
}

func (s Service) Search(ctx context.Context, req SearchRequest) ([]types.PackageRecord, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("search query is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = types.SearchModeNameDesc
	}
	return s.Metadata.Search(ctx, query, mode)
}

// Info returns records in request order; names the source does not know
// are listed in Missing.
func (s Service) Info(ctx context.Context, req InfoRequest) (InfoResult, error) {
	names := shared.UniqueStrings(req.Names)
	if len(names) == 0 {
		return InfoResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one package name is required")
	}
	records, err := s.Metadata.Info(ctx, names)
	if err != nil {
		return InfoResult{}, err
	}
	byName := map[string]types.PackageRecord{}
	for _, record := range records {
		byName[record.Name] = record
	}
	result := InfoResult{Host: s.AURURL}
	for _, name := range names {
		if record, ok := byName[name]; ok {
			result.Records = append(result.Records, record)
			continue
		}
		result.Missing = append(result.Missing, name)
	}
	return result, nil
}
