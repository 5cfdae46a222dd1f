package core

import (
	"context"
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

var viewQueries = map[types.InstalledView][2]string{
	types.InstalledViewAll:      {"-Q", "-Qi"},
	types.InstalledViewExplicit: {"-Qe", "-Qei"},
	types.InstalledViewOrphans:  {"-Qdt", "-Qdti"},
	types.InstalledViewExternal: {"-Qm", ""},
}

// Reconciler compares the local package database with the external
// metadata source. It only reads; nothing it does needs privileges.
type Reconciler struct {
	Database   ports.PackageDatabasePort
	Metadata   ports.MetadataSourcePort
	Comparator ports.VersionComparatorPort
	Policy     ports.UpdatePolicyPort
}

func NewReconciler(database ports.PackageDatabasePort, metadata ports.MetadataSourcePort, comparator ports.VersionComparatorPort, policy ports.UpdatePolicyPort) Reconciler {
	return Reconciler{
		Database:   database,
		Metadata:   metadata,
		Comparator: comparator,
		Policy:     policy,
	}
}

// Classify reports whether remote is newer than local.
func (r Reconciler) Classify(ctx context.Context, local string, remote string) types.Classification {
	if remote != "" && r.Comparator.Compare(ctx, remote, local) > 0 {
		return types.ClassificationOutdated
	}
	return types.ClassificationCurrent
}

// List returns one view of the installed set with descriptions. External
// packages are also classified against the metadata source when it is
// reachable.
func (r Reconciler) List(ctx context.Context, view types.InstalledView) ([]types.InstalledPackage, error) {
	queries, ok := viewQueries[view]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown installed view " + string(view))
	}
	entries, err := r.inventory(ctx, queries[0])
	if err != nil {
		return nil, err
	}
	out := make([]types.InstalledPackage, 0, len(entries))
	for _, entry := range entries {
		out = append(out, types.InstalledPackage{
			Name:           entry.Name,
			Version:        entry.Version,
			Classification: viewClassification(view),
		})
	}
	if len(out) == 0 {
		return out, nil
	}

	if view == types.InstalledViewExternal {
		r.enrichExternal(ctx, out)
		return out, nil
	}
	result, err := r.Database.Query(ctx, queries[1])
	if err != nil || result.ExitStatus != 0 {
		log.Warn().Err(err).Int("status", result.ExitStatus).Str("view", string(view)).Msg("package details unavailable")
		return out, nil
	}
	blocks := parseInfoBlocks(result.Lines)
	for i := range out {
		out[i].Description = blocks[out[i].Name].description()
	}
	return out, nil
}

func (r Reconciler) ListInstalled(ctx context.Context) ([]types.InstalledPackage, error) {
	return r.List(ctx, types.InstalledViewAll)
}

func (r Reconciler) ListExplicit(ctx context.Context) ([]types.InstalledPackage, error) {
	return r.List(ctx, types.InstalledViewExplicit)
}

func (r Reconciler) ListOrphans(ctx context.Context) ([]types.InstalledPackage, error) {
	return r.List(ctx, types.InstalledViewOrphans)
}

func (r Reconciler) ListExternal(ctx context.Context) ([]types.InstalledPackage, error) {
	return r.List(ctx, types.InstalledViewExternal)
}

func (r Reconciler) enrichExternal(ctx context.Context, pkgs []types.InstalledPackage) {
	names := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		names = append(names, pkg.Name)
	}
	records, err := r.Metadata.Info(ctx, names)
	if err != nil {
		log.Warn().Err(err).Msg("metadata source unavailable, external packages not classified")
		return
	}
	byName := recordsByName(records)
	for i := range pkgs {
		record, ok := byName[pkgs[i].Name]
		if !ok {
			// no longer published upstream
			pkgs[i].Classification = types.ClassificationOrphaned
			continue
		}
		pkgs[i].Description = record.Description
		pkgs[i].RemoteVersion = record.Version
		pkgs[i].Classification = r.Classify(ctx, pkgs[i].Version, record.Version)
	}
}

// FindUpdates runs the external and repository queries concurrently. A
// branch that fails is logged and contributes nothing; an error is
// returned only when both branches fail.
func (r Reconciler) FindUpdates(ctx context.Context) (types.UpdateSet, error) {
	var set types.UpdateSet
	var externalErr, repoErr error
	var g errgroup.Group
	g.Go(func() error {
		set.External, externalErr = r.externalUpdates(ctx)
		return nil
	})
	g.Go(func() error {
		set.Repo, repoErr = r.repoUpdates(ctx)
		return nil
	})
	_ = g.Wait()

	switch {
	case externalErr != nil && repoErr != nil:
		return types.UpdateSet{}, errbuilder.New().
			WithCode(errbuilder.CodeOf(externalErr)).
			WithMsg("failed to query updates").
			WithCause(errors.Join(externalErr, repoErr))
	case externalErr != nil:
		log.Warn().Err(externalErr).Msg("external update check failed")
	case repoErr != nil:
		log.Warn().Err(repoErr).Msg("repository update check failed")
	}
	return set, nil
}

// InstalledExternal pairs every foreign package with its remote record,
// whether or not it is outdated. Packages unknown upstream are skipped.
func (r Reconciler) InstalledExternal(ctx context.Context) ([]types.InstalledExternalPackage, error) {
	entries, err := r.inventory(ctx, "-Qm")
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	records, err := r.Metadata.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := recordsByName(records)
	var out []types.InstalledExternalPackage
	for _, entry := range entries {
		record, ok := byName[entry.Name]
		if !ok {
			log.Debug().Str("package", entry.Name).Msg("installed package not found upstream")
			continue
		}
		out = append(out, types.InstalledExternalPackage{Record: record, LocalVersion: entry.Version})
	}
	return out, nil
}

func (r Reconciler) externalUpdates(ctx context.Context) ([]types.InstalledExternalPackage, error) {
	installed, err := r.InstalledExternal(ctx)
	if err != nil {
		return nil, err
	}
	var out []types.InstalledExternalPackage
	for _, pkg := range installed {
		if r.Classify(ctx, pkg.LocalVersion, pkg.Record.Version) != types.ClassificationOutdated {
			continue
		}
		if r.ignored(types.UpdateKindExternal, pkg.Record.Name) {
			continue
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (r Reconciler) repoUpdates(ctx context.Context) ([]types.RepoUpdate, error) {
	result, err := r.Database.Query(ctx, "-Qu")
	if err != nil {
		return nil, err
	}
	var out []types.RepoUpdate
	for _, update := range parseRepoUpdates(result.Lines) {
		if r.ignored(types.UpdateKindRepo, update.Name) {
			continue
		}
		info, err := r.Database.Query(ctx, "-Si", update.Name)
		if err == nil && info.ExitStatus == 0 {
			block := parseInfoBlocks(info.Lines)[update.Name]
			update.Repository = block["Repository"]
			update.Description = block.description()
		}
		out = append(out, update)
	}
	return out, nil
}

// inventory runs a listing query. pacman exits non-zero with no output
// when a filter matches nothing, which is an empty result, not a failure.
func (r Reconciler) inventory(ctx context.Context, arg string) ([]inventoryEntry, error) {
	result, err := r.Database.Query(ctx, arg)
	if err != nil {
		return nil, err
	}
	if result.ExitStatus != 0 && len(result.Lines) == 0 {
		return nil, nil
	}
	return parseInventory(result.Lines), nil
}

func (r Reconciler) ignored(kind types.UpdateKind, name string) bool {
	if r.Policy == nil || !r.Policy.Ignores(kind, name) {
		return false
	}
	log.Info().Str("package", name).Str("kind", string(kind)).Msg("update ignored by policy")
	return true
}

func viewClassification(view types.InstalledView) types.Classification {
	switch view {
	case types.InstalledViewExplicit:
		return types.ClassificationExplicit
	case types.InstalledViewOrphans:
		return types.ClassificationOrphaned
	default:
		return types.ClassificationCurrent
	}
}

func recordsByName(records []types.PackageRecord) map[string]types.PackageRecord {
	out := make(map[string]types.PackageRecord, len(records))
	for _, record := range records {
		out[record.Name] = record
	}
	return out
}
