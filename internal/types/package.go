package types

import (
	"fmt"
	"strings"
)

// PackageRef identifies one unit of work for the build pipeline. Name is
// unique within a batch.
type PackageRef struct {
	Name          string `yaml:"name"`
	RemoteVersion string `yaml:"remote_version,omitempty"`
	LocalVersion  string `yaml:"local_version,omitempty"`
	SourceURL     string `yaml:"source_url"`
}

// PackageRecord is the metadata the external source returns for a package.
// Records are treated as immutable once decoded.
type PackageRecord struct {
	Name           string   `yaml:"name"`
	PackageBase    string   `yaml:"package_base,omitempty"`
	Version        string   `yaml:"version"`
	Description    string   `yaml:"description,omitempty"`
	Maintainer     string   `yaml:"maintainer,omitempty"`
	Votes          int      `yaml:"votes"`
	Popularity     float64  `yaml:"popularity"`
	OutOfDate      *int64   `yaml:"out_of_date,omitempty"`
	FirstSubmitted int64    `yaml:"first_submitted,omitempty"`
	LastModified   int64    `yaml:"last_modified,omitempty"`
	URL            string   `yaml:"url,omitempty"`
	URLPath        string   `yaml:"url_path,omitempty"`
	Depends        []string `yaml:"depends,omitempty"`
	MakeDepends    []string `yaml:"make_depends,omitempty"`
	OptDepends     []string `yaml:"opt_depends,omitempty"`
	Conflicts      []string `yaml:"conflicts,omitempty"`
	License        []string `yaml:"license,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty"`
}

// Base returns the package base used for the source repository. Split
// packages share one base; records without one fall back to the name.
func (r PackageRecord) Base() string {
	if strings.TrimSpace(r.PackageBase) != "" {
		return r.PackageBase
	}
	return r.Name
}

// CloneURL derives the source-control URL as <host>/<base>.git.
func (r PackageRecord) CloneURL(host string) string {
	return fmt.Sprintf("%s/%s.git", strings.TrimRight(host, "/"), r.Base())
}

// PackageURL is the human facing page of the package on host.
func (r PackageRecord) PackageURL(host string) string {
	return fmt.Sprintf("%s/packages/%s", strings.TrimRight(host, "/"), r.Name)
}

func (r PackageRecord) IsOutOfDate() bool {
	return r.OutOfDate != nil && *r.OutOfDate > 0
}

// Ref builds the pipeline work item for this record.
func (r PackageRecord) Ref(host string, localVersion string) PackageRef {
	return PackageRef{
		Name:          r.Name,
		RemoteVersion: r.Version,
		LocalVersion:  localVersion,
		SourceURL:     r.CloneURL(host),
	}
}

type InstalledPackage struct {
	Name           string         `yaml:"name"`
	Version        string         `yaml:"version"`
	RemoteVersion  string         `yaml:"remote_version,omitempty"`
	Description    string         `yaml:"description,omitempty"`
	Classification Classification `yaml:"classification"`
}

// InstalledExternalPackage pairs a remote record with the version found in
// the local database.
type InstalledExternalPackage struct {
	Record       PackageRecord `yaml:"record"`
	LocalVersion string        `yaml:"local_version"`
}

type RepoUpdate struct {
	Name         string `yaml:"name"`
	LocalVersion string `yaml:"local_version"`
	RepoVersion  string `yaml:"repo_version"`
	Repository   string `yaml:"repository,omitempty"`
	Description  string `yaml:"description,omitempty"`
}

// UpdateCandidate is a tagged variant: exactly one of External and Repo is
// set, matching Kind.
type UpdateCandidate struct {
	Kind     UpdateKind
	External *InstalledExternalPackage
	Repo     *RepoUpdate
}

func ExternalCandidate(pkg InstalledExternalPackage) UpdateCandidate {
	return UpdateCandidate{Kind: UpdateKindExternal, External: &pkg}
}

func RepoCandidate(update RepoUpdate) UpdateCandidate {
	return UpdateCandidate{Kind: UpdateKindRepo, Repo: &update}
}

// Name returns the package name of whichever case is populated.
func (c UpdateCandidate) Name() string {
	switch c.Kind {
	case UpdateKindExternal:
		if c.External != nil {
			return c.External.Record.Name
		}
	case UpdateKindRepo:
		if c.Repo != nil {
			return c.Repo.Name
		}
	}
	return ""
}

// UpdateSet is the result of one reconciliation pass.
type UpdateSet struct {
	External []InstalledExternalPackage `yaml:"external"`
	Repo     []RepoUpdate               `yaml:"repo"`
}

// Candidates flattens the set, external packages first.
func (s UpdateSet) Candidates() []UpdateCandidate {
	out := make([]UpdateCandidate, 0, len(s.External)+len(s.Repo))
	for _, pkg := range s.External {
		out = append(out, ExternalCandidate(pkg))
	}
	for _, update := range s.Repo {
		out = append(out, RepoCandidate(update))
	}
	return out
}

func (s UpdateSet) Empty() bool {
	return len(s.External) == 0 && len(s.Repo) == 0
}
