package types

type Classification string

const (
	ClassificationCurrent  Classification = "current"
	ClassificationOutdated Classification = "outdated"
	ClassificationOrphaned Classification = "orphaned"
	ClassificationExplicit Classification = "explicit"
)

// InstalledView selects which slice of the local package database a
// listing covers.
type InstalledView string

const (
	InstalledViewAll      InstalledView = "all"
	InstalledViewExplicit InstalledView = "explicit"
	InstalledViewOrphans  InstalledView = "orphans"
	InstalledViewExternal InstalledView = "external"
)

type SearchMode string

const (
	SearchModeName       SearchMode = "name"
	SearchModeNameDesc   SearchMode = "name-desc"
	SearchModeKeywords   SearchMode = "keywords"
	SearchModeMaintainer SearchMode = "maintainer"
)

// UpdateKind tags an update candidate with the source that owns it.
type UpdateKind string

const (
	UpdateKindExternal UpdateKind = "external"
	UpdateKindRepo     UpdateKind = "repo"
)

type FetchBackend string

const (
	FetchBackendGit   FetchBackend = "git"
	FetchBackendGoGit FetchBackend = "go-git"
)

func ParseSearchMode(value string) (SearchMode, bool) {
	switch SearchMode(value) {
	case SearchModeName, SearchModeNameDesc, SearchModeKeywords, SearchModeMaintainer:
		return SearchMode(value), true
	case "":
		return SearchModeNameDesc, true
	default:
		return "", false
	}
}
