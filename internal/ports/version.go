package ports

import "context"

// VersionComparatorPort orders two version strings using package manager
// semantics and returns -1, 0 or 1.
type VersionComparatorPort interface {
	Compare(ctx context.Context, a string, b string) int
}

// VercmpPort wraps the package manager's own version comparison tool.
// A missing tool is reported with errbuilder.CodeNotFound and output that
// cannot be parsed with errbuilder.CodeInvalidArgument.
type VercmpPort interface {
	Vercmp(ctx context.Context, a string, b string) (int, error)
}
