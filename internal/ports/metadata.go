package ports

import (
	"context"

	"runepkg/internal/types"
)

// MetadataSourcePort looks up package records in the external metadata
// source. Info is one batched lookup regardless of how many names are
// passed.
type MetadataSourcePort interface {
	Info(ctx context.Context, names []string) ([]types.PackageRecord, error)
	Search(ctx context.Context, query string, mode types.SearchMode) ([]types.PackageRecord, error)
}
