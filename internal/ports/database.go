package ports

import (
	"context"

	"runepkg/internal/types"
)

// PackageDatabasePort runs read-only queries against the local package
// database, e.g. Query(ctx, "-Qm").
type PackageDatabasePort interface {
	Query(ctx context.Context, args ...string) (types.QueryResult, error)
}
