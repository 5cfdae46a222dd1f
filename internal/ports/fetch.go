package ports

import "context"

// FetcherPort performs a shallow source-control fetch of url into dir.
// dir must not exist when Fetch is called.
type FetcherPort interface {
	Fetch(ctx context.Context, url string, dir string, onLine LineSink) error
}
