package collector

import "context"

// Fetcher downloads a named CSV resource.
type Fetcher interface {
	FetchCSV(ctx context.Context, name string) ([]byte, error)
	Name() string
}
