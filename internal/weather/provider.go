package weather

import "context"

// Upstream abstracts the weather data provider. Fetch returns the raw JSON document of
// the named endpoint, or an *UpstreamError.
type Upstream interface {
	Fetch(ctx context.Context, endpoint Endpoint, q LocationQuery) ([]byte, error)
}
