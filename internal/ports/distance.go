package ports

import "context"

// DistanceResult is the road distance and drive time of one leg.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// DistanceProvider resolves travel between two addresses, used for stop
// ETAs and suggested stop order.
type DistanceProvider interface {
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}

// DistanceMatrixProvider is an optional extension for one-origin,
// many-destination lookups. Results are keyed by destination as given.
type DistanceMatrixProvider interface {
	DistanceProvider
	GetDistances(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
}
