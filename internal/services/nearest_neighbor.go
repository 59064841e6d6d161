package services

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/ports"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// NearestNeighborOrder suggests a stop order using a greedy nearest-neighbor walk.
//
// Starting at the hub, the next stop is always the one with the shortest
// travel duration from the current location. Stops without an address
// cannot be routed and keep their relative order at the end.
// It does not attempt global route optimization (e.g., VRP solvers).
func NearestNeighborOrder(
	ctx context.Context,
	hub string,
	stops []domain.DeliveryStop,
	distanceProvider ports.DistanceProvider,
) ([]domain.DeliveryStop, error) {
	if strings.TrimSpace(hub) == "" {
		return nil, errors.New("nearest neighbor: hub must be non-empty")
	}
	if distanceProvider == nil {
		return nil, errors.New("nearest neighbor: distance provider is not configured")
	}

	byAddress := make(map[string][]domain.DeliveryStop)
	unrouted := []domain.DeliveryStop{}
	for _, s := range stops {
		addr := strings.TrimSpace(s.Address)
		if addr == "" {
			unrouted = append(unrouted, s)
			continue
		}
		byAddress[addr] = append(byAddress[addr], s)
	}

	remaining := make(map[string]struct{}, len(byAddress))
	for a := range byAddress {
		remaining[a] = struct{}{}
	}

	ordered := make([]domain.DeliveryStop, 0, len(stops))
	current := hub

	for len(remaining) > 0 {
		destinations := make([]string, 0, len(remaining))
		for d := range remaining {
			destinations = append(destinations, d)
		}

		results, err := distancesFrom(ctx, distanceProvider, current, destinations)
		if err != nil {
			return nil, fmt.Errorf("nearest neighbor: %w", err)
		}

		var best string
		minDuration := math.MaxInt64

		// Select next stop by minimum travel duration (greedy step).
		for _, d := range destinations {
			r, ok := results[d]
			if !ok {
				return nil, fmt.Errorf("nearest neighbor: missing distance result from %q to %q", current, d)
			}
			// Tie-breaker ensures deterministic ordering when durations are equal.
			if r.DurationSeconds < minDuration || (r.DurationSeconds == minDuration && (best == "" || d < best)) {
				minDuration = r.DurationSeconds
				best = d
			}
		}

		if best == "" {
			return nil, errors.New("nearest neighbor: failed to select next destination")
		}

		ordered = append(ordered, byAddress[best]...)
		delete(remaining, best)
		current = best
	}

	return append(ordered, unrouted...), nil
}

// distancesFrom prefers a batched lookup when the provider supports one.
func distancesFrom(
	ctx context.Context,
	provider ports.DistanceProvider,
	origin string,
	destinations []string,
) (map[string]ports.DistanceResult, error) {
	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		res, err := mp.GetDistances(ctx, origin, destinations)
		if err != nil {
			return nil, fmt.Errorf("get distances matrix from %q: %w", origin, err)
		}
		return res, nil
	}

	res := make(map[string]ports.DistanceResult, len(destinations))
	for _, d := range destinations {
		r, err := provider.GetDistance(ctx, origin, d)
		if err != nil {
			return nil, fmt.Errorf("get distance from %q to %q: %w", origin, d, err)
		}
		res[d] = r
	}
	return res, nil
}
