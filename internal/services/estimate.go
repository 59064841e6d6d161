package services

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/ports"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// Time spent unloading at each customer.
	ServiceTimePerStop = 30 * time.Minute
	// Travel assumed between stops when no distance provider is available.
	FallbackLegDuration = 15 * time.Minute

	maxConcurrentLegs = 5
)

// StopEstimate is the projected arrival at one pending stop.
type StopEstimate struct {
	StopID         string
	CustomerID     string
	ArriveAt       time.Time
	DistanceMeters int
}

// RouteEstimate projects arrival times for the pending stops of a route.
type RouteEstimate struct {
	DepartAt             time.Time
	Stops                []StopEstimate
	TotalDistanceMeters  int
	TotalDurationSeconds int
}

// RouteSummary reports delivery progress for a route.
type RouteSummary struct {
	TotalStops          int
	CompletedStops      int
	TotalContainers     int
	DeliveredContainers int
	DeliveredPercent    float64
	EstimatedMinutes    int
	Estimate            *RouteEstimate
}

// Summarize computes progress counters and a duration estimate that assumes
// a fixed service time per stop plus a fixed leg between stops.
func Summarize(route *domain.DeliveryRoute) RouteSummary {
	var s RouteSummary
	if route == nil {
		return s
	}

	s.TotalStops = len(route.Stops)
	for _, stop := range route.Stops {
		s.TotalContainers += len(stop.ContainerIDs)
		if stop.Status == domain.StopCompleted {
			s.CompletedStops++
			s.DeliveredContainers += len(stop.ContainerIDs)
		}
	}

	if s.TotalContainers > 0 {
		s.DeliveredPercent = float64(s.DeliveredContainers) / float64(s.TotalContainers) * 100
	}
	if s.TotalStops > 0 {
		total := time.Duration(s.TotalStops)*ServiceTimePerStop + time.Duration(s.TotalStops-1)*FallbackLegDuration
		s.EstimatedMinutes = int(total.Minutes())
	}

	return s
}

type legResult struct {
	idx    int
	result ports.DistanceResult
}

// EstimateRoute projects arrival times for every pending stop.
//
// Legs run from the hub (or the last completed stop) through the pending
// stops in route order; the user's order is respected, never optimized.
// Leg lookups run concurrently with bounded parallelism. Stops without an
// address use the fallback leg duration.
func EstimateRoute(
	ctx context.Context,
	hub string,
	route *domain.DeliveryRoute,
	departAt time.Time,
	provider ports.DistanceProvider,
) (*RouteEstimate, error) {
	if route == nil {
		return nil, fmt.Errorf("estimate route: %w", domain.ErrNoRoute)
	}

	origin := strings.TrimSpace(hub)
	pending := make([]domain.DeliveryStop, 0, len(route.Stops))
	for _, s := range route.Stops {
		if s.Status == domain.StopCompleted {
			if a := strings.TrimSpace(s.Address); a != "" {
				origin = a
			}
			continue
		}
		pending = append(pending, s)
	}

	est := &RouteEstimate{DepartAt: departAt, Stops: make([]StopEstimate, 0, len(pending))}
	if len(pending) == 0 {
		return est, nil
	}

	// legs[i] is the leg arriving at pending[i].
	type leg struct{ from, to string }
	legs := make([]leg, len(pending))
	prev := origin
	for i, s := range pending {
		to := strings.TrimSpace(s.Address)
		legs[i] = leg{from: prev, to: to}
		if to != "" {
			prev = to
		}
	}

	results := make([]*ports.DistanceResult, len(pending))
	if provider != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentLegs)
		resultsCh := make(chan legResult, len(legs))

		for i, l := range legs {
			if l.from == "" || l.to == "" || l.from == l.to {
				continue
			}
			g.Go(func() error {
				r, err := provider.GetDistance(gctx, l.from, l.to)
				if err != nil {
					return fmt.Errorf("estimate route: leg %q -> %q: %w", l.from, l.to, err)
				}
				resultsCh <- legResult{idx: i, result: r}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		close(resultsCh)
		for lr := range resultsCh {
			r := lr.result
			results[lr.idx] = &r
		}
	}

	current := departAt
	for i, s := range pending {
		var travel time.Duration
		meters := 0
		switch {
		case results[i] != nil:
			travel = time.Duration(results[i].DurationSeconds) * time.Second
			meters = results[i].DistanceMeters
		case legs[i].from != "" && legs[i].from == legs[i].to:
			travel = 0
		default:
			travel = FallbackLegDuration
		}

		if i > 0 {
			current = current.Add(ServiceTimePerStop)
			est.TotalDurationSeconds += int(ServiceTimePerStop.Seconds())
		}
		current = current.Add(travel)
		est.TotalDurationSeconds += int(travel.Seconds())
		est.TotalDistanceMeters += meters

		est.Stops = append(est.Stops, StopEstimate{
			StopID:         s.ID,
			CustomerID:     s.CustomerID,
			ArriveAt:       current,
			DistanceMeters: meters,
		})
	}
	est.TotalDurationSeconds += int(ServiceTimePerStop.Seconds())

	return est, nil
}
