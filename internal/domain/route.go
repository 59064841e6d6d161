package domain

import (
	"fmt"
	"slices"
	"time"
)

type StopStatus string

const (
	StopPending   StopStatus = "pending"
	StopCompleted StopStatus = "completed"
)

type RouteStatus string

const (
	RoutePlanning   RouteStatus = "planning"
	RouteInProgress RouteStatus = "in-progress"
	RouteCompleted  RouteStatus = "completed"
)

// Represents a single stop in a delivery route.
// A DeliveryStop aggregates every container aboard the truck that is
// destined for one customer, along with the orders they belong to.
// Stops are derived from the truck's load, never created directly.
type DeliveryStop struct {
	ID           string
	CustomerID   string
	CustomerName string
	Address      string
	OrderIDs     []string
	ContainerIDs []string
	Status       StopStatus
	CompletedAt  *time.Time
}

// Represents the delivery route of one truck for one loading cycle.
// Stop order is owned by the route: the user may reorder stops while
// planning, and only the stops after the current one once under way.
type DeliveryRoute struct {
	ID               string
	TruckID          string
	Stops            []DeliveryStop
	CurrentStopIndex int
	Status           RouteStatus
	CreatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Offset of the first stop the user may still move.
func (r *DeliveryRoute) reorderOffset() int {
	switch r.Status {
	case RouteInProgress:
		return r.CurrentStopIndex + 1
	case RouteCompleted:
		return len(r.Stops)
	}
	return 0
}

// RemainingStops returns the stops shown for reordering: all of them while
// planning, and those after the current stop while in progress.
func (r *DeliveryRoute) RemainingStops() []DeliveryStop {
	off := r.reorderOffset()
	if off >= len(r.Stops) {
		return []DeliveryStop{}
	}
	return r.Stops[off:]
}

// CurrentStop returns the stop the truck is heading to, if any.
func (r *DeliveryRoute) CurrentStop() (*DeliveryStop, bool) {
	if r.CurrentStopIndex < 0 || r.CurrentStopIndex >= len(r.Stops) {
		return nil, false
	}
	return &r.Stops[r.CurrentStopIndex], true
}

// Reorder moves the stop at fromIndex to toIndex. Both indices are relative
// to RemainingStops, so completed and current stops can never be moved.
func (r *DeliveryRoute) Reorder(fromIndex, toIndex int) (DeliveryStop, error) {
	switch r.Status {
	case RouteCompleted:
		return DeliveryStop{}, fmt.Errorf("reorder route %s: %w", r.ID, ErrRouteCompleted)
	case RouteInProgress:
		if fromIndex < 0 || toIndex < 0 {
			return DeliveryStop{}, fmt.Errorf("reorder route %s: from=%d to=%d: %w", r.ID, fromIndex, toIndex, ErrStopLocked)
		}
	}

	off := r.reorderOffset()
	from := fromIndex + off
	to := toIndex + off
	if fromIndex < 0 || toIndex < 0 || from >= len(r.Stops) || to >= len(r.Stops) {
		return DeliveryStop{}, fmt.Errorf(
			"reorder route %s: from=%d to=%d with %d movable stops: %w",
			r.ID, fromIndex, toIndex, len(r.Stops)-off, ErrStopIndexOutOfRange,
		)
	}

	moved := r.Stops[from]
	stops := slices.Delete(slices.Clone(r.Stops), from, from+1)
	r.Stops = slices.Insert(stops, to, moved)
	return moved, nil
}

// Start moves a planned route onto the road.
func (r *DeliveryRoute) Start(at time.Time) error {
	if r.Status != RoutePlanning {
		return fmt.Errorf("start route %s (status=%s): %w", r.ID, r.Status, ErrRouteNotPlanning)
	}
	if len(r.Stops) == 0 {
		return fmt.Errorf("start route %s: %w", r.ID, ErrRouteEmpty)
	}

	r.Status = RouteInProgress
	r.CurrentStopIndex = 0
	r.StartedAt = &at
	return nil
}

// CompleteCurrentStop marks the current stop delivered and advances the route.
// It returns the completed stop and whether it was the last one; after the
// last stop the route is completed and CurrentStopIndex stays on that stop.
func (r *DeliveryRoute) CompleteCurrentStop(at time.Time) (DeliveryStop, bool, error) {
	if r.Status != RouteInProgress {
		return DeliveryStop{}, false, fmt.Errorf("complete stop on route %s (status=%s): %w", r.ID, r.Status, ErrRouteNotInProgress)
	}

	stop, ok := r.CurrentStop()
	if !ok {
		return DeliveryStop{}, false, fmt.Errorf("complete stop on route %s: no current stop: %w", r.ID, ErrNotFound)
	}

	stop.Status = StopCompleted
	stop.CompletedAt = &at
	done := *stop

	last := r.CurrentStopIndex == len(r.Stops)-1
	if last {
		r.Status = RouteCompleted
		r.CompletedAt = &at
	} else {
		r.CurrentStopIndex++
	}

	return done, last, nil
}

// OrderIDs returns every order carried on the route, in stop order.
func (r *DeliveryRoute) OrderIDs() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range r.Stops {
		for _, id := range s.OrderIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func (s DeliveryStop) clone() DeliveryStop {
	s.OrderIDs = slices.Clone(s.OrderIDs)
	s.ContainerIDs = slices.Clone(s.ContainerIDs)
	if s.CompletedAt != nil {
		c := *s.CompletedAt
		s.CompletedAt = &c
	}
	return s
}

func (r *DeliveryRoute) Clone() *DeliveryRoute {
	cp := *r
	cp.Stops = make([]DeliveryStop, 0, len(r.Stops))
	for _, s := range r.Stops {
		cp.Stops = append(cp.Stops, s.clone())
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		cp.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
