package services

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// StartRoute sends a planned truck on the road.
func (l *Logistics) StartRoute(ctx context.Context, truckID string) (_ *domain.DeliveryRoute, err error) {
	defer obs.Time(ctx, "logistics.StartRoute")(&err)

	l.mu.Lock()
	defer l.mu.Unlock()

	truck, err := l.store.GetTruck(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}
	route, err := l.activeRoute(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("start route for truck %s: %w", truckID, domain.ErrNoRoute)
	}
	if truck.Status == domain.TruckOnRoad {
		return nil, fmt.Errorf("start route for truck %s: %w", truckID, domain.ErrTruckOnRoad)
	}

	now := l.now()
	if err := route.Start(now); err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}
	truck.Depart(now)

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("start route: list containers: %w", err)
	}
	aboard := make([]*domain.Container, 0, len(truck.Containers))
	for _, id := range truck.Containers {
		c, ok := all[id]
		if !ok {
			continue
		}
		if err := c.Transition(domain.ContainerInTransit, domain.LocationOnRoad, now, "Truck departed"); err != nil {
			return nil, fmt.Errorf("start route: %w", err)
		}
		aboard = append(aboard, c)
	}

	if err := l.store.Apply(ctx, ports.Changes{Truck: truck, Containers: aboard, Route: route}); err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}

	l.pushOrderStatus(route.OrderIDs(), domain.OrderInDelivery)

	l.log.Info("route started",
		zap.String("truck_id", truckID),
		zap.String("route_id", route.ID),
		zap.Int("stops", len(route.Stops)))

	return route, nil
}

// CompleteStopResult reports the state after a stop is delivered.
type CompleteStopResult struct {
	Route *domain.DeliveryRoute
	Stop  domain.DeliveryStop
	Truck *domain.Truck
	Last  bool
}

// CompleteStop delivers the current stop of the truck's route. After the
// last stop the route is completed and the truck becomes available.
func (l *Logistics) CompleteStop(ctx context.Context, truckID string) (_ *CompleteStopResult, err error) {
	defer obs.Time(ctx, "logistics.CompleteStop")(&err)

	l.mu.Lock()
	defer l.mu.Unlock()

	truck, err := l.store.GetTruck(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("complete stop: %w", err)
	}
	if truck.Status != domain.TruckOnRoad {
		return nil, fmt.Errorf("complete stop for truck %s: %w", truckID, domain.ErrTruckNotOnRoad)
	}

	route, err := l.activeRoute(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("complete stop: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("complete stop for truck %s: %w", truckID, domain.ErrNoRoute)
	}

	now := l.now()
	stop, last, err := route.CompleteCurrentStop(now)
	if err != nil {
		return nil, fmt.Errorf("complete stop: %w", err)
	}

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete stop: list containers: %w", err)
	}
	delivered := make([]*domain.Container, 0, len(stop.ContainerIDs))
	for _, id := range stop.ContainerIDs {
		c, ok := all[id]
		if !ok || !slices.Contains(truck.Containers, id) {
			continue
		}
		if err := c.Transition(domain.ContainerDelivered, stop.CustomerID, now, "Delivered to "+stop.CustomerName); err != nil {
			return nil, fmt.Errorf("complete stop: %w", err)
		}
		c.TruckID = ""
		delivered = append(delivered, c)
	}

	truck.Unload(stop.ContainerIDs...)
	if last {
		truck.Release()
	}

	if err := l.store.Apply(ctx, ports.Changes{Truck: truck, Containers: delivered, Route: route}); err != nil {
		return nil, fmt.Errorf("complete stop: %w", err)
	}

	l.pushOrderStatus(stop.OrderIDs, domain.OrderDelivered)

	l.log.Info("stop completed",
		zap.String("truck_id", truckID),
		zap.String("route_id", route.ID),
		zap.String("customer_id", stop.CustomerID),
		zap.Int("containers", len(stop.ContainerIDs)),
		zap.Bool("last", last))

	return &CompleteStopResult{Route: route, Stop: stop, Truck: truck, Last: last}, nil
}

// ReorderStops moves one of the remaining stops. Indices are relative to
// the stops still open for reordering (see DeliveryRoute.RemainingStops).
func (l *Logistics) ReorderStops(ctx context.Context, truckID string, fromIndex, toIndex int) (*domain.DeliveryRoute, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	route, err := l.activeRoute(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("reorder stops: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("reorder stops for truck %s: %w", truckID, domain.ErrNoRoute)
	}

	moved, err := route.Reorder(fromIndex, toIndex)
	if err != nil {
		return nil, fmt.Errorf("reorder stops: %w", err)
	}
	if err := l.store.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("reorder stops: save route: %w", err)
	}

	l.log.Info("stops reordered",
		zap.String("truck_id", truckID),
		zap.String("customer_id", moved.CustomerID),
		zap.Int("position", toIndex+1))

	return route, nil
}

// OptimizeRoute replaces a planned route's stop order with the
// nearest-neighbor suggestion from the hub.
func (l *Logistics) OptimizeRoute(ctx context.Context, truckID string) (_ *domain.DeliveryRoute, err error) {
	defer obs.Time(ctx, "logistics.OptimizeRoute")(&err)

	if l.distances == nil {
		return nil, fmt.Errorf("optimize route: %w", ErrNoDistanceProvider)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	route, err := l.activeRoute(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("optimize route for truck %s: %w", truckID, domain.ErrNoRoute)
	}
	if route.Status != domain.RoutePlanning {
		return nil, fmt.Errorf("optimize route %s (status=%s): %w", route.ID, route.Status, domain.ErrRouteNotPlanning)
	}

	stops, err := NearestNeighborOrder(ctx, l.hub, route.Stops, l.distances)
	if err != nil {
		return nil, fmt.Errorf("optimize route %s: %w", route.ID, err)
	}
	route.Stops = stops

	if err := l.store.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("optimize route: save route: %w", err)
	}
	return route, nil
}
