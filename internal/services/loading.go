package services

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LoadResult reports the state after loading an order.
type LoadResult struct {
	Truck    *domain.Truck
	Route    *domain.DeliveryRoute
	Loaded   []string
	Warnings []string
}

// LoadOrder loads every staged container of an approved order onto a truck
// and updates the truck's route plan.
func (l *Logistics) LoadOrder(ctx context.Context, truckID, orderID string) (_ *LoadResult, err error) {
	defer obs.Time(ctx, "logistics.LoadOrder")(&err)

	l.mu.Lock()
	defer l.mu.Unlock()

	truck, err := l.store.GetTruck(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	orders, err := l.orderIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	order, ok := orders[orderID]
	if !ok {
		return nil, fmt.Errorf("load order %s: %w", orderID, domain.ErrNotFound)
	}
	if order.Status != domain.OrderApproved {
		return nil, fmt.Errorf("load order %s (status=%s): %w", orderID, order.Status, domain.ErrOrderNotApproved)
	}

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order: list containers: %w", err)
	}

	staged := make([]*domain.Container, 0)
	for _, c := range all {
		// Packed containers travel inside their case or pallet.
		if c.OrderID == orderID && c.Status == domain.ContainerStaging && c.ParentID == "" {
			staged = append(staged, c)
		}
	}
	if len(staged) == 0 {
		return nil, fmt.Errorf("load order %s: %w", orderID, domain.ErrNoContainers)
	}
	slices.SortStableFunc(staged, loadSequence)

	check := ValidateLoad(truck, staged)
	if err := check.Err(); err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	ids := make([]string, 0, len(staged))
	for _, c := range staged {
		ids = append(ids, c.ID)
	}
	if err := truck.LoadMultiple(ids); err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	now := l.now()
	for _, c := range staged {
		// Containers registered without a customer take the order's.
		if c.CustomerID == "" {
			c.CustomerID = order.CustomerID
		}
		c.TruckID = truck.ID
		if err := c.Transition(domain.ContainerLoaded, domain.LocationTruck, now, "Loaded on "+truckLabel(truck)); err != nil {
			return nil, fmt.Errorf("load order %s: %w", orderID, err)
		}
	}

	route, staleRouteID, err := l.replan(ctx, truck, all, orders)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	if err := l.store.Apply(ctx, ports.Changes{
		Truck:         truck,
		Containers:    staged,
		Route:         route,
		DeleteRouteID: staleRouteID,
	}); err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	l.pushOrderStatus([]string{orderID}, domain.OrderLoaded)

	l.log.Info("order loaded",
		zap.String("truck_id", truck.ID),
		zap.String("order_id", orderID),
		zap.Int("containers", len(ids)),
		zap.Strings("warnings", check.Warnings))

	return &LoadResult{Truck: truck, Route: route, Loaded: ids, Warnings: check.Warnings}, nil
}

// UnloadContainers returns containers from a truck that has not departed
// to staging and updates the route plan. Orders left with nothing aboard
// go back to approved so they can be loaded again.
func (l *Logistics) UnloadContainers(ctx context.Context, truckID string, containerIDs []string) (_ *LoadResult, err error) {
	defer obs.Time(ctx, "logistics.UnloadContainers")(&err)

	if len(containerIDs) == 0 {
		return nil, fmt.Errorf("unload truck %s: no container ids: %w", truckID, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	truck, err := l.store.GetTruck(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("unload truck: %w", err)
	}
	if truck.Status == domain.TruckOnRoad {
		return nil, fmt.Errorf("unload truck %s: %w", truckID, domain.ErrTruckOnRoad)
	}

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("unload truck %s: list containers: %w", truckID, err)
	}

	now := l.now()
	changed := make([]*domain.Container, 0, len(containerIDs))
	touchedOrders := make([]string, 0)
	for _, id := range containerIDs {
		if !slices.Contains(truck.Containers, id) {
			return nil, fmt.Errorf("unload truck %s: container %s is not aboard: %w", truckID, id, domain.ErrInvalidInput)
		}
		c, ok := all[id]
		if !ok {
			return nil, fmt.Errorf("unload truck %s: container %s: %w", truckID, id, domain.ErrNotFound)
		}
		if err := c.Transition(domain.ContainerStaging, domain.LocationStaging, now, "Unloaded from "+truckLabel(truck)); err != nil {
			return nil, fmt.Errorf("unload truck %s: %w", truckID, err)
		}
		c.TruckID = ""
		changed = append(changed, c)
		if c.OrderID != "" && !slices.Contains(touchedOrders, c.OrderID) {
			touchedOrders = append(touchedOrders, c.OrderID)
		}
	}

	truck.Unload(containerIDs...)

	orders, err := l.orderIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("unload truck %s: %w", truckID, err)
	}

	route, staleRouteID, err := l.replan(ctx, truck, all, orders)
	if err != nil {
		return nil, fmt.Errorf("unload truck %s: %w", truckID, err)
	}
	if err := l.store.Apply(ctx, ports.Changes{
		Truck:         truck,
		Containers:    changed,
		Route:         route,
		DeleteRouteID: staleRouteID,
	}); err != nil {
		return nil, fmt.Errorf("unload truck %s: %w", truckID, err)
	}

	released := make([]string, 0, len(touchedOrders))
	for _, orderID := range touchedOrders {
		aboard := false
		for _, id := range truck.Containers {
			if c, ok := all[id]; ok && c.OrderID == orderID {
				aboard = true
				break
			}
		}
		if !aboard {
			released = append(released, orderID)
		}
	}
	l.pushOrderStatus(released, domain.OrderApproved)

	return &LoadResult{Truck: truck, Route: route, Loaded: slices.Clone(truck.Containers), Warnings: []string{}}, nil
}

// replan re-derives the truck's stops from containers, which must already
// carry the action's changes, and merges them into the active route.
// Nothing is stored. An empty truck yields no route and the id of the
// route to delete, if it had one.
func (l *Logistics) replan(
	ctx context.Context,
	truck *domain.Truck,
	containers map[string]*domain.Container,
	orders map[string]domain.Order,
) (route *domain.DeliveryRoute, staleRouteID string, err error) {
	existing, err := l.activeRoute(ctx, truck.ID)
	if err != nil {
		return nil, "", fmt.Errorf("replan truck %s: %w", truck.ID, err)
	}

	if len(truck.Containers) == 0 {
		if existing != nil {
			return nil, existing.ID, nil
		}
		return nil, "", nil
	}

	derived := DeriveStops(truck, containers, orders)
	route = PlanRoute(truck, existing, derived, l.now())
	PruneUnloadedStops(route, truck)
	return route, "", nil
}

func (l *Logistics) orderIndex(ctx context.Context) (map[string]domain.Order, error) {
	orders, err := l.orders.ListOrders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	m := make(map[string]domain.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}
	return m, nil
}

func truckLabel(t *domain.Truck) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// loadSequence orders containers by registration time, then by id with
// digit runs compared by value so KEG-2 loads before KEG-10.
func loadSequence(a, b *domain.Container) int {
	if c := registeredAt(a).Compare(registeredAt(b)); c != 0 {
		return c
	}
	if c := compareIDs(a.ID, b.ID); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func registeredAt(c *domain.Container) time.Time {
	if len(c.History) > 0 {
		return c.History[0].At
	}
	return c.UpdatedAt
}

func compareIDs(a, b string) int {
	for a != "" && b != "" {
		da, db := leadingDigits(a), leadingDigits(b)
		if da == "" || db == "" {
			if a[0] != b[0] {
				return cmp.Compare(a[0], b[0])
			}
			a, b = a[1:], b[1:]
			continue
		}

		na, nb := strings.TrimLeft(da, "0"), strings.TrimLeft(db, "0")
		if c := cmp.Compare(len(na), len(nb)); c != 0 {
			return c
		}
		if c := strings.Compare(na, nb); c != 0 {
			return c
		}
		a, b = a[len(da):], b[len(db):]
	}
	return cmp.Compare(len(a), len(b))
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
