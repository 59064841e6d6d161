package services

import (
	"bevforge-delivery/internal/domain"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DeriveStops groups a truck's containers into one pending stop per customer.
//
// Containers are visited in load order and customers keep their first-seen
// order. The customer name and address come from the order of the first
// container seen for that customer, falling back to the raw customer id.
// Containers unknown to the collection or without a customer are skipped.
func DeriveStops(
	truck *domain.Truck,
	containers map[string]*domain.Container,
	orders map[string]domain.Order,
) []domain.DeliveryStop {
	if truck == nil || len(truck.Containers) == 0 {
		return []domain.DeliveryStop{}
	}

	byCustomer := make(map[string]int)
	stops := []domain.DeliveryStop{}
	seenOrder := make(map[string]map[string]struct{})

	for _, id := range truck.Containers {
		c, ok := containers[id]
		if !ok || c.CustomerID == "" {
			continue
		}

		idx, ok := byCustomer[c.CustomerID]
		if !ok {
			name := c.CustomerID
			address := ""
			if o, found := orders[c.OrderID]; found {
				if o.CustomerName != "" {
					name = o.CustomerName
				}
				address = o.CustomerAddress
			}

			stops = append(stops, domain.DeliveryStop{
				ID:           uuid.NewString(),
				CustomerID:   c.CustomerID,
				CustomerName: name,
				Address:      address,
				OrderIDs:     []string{},
				ContainerIDs: []string{},
				Status:       domain.StopPending,
			})
			idx = len(stops) - 1
			byCustomer[c.CustomerID] = idx
			seenOrder[c.CustomerID] = make(map[string]struct{})
		}

		stops[idx].ContainerIDs = append(stops[idx].ContainerIDs, c.ID)
		if c.OrderID != "" {
			if _, dup := seenOrder[c.CustomerID][c.OrderID]; !dup {
				seenOrder[c.CustomerID][c.OrderID] = struct{}{}
				stops[idx].OrderIDs = append(stops[idx].OrderIDs, c.OrderID)
			}
		}
	}

	return stops
}

// MergeStops reconciles a freshly derived stop list with an existing route.
//
// Existing stops keep their id, status, completion time and position; a
// matching derived stop (same customer) only refreshes its containers,
// orders, name and address. Existing stops with no match are kept as they
// are, so completed stops are never dropped. Derived stops for customers
// not yet on the route are appended in derivation order.
func MergeStops(existing []domain.DeliveryStop, derived []domain.DeliveryStop) []domain.DeliveryStop {
	derivedByCustomer := make(map[string]domain.DeliveryStop, len(derived))
	for _, s := range derived {
		derivedByCustomer[s.CustomerID] = s
	}

	present := make(map[string]struct{}, len(existing))
	merged := make([]domain.DeliveryStop, 0, len(existing)+len(derived))

	for _, old := range existing {
		present[old.CustomerID] = struct{}{}

		fresh, ok := derivedByCustomer[old.CustomerID]
		if !ok {
			merged = append(merged, old)
			continue
		}

		old.ContainerIDs = fresh.ContainerIDs
		old.OrderIDs = fresh.OrderIDs
		old.CustomerName = fresh.CustomerName
		old.Address = fresh.Address
		merged = append(merged, old)
	}

	for _, s := range derived {
		if _, ok := present[s.CustomerID]; ok {
			continue
		}
		merged = append(merged, s)
	}

	return merged
}

// PlanRoute applies a new derivation to the truck's route.
//
// It returns nil when the truck is empty (the caller deletes any existing
// route), a fresh planning route when none exists, and otherwise the
// existing route with merged stops.
func PlanRoute(
	truck *domain.Truck,
	existing *domain.DeliveryRoute,
	derived []domain.DeliveryStop,
	now time.Time,
) *domain.DeliveryRoute {
	if truck == nil || len(truck.Containers) == 0 {
		return nil
	}

	if existing == nil {
		return &domain.DeliveryRoute{
			ID:               uuid.NewString(),
			TruckID:          truck.ID,
			Stops:            derived,
			CurrentStopIndex: 0,
			Status:           domain.RoutePlanning,
			CreatedAt:        now,
		}
	}

	route := existing.Clone()
	route.Stops = MergeStops(route.Stops, derived)
	return route
}

// PruneUnloadedStops drops pending stops none of whose containers are still
// aboard the truck. MergeStops keeps unmatched stops so completed deliveries
// survive a reload; after an unload the same rule would leave stops with
// nothing to deliver.
func PruneUnloadedStops(route *domain.DeliveryRoute, truck *domain.Truck) {
	if route == nil || truck == nil {
		return
	}
	route.Stops = slices.DeleteFunc(route.Stops, func(s domain.DeliveryStop) bool {
		if s.Status == domain.StopCompleted {
			return false
		}
		for _, id := range s.ContainerIDs {
			if slices.Contains(truck.Containers, id) {
				return false
			}
		}
		return true
	})
}
