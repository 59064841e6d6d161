package dto

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/services"
	"slices"
)

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func FromTruck(t *domain.Truck) TruckResponse {
	return TruckResponse{
		ID:           t.ID,
		Name:         t.Name,
		Capacity:     t.Capacity,
		Remaining:    t.Remaining(),
		Status:       string(t.Status),
		ContainerIDs: nonNil(t.Containers),
		DepartedAt:   t.DepartedAt,
	}
}

func FromStop(s domain.DeliveryStop) StopResponse {
	return StopResponse{
		ID:           s.ID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		Address:      s.Address,
		OrderIDs:     nonNil(s.OrderIDs),
		ContainerIDs: nonNil(s.ContainerIDs),
		Status:       string(s.Status),
		CompletedAt:  s.CompletedAt,
	}
}

func FromRoute(r *domain.DeliveryRoute) RouteResponse {
	stops := make([]StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, FromStop(s))
	}
	return RouteResponse{
		ID:               r.ID,
		TruckID:          r.TruckID,
		Status:           string(r.Status),
		CurrentStopIndex: r.CurrentStopIndex,
		Stops:            stops,
		CreatedAt:        r.CreatedAt,
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
	}
}

// FromRoutePtr returns nil for a truck without a route.
func FromRoutePtr(r *domain.DeliveryRoute) *RouteResponse {
	if r == nil {
		return nil
	}
	res := FromRoute(r)
	return &res
}

func FromSummary(s services.RouteSummary) SummaryResponse {
	res := SummaryResponse{
		TotalStops:          s.TotalStops,
		CompletedStops:      s.CompletedStops,
		TotalContainers:     s.TotalContainers,
		DeliveredContainers: s.DeliveredContainers,
		DeliveredPercent:    s.DeliveredPercent,
		EstimatedMinutes:    s.EstimatedMinutes,
	}
	if s.Estimate != nil {
		est := &EstimateResponse{
			DepartAt:             s.Estimate.DepartAt,
			TotalDistanceMeters:  s.Estimate.TotalDistanceMeters,
			TotalDurationSeconds: s.Estimate.TotalDurationSeconds,
			Stops:                make([]StopEstimateResponse, 0, len(s.Estimate.Stops)),
		}
		for _, st := range s.Estimate.Stops {
			est.Stops = append(est.Stops, StopEstimateResponse{
				StopID:         st.StopID,
				CustomerID:     st.CustomerID,
				ArriveAt:       st.ArriveAt,
				DistanceMeters: st.DistanceMeters,
			})
		}
		res.Estimate = est
	}
	return res
}

func FromContainer(c *domain.Container) ContainerResponse {
	history := make([]ContainerEventResponse, 0, len(c.History))
	for _, e := range c.History {
		history = append(history, ContainerEventResponse{
			At:       e.At,
			Action:   e.Action,
			Location: e.Location,
			Notes:    e.Notes,
		})
	}
	return ContainerResponse{
		ID:         c.ID,
		Type:       string(c.Type),
		Product:    c.Product,
		BatchID:    c.BatchID,
		OrderID:    c.OrderID,
		CustomerID: c.CustomerID,
		Status:     string(c.Status),
		Location:   c.Location,
		TruckID:    c.TruckID,
		Weight:     c.Weight,
		ParentID:   c.ParentID,
		History:    history,
		UpdatedAt:  c.UpdatedAt,
	}
}

func FromOrder(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		Status:          string(o.Status),
	}
}
