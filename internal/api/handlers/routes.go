package handlers

import (
	"bevforge-delivery/internal/api/dto"
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/services"
	"net/http"
)

// RouteHandler exposes delivery routes and the actions that drive them.
type RouteHandler struct {
	Svc *services.Logistics
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.GetRoute(r.Context(), r.PathValue("truckID"))
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RouteViewResponse{
		Route:   dto.FromRoute(view.Route),
		Summary: dto.FromSummary(view.Summary),
	})
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.RouteStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.RoutePlanning, domain.RouteInProgress, domain.RouteCompleted:
	default:
		writeError(w, r, http.StatusBadRequest, "status must be planning, in-progress or completed")
		return
	}

	routes, err := h.Svc.ListRoutes(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, "list routes", err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, dto.FromRoute(rt))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Start(w http.ResponseWriter, r *http.Request) {
	route, err := h.Svc.StartRoute(r.Context(), r.PathValue("truckID"))
	if err != nil {
		writeServiceError(w, r, "start route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromRoute(route))
}

func (h *RouteHandler) CompleteStop(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.CompleteStop(r.Context(), r.PathValue("truckID"))
	if err != nil {
		writeServiceError(w, r, "complete stop", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.CompleteStopResponse{
		Route:          dto.FromRoute(res.Route),
		Stop:           dto.FromStop(res.Stop),
		Truck:          dto.FromTruck(res.Truck),
		RouteCompleted: res.Last,
	})
}

func (h *RouteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FromIndex == nil || req.ToIndex == nil {
		writeError(w, r, http.StatusBadRequest, "from_index and to_index are required")
		return
	}

	route, err := h.Svc.ReorderStops(r.Context(), r.PathValue("truckID"), *req.FromIndex, *req.ToIndex)
	if err != nil {
		writeServiceError(w, r, "reorder stops", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromRoute(route))
}

func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	route, err := h.Svc.OptimizeRoute(r.Context(), r.PathValue("truckID"))
	if err != nil {
		writeServiceError(w, r, "optimize route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromRoute(route))
}
