package handlers

import (
	"bevforge-delivery/internal/api/dto"
	"bevforge-delivery/internal/services"
	"net/http"
	"strings"
)

// TruckHandler exposes the fleet and the load/unload actions.
type TruckHandler struct {
	Svc *services.Logistics
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.Svc.ListTrucks(r.Context())
	if err != nil {
		writeServiceError(w, r, "list trucks", err)
		return
	}

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.FromTruck(t))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *TruckHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.GetTruck(r.Context(), r.PathValue("truckID"))
	if err != nil {
		writeServiceError(w, r, "get truck", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromTruck(t))
}

func (h *TruckHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTruckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.Svc.RegisterTruck(r.Context(), req.ID, req.Name, req.Capacity)
	if err != nil {
		writeServiceError(w, r, "register truck", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromTruck(t))
}

func (h *TruckHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req dto.LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		writeError(w, r, http.StatusBadRequest, "order_id is required")
		return
	}

	res, err := h.Svc.LoadOrder(r.Context(), r.PathValue("truckID"), orderID)
	if err != nil {
		writeServiceError(w, r, "load order", err)
		return
	}
	writeJSON(w, r, http.StatusOK, loadResponse(res))
}

func (h *TruckHandler) Unload(w http.ResponseWriter, r *http.Request) {
	var req dto.UnloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.ContainerIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "container_ids is required")
		return
	}

	res, err := h.Svc.UnloadContainers(r.Context(), r.PathValue("truckID"), req.ContainerIDs)
	if err != nil {
		writeServiceError(w, r, "unload containers", err)
		return
	}
	writeJSON(w, r, http.StatusOK, loadResponse(res))
}

func loadResponse(res *services.LoadResult) dto.LoadResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	ids := res.Loaded
	if ids == nil {
		ids = []string{}
	}
	return dto.LoadResponse{
		Truck:        dto.FromTruck(res.Truck),
		Route:        dto.FromRoutePtr(res.Route),
		ContainerIDs: ids,
		Warnings:     warnings,
	}
}
