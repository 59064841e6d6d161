package handlers

import (
	"bevforge-delivery/internal/api/dto"
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/services"
	"net/http"
)

// ContainerHandler exposes container tracking, packing and the returns flow.
type ContainerHandler struct {
	Svc *services.Logistics
}

func (h *ContainerHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.ListContainers(r.Context())
	if err != nil {
		writeServiceError(w, r, "list containers", err)
		return
	}

	status := domain.ContainerStatus(r.URL.Query().Get("status"))
	res := dto.ListContainersResponse{Containers: make([]dto.ContainerResponse, 0, len(cs))}
	for _, c := range cs {
		if status != "" && c.Status != status {
			continue
		}
		res.Containers = append(res.Containers, dto.FromContainer(c))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ContainerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterContainerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.RegisterContainer(r.Context(), services.NewContainerInput{
		ID:         req.ID,
		Type:       domain.ContainerType(req.Type),
		Product:    req.Product,
		BatchID:    req.BatchID,
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Weight:     req.Weight,
	})
	if err != nil {
		writeServiceError(w, r, "register container", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromContainer(c))
}

func (h *ContainerHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.MarkReturned(r.Context(), r.PathValue("containerID"))
	if err != nil {
		writeServiceError(w, r, "mark returned", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromContainer(c))
}

func (h *ContainerHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.ProcessReturn(r.Context(), r.PathValue("containerID"))
	if err != nil {
		writeServiceError(w, r, "process return", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromContainer(c))
}

func (h *ContainerHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req dto.PackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.CreateCase(r.Context(), req.ContainerIDs)
	if err != nil {
		writeServiceError(w, r, "create case", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromContainer(c))
}

func (h *ContainerHandler) CreatePallet(w http.ResponseWriter, r *http.Request) {
	var req dto.PackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.Svc.CreatePallet(r.Context(), req.ContainerIDs)
	if err != nil {
		writeServiceError(w, r, "create pallet", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromContainer(p))
}

// AddToPallet answers 200 with the updated pallet.
func (h *ContainerHandler) AddToPallet(w http.ResponseWriter, r *http.Request) {
	var req dto.PackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.Svc.AddToPallet(r.Context(), r.PathValue("palletID"), req.ContainerIDs)
	if err != nil {
		writeServiceError(w, r, "add to pallet", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromContainer(p))
}
