package handlers

import (
	"bevforge-delivery/internal/api/dto"
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/services"
	"net/http"
)

// OrderHandler lists orders from the order service, approved ones by default.
type OrderHandler struct {
	Svc *services.Logistics
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderApproved
	if q := r.URL.Query().Get("status"); q != "" {
		status = domain.OrderStatus(q)
		if q == "all" {
			status = ""
		} else if !status.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown order status")
			return
		}
	}

	orders, err := h.Svc.ListOrders(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		res.Orders = append(res.Orders, dto.FromOrder(o))
	}
	writeJSON(w, r, http.StatusOK, res)
}
