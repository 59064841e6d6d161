package handlers

import (
	"bevforge-delivery/internal/platform/obs"
	"net/http"
)

// Health reports liveness. It does not touch the store or OPS.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":     "ok",
		"request_id": obs.RequestID(r.Context()),
	})
}
