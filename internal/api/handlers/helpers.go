package handlers

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

var conflictErrors = []error{
	domain.ErrInvalidTransition,
	domain.ErrTruckFull,
	domain.ErrTruckOnRoad,
	domain.ErrTruckNotOnRoad,
	domain.ErrOrderNotApproved,
	domain.ErrNoContainers,
	domain.ErrRouteNotPlanning,
	domain.ErrRouteNotInProgress,
	domain.ErrRouteCompleted,
	domain.ErrRouteEmpty,
	domain.ErrStopLocked,
	domain.ErrAlreadyPacked,
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrStopIndexOutOfRange),
		errors.Is(err, domain.ErrCaseTooSmall):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoDistanceProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError logs the failure and answers with the mapped status.
// Internal errors are not echoed to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)

	log := obs.L().With(
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.String("op", op),
		zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status))
	} else {
		log.Info("request rejected", zap.Int("status", status))
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, r, status, msg)
}
