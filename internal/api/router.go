package api

import (
	"bevforge-delivery/internal/api/handlers"
	"bevforge-delivery/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with the logistics service and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.Logistics) http.Handler {
	mux := http.NewServeMux()

	trucks := &handlers.TruckHandler{Svc: svc}
	routes := &handlers.RouteHandler{Svc: svc}
	containers := &handlers.ContainerHandler{Svc: svc}
	orders := &handlers.OrderHandler{Svc: svc}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /trucks", trucks.List)
	mux.HandleFunc("POST /trucks", trucks.Register)
	mux.HandleFunc("GET /trucks/{truckID}", trucks.Get)
	mux.HandleFunc("POST /trucks/{truckID}/load", trucks.Load)
	mux.HandleFunc("POST /trucks/{truckID}/unload", trucks.Unload)

	mux.HandleFunc("GET /trucks/{truckID}/route", routes.Get)
	mux.HandleFunc("POST /trucks/{truckID}/route/start", routes.Start)
	mux.HandleFunc("POST /trucks/{truckID}/route/complete-stop", routes.CompleteStop)
	mux.HandleFunc("POST /trucks/{truckID}/route/reorder", routes.Reorder)
	mux.HandleFunc("POST /trucks/{truckID}/route/optimize", routes.Optimize)
	mux.HandleFunc("GET /routes", routes.List)

	mux.HandleFunc("GET /containers", containers.List)
	mux.HandleFunc("POST /containers", containers.Register)
	mux.HandleFunc("POST /containers/cases", containers.CreateCase)
	mux.HandleFunc("POST /containers/pallets", containers.CreatePallet)
	mux.HandleFunc("POST /containers/pallets/{palletID}/containers", containers.AddToPallet)
	mux.HandleFunc("POST /containers/{containerID}/return", containers.MarkReturned)
	mux.HandleFunc("POST /containers/{containerID}/process-return", containers.ProcessReturn)

	mux.HandleFunc("GET /orders", orders.List)

	return requestIDMiddleware(loggingMiddleware(mux))
}
