package dto

import "time"

type RegisterTruckRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type TruckResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Capacity     int        `json:"capacity"`
	Remaining    int        `json:"remaining"`
	Status       string     `json:"status"`
	ContainerIDs []string   `json:"container_ids"`
	DepartedAt   *time.Time `json:"departed_at"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}

type LoadRequest struct {
	OrderID string `json:"order_id"`
}

type UnloadRequest struct {
	ContainerIDs []string `json:"container_ids"`
}

type LoadResponse struct {
	Truck        TruckResponse  `json:"truck"`
	Route        *RouteResponse `json:"route"`
	ContainerIDs []string       `json:"container_ids"`
	Warnings     []string       `json:"warnings"`
}
