package dto

import "time"

type StopResponse struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Address      string     `json:"address"`
	OrderIDs     []string   `json:"order_ids"`
	ContainerIDs []string   `json:"container_ids"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at"`
}

type RouteResponse struct {
	ID               string         `json:"id"`
	TruckID          string         `json:"truck_id"`
	Status           string         `json:"status"`
	CurrentStopIndex int            `json:"current_stop_index"`
	Stops            []StopResponse `json:"stops"`
	CreatedAt        time.Time      `json:"created_at"`
	StartedAt        *time.Time     `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
}

type StopEstimateResponse struct {
	StopID         string    `json:"stop_id"`
	CustomerID     string    `json:"customer_id"`
	ArriveAt       time.Time `json:"arrive_at"`
	DistanceMeters int       `json:"distance_meters"`
}

type EstimateResponse struct {
	DepartAt             time.Time              `json:"depart_at"`
	TotalDistanceMeters  int                    `json:"total_distance_meters"`
	TotalDurationSeconds int                    `json:"total_duration_seconds"`
	Stops                []StopEstimateResponse `json:"stops"`
}

type SummaryResponse struct {
	TotalStops          int               `json:"total_stops"`
	CompletedStops      int               `json:"completed_stops"`
	TotalContainers     int               `json:"total_containers"`
	DeliveredContainers int               `json:"delivered_containers"`
	DeliveredPercent    float64           `json:"delivered_percent"`
	EstimatedMinutes    int               `json:"estimated_minutes"`
	Estimate            *EstimateResponse `json:"estimate,omitempty"`
}

type RouteViewResponse struct {
	Route   RouteResponse   `json:"route"`
	Summary SummaryResponse `json:"summary"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type ReorderRequest struct {
	FromIndex *int `json:"from_index"`
	ToIndex   *int `json:"to_index"`
}

type CompleteStopResponse struct {
	Route          RouteResponse `json:"route"`
	Stop           StopResponse  `json:"stop"`
	Truck          TruckResponse `json:"truck"`
	RouteCompleted bool          `json:"route_completed"`
}
