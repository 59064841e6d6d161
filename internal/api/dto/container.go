package dto

import "time"

type RegisterContainerRequest struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Product    string  `json:"product"`
	BatchID    string  `json:"batch_id"`
	OrderID    string  `json:"order_id"`
	CustomerID string  `json:"customer_id"`
	Weight     float64 `json:"weight"`
}

// PackRequest selects the containers to pack into a case or onto a pallet.
type PackRequest struct {
	ContainerIDs []string `json:"container_ids"`
}

type ContainerEventResponse struct {
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
}

type ContainerResponse struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Product    string                   `json:"product"`
	BatchID    string                   `json:"batch_id"`
	OrderID    string                   `json:"order_id"`
	CustomerID string                   `json:"customer_id"`
	Status     string                   `json:"status"`
	Location   string                   `json:"location"`
	TruckID    string                   `json:"truck_id"`
	Weight     float64                  `json:"weight"`
	ParentID   string                   `json:"parent_id,omitempty"`
	History    []ContainerEventResponse `json:"history"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

type ListContainersResponse struct {
	Containers []ContainerResponse `json:"containers"`
}
