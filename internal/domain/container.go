package domain

import (
	"fmt"
	"time"
)

type ContainerType string

const (
	ContainerKeg    ContainerType = "keg"
	ContainerCase   ContainerType = "case"
	ContainerPallet ContainerType = "pallet"
	ContainerBottle ContainerType = "bottle"
	ContainerCan    ContainerType = "can"
)

func (t ContainerType) Valid() bool {
	switch t {
	case ContainerKeg, ContainerCase, ContainerPallet, ContainerBottle, ContainerCan:
		return true
	}
	return false
}

type ContainerStatus string

const (
	ContainerStaging   ContainerStatus = "staging"
	ContainerLoaded    ContainerStatus = "loaded"
	ContainerInTransit ContainerStatus = "in-transit"
	ContainerDelivered ContainerStatus = "delivered"
	ContainerReturned  ContainerStatus = "returned"
)

// Allowed container moves. loaded -> staging covers unloading before
// departure; returned -> staging is a processed return ready for refill.
var containerTransitions = map[ContainerStatus][]ContainerStatus{
	ContainerStaging:   {ContainerLoaded},
	ContainerLoaded:    {ContainerInTransit, ContainerStaging},
	ContainerInTransit: {ContainerDelivered},
	ContainerDelivered: {ContainerReturned},
	ContainerReturned:  {ContainerStaging},
}

// Well-known container locations.
const (
	LocationStaging    = "Staging"
	LocationTruck      = "Truck"
	LocationOnRoad     = "On Road"
	LocationReturns    = "returns"
	LocationProduction = "production"
)

// ContainerEvent is one entry in a container's movement history.
type ContainerEvent struct {
	At       time.Time
	Action   string
	Location string
	Notes    string
}

// Container is a trackable physical unit (keg, case, pallet) moving from
// staging onto a truck, to a customer and back through returns.
type Container struct {
	ID         string
	Type       ContainerType
	Product    string
	BatchID    string
	OrderID    string
	CustomerID string
	Status     ContainerStatus
	Location   string
	TruckID    string
	ParentID   string
	Weight     float64
	History    []ContainerEvent
	UpdatedAt  time.Time
}

// NewContainer returns a container in staging with its creation event recorded.
func NewContainer(id string, typ ContainerType, product string, at time.Time) *Container {
	return &Container{
		ID:        id,
		Type:      typ,
		Product:   product,
		Status:    ContainerStaging,
		Location:  LocationStaging,
		UpdatedAt: at,
		History: []ContainerEvent{
			{At: at, Action: "Created", Location: LocationStaging},
		},
	}
}

// CanTransition reports whether the container may move to next.
func (c *Container) CanTransition(next ContainerStatus) bool {
	for _, s := range containerTransitions[c.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves the container to next at location and records the change.
func (c *Container) Transition(next ContainerStatus, location string, at time.Time, notes string) error {
	if !c.CanTransition(next) {
		return fmt.Errorf("container %s: %s -> %s: %w", c.ID, c.Status, next, ErrInvalidTransition)
	}

	c.Status = next
	c.Location = location
	c.UpdatedAt = at
	c.History = append(c.History, ContainerEvent{
		At:       at,
		Action:   fmt.Sprintf("Status changed to %s", next),
		Location: location,
		Notes:    notes,
	})
	return nil
}

// PackInto records that a staged container now travels inside parent, a
// case or pallet. Packed containers are not loaded on their own.
func (c *Container) PackInto(parent *Container, at time.Time) error {
	if c.ID == parent.ID {
		return fmt.Errorf("pack container %s into itself: %w", c.ID, ErrInvalidInput)
	}
	if c.Status != ContainerStaging {
		return fmt.Errorf("pack container %s (status=%s): %w", c.ID, c.Status, ErrInvalidTransition)
	}
	if c.ParentID != "" {
		return fmt.Errorf("pack container %s: already in %s: %w", c.ID, c.ParentID, ErrAlreadyPacked)
	}

	c.ParentID = parent.ID
	c.UpdatedAt = at
	c.History = append(c.History, ContainerEvent{
		At:       at,
		Action:   fmt.Sprintf("Packed into %s", parent.ID),
		Location: c.Location,
	})
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (c *Container) Clone() *Container {
	cp := *c
	cp.History = append([]ContainerEvent(nil), c.History...)
	return &cp
}
