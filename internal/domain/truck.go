package domain

import (
	"fmt"
	"slices"
	"time"
)

type TruckStatus string

const (
	TruckAvailable TruckStatus = "available"
	TruckLoading   TruckStatus = "loading"
	TruckOnRoad    TruckStatus = "on-road"
)

// Delivery truck aggregate holding the ids of the containers currently aboard.
type Truck struct {
	ID         string
	Name       string
	Capacity   int
	Containers []string
	Status     TruckStatus
	DepartedAt *time.Time
}

func NewTruck(id, name string, capacity int) *Truck {
	return &Truck{
		ID:       id,
		Name:     name,
		Capacity: capacity,
		Status:   TruckAvailable,
	}
}

// Free capacity left on the truck.
func (t *Truck) Remaining() int {
	return t.Capacity - len(t.Containers)
}

// Load a single container onto the truck.
func (t *Truck) Load(containerID string) error {
	if t.Status == TruckOnRoad {
		return fmt.Errorf("load truck %s: %w", t.ID, ErrTruckOnRoad)
	}
	if slices.Contains(t.Containers, containerID) {
		return nil
	}
	if len(t.Containers) >= t.Capacity {
		return fmt.Errorf("load truck %s (capacity=%d): %w", t.ID, t.Capacity, ErrTruckFull)
	}

	t.Containers = append(t.Containers, containerID)
	t.Status = TruckLoading
	return nil
}

// Load multiple containers; nothing is loaded unless all of them fit.
func (t *Truck) LoadMultiple(ids []string) error {
	if t.Status == TruckOnRoad {
		return fmt.Errorf("load truck %s: %w", t.ID, ErrTruckOnRoad)
	}
	if len(ids) > t.Remaining() {
		return fmt.Errorf(
			"load truck %s: %d containers, %d free (capacity=%d): %w",
			t.ID, len(ids), t.Remaining(), t.Capacity, ErrTruckFull,
		)
	}

	for _, id := range ids {
		if err := t.Load(id); err != nil {
			return err
		}
	}
	return nil
}

// Unload removes the given containers. An emptied truck that has not
// departed becomes available again.
func (t *Truck) Unload(ids ...string) {
	t.Containers = slices.DeleteFunc(t.Containers, func(id string) bool {
		return slices.Contains(ids, id)
	})
	if len(t.Containers) == 0 && t.Status == TruckLoading {
		t.Status = TruckAvailable
	}
}

// Depart puts the truck on the road.
func (t *Truck) Depart(at time.Time) {
	t.Status = TruckOnRoad
	t.DepartedAt = &at
}

// Release frees the truck after its last delivery.
func (t *Truck) Release() {
	t.Containers = nil
	t.Status = TruckAvailable
	t.DepartedAt = nil
}

func (t *Truck) Clone() *Truck {
	cp := *t
	cp.Containers = slices.Clone(t.Containers)
	if t.DepartedAt != nil {
		d := *t.DepartedAt
		cp.DepartedAt = &d
	}
	return &cp
}
