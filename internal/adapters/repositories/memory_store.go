package repositories

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/ports"
	"context"
	"fmt"
	"sort"
	"sync"
)

// In-memory implementation of the Store port. Values are cloned on the way
// in and out so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	trucks     map[string]*domain.Truck
	containers map[string]*domain.Container
	routes     map[string]*domain.DeliveryRoute
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trucks:     make(map[string]*domain.Truck),
		containers: make(map[string]*domain.Container),
		routes:     make(map[string]*domain.DeliveryRoute),
	}
}

func (m *MemoryStore) ListTrucks(ctx context.Context) ([]*domain.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Truck, 0, len(m.trucks))
	for _, t := range m.trucks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetTruck(ctx context.Context, id string) (*domain.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trucks[id]
	if !ok {
		return nil, fmt.Errorf("get truck %q: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (m *MemoryStore) SaveTruck(ctx context.Context, t *domain.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trucks[t.ID] = t.Clone()
	return nil
}

func (m *MemoryStore) ListContainers(ctx context.Context) ([]*domain.Container, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Container, 0, len(m.containers))
	for _, c := range m.containers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetContainer(ctx context.Context, id string) (*domain.Container, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.containers[id]
	if !ok {
		return nil, fmt.Errorf("get container %q: %w", id, domain.ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *MemoryStore) SaveContainers(ctx context.Context, cs ...*domain.Container) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cs {
		m.containers[c.ID] = c.Clone()
	}
	return nil
}

func (m *MemoryStore) ActiveRoute(ctx context.Context, truckID string) (*domain.DeliveryRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active *domain.DeliveryRoute
	for _, r := range m.routes {
		if r.TruckID != truckID || r.Status == domain.RouteCompleted {
			continue
		}
		if active == nil || r.CreatedAt.After(active.CreatedAt) {
			active = r
		}
	}
	if active == nil {
		return nil, fmt.Errorf("active route for truck %q: %w", truckID, domain.ErrNotFound)
	}
	return active.Clone(), nil
}

func (m *MemoryStore) ListRoutes(ctx context.Context) ([]*domain.DeliveryRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.DeliveryRoute, 0, len(m.routes))
	for _, r := range m.routes {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) SaveRoute(ctx context.Context, r *domain.DeliveryRoute) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.routes[r.ID] = r.Clone()
	return nil
}

func (m *MemoryStore) DeleteRoute(ctx context.Context, routeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.routes, routeID)
	return nil
}

// Apply swaps every change in under one lock, so readers see all of it or
// none of it.
func (m *MemoryStore) Apply(ctx context.Context, ch ports.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range ch.Containers {
		m.containers[c.ID] = c.Clone()
	}
	if ch.Truck != nil {
		m.trucks[ch.Truck.ID] = ch.Truck.Clone()
	}
	if ch.DeleteRouteID != "" {
		delete(m.routes, ch.DeleteRouteID)
	}
	if ch.Route != nil {
		m.routes[ch.Route.ID] = ch.Route.Clone()
	}
	return nil
}
