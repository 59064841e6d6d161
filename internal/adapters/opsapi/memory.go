package opsapi

import (
	"bevforge-delivery/internal/domain"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryClient is an in-process order book implementing ports.OrderClient.
// It backs offline runs (no OPS API configured) and tests.
type MemoryClient struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemoryClient(orders ...domain.Order) *MemoryClient {
	m := &MemoryClient{orders: make(map[string]domain.Order, len(orders))}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

// Put adds or replaces an order.
func (m *MemoryClient) Put(o domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *MemoryClient) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryClient) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("update order %s: %w", orderID, domain.ErrNotFound)
	}
	o.Status = status
	m.orders[orderID] = o
	return nil
}

// Status returns the current status of one order, or "" when unknown.
func (m *MemoryClient) Status(orderID string) domain.OrderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[orderID].Status
}
