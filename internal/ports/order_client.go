package ports

import (
	"bevforge-delivery/internal/domain"
	"context"
)

// Contract for the upstream order service that owns order state.
type OrderClient interface {
	// Return orders, optionally filtered by status (empty means all).
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	// Push a status change for one order.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}
