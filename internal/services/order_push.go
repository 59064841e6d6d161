package services

import (
	"bevforge-delivery/internal/domain"
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentPushes = 4

// pushOrderStatus sends status changes to the order service without
// blocking the caller. Failures are logged only: no retry, no rollback.
// Batches are delivered in call order, so a later status never lands
// before an earlier one. Callers must hold l.mu.
func (l *Logistics) pushOrderStatus(orderIDs []string, status domain.OrderStatus) {
	if len(orderIDs) == 0 || l.orders == nil {
		return
	}

	ids := append([]string(nil), orderIDs...)
	prev := l.lastPush
	done := make(chan struct{})
	l.lastPush = done

	l.pushes.Add(1)
	go func() {
		defer l.pushes.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.pushTimeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(maxConcurrentPushes)
		for _, id := range ids {
			g.Go(func() error {
				if err := l.orders.UpdateOrderStatus(ctx, id, status); err != nil {
					l.log.Warn("order status push failed",
						zap.String("order_id", id),
						zap.String("status", string(status)),
						zap.Error(err))
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}
