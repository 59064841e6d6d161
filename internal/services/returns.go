package services

import (
	"bevforge-delivery/internal/domain"
	"context"
	"fmt"
)

// MarkReturned records an emptied container collected back from a customer.
func (l *Logistics) MarkReturned(ctx context.Context, containerID string) (*domain.Container, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := l.store.GetContainer(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("mark returned: %w", err)
	}
	if err := c.Transition(domain.ContainerReturned, domain.LocationReturns, l.now(), "Marked empty"); err != nil {
		return nil, fmt.Errorf("mark returned: %w", err)
	}
	if err := l.store.SaveContainers(ctx, c); err != nil {
		return nil, fmt.Errorf("mark returned: %w", err)
	}
	return c, nil
}

// ProcessReturn cleans a returned container and puts it back into staging
// with no order, customer or batch, ready for refill.
func (l *Logistics) ProcessReturn(ctx context.Context, containerID string) (*domain.Container, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := l.store.GetContainer(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("process return: %w", err)
	}
	// Staging is also reachable from loaded; only returned containers qualify.
	if c.Status != domain.ContainerReturned {
		return nil, fmt.Errorf("process return %s (status=%s): %w", c.ID, c.Status, domain.ErrInvalidTransition)
	}
	if err := c.Transition(domain.ContainerStaging, domain.LocationProduction, l.now(), "Cleaned and ready for refill"); err != nil {
		return nil, fmt.Errorf("process return: %w", err)
	}
	c.OrderID = ""
	c.CustomerID = ""
	c.BatchID = ""
	c.ParentID = ""

	if err := l.store.SaveContainers(ctx, c); err != nil {
		return nil, fmt.Errorf("process return: %w", err)
	}
	return c, nil
}
