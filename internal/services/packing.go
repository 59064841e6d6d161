package services

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MinBottlesPerCase is the fewest bottles a case can be built from.
const MinBottlesPerCase = 12

// CreateCase packs staged bottles into a new case. The case takes the
// product and batch of the first bottle and the summed weight of all.
func (l *Logistics) CreateCase(ctx context.Context, bottleIDs []string) (_ *domain.Container, err error) {
	defer obs.Time(ctx, "logistics.CreateCase")(&err)

	ids := uniqueIDs(bottleIDs)
	if len(ids) < MinBottlesPerCase {
		return nil, fmt.Errorf("create case: %d bottles selected: %w", len(ids), domain.ErrCaseTooSmall)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("create case: list containers: %w", err)
	}
	bottles, err := pick(all, ids)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	for _, b := range bottles {
		if b.Type != domain.ContainerBottle {
			return nil, fmt.Errorf("create case: %s is a %s, not a bottle: %w", b.ID, b.Type, domain.ErrInvalidInput)
		}
	}

	now := l.now()
	c := domain.NewContainer(nextID(all, domain.ContainerCase, "CASE"), domain.ContainerCase, bottles[0].Product, now)
	c.BatchID = bottles[0].BatchID

	if err := l.pack(ctx, c, bottles, now, true); err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}

	l.log.Info("case created", zap.String("container_id", c.ID), zap.Int("bottles", len(bottles)))
	return c, nil
}

// CreatePallet packs staged containers of any kind but pallets onto a new
// pallet.
func (l *Logistics) CreatePallet(ctx context.Context, containerIDs []string) (_ *domain.Container, err error) {
	defer obs.Time(ctx, "logistics.CreatePallet")(&err)

	ids := uniqueIDs(containerIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("create pallet: select containers to add to pallet: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("create pallet: list containers: %w", err)
	}
	items, err := palletItems(all, ids)
	if err != nil {
		return nil, fmt.Errorf("create pallet: %w", err)
	}

	now := l.now()
	p := domain.NewContainer(nextID(all, domain.ContainerPallet, "PLT"), domain.ContainerPallet, "Mixed", now)
	p.BatchID = "MIXED"

	if err := l.pack(ctx, p, items, now, true); err != nil {
		return nil, fmt.Errorf("create pallet: %w", err)
	}

	l.log.Info("pallet created",
		zap.String("container_id", p.ID),
		zap.Int("containers", len(items)),
		zap.Float64("weight", p.Weight))
	return p, nil
}

// AddToPallet packs more staged containers onto an existing staged pallet.
func (l *Logistics) AddToPallet(ctx context.Context, palletID string, containerIDs []string) (_ *domain.Container, err error) {
	defer obs.Time(ctx, "logistics.AddToPallet")(&err)

	ids := uniqueIDs(containerIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("add to pallet %s: container ids must be non-empty: %w", palletID, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.containerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("add to pallet %s: list containers: %w", palletID, err)
	}
	p, ok := all[palletID]
	if !ok {
		return nil, fmt.Errorf("add to pallet %s: %w", palletID, domain.ErrNotFound)
	}
	if p.Type != domain.ContainerPallet {
		return nil, fmt.Errorf("add to pallet %s: container is a %s: %w", palletID, p.Type, domain.ErrInvalidInput)
	}
	if p.Status != domain.ContainerStaging {
		return nil, fmt.Errorf("add to pallet %s (status=%s): %w", palletID, p.Status, domain.ErrInvalidTransition)
	}

	items, err := palletItems(all, ids)
	if err != nil {
		return nil, fmt.Errorf("add to pallet %s: %w", palletID, err)
	}
	if err := l.pack(ctx, p, items, l.now(), false); err != nil {
		return nil, fmt.Errorf("add to pallet %s: %w", palletID, err)
	}
	return p, nil
}

// pack moves children into parent, adds their weight and stores the lot in
// one write. The parent inherits order and customer only when every child
// agrees on them, and on an existing parent, only when they also match
// what it already carries.
func (l *Logistics) pack(ctx context.Context, parent *domain.Container, children []*domain.Container, now time.Time, fresh bool) error {
	orderID, customerID := parent.OrderID, parent.CustomerID
	if fresh {
		orderID, customerID = children[0].OrderID, children[0].CustomerID
	}

	for _, c := range children {
		if err := c.PackInto(parent, now); err != nil {
			return err
		}
		parent.Weight += c.Weight
		if c.OrderID != orderID || c.CustomerID != customerID {
			orderID, customerID = "", ""
		}
	}
	parent.OrderID, parent.CustomerID = orderID, customerID
	parent.UpdatedAt = now

	return l.store.Apply(ctx, ports.Changes{Containers: append(slices.Clone(children), parent)})
}

func palletItems(all map[string]*domain.Container, ids []string) ([]*domain.Container, error) {
	items, err := pick(all, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		if c.Type == domain.ContainerPallet {
			return nil, fmt.Errorf("%s is a pallet: %w", c.ID, domain.ErrInvalidInput)
		}
	}
	return items, nil
}

func pick(all map[string]*domain.Container, ids []string) ([]*domain.Container, error) {
	out := make([]*domain.Container, 0, len(ids))
	var missing []error
	for _, id := range ids {
		c, ok := all[id]
		if !ok {
			missing = append(missing, fmt.Errorf("container %s: %w", id, domain.ErrNotFound))
			continue
		}
		out = append(out, c)
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// nextID numbers new cases and pallets PREFIX-0001, PREFIX-0002, ...
// skipping ids already taken.
func nextID(all map[string]*domain.Container, typ domain.ContainerType, prefix string) string {
	n := 0
	for _, c := range all {
		if c.Type == typ {
			n++
		}
	}
	for {
		n++
		id := fmt.Sprintf("%s-%04d", prefix, n)
		if _, taken := all[id]; !taken {
			return id
		}
	}
}
