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
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoDistanceProvider is returned by operations that need travel times
// when no distance provider is configured.
var ErrNoDistanceProvider = errors.New("distance provider is not configured")

const defaultPushTimeout = 10 * time.Second

// Logistics coordinates trucks, containers and delivery routes.
//
// Every mutating operation holds a single lock, so actions are applied one
// at a time and each completes before the next starts. Order status changes
// are pushed to the order service in the background after the local state
// is saved; a failed push is logged and never rolls the local change back.
type Logistics struct {
	store     ports.Store
	orders    ports.OrderClient
	distances ports.DistanceProvider
	hub       string
	log       *zap.Logger

	now         func() time.Time
	pushTimeout time.Duration

	mu       sync.Mutex
	pushes   sync.WaitGroup
	lastPush chan struct{}
}

type Option func(*Logistics)

// WithDistanceProvider enables ETAs and suggested stop order.
func WithDistanceProvider(p ports.DistanceProvider) Option {
	return func(l *Logistics) { l.distances = p }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logistics) { l.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Logistics) { l.log = log }
}

func WithPushTimeout(d time.Duration) Option {
	return func(l *Logistics) { l.pushTimeout = d }
}

func NewLogistics(store ports.Store, orders ports.OrderClient, hub string, opts ...Option) *Logistics {
	l := &Logistics{
		store:       store,
		orders:      orders,
		hub:         hub,
		log:         obs.L(),
		now:         time.Now,
		pushTimeout: defaultPushTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until every background order push has finished.
func (l *Logistics) Wait() {
	l.pushes.Wait()
}

func (l *Logistics) ListTrucks(ctx context.Context) ([]*domain.Truck, error) {
	return l.store.ListTrucks(ctx)
}

func (l *Logistics) GetTruck(ctx context.Context, id string) (*domain.Truck, error) {
	return l.store.GetTruck(ctx, id)
}

// RegisterTruck adds an available, empty truck to the fleet.
func (l *Logistics) RegisterTruck(ctx context.Context, id, name string, capacity int) (*domain.Truck, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("register truck: id is required: %w", domain.ErrInvalidInput)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("register truck %s: capacity must be positive: %w", id, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.GetTruck(ctx, id); err == nil {
		return nil, fmt.Errorf("register truck %s: already exists: %w", id, domain.ErrInvalidInput)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register truck %s: %w", id, err)
	}

	t := domain.NewTruck(id, strings.TrimSpace(name), capacity)
	if err := l.store.SaveTruck(ctx, t); err != nil {
		return nil, fmt.Errorf("register truck %s: %w", id, err)
	}
	return t, nil
}

func (l *Logistics) ListContainers(ctx context.Context) ([]*domain.Container, error) {
	return l.store.ListContainers(ctx)
}

// NewContainerInput describes a container entering staging for an order.
type NewContainerInput struct {
	ID         string
	Type       domain.ContainerType
	Product    string
	BatchID    string
	OrderID    string
	CustomerID string
	Weight     float64
}

// RegisterContainer puts a new container into staging.
func (l *Logistics) RegisterContainer(ctx context.Context, in NewContainerInput) (*domain.Container, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, fmt.Errorf("register container: id is required: %w", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("register container %s: unknown type %q: %w", in.ID, in.Type, domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.GetContainer(ctx, in.ID); err == nil {
		return nil, fmt.Errorf("register container %s: already exists: %w", in.ID, domain.ErrInvalidInput)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register container %s: %w", in.ID, err)
	}

	c := domain.NewContainer(in.ID, in.Type, in.Product, l.now())
	c.BatchID = in.BatchID
	c.OrderID = in.OrderID
	c.CustomerID = in.CustomerID
	c.Weight = in.Weight

	if err := l.store.SaveContainers(ctx, c); err != nil {
		return nil, fmt.Errorf("register container %s: %w", in.ID, err)
	}
	return c, nil
}

// ListOrders passes through to the order service.
func (l *Logistics) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return l.orders.ListOrders(ctx, status)
}

// RouteView is a route together with its progress summary.
type RouteView struct {
	Route   *domain.DeliveryRoute
	Summary RouteSummary
}

// GetRoute returns the truck's active route with a summary. ETAs are added
// when a distance provider is configured; a failed estimate is logged and
// the fixed-rate summary is returned alone.
func (l *Logistics) GetRoute(ctx context.Context, truckID string) (*RouteView, error) {
	route, err := l.activeRoute(ctx, truckID)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("get route for truck %s: %w", truckID, domain.ErrNoRoute)
	}

	view := &RouteView{Route: route, Summary: Summarize(route)}
	if l.distances == nil {
		return view, nil
	}

	departAt := l.now()
	if route.StartedAt != nil && route.CurrentStopIndex == 0 {
		departAt = *route.StartedAt
	}

	est, err := EstimateRoute(ctx, l.hub, route, departAt, l.distances)
	if err != nil {
		l.log.Warn("route estimate failed",
			zap.String("truck_id", truckID),
			zap.String("route_id", route.ID),
			zap.Error(err))
		return view, nil
	}

	view.Summary.Estimate = est
	view.Summary.EstimatedMinutes = est.TotalDurationSeconds / 60
	return view, nil
}

// ListRoutes returns every stored route, optionally filtered by status.
func (l *Logistics) ListRoutes(ctx context.Context, status domain.RouteStatus) ([]*domain.DeliveryRoute, error) {
	routes, err := l.store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	if status == "" {
		return routes, nil
	}
	return slices.DeleteFunc(routes, func(r *domain.DeliveryRoute) bool { return r.Status != status }), nil
}

// activeRoute returns nil without error when the truck has no active route.
func (l *Logistics) activeRoute(ctx context.Context, truckID string) (*domain.DeliveryRoute, error) {
	r, err := l.store.ActiveRoute(ctx, truckID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Logistics) containerIndex(ctx context.Context) (map[string]*domain.Container, error) {
	all, err := l.store.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*domain.Container, len(all))
	for _, c := range all {
		m[c.ID] = c
	}
	return m, nil
}
