package ports

import (
	"bevforge-delivery/internal/domain"
	"context"
)

// Port: persistence boundary for trucks, containers and delivery routes.
// Implementations return copies; callers save what they change.
// Lookups of missing entities wrap domain.ErrNotFound.
type Store interface {
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	GetTruck(ctx context.Context, id string) (*domain.Truck, error)
	SaveTruck(ctx context.Context, t *domain.Truck) error

	ListContainers(ctx context.Context) ([]*domain.Container, error)
	GetContainer(ctx context.Context, id string) (*domain.Container, error)
	SaveContainers(ctx context.Context, cs ...*domain.Container) error

	// ActiveRoute returns the truck's planning or in-progress route.
	ActiveRoute(ctx context.Context, truckID string) (*domain.DeliveryRoute, error)
	ListRoutes(ctx context.Context) ([]*domain.DeliveryRoute, error)
	SaveRoute(ctx context.Context, r *domain.DeliveryRoute) error
	DeleteRoute(ctx context.Context, routeID string) error

	// Apply writes every change of one action atomically: either all of
	// it is stored or none of it is.
	Apply(ctx context.Context, ch Changes) error
}

// Changes is the state one action leaves behind. Nil and empty fields
// are skipped.
type Changes struct {
	Truck         *domain.Truck
	Containers    []*domain.Container
	Route         *domain.DeliveryRoute
	DeleteRouteID string
}
