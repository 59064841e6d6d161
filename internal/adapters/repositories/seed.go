package repositories

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type TruckSeed struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

type ContainerSeed struct {
	ID         string  `json:"id" yaml:"id"`
	Type       string  `json:"type" yaml:"type"`
	Product    string  `json:"product" yaml:"product"`
	BatchID    string  `json:"batch_id" yaml:"batch_id"`
	OrderID    string  `json:"order_id" yaml:"order_id"`
	CustomerID string  `json:"customer_id" yaml:"customer_id"`
	Weight     float64 `json:"weight" yaml:"weight"`
}

// OrderSeed feeds the offline order book used when no OPS API is configured.
type OrderSeed struct {
	ID              string `json:"id" yaml:"id"`
	OrderNumber     string `json:"order_number" yaml:"order_number"`
	CustomerID      string `json:"customer_id" yaml:"customer_id"`
	CustomerName    string `json:"customer_name" yaml:"customer_name"`
	CustomerAddress string `json:"customer_address" yaml:"customer_address"`
	Status          string `json:"status" yaml:"status"`
}

// FleetSeed is the seed file layout (YAML or JSON).
type FleetSeed struct {
	Trucks     []TruckSeed     `json:"trucks" yaml:"trucks"`
	Containers []ContainerSeed `json:"containers" yaml:"containers"`
	Orders     []OrderSeed     `json:"orders" yaml:"orders"`
}

// DomainOrders converts the seeded orders.
func (f *FleetSeed) DomainOrders() []domain.Order {
	out := make([]domain.Order, 0, len(f.Orders))
	for _, o := range f.Orders {
		out = append(out, domain.Order{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			CustomerID:      o.CustomerID,
			CustomerName:    o.CustomerName,
			CustomerAddress: o.CustomerAddress,
			Status:          domain.OrderStatus(o.Status),
		})
	}
	return out
}

// ReadSeed parses a fleet seed file; the format follows the extension
// (.yaml/.yml or .json).
func ReadSeed(path string) (*FleetSeed, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: read %q: %w", path, err)
	}

	var data FleetSeed
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, &data); err != nil {
			return nil, fmt.Errorf("read seed: parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(bytes, &data); err != nil {
			return nil, fmt.Errorf("read seed: parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("read seed: unsupported file type %q", path)
	}

	for i, t := range data.Trucks {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("read seed: truck at index %d: id cannot be empty", i+1)
		}
		if t.Capacity <= 0 {
			return nil, fmt.Errorf("read seed: truck %q: invalid capacity %d", t.ID, t.Capacity)
		}
	}
	for i, c := range data.Containers {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("read seed: container at index %d: id cannot be empty", i+1)
		}
		if !domain.ContainerType(c.Type).Valid() {
			return nil, fmt.Errorf("read seed: container %q: unknown type %q", c.ID, c.Type)
		}
	}

	for i, o := range data.Orders {
		if strings.TrimSpace(o.ID) == "" {
			return nil, fmt.Errorf("read seed: order at index %d: id cannot be empty", i+1)
		}
		if !domain.OrderStatus(o.Status).Valid() {
			return nil, fmt.Errorf("read seed: order %q: unknown status %q", o.ID, o.Status)
		}
	}

	return &data, nil
}

// Seed inserts the trucks and staged containers of a seed file that are not
// already stored. Existing records are left untouched so restarts keep state.
func Seed(ctx context.Context, store ports.Store, path string) (trucks, containers int, err error) {
	data, err := ReadSeed(path)
	if err != nil {
		return 0, 0, err
	}

	for _, t := range data.Trucks {
		_, err := store.GetTruck(ctx, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return trucks, containers, fmt.Errorf("seed: truck %q: %w", t.ID, err)
		}
		if err := store.SaveTruck(ctx, domain.NewTruck(t.ID, t.Name, t.Capacity)); err != nil {
			return trucks, containers, fmt.Errorf("seed: save truck %q: %w", t.ID, err)
		}
		trucks++
	}

	now := time.Now()
	for _, s := range data.Containers {
		_, err := store.GetContainer(ctx, s.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return trucks, containers, fmt.Errorf("seed: container %q: %w", s.ID, err)
		}

		c := domain.NewContainer(s.ID, domain.ContainerType(s.Type), s.Product, now)
		c.BatchID = s.BatchID
		c.OrderID = s.OrderID
		c.CustomerID = s.CustomerID
		c.Weight = s.Weight
		if err := store.SaveContainers(ctx, c); err != nil {
			return trucks, containers, fmt.Errorf("seed: save container %q: %w", s.ID, err)
		}
		containers++
	}

	return trucks, containers, nil
}
