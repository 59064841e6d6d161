package services

import (
	"bevforge-delivery/internal/domain"
	"fmt"
	"strings"
)

// Utilisation above which a load is accepted with a warning.
const nearCapacityPercent = 90.0

// LoadCheck is the outcome of ValidateLoad. Errors block loading;
// warnings are reported to the caller and loading proceeds.
type LoadCheck struct {
	Errors   []error
	Warnings []string
}

func (c LoadCheck) Valid() bool { return len(c.Errors) == 0 }

// Err folds the blocking problems into one error whose message lists them
// all. It matches each underlying sentinel with errors.Is.
func (c LoadCheck) Err() error {
	if c.Valid() {
		return nil
	}
	return &loadError{errs: c.Errors}
}

type loadError struct{ errs []error }

func (e *loadError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *loadError) Unwrap() []error { return e.errs }

// ValidateLoad checks whether the given containers can be added to the truck.
func ValidateLoad(truck *domain.Truck, containers []*domain.Container) LoadCheck {
	check := LoadCheck{Errors: []error{}, Warnings: []string{}}

	if truck == nil {
		check.Errors = append(check.Errors, fmt.Errorf("truck must be selected: %w", domain.ErrInvalidInput))
		return check
	}

	if truck.Status == domain.TruckOnRoad {
		check.Errors = append(check.Errors, fmt.Errorf("cannot load truck that is already on route: %w", domain.ErrTruckOnRoad))
	}

	if len(containers) == 0 {
		check.Errors = append(check.Errors, fmt.Errorf("nothing to load: %w", domain.ErrNoContainers))
	}

	total := len(truck.Containers) + len(containers)
	if truck.Capacity <= 0 {
		check.Errors = append(check.Errors, fmt.Errorf("truck %s has no capacity: %w", truck.ID, domain.ErrInvalidInput))
	} else {
		utilisation := float64(total) / float64(truck.Capacity) * 100
		switch {
		case total > truck.Capacity:
			check.Errors = append(check.Errors, fmt.Errorf(
				"truck capacity exceeded: %d/%d containers (%.0f%%): %w", total, truck.Capacity, utilisation, domain.ErrTruckFull,
			))
		case utilisation > nearCapacityPercent:
			check.Warnings = append(check.Warnings, fmt.Sprintf(
				"truck near capacity: %d/%d containers (%.0f%%)", total, truck.Capacity, utilisation,
			))
		}
	}

	unavailable := 0
	for _, c := range containers {
		if c.Status != domain.ContainerStaging || c.ParentID != "" {
			unavailable++
		}
	}
	if unavailable > 0 {
		check.Errors = append(check.Errors, fmt.Errorf(
			"%d containers are not available for loading: %w", unavailable, domain.ErrInvalidTransition,
		))
	}

	return check
}
