package domain

import (
	"errors"
	"testing"
	"time"
)

func TestContainerLifecycle(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewContainer("KEG-0001", ContainerKeg, "Hazy IPA", at)

	steps := []struct {
		status   ContainerStatus
		location string
	}{
		{ContainerLoaded, LocationTruck},
		{ContainerInTransit, LocationOnRoad},
		{ContainerDelivered, "CUST-1"},
		{ContainerReturned, LocationReturns},
		{ContainerStaging, LocationProduction},
	}
	for i, s := range steps {
		if err := c.Transition(s.status, s.location, at.Add(time.Duration(i+1)*time.Minute), ""); err != nil {
			t.Fatalf("step %d (%s): unexpected error: %v", i, s.status, err)
		}
		if c.Location != s.location {
			t.Fatalf("step %d: location = %q, want %q", i, c.Location, s.location)
		}
	}

	if len(c.History) != len(steps)+1 {
		t.Fatalf("history has %d entries, want %d", len(c.History), len(steps)+1)
	}
}

func TestContainerRejectsSkippedStatus(t *testing.T) {
	c := NewContainer("KEG-0001", ContainerKeg, "Lager", time.Now())

	err := c.Transition(ContainerDelivered, "CUST-1", time.Now(), "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if c.Status != ContainerStaging {
		t.Fatalf("status = %q, want unchanged staging", c.Status)
	}
}

func TestContainerPackInto(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	bottle := NewContainer("BTL-0001", ContainerBottle, "Pilsner", at)
	pallet := NewContainer("PLT-0001", ContainerPallet, "Mixed", at)

	if err := bottle.PackInto(pallet, at.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bottle.ParentID != "PLT-0001" || len(bottle.History) != 2 {
		t.Fatalf("bottle = %+v", bottle)
	}

	other := NewContainer("PLT-0002", ContainerPallet, "Mixed", at)
	if err := bottle.PackInto(other, at); !errors.Is(err, ErrAlreadyPacked) {
		t.Fatalf("err = %v, want ErrAlreadyPacked", err)
	}

	loaded := NewContainer("KEG-0001", ContainerKeg, "Lager", at)
	_ = loaded.Transition(ContainerLoaded, LocationTruck, at, "")
	if err := loaded.PackInto(pallet, at); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}
