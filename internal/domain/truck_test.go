package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTruckLoadMultiple(t *testing.T) {
	truck := NewTruck("TRUCK-1", "Route A", 3)

	if err := truck.LoadMultiple([]string{"KEG-0001", "KEG-0002"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truck.Status != TruckLoading {
		t.Fatalf("status = %q, want %q", truck.Status, TruckLoading)
	}

	// Two more do not fit; nothing may be loaded.
	err := truck.LoadMultiple([]string{"KEG-0003", "KEG-0004"})
	if !errors.Is(err, ErrTruckFull) {
		t.Fatalf("err = %v, want ErrTruckFull", err)
	}
	if len(truck.Containers) != 2 {
		t.Fatalf("containers = %v, want 2 entries", truck.Containers)
	}
}

func TestTruckLoadOnRoad(t *testing.T) {
	truck := NewTruck("TRUCK-1", "Route A", 10)
	if err := truck.Load("KEG-0001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	truck.Depart(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))

	if err := truck.Load("KEG-0002"); !errors.Is(err, ErrTruckOnRoad) {
		t.Fatalf("err = %v, want ErrTruckOnRoad", err)
	}
}

func TestTruckUnloadAndRelease(t *testing.T) {
	truck := NewTruck("TRUCK-1", "Route A", 10)
	_ = truck.LoadMultiple([]string{"A", "B", "C"})

	truck.Unload("B")
	if got := truck.Containers; len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("containers = %v, want [A C]", got)
	}

	truck.Unload("A", "C")
	if truck.Status != TruckAvailable {
		t.Fatalf("status = %q, want %q after emptying", truck.Status, TruckAvailable)
	}

	_ = truck.Load("D")
	truck.Depart(time.Now())
	truck.Release()
	if truck.Status != TruckAvailable || len(truck.Containers) != 0 || truck.DepartedAt != nil {
		t.Fatalf("release left truck %+v", truck)
	}
}

func TestTruckReloadWhenFullIsNoop(t *testing.T) {
	truck := NewTruck("TRUCK-1", "Route A", 2)
	if err := truck.LoadMultiple([]string{"KEG-0001", "KEG-0002"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := truck.Load("KEG-0002"); err != nil {
		t.Fatalf("reload aboard container on full truck: %v", err)
	}
	if len(truck.Containers) != 2 {
		t.Fatalf("containers = %v, want 2 entries", truck.Containers)
	}
	if err := truck.Load("KEG-0003"); !errors.Is(err, ErrTruckFull) {
		t.Fatalf("err = %v, want ErrTruckFull", err)
	}
}
