package domain

import (
	"errors"
	"testing"
	"time"
)

func stopsFor(customers ...string) []DeliveryStop {
	out := make([]DeliveryStop, 0, len(customers))
	for _, c := range customers {
		out = append(out, DeliveryStop{ID: "stop-" + c, CustomerID: c, Status: StopPending})
	}
	return out
}

func customers(stops []DeliveryStop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.CustomerID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRouteReorderPlanning(t *testing.T) {
	r := &DeliveryRoute{ID: "r1", Stops: stopsFor("A", "B", "C", "D"), Status: RoutePlanning}

	moved, err := r.Reorder(3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.CustomerID != "D" {
		t.Fatalf("moved %q, want D", moved.CustomerID)
	}
	if got, want := customers(r.Stops), []string{"D", "A", "B", "C"}; !equalStrings(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	if _, err := r.Reorder(0, 4); !errors.Is(err, ErrStopIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrStopIndexOutOfRange", err)
	}
}

func TestRouteReorderInProgressOffsetsIndices(t *testing.T) {
	r := &DeliveryRoute{ID: "r1", Stops: stopsFor("A", "B", "C", "D"), Status: RoutePlanning}
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if err := r.Start(at); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := r.CompleteCurrentStop(at); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Current stop is B (index 1); remaining are C, D.
	if got := customers(r.RemainingStops()); !equalStrings(got, []string{"C", "D"}) {
		t.Fatalf("remaining = %v, want [C D]", got)
	}

	if _, err := r.Reorder(1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := customers(r.Stops), []string{"A", "B", "D", "C"}; !equalStrings(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	if _, err := r.Reorder(0, -1); !errors.Is(err, ErrStopLocked) {
		t.Fatalf("err = %v, want ErrStopLocked", err)
	}
	if _, err := r.Reorder(-2, 0); !errors.Is(err, ErrStopLocked) {
		t.Fatalf("err = %v, want ErrStopLocked", err)
	}
	if r.Stops[0].Status != StopCompleted || r.Stops[0].CustomerID != "A" {
		t.Fatalf("completed stop moved or regressed: %+v", r.Stops[0])
	}
}

func TestRouteCompleteLastStop(t *testing.T) {
	r := &DeliveryRoute{ID: "r1", Stops: stopsFor("A", "B"), Status: RoutePlanning}
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	_ = r.Start(at)

	if _, last, err := r.CompleteCurrentStop(at.Add(time.Hour)); err != nil || last {
		t.Fatalf("first stop: last=%v err=%v", last, err)
	}
	done, last, err := r.CompleteCurrentStop(at.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !last || done.CustomerID != "B" {
		t.Fatalf("last=%v stop=%q, want last stop B", last, done.CustomerID)
	}
	if r.Status != RouteCompleted || r.CompletedAt == nil {
		t.Fatalf("route status = %q, want completed", r.Status)
	}
	if r.CurrentStopIndex != 1 {
		t.Fatalf("current index = %d, want 1", r.CurrentStopIndex)
	}

	if _, _, err := r.CompleteCurrentStop(at); !errors.Is(err, ErrRouteNotInProgress) {
		t.Fatalf("err = %v, want ErrRouteNotInProgress", err)
	}
	if _, err := r.Reorder(0, 0); !errors.Is(err, ErrRouteCompleted) {
		t.Fatalf("err = %v, want ErrRouteCompleted", err)
	}
}

func TestRouteStartRequiresStops(t *testing.T) {
	r := &DeliveryRoute{ID: "r1", Status: RoutePlanning}
	if err := r.Start(time.Now()); !errors.Is(err, ErrRouteEmpty) {
		t.Fatalf("err = %v, want ErrRouteEmpty", err)
	}
}
