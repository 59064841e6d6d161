package services

import (
	"bevforge-delivery/internal/adapters/distance"
	"bevforge-delivery/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testHub = "HUB"

func legs() *distance.MockDistanceProvider {
	p := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: testHub, To: "A", Meters: 1000, Seconds: 600},
		{From: testHub, To: "B", Meters: 2000, Seconds: 1200},
		{From: testHub, To: "C", Meters: 3000, Seconds: 1800},
		{From: "A", To: "B", Meters: 1500, Seconds: 900},
		{From: "A", To: "C", Meters: 2500, Seconds: 300},
		{From: "B", To: "C", Meters: 1000, Seconds: 600},
	})
	p.Symmetric = true
	return p
}

func addrStops(addrs ...string) []domain.DeliveryStop {
	out := make([]domain.DeliveryStop, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, domain.DeliveryStop{
			ID:           "stop-" + a,
			CustomerID:   "CUST-" + a,
			Address:      a,
			ContainerIDs: []string{a + "-1", a + "-2"},
			Status:       domain.StopPending,
		})
	}
	return out
}

func TestSummarizeFallbackEstimate(t *testing.T) {
	route := &domain.DeliveryRoute{Stops: addrStops("A", "B", "C")}
	route.Stops[0].Status = domain.StopCompleted

	s := Summarize(route)

	if s.TotalStops != 3 || s.CompletedStops != 1 {
		t.Fatalf("stops = %d/%d, want 1/3", s.CompletedStops, s.TotalStops)
	}
	if s.TotalContainers != 6 || s.DeliveredContainers != 2 {
		t.Fatalf("containers = %d/%d, want 2/6", s.DeliveredContainers, s.TotalContainers)
	}
	// 3 stops * 30m + 2 legs * 15m
	if s.EstimatedMinutes != 120 {
		t.Fatalf("estimated minutes = %d, want 120", s.EstimatedMinutes)
	}
}

func TestEstimateRouteFollowsRouteOrder(t *testing.T) {
	depart := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	route := &domain.DeliveryRoute{Stops: addrStops("B", "A")}

	est, err := EstimateRoute(context.Background(), testHub, route, depart, legs())
	if err != nil {
		t.Fatalf("EstimateRoute: %v", err)
	}

	// HUB->B 20m, service 30m, B->A 15m.
	want := []time.Time{
		depart.Add(20 * time.Minute),
		depart.Add(65 * time.Minute),
	}
	got := []time.Time{est.Stops[0].ArriveAt, est.Stops[1].ArriveAt}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("arrivals (-want +got):\n%s", diff)
	}
	if est.TotalDistanceMeters != 3500 {
		t.Fatalf("distance = %d, want 3500", est.TotalDistanceMeters)
	}
	if est.TotalDurationSeconds != (20+30+15+30)*60 {
		t.Fatalf("duration = %ds, want %ds", est.TotalDurationSeconds, (20+30+15+30)*60)
	}
}

func TestEstimateRouteStartsFromLastCompletedStop(t *testing.T) {
	depart := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	route := &domain.DeliveryRoute{Stops: addrStops("A", "C")}
	route.Stops[0].Status = domain.StopCompleted

	est, err := EstimateRoute(context.Background(), testHub, route, depart, legs())
	if err != nil {
		t.Fatalf("EstimateRoute: %v", err)
	}
	if len(est.Stops) != 1 || !est.Stops[0].ArriveAt.Equal(depart.Add(5*time.Minute)) {
		t.Fatalf("got %+v, want one stop arriving at +5m", est.Stops)
	}
}

func TestEstimateRouteFallsBackForMissingAddress(t *testing.T) {
	depart := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	route := &domain.DeliveryRoute{Stops: addrStops("A", "")}

	est, err := EstimateRoute(context.Background(), testHub, route, depart, legs())
	if err != nil {
		t.Fatalf("EstimateRoute: %v", err)
	}
	// HUB->A 10m, service 30m, fallback 15m.
	if got := est.Stops[1].ArriveAt; !got.Equal(depart.Add(55 * time.Minute)) {
		t.Fatalf("second arrival = %v, want +55m", got)
	}
}

func TestNearestNeighborOrder(t *testing.T) {
	stops := addrStops("C", "B", "A")
	stops = append(stops, domain.DeliveryStop{ID: "stop-none", CustomerID: "CUST-NONE"})

	got, err := NearestNeighborOrder(context.Background(), testHub, stops, legs())
	if err != nil {
		t.Fatalf("NearestNeighborOrder: %v", err)
	}

	// HUB->A (10m), A->C (5m), C->B (10m), then the unroutable stop.
	if diff := cmp.Diff([]string{"CUST-A", "CUST-C", "CUST-B", "CUST-NONE"}, stopCustomers(got)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestNearestNeighborRequiresProvider(t *testing.T) {
	if _, err := NearestNeighborOrder(context.Background(), testHub, addrStops("A"), nil); err == nil {
		t.Fatalf("expected error without provider")
	}
}
