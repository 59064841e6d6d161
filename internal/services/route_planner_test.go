package services

import (
	"bevforge-delivery/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func container(id, orderID, customerID string) *domain.Container {
	c := domain.NewContainer(id, domain.ContainerKeg, "IPA", time.Unix(0, 0))
	c.OrderID = orderID
	c.CustomerID = customerID
	return c
}

func index(cs ...*domain.Container) map[string]*domain.Container {
	m := make(map[string]*domain.Container, len(cs))
	for _, c := range cs {
		m[c.ID] = c
	}
	return m
}

func stopCustomers(stops []domain.DeliveryStop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.CustomerID)
	}
	return out
}

func TestDeriveStopsGroupsByCustomer(t *testing.T) {
	truck := domain.NewTruck("T1", "Route A", 10)
	truck.Containers = []string{"a1", "b1", "a2", "b2", "b3"}

	containers := index(
		container("a1", "ORD-A", "CUST-A"),
		container("a2", "ORD-A", "CUST-A"),
		container("b1", "ORD-B", "CUST-B"),
		container("b2", "ORD-B", "CUST-B"),
		container("b3", "ORD-B2", "CUST-B"),
	)
	orders := map[string]domain.Order{
		"ORD-A": {ID: "ORD-A", CustomerID: "CUST-A", CustomerName: "Taproom", CustomerAddress: "1 Main St"},
	}

	stops := DeriveStops(truck, containers, orders)

	if diff := cmp.Diff([]string{"CUST-A", "CUST-B"}, stopCustomers(stops)); diff != "" {
		t.Fatalf("customers mismatch (-want +got):\n%s", diff)
	}

	a, b := stops[0], stops[1]
	if a.CustomerName != "Taproom" || a.Address != "1 Main St" {
		t.Fatalf("stop A name/address = %q/%q", a.CustomerName, a.Address)
	}
	if b.CustomerName != "CUST-B" {
		t.Fatalf("stop B name = %q, want fallback to customer id", b.CustomerName)
	}
	if diff := cmp.Diff([]string{"a1", "a2"}, a.ContainerIDs); diff != "" {
		t.Fatalf("stop A containers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ORD-B", "ORD-B2"}, b.OrderIDs); diff != "" {
		t.Fatalf("stop B orders (-want +got):\n%s", diff)
	}
	for _, s := range stops {
		if s.Status != domain.StopPending || s.ID == "" {
			t.Fatalf("stop %s: status=%s id=%q", s.CustomerID, s.Status, s.ID)
		}
	}
}

func TestDeriveStopsSkipsUnknownAndUnassigned(t *testing.T) {
	truck := domain.NewTruck("T1", "", 10)
	truck.Containers = []string{"ghost", "loose", "a1"}

	stops := DeriveStops(truck, index(container("loose", "", ""), container("a1", "ORD-A", "CUST-A")), nil)

	if diff := cmp.Diff([]string{"CUST-A"}, stopCustomers(stops)); diff != "" {
		t.Fatalf("customers mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRouteKeepsStopIdentityWhenLoadGrows(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	cs := index(
		container("a1", "ORD-A", "CUST-A"),
		container("a2", "ORD-A", "CUST-A"),
		container("b1", "ORD-B", "CUST-B"),
		container("b2", "ORD-B", "CUST-B"),
		container("b3", "ORD-B", "CUST-B"),
		container("a3", "ORD-A2", "CUST-A"),
		container("c1", "ORD-C", "CUST-C"),
	)

	truck := domain.NewTruck("T1", "", 10)
	truck.Containers = []string{"a1", "a2", "b1", "b2", "b3"}

	route := PlanRoute(truck, nil, DeriveStops(truck, cs, nil), now)
	if route == nil || route.Status != domain.RoutePlanning || route.TruckID != "T1" {
		t.Fatalf("unexpected new route: %+v", route)
	}
	if _, err := route.Reorder(1, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	idB, idA := route.Stops[0].ID, route.Stops[1].ID

	truck.Containers = append(truck.Containers, "a3", "c1")
	next := PlanRoute(truck, route, DeriveStops(truck, cs, nil), now.Add(time.Hour))

	if diff := cmp.Diff([]string{"CUST-B", "CUST-A", "CUST-C"}, stopCustomers(next.Stops)); diff != "" {
		t.Fatalf("order after merge (-want +got):\n%s", diff)
	}
	if next.Stops[0].ID != idB || next.Stops[1].ID != idA {
		t.Fatalf("stop ids changed: got %s,%s want %s,%s", next.Stops[0].ID, next.Stops[1].ID, idB, idA)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "a3"}, next.Stops[1].ContainerIDs); diff != "" {
		t.Fatalf("stop A containers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ORD-A", "ORD-A2"}, next.Stops[1].OrderIDs); diff != "" {
		t.Fatalf("stop A orders (-want +got):\n%s", diff)
	}
	if next.ID != route.ID || !next.CreatedAt.Equal(now) {
		t.Fatalf("route identity changed: %s %v", next.ID, next.CreatedAt)
	}
}

func TestPlanRouteIsIdempotent(t *testing.T) {
	cs := index(container("a1", "ORD-A", "CUST-A"), container("b1", "ORD-B", "CUST-B"))
	truck := domain.NewTruck("T1", "", 10)
	truck.Containers = []string{"a1", "b1"}

	first := PlanRoute(truck, nil, DeriveStops(truck, cs, nil), time.Now())
	second := PlanRoute(truck, first, DeriveStops(truck, cs, nil), time.Now())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("replanning an unchanged load changed the route (-first +second):\n%s", diff)
	}
}

func TestPlanRouteEmptyTruck(t *testing.T) {
	truck := domain.NewTruck("T1", "", 10)
	existing := &domain.DeliveryRoute{ID: "R1", TruckID: "T1", Status: domain.RoutePlanning}

	if got := PlanRoute(truck, existing, nil, time.Now()); got != nil {
		t.Fatalf("expected nil route for an empty truck, got %+v", got)
	}
}

func TestMergeStopsKeepsCompletedStops(t *testing.T) {
	done := time.Unix(100, 0)
	existing := []domain.DeliveryStop{
		{ID: "s1", CustomerID: "CUST-A", Status: domain.StopCompleted, CompletedAt: &done, ContainerIDs: []string{"a1"}},
		{ID: "s2", CustomerID: "CUST-B", Status: domain.StopPending, ContainerIDs: []string{"b1"}},
	}
	derived := []domain.DeliveryStop{
		{ID: "new-b", CustomerID: "CUST-B", ContainerIDs: []string{"b1", "b2"}, Status: domain.StopPending},
	}

	merged := MergeStops(existing, derived)

	if len(merged) != 2 {
		t.Fatalf("got %d stops, want 2", len(merged))
	}
	if merged[0].ID != "s1" || merged[0].Status != domain.StopCompleted {
		t.Fatalf("completed stop changed: %+v", merged[0])
	}
	if merged[1].ID != "s2" || len(merged[1].ContainerIDs) != 2 {
		t.Fatalf("pending stop not refreshed in place: %+v", merged[1])
	}
}
