package api

import (
	"bevforge-delivery/internal/adapters/opsapi"
	"bevforge-delivery/internal/adapters/repositories"
	"bevforge-delivery/internal/api/dto"
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/services"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type testAPI struct {
	srv    *httptest.Server
	svc    *services.Logistics
	orders *opsapi.MemoryClient
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	store := repositories.NewMemoryStore()
	if err := store.SaveTruck(ctx, domain.NewTruck("T1", "Route A", 4)); err != nil {
		t.Fatalf("save truck: %v", err)
	}
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for _, k := range []struct{ id, order, customer string }{
		{"k1", "ORD-A", "CUST-A"},
		{"k2", "ORD-B", "CUST-B"},
		{"k3", "ORD-B", "CUST-B"},
	} {
		c := domain.NewContainer(k.id, domain.ContainerKeg, "IPA", now)
		c.OrderID = k.order
		c.CustomerID = k.customer
		if err := store.SaveContainers(ctx, c); err != nil {
			t.Fatalf("save container: %v", err)
		}
	}

	orders := opsapi.NewMemoryClient(
		domain.Order{ID: "ORD-A", CustomerID: "CUST-A", CustomerName: "Taproom", Status: domain.OrderApproved},
		domain.Order{ID: "ORD-B", CustomerID: "CUST-B", CustomerName: "Bistro", Status: domain.OrderApproved},
		domain.Order{ID: "ORD-C", CustomerID: "CUST-C", Status: domain.OrderDraft},
	)
	svc := services.NewLogistics(store, orders, "HUB")

	srv := httptest.NewServer(NewRouter(svc))
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})
	return &testAPI{srv: srv, svc: svc, orders: orders}
}

func (a *testAPI) do(t *testing.T, method, path, body string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	var body map[string]string
	resp := a.do(t, http.MethodGet, "/health", "", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}

	resp = a.do(t, http.MethodPost, "/health", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health = %d, want 405", resp.StatusCode)
	}
}

func TestRouteLifecycleOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	var load dto.LoadResponse
	if resp := a.do(t, http.MethodPost, "/trucks/T1/load", `{"order_id":"ORD-A"}`, &load); resp.StatusCode != http.StatusOK {
		t.Fatalf("load ORD-A = %d", resp.StatusCode)
	}
	if resp := a.do(t, http.MethodPost, "/trucks/T1/load", `{"order_id":"ORD-B"}`, &load); resp.StatusCode != http.StatusOK {
		t.Fatalf("load ORD-B = %d", resp.StatusCode)
	}
	if load.Route == nil || len(load.Route.Stops) != 2 {
		t.Fatalf("route after loads: %+v", load.Route)
	}
	if load.Truck.Remaining != 1 || load.Truck.Status != "loading" {
		t.Fatalf("truck after loads: %+v", load.Truck)
	}

	var route dto.RouteResponse
	if resp := a.do(t, http.MethodPost, "/trucks/T1/route/reorder", `{"from_index":1,"to_index":0}`, &route); resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder = %d", resp.StatusCode)
	}
	got := []string{route.Stops[0].CustomerID, route.Stops[1].CustomerID}
	if diff := cmp.Diff([]string{"CUST-B", "CUST-A"}, got); diff != "" {
		t.Fatalf("order after reorder (-want +got):\n%s", diff)
	}

	var view dto.RouteViewResponse
	if resp := a.do(t, http.MethodGet, "/trucks/T1/route", "", &view); resp.StatusCode != http.StatusOK {
		t.Fatalf("get route = %d", resp.StatusCode)
	}
	if view.Summary.TotalStops != 2 || view.Summary.EstimatedMinutes != 75 {
		t.Fatalf("summary = %+v", view.Summary)
	}

	if resp := a.do(t, http.MethodPost, "/trucks/T1/route/start", "", &route); resp.StatusCode != http.StatusOK {
		t.Fatalf("start = %d", resp.StatusCode)
	}
	if route.Status != "in-progress" {
		t.Fatalf("route status = %s", route.Status)
	}

	var errBody map[string]string
	resp := a.do(t, http.MethodPost, "/trucks/T1/route/reorder", `{"from_index":0,"to_index":-1}`, &errBody)
	if resp.StatusCode != http.StatusConflict || errBody["error"] == "" {
		t.Fatalf("locked reorder = %d %v, want 409", resp.StatusCode, errBody)
	}

	var done dto.CompleteStopResponse
	a.do(t, http.MethodPost, "/trucks/T1/route/complete-stop", "", &done)
	if done.RouteCompleted || done.Stop.CustomerID != "CUST-B" {
		t.Fatalf("first completion: %+v", done)
	}
	a.do(t, http.MethodPost, "/trucks/T1/route/complete-stop", "", &done)
	if !done.RouteCompleted || done.Truck.Status != "available" {
		t.Fatalf("last completion: completed=%v truck=%s", done.RouteCompleted, done.Truck.Status)
	}

	var routes dto.ListRoutesResponse
	a.do(t, http.MethodGet, "/routes?status=completed", "", &routes)
	if len(routes.Routes) != 1 {
		t.Fatalf("completed routes = %d, want 1", len(routes.Routes))
	}

	resp = a.do(t, http.MethodGet, "/trucks/T1/route", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("route after completion = %d, want 404", resp.StatusCode)
	}
}

func TestErrorMapping(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown truck", http.MethodGet, "/trucks/NOPE", "", http.StatusNotFound},
		{"draft order", http.MethodPost, "/trucks/T1/load", `{"order_id":"ORD-C"}`, http.StatusConflict},
		{"missing order id", http.MethodPost, "/trucks/T1/load", `{}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/trucks/T1/load", `{"order":"ORD-A"}`, http.StatusBadRequest},
		{"two objects", http.MethodPost, "/trucks/T1/load", `{"order_id":"ORD-A"}{}`, http.StatusBadRequest},
		{"no route to start", http.MethodPost, "/trucks/T1/route/start", "", http.StatusNotFound},
		{"reorder without indices", http.MethodPost, "/trucks/T1/route/reorder", `{"from_index":0}`, http.StatusBadRequest},
		{"optimize without provider", http.MethodPost, "/trucks/T1/route/optimize", "", http.StatusServiceUnavailable},
		{"bad route filter", http.MethodGet, "/routes?status=lost", "", http.StatusBadRequest},
		{"return staged container", http.MethodPost, "/containers/k1/return", "", http.StatusConflict},
		{"bad order filter", http.MethodGet, "/orders?status=lost", "", http.StatusBadRequest},
		{"case under twelve bottles", http.MethodPost, "/containers/cases", `{"container_ids":["k1"]}`, http.StatusBadRequest},
		{"empty pallet", http.MethodPost, "/containers/pallets", `{"container_ids":[]}`, http.StatusBadRequest},
		{"unknown pallet", http.MethodPost, "/containers/pallets/PLT-9/containers", `{"container_ids":["k1"]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.do(t, tt.method, tt.path, tt.body, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRegisterAndListContainers(t *testing.T) {
	a := newTestAPI(t)

	var c dto.ContainerResponse
	resp := a.do(t, http.MethodPost, "/containers",
		`{"id":"c9","type":"case","product":"Pilsner","order_id":"ORD-A","customer_id":"CUST-A"}`, &c)
	if resp.StatusCode != http.StatusCreated || c.Status != "staging" || len(c.History) != 1 {
		t.Fatalf("register = %d %+v", resp.StatusCode, c)
	}

	var list dto.ListContainersResponse
	a.do(t, http.MethodGet, "/containers?status=staging", "", &list)
	if len(list.Containers) != 4 {
		t.Fatalf("staged containers = %d, want 4", len(list.Containers))
	}
}

func TestListOrdersDefaultsToApproved(t *testing.T) {
	a := newTestAPI(t)

	var list dto.ListOrdersResponse
	a.do(t, http.MethodGet, "/orders", "", &list)
	if len(list.Orders) != 2 {
		t.Fatalf("approved orders = %d, want 2", len(list.Orders))
	}

	a.do(t, http.MethodGet, "/orders?status=all", "", &list)
	if len(list.Orders) != 3 {
		t.Fatalf("all orders = %d, want 3", len(list.Orders))
	}
}

func TestRegisterTruck(t *testing.T) {
	a := newTestAPI(t)

	var tr dto.TruckResponse
	resp := a.do(t, http.MethodPost, "/trucks", `{"id":"T2","name":"Route B","capacity":12}`, &tr)
	if resp.StatusCode != http.StatusCreated || tr.Remaining != 12 {
		t.Fatalf("register = %d %+v", resp.StatusCode, tr)
	}

	resp = a.do(t, http.MethodPost, "/trucks", `{"id":"T2","name":"again","capacity":12}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register = %d, want 400", resp.StatusCode)
	}

	var list dto.ListTrucksResponse
	a.do(t, http.MethodGet, "/trucks", "", &list)
	if len(list.Trucks) != 2 {
		t.Fatalf("trucks = %d, want 2", len(list.Trucks))
	}
}

func TestPalletOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	var p dto.ContainerResponse
	resp := a.do(t, http.MethodPost, "/containers/pallets", `{"container_ids":["k2","k3"]}`, &p)
	if resp.StatusCode != http.StatusCreated || p.ID != "PLT-0001" || p.Type != "pallet" || p.OrderID != "ORD-B" {
		t.Fatalf("create pallet = %d %+v", resp.StatusCode, p)
	}

	resp = a.do(t, http.MethodPost, "/containers/pallets/PLT-0001/containers", `{"container_ids":["k1"]}`, &p)
	if resp.StatusCode != http.StatusOK || p.OrderID != "" {
		t.Fatalf("add to pallet = %d %+v", resp.StatusCode, p)
	}

	resp = a.do(t, http.MethodPost, "/containers/pallets", `{"container_ids":["k1"]}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("repack = %d, want 409", resp.StatusCode)
	}

	var list dto.ListContainersResponse
	a.do(t, http.MethodGet, "/containers", "", &list)
	for _, c := range list.Containers {
		if c.ID != "PLT-0001" && c.ParentID != "PLT-0001" {
			t.Fatalf("%s parent = %q, want PLT-0001", c.ID, c.ParentID)
		}
	}
}
