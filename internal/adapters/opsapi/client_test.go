package opsapi

import (
	"bevforge-delivery/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithBackoff(time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestListOrders(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "approved" {
			t.Errorf("status query = %q, want approved", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"ORD-1","orderNumber":"1001","customer_id":"CUST-A","customer_name":"Taproom","customer_address":"1 Main St","status":"approved"}
		]`))
	}))

	got, err := c.ListOrders(context.Background(), domain.OrderApproved)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}

	want := []domain.Order{{
		ID:              "ORD-1",
		OrderNumber:     "1001",
		CustomerID:      "CUST-A",
		CustomerName:    "Taproom",
		CustomerAddress: "1 Main St",
		Status:          domain.OrderApproved,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListOrders mismatch (-want +got):\n%s", diff)
	}
}

func TestListOrdersRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	got, err := c.ListOrders(context.Background(), "")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(got) != 0 || calls.Load() != 3 {
		t.Fatalf("got %d orders after %d calls, want 0 after 3", len(got), calls.Load())
	}
}

func TestListOrdersDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad status", http.StatusBadRequest)
	}))

	_, err := c.ListOrders(context.Background(), "bogus")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want StatusError 400", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestUpdateOrderStatusSendsOnce(t *testing.T) {
	var calls atomic.Int32
	var got statusPayload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/ORD-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.UpdateOrderStatus(context.Background(), "ORD-1", domain.OrderLoaded)
	if err == nil {
		t.Fatalf("expected error from 502 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want exactly 1", calls.Load())
	}
	if got.Status != "loaded" {
		t.Fatalf("body status = %q, want loaded", got.Status)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
