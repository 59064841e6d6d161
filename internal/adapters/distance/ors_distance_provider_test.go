package distance

import (
	"bevforge-delivery/internal/adapters/cache"
	"bevforge-delivery/internal/adapters/repositories"
	"bevforge-delivery/internal/platform/db"
	"bevforge-delivery/internal/ports"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeORS struct {
	geocodes atomic.Int64
	matrices atomic.Int64
	coords   map[string][]float64
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /geocode/search", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		c, ok := f.coords[r.URL.Query().Get("text")]
		features := []map[string]any{}
		if ok {
			features = append(features, map[string]any{
				"geometry": map[string]any{"coordinates": c},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"features": features})
	})

	mux.HandleFunc("POST /v2/matrix/driving-hgv", func(w http.ResponseWriter, r *http.Request) {
		f.matrices.Add(1)
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode matrix request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		dist := make([]float64, 0, len(req.Destinations))
		dur := make([]float64, 0, len(req.Destinations))
		for _, idx := range req.Destinations {
			// Longitude offset from the origin stands in for distance.
			d := (req.Locations[idx][0] - req.Locations[0][0]) * 1000
			dist = append(dist, d)
			dur = append(dur, d/10)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"distances": [][]float64{dist},
			"durations": [][]float64{dur},
		})
	})

	return mux
}

func newTestProvider(t *testing.T, f *fakeORS) *ORSDistanceProvider {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "ors.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := repositories.Migrate(conn, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewORSDistanceProvider(
		"test-key",
		cache.NewSQLDistanceCache(conn, "sqlite"),
		cache.NewSQLGeocodeCache(conn, "sqlite"),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewORSDistanceProvider: %v", err)
	}
	return p
}

func TestORSGetDistancesUsesCaches(t *testing.T) {
	f := &fakeORS{coords: map[string][]float64{
		"Hub":     {0, 0},
		"Taproom": {2, 0},
		"Bistro":  {5, 0},
	}}
	p := newTestProvider(t, f)
	ctx := context.Background()

	got, err := p.GetDistances(ctx, "Hub", []string{"Taproom", " Bistro ", "Taproom", "Hub"})
	if err != nil {
		t.Fatalf("GetDistances: %v", err)
	}

	want := map[string]ports.DistanceResult{
		"Taproom": {DistanceMeters: 2000, DurationSeconds: 200},
		"Bistro":  {DistanceMeters: 5000, DurationSeconds: 500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GetDistances mismatch (-want +got):\n%s", diff)
	}
	if f.geocodes.Load() != 3 || f.matrices.Load() != 1 {
		t.Fatalf("calls: geocode=%d matrix=%d, want 3 and 1", f.geocodes.Load(), f.matrices.Load())
	}

	again, err := p.GetDistance(ctx, "Hub", "Bistro")
	if err != nil {
		t.Fatalf("GetDistance: %v", err)
	}
	if again != want["Bistro"] {
		t.Fatalf("GetDistance = %+v, want %+v", again, want["Bistro"])
	}
	if f.geocodes.Load() != 3 || f.matrices.Load() != 1 {
		t.Fatalf("cached lookup reached ORS: geocode=%d matrix=%d", f.geocodes.Load(), f.matrices.Load())
	}
}

func TestORSGetDistancesUnknownAddress(t *testing.T) {
	f := &fakeORS{coords: map[string][]float64{"Hub": {0, 0}}}
	p := newTestProvider(t, f)

	if _, err := p.GetDistances(context.Background(), "Hub", []string{"Nowhere"}); err == nil {
		t.Fatalf("expected error for address without geocode result")
	}
}

func TestNewORSDistanceProviderRequiresKey(t *testing.T) {
	if _, err := NewORSDistanceProvider("", nil, nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
