package distance

import (
	"bevforge-delivery/internal/adapters/cache"
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ORSDistanceProvider answers hub-to-customer and customer-to-customer
// drive times from OpenRouteService, using the heavy-goods profile so legs
// reflect a loaded beverage truck. Addresses are geocoded once and kept in
// the SQL geocode cache; matrix legs are kept in the SQL distance cache.
// Both caches are optional.
//
// Safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	distanceCache *cache.SQLDistanceCache
	geocodeCache  *cache.SQLGeocodeCache
}

type ORSOption func(*ORSDistanceProvider)

// WithBaseURL points the provider at another ORS deployment.
func WithBaseURL(u string) ORSOption {
	return func(o *ORSDistanceProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts geocoding to one ISO country code.
func WithCountry(code string) ORSOption {
	return func(o *ORSDistanceProvider) { o.country = code }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSDistanceProvider) { o.session = c }
}

func NewORSDistanceProvider(
	apiKey string,
	distanceCache *cache.SQLDistanceCache,
	geocodeCache *cache.SQLGeocodeCache,
	opts ...ORSOption,
) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		profile:       "driving-hgv",
		country:       "US",
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize collapses whitespace so cache keys match however the
// address was typed.
func (o *ORSDistanceProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GetDistance is a one-destination GetDistances.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (ports.DistanceResult, error) {
	from, to := o.normalize(origin), o.normalize(destination)
	if from == "" || to == "" {
		return ports.DistanceResult{}, errors.New("ors distance: origin and destination must be non-empty")
	}
	if from == to {
		return ports.DistanceResult{}, nil
	}

	results, err := o.GetDistances(ctx, from, []string{to})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("ors distance %q -> %q: %w", from, to, err)
	}
	result, ok := results[to]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("ors distance: no result for %q -> %q", from, to)
	}
	return result, nil
}

// GetDistances returns drive distance and time from origin to each
// destination, keyed by the normalized destination. Destinations equal to
// the origin, blank or repeated are dropped. Cached legs are served from
// the distance cache; the rest cost one matrix request.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	from := o.normalize(origin)
	if from == "" {
		return nil, errors.New("ors distances: origin must be non-empty")
	}

	dests := o.uniqueDestinations(from, destinations)
	if len(dests) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	out := make(map[string]ports.DistanceResult, len(dests))
	if o.distanceCache != nil {
		hits, err := o.distanceCache.GetMany(ctx, from, dests)
		if err != nil {
			return nil, fmt.Errorf("ors distances: read distance cache: %w", err)
		}
		maps.Copy(out, hits)
	}

	misses := slices.DeleteFunc(slices.Clone(dests), func(d string) bool {
		_, ok := out[d]
		return ok
	})
	if len(misses) == 0 {
		return out, nil
	}

	coords, err := o.resolve(ctx, append([]string{from}, misses...))
	if err != nil {
		return nil, fmt.Errorf("ors distances: %w", err)
	}

	missCoords := make([]domain.Coordinates, len(misses))
	for i, d := range misses {
		missCoords[i] = coords[d]
	}

	fetched, err := o.fetchMatrixRow(ctx, coords[from], misses, missCoords)
	if err != nil {
		return nil, fmt.Errorf("ors distances: %w", err)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, from, fetched); err != nil {
			obs.L().Warn("distance cache write failed", zap.String("origin", from), zap.Error(err))
		}
	}

	maps.Copy(out, fetched)
	return out, nil
}

func (o *ORSDistanceProvider) uniqueDestinations(origin string, destinations []string) []string {
	seen := map[string]struct{}{origin: {}}
	out := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := o.normalize(d)
		if nd == "" {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}
		seen[nd] = struct{}{}
		out = append(out, nd)
	}
	return out
}

// resolve returns coordinates for every address, geocoding cache misses
// and writing them back. Every address is present in the result.
func (o *ORSDistanceProvider) resolve(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	coords := make(map[string]domain.Coordinates, len(addresses))
	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("read geocode cache: %w", err)
		}
		maps.Copy(coords, hits)
	}

	var misses []string
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			misses = append(misses, a)
		}
	}
	if len(misses) == 0 {
		return coords, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("geocode addresses: %w", err)
	}
	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			obs.L().Warn("geocode cache write failed", zap.Int("addresses", len(fresh)), zap.Error(err))
		}
	}
	maps.Copy(coords, fresh)

	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			return nil, fmt.Errorf("no coordinates for %q", a)
		}
	}
	return coords, nil
}
