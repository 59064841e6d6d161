package distance

import (
	"bevforge-delivery/internal/ports"
	"context"
	"fmt"
	"sync/atomic"
)

// MockPair is one known leg between two addresses.
type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MockDistanceProvider serves fixed legs, used in tests and offline runs.
// Pairs are looked up in both directions when Symmetric is set.
type MockDistanceProvider struct {
	Symmetric bool

	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	p.calls.Add(1)

	if r, ok := p.m[origin+"|"+destination]; ok {
		return r, nil
	}
	if p.Symmetric {
		if r, ok := p.m[destination+"|"+origin]; ok {
			return r, nil
		}
	}
	return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
}

// Calls reports how many lookups were made.
func (p *MockDistanceProvider) Calls() int64 { return p.calls.Load() }
