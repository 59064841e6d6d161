package distance

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
}

// ORS reports unreachable pairs as null.
type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// newMatrixRequest puts the origin at index 0 and every destination after it.
func newMatrixRequest(origin domain.Coordinates, destinations []domain.Coordinates) matrixRequest {
	req := matrixRequest{
		Locations:    make([][]float64, 0, 1+len(destinations)),
		Sources:      []int{0},
		Destinations: make([]int, 0, len(destinations)),
		Metrics:      []string{"distance", "duration"},
	}
	req.Locations = append(req.Locations, origin.CoordsToList())
	for i, c := range destinations {
		req.Locations = append(req.Locations, c.CoordsToList())
		req.Destinations = append(req.Destinations, i+1)
	}
	return req
}

// fetchMatrixRow asks the ORS matrix endpoint for one origin row:
// distance and duration to each destination, keyed by destination address.
func (o *ORSDistanceProvider) fetchMatrixRow(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinations []string,
	destinationCoords []domain.Coordinates,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.fetchMatrixRow")(&err)

	if len(destinations) != len(destinationCoords) {
		return nil, errors.New("matrix row: destinations and coordinates differ in length")
	}
	if len(destinations) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	payload, err := json.Marshal(newMatrixRequest(originCoord, destinationCoords))
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return nil, fmt.Errorf(
			"matrix row: expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations),
		)
	}

	meters, seconds := mr.Distances[0], mr.Durations[0]
	if len(meters) != len(destinations) || len(seconds) != len(destinations) {
		return nil, fmt.Errorf(
			"matrix row: got distances=%d durations=%d for %d destinations",
			len(meters), len(seconds), len(destinations),
		)
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for i, dest := range destinations {
		if meters[i] == nil || seconds[i] == nil {
			return nil, fmt.Errorf("matrix returned no route to %q", dest)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*meters[i])),
			DurationSeconds: int(math.Round(*seconds[i])),
		}
	}

	return out, nil
}
