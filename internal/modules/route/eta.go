// README: Per-leg ETA estimates; Distance Matrix when configured, haversine otherwise.
package route

import (
	"context"
	"fmt"
	"math"
	"time"

	"googlemaps.github.io/maps"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

// fallbackSpeedKmh approximates hotel-to-hotel driving when no Maps key is
// configured.
const fallbackSpeedKmh = 30.0

// Estimator computes driving ETAs between consecutive pickup stops.
type Estimator struct {
	client *maps.Client
}

// NewEstimator builds an estimator. An empty API key yields the haversine
// fallback only.
func NewEstimator(apiKey string) (*Estimator, error) {
	if apiKey == "" {
		return &Estimator{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Estimator{client: client}, nil
}

// Leg is the estimated hop from one stop to the next in route order.
type Leg struct {
	FromID   types.ID
	ToID     types.ID
	Duration time.Duration
}

// LegETA estimates the driving time between two points.
func (e *Estimator) LegETA(ctx context.Context, from, to types.Point) (time.Duration, error) {
	if e.client == nil {
		return haversineETA(from, to), nil
	}
	resp, err := e.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", from.Lat, from.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", to.Lat, to.Lng)},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("no route between points")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return haversineETA(from, to), nil
	}
	return el.Duration, nil
}

// RouteETAs estimates each hop along the given stops; stops without pickup
// coordinates are skipped.
func (e *Estimator) RouteETAs(ctx context.Context, stops []booking.Booking) ([]Leg, error) {
	var legs []Leg
	var prev *booking.Booking
	for i := range stops {
		if stops[i].Pickup == nil {
			continue
		}
		if prev != nil {
			d, err := e.LegETA(ctx, *prev.Pickup, *stops[i].Pickup)
			if err != nil {
				return nil, err
			}
			legs = append(legs, Leg{FromID: prev.ID, ToID: stops[i].ID, Duration: d})
		}
		prev = &stops[i]
	}
	return legs, nil
}

func haversineETA(a, b types.Point) time.Duration {
	km := haversineKm(a, b)
	hours := km / fallbackSpeedKmh
	return time.Duration(hours * float64(time.Hour))
}

func haversineKm(a, b types.Point) float64 {
	const R = 6371.0
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dlat := (b.Lat - a.Lat) * math.Pi / 180.0
	dlng := (b.Lng - a.Lng) * math.Pi / 180.0
	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * R * math.Asin(math.Sqrt(h))
}
