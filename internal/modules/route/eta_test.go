// README: ETA fallback tests (no Maps key configured).
package route

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

func TestLegETAHaversineFallback(t *testing.T) {
	est, err := NewEstimator("")
	require.NoError(t, err)

	// Roughly 2.6km across central Chiang Mai; at 30km/h that is minutes,
	// not seconds or hours.
	from := types.Point{Lat: 18.7883, Lng: 98.9853}
	to := types.Point{Lat: 18.7986, Lng: 99.0090}
	d, err := est.LegETA(context.Background(), from, to)
	require.NoError(t, err)
	assert.Greater(t, d, time.Minute)
	assert.Less(t, d, 30*time.Minute)

	same, err := est.LegETA(context.Background(), from, from)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), same)
}

func TestRouteETAsSkipsStopsWithoutCoordinates(t *testing.T) {
	est, err := NewEstimator("")
	require.NoError(t, err)

	stops := []booking.Booking{
		{ID: "a", Pickup: &types.Point{Lat: 18.78, Lng: 98.98}},
		{ID: "no-coords"},
		{ID: "b", Pickup: &types.Point{Lat: 18.80, Lng: 99.00}},
	}
	legs, err := est.RouteETAs(context.Background(), stops)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, types.ID("a"), legs[0].FromID)
	assert.Equal(t, types.ID("b"), legs[0].ToID)
}
