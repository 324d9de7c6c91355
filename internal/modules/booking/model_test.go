// README: Transport chain tests: adjacency only, no skips, no reversals.
package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextTransport(t *testing.T) {
	cases := []struct {
		from   TransportStatus
		want   TransportStatus
		wantOK bool
	}{
		{TransportWaiting, TransportEnRoute, true},
		{TransportEnRoute, TransportArrived, true},
		{TransportArrived, TransportOnBoard, true},
		{TransportOnBoard, TransportDroppedOff, true},
		{TransportDroppedOff, "", false},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		got, ok := NextTransport(tc.from)
		assert.Equal(t, tc.wantOK, ok, "from %s", tc.from)
		assert.Equal(t, tc.want, got, "from %s", tc.from)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TransportStatus
		want     bool
	}{
		// the single legal step from each non-terminal state
		{TransportWaiting, TransportEnRoute, true},
		{TransportEnRoute, TransportArrived, true},
		{TransportArrived, TransportOnBoard, true},
		{TransportOnBoard, TransportDroppedOff, true},
		// skipping
		{TransportWaiting, TransportArrived, false},
		{TransportWaiting, TransportOnBoard, false},
		{TransportEnRoute, TransportDroppedOff, false},
		// going backward
		{TransportArrived, TransportEnRoute, false},
		{TransportOnBoard, TransportWaiting, false},
		// terminal
		{TransportDroppedOff, TransportWaiting, false},
		// self-loops
		{TransportWaiting, TransportWaiting, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
