package tagging

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	inRI1   = orb.Point{-50, 2}
	inRI2   = orb.Point{-50, 6}
	inINT   = orb.Point{0, 0}
	inRIV   = orb.Point{2, 50}
	outside = orb.Point{500, 500}
)

func repeat(p orb.Point, n int) []orb.Point {
	out := make([]orb.Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func concat(parts ...[]orb.Point) []orb.Point {
	var out []orb.Point
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFirstLastStableZone(t *testing.T) {
	loc := crossroads()

	tests := []struct {
		name      string
		points    []orb.Point
		minFrames int
		first     string
		last      string
	}{
		{"A then B", concat(repeat(inRI1, 6), repeat(inRIV, 8)), 6, "RI_1", "RIV_1"},
		{"single zone", repeat(inINT, 10), 5, "INT_1", "INT_1"},
		{"never stable", concat(repeat(inRI1, 3), repeat(inRIV, 3), repeat(inRI1, 3)), 5, "", ""},
		{"flicker filtered", concat(repeat(inRI1, 6), []orb.Point{inRI2}, repeat(inRI1, 2), repeat(inRIV, 6)), 5, "RI_1", "RIV_1"},
		{"outside never stable", concat(repeat(outside, 10), repeat(inRI1, 2)), 3, "", ""},
		{"outside breaks runs", concat(repeat(inRI1, 2), []orb.Point{outside}, repeat(inRI1, 2)), 3, "", ""},
		{"middle zone counts for last", concat(repeat(inRI1, 5), repeat(inINT, 5)), 5, "RI_1", "INT_1"},
		{"min frames one", []orb.Point{outside, inRI1, outside}, 1, "RI_1", "RI_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := FirstLastStableZone(loc, tt.points, tt.minFrames)
			require.NoError(t, err)
			assert.Equal(t, tt.first, first, "first")
			assert.Equal(t, tt.last, last, "last")
		})
	}
}

func TestFirstLastStableZoneContract(t *testing.T) {
	loc := crossroads()

	_, _, err := FirstLastStableZone(loc, nil, 5)
	assert.True(t, errors.Is(err, ErrEmptyTrajectory))

	_, _, err = FirstLastStableZone(loc, repeat(inRI1, 3), 0)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
