package astro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyglobe.dev/flightsim/astro"
)

func TestSolarZenithGrid(t *testing.T) {
	// 10-degree steps put the subsolar point (0, 0) exactly on a
	// grid node.
	sza := astro.SolarZenithGrid(0, 0, 19, 37)

	require.Len(t, sza, 19)
	for _, row := range sza {
		require.Len(t, row, 37)
	}

	// Zero at the subsolar node, 180 at its antipode.
	assert.InDelta(t, 0, sza[9][18], 1e-9)
	assert.InDelta(t, 180, sza[9][0], 1e-9)
	assert.InDelta(t, 180, sza[9][36], 1e-9)

	// 90 degrees at the poles.
	assert.InDelta(t, 90, sza[0][18], 1e-9)
	assert.InDelta(t, 90, sza[18][18], 1e-9)
}

func TestDaylightWeights(t *testing.T) {
	sza := [][]float64{
		{0, 45, 90},
		{99, 108, 109},
		{120, 180, 90.0001},
	}

	w := astro.DaylightWeights(sza)

	// Day side saturates at 1.
	assert.Equal(t, 1.0, w[0][0])
	assert.Equal(t, 1.0, w[0][1])
	assert.Equal(t, 1.0, w[0][2])

	// Halfway through the twilight band the cosine-squared ramp
	// sits at exactly one half.
	assert.InDelta(t, 0.5, w[1][0], 1e-9)

	// Night side saturates at 0.
	assert.Greater(t, w[1][1], 0.0) // 108 is the last twilight angle
	assert.Equal(t, 0.0, w[1][2])
	assert.Equal(t, 0.0, w[2][0])
	assert.Equal(t, 0.0, w[2][1])

	// Just past sunset the ramp has barely left 1.
	assert.InDelta(t, 1.0, w[2][2], 1e-6)
}

func TestDaylightWeightsMonotonic(t *testing.T) {
	row := make([]float64, 0, 181)
	for angle := 0.0; angle <= 180; angle++ {
		row = append(row, angle)
	}

	w := astro.DaylightWeights([][]float64{row})

	for i := 1; i < len(w[0]); i++ {
		assert.LessOrEqual(t, w[0][i], w[0][i-1], "angle %d", i)
	}
	for _, v := range w[0] {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDaylightWeightsFollowTheSun(t *testing.T) {
	// With the sun over (10, 5), the grid cell nearest the
	// subsolar point is day and its antipode night.
	sza := astro.SolarZenithGrid(10, 5, 181, 361)
	w := astro.DaylightWeights(sza)

	assert.Equal(t, 1.0, w[100][185]) // (10, 5)
	assert.Equal(t, 0.0, w[80][5])    // (-10, -175)
}
