package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyglobe.dev/flightsim/geo"
)

func TestHaversineKnownAngles(t *testing.T) {
	for _, tc := range []struct {
		Name                   string
		Lat0, Lon0, Lat1, Lon1 float64 // degrees
		Expected               float64
		Delta                  float64
	}{
		{
			Name:     "identity",
			Lat0:     0, Lon0: 0, Lat1: 0, Lon1: 0,
			Expected: 0, Delta: 1e-12,
		},
		{
			Name:     "identity off origin",
			Lat0:     44.9778, Lon0: -93.2650, Lat1: 44.9778, Lon1: -93.2650,
			Expected: 0, Delta: 1e-9,
		},
		{
			Name:     "equatorial antipodes",
			Lat0:     0, Lon0: 0, Lat1: 0, Lon1: 180,
			Expected: 180, Delta: 1e-9,
		},
		{
			Name:     "pole to pole",
			Lat0:     90, Lon0: 0, Lat1: -90, Lon1: 0,
			Expected: 180, Delta: 1e-9,
		},
		{
			Name:     "quarter of the equator",
			Lat0:     0, Lon0: 0, Lat1: 0, Lon1: 90,
			Expected: 90, Delta: 1e-9,
		},
		{
			Name:     "reference value",
			Lat0:     10, Lon0: -5, Lat1: -87, Lon1: 146,
			Expected: 102.62029119229642, Delta: 1e-6,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			got := geo.Haversine(
				geo.Radians(tc.Lat0), geo.Radians(tc.Lon0),
				geo.Radians(tc.Lat1), geo.Radians(tc.Lon1),
			)
			assert.InDelta(t, tc.Expected, got, tc.Delta)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{10, -5, -87, 146},
		{44.9778, -93.2650, 44.9537, -93.0900},
		{89.9, 179.9, -89.9, -179.9},
		{0.001, 0, -0.001, 0.002},
	}

	for _, p := range pairs {
		forward := geo.Haversine(geo.Radians(p[0]), geo.Radians(p[1]), geo.Radians(p[2]), geo.Radians(p[3]))
		backward := geo.Haversine(geo.Radians(p[2]), geo.Radians(p[3]), geo.Radians(p[0]), geo.Radians(p[1]))
		assert.InDelta(t, forward, backward, 1e-12)
	}
}

func TestHaversineRange(t *testing.T) {
	// Sweep both points over the globe: the result must always be
	// a real number in [0, 180].
	for lat0 := -90.0; lat0 <= 90; lat0 += 30 {
		for lon0 := -180.0; lon0 <= 180; lon0 += 60 {
			for lat1 := -90.0; lat1 <= 90; lat1 += 30 {
				for lon1 := -180.0; lon1 <= 180; lon1 += 60 {
					got := geo.Haversine(
						geo.Radians(lat0), geo.Radians(lon0),
						geo.Radians(lat1), geo.Radians(lon1),
					)
					require.False(t, math.IsNaN(got), "NaN for (%f,%f)-(%f,%f)", lat0, lon0, lat1, lon1)
					require.GreaterOrEqual(t, got, 0.0)
					require.LessOrEqual(t, got, 180.0)
				}
			}
		}
	}
}

func TestHaversineNearAntipodalStaysDefined(t *testing.T) {
	// Exact and near antipodes can push the asin argument past 1
	// through rounding. The result must stay 180, not NaN.
	lat := geo.Radians(33.9425)
	lon := geo.Radians(-118.408)

	got := geo.Haversine(lat, lon, -lat, lon+math.Pi)
	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, 180, got, 1e-6)

	got = geo.Haversine(lat, lon, -lat+1e-14, lon+math.Pi-1e-14)
	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, 180, got, 1e-6)
}

func TestHaversineSlice(t *testing.T) {
	lat0 := geo.Radians(10)
	lon0 := geo.Radians(5)

	lat1 := []float64{geo.Radians(-90), geo.Radians(0), geo.Radians(90)}
	lon1 := []float64{geo.Radians(-180), geo.Radians(0), geo.Radians(180)}

	got, err := geo.HaversineSlice(lat0, lon0, lat1, lon1)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := range lat1 {
		assert.Equal(t, geo.Haversine(lat0, lon0, lat1[i], lon1[i]), got[i])
	}

	// Length mismatch
	_, err = geo.HaversineSlice(lat0, lon0, lat1, lon1[:2])
	assert.Error(t, err)

	// Empty input is fine
	got, err = geo.HaversineSlice(lat0, lon0, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestHaversineGridShapePreserved(t *testing.T) {
	lat0 := geo.Radians(10)
	lon0 := geo.Radians(5)

	lons := geo.Linspace(geo.Radians(-180), geo.Radians(180), 3)
	lats := geo.Linspace(geo.Radians(-90), geo.Radians(90), 3)
	lonGrid, latGrid := geo.Meshgrid(lons, lats)

	got, err := geo.HaversineGrid(lat0, lon0, latGrid, lonGrid)
	require.NoError(t, err)

	// Same shape in, same shape out, each element matching the
	// scalar computation for its coordinates.
	require.Len(t, got, 3)
	for i := range got {
		require.Len(t, got[i], 3)
		for j := range got[i] {
			assert.Equal(t, geo.Haversine(lat0, lon0, latGrid[i][j], lonGrid[i][j]), got[i][j])
		}
	}
}

func TestHaversineGridShapeMismatch(t *testing.T) {
	lats := [][]float64{{0, 0}, {1, 1}}

	_, err := geo.HaversineGrid(0, 0, lats, [][]float64{{0, 0}})
	assert.Error(t, err)

	// Ragged rows
	_, err = geo.HaversineGrid(0, 0, lats, [][]float64{{0, 0}, {1}})
	assert.Error(t, err)
}

func TestLinspace(t *testing.T) {
	got := geo.Linspace(0, 1, 5)
	require.Len(t, got, 5)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[4])
	assert.InDelta(t, 0.25, got[1], 1e-12)

	assert.Equal(t, []float64{7}, geo.Linspace(7, 9, 1))
	assert.Nil(t, geo.Linspace(0, 1, 0))
}

func TestMeshgrid(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{10, 20}

	X, Y := geo.Meshgrid(x, y)
	require.Len(t, X, 2)
	require.Len(t, Y, 2)
	assert.Equal(t, []float64{1, 2, 3}, X[0])
	assert.Equal(t, []float64{1, 2, 3}, X[1])
	assert.Equal(t, []float64{10, 10, 10}, Y[0])
	assert.Equal(t, []float64{20, 20, 20}, Y[1])
}
