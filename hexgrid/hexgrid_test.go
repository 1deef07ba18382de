package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func triangleIndex(t *testing.T, opts ...Option) *Index {
	t.Helper()
	districts := []string{"a", "b", "c"}
	matrix := [][]float64{
		{0, 10, 4},
		{10, 0, 6},
		{4, 6, 0},
	}
	opts = append([]Option{Neighbors(map[string][]string{
		"a": {"b", "c"},
		"b": {"a", "c"},
		"c": {"a", "b"},
	})}, opts...)
	x, err := New(districts, matrix, opts...)
	require.NoError(t, err)
	return x
}

func TestCostAndTravelTimeUseRoadFactor(t *testing.T) {
	x := triangleIndex(t)

	require.InDelta(t, 10.0, x.DistanceKm("a", "b"), 1e-9)
	require.InDelta(t, 10.0*1.3*0.7, x.Cost("a", "b"), 1e-9)
	require.InDelta(t, 10.0*1.3, x.TravelTime("a", "b"), 1e-9)
	require.InDelta(t, x.Cost("a", "b"), x.Cost("b", "a"), 1e-9)
	require.Zero(t, x.Cost("b", "b"))
	require.Zero(t, x.TravelTime("b", "b"))
}

func TestFactorOptions(t *testing.T) {
	x := triangleIndex(t, RoadFactor(1.0), CostPerKm(2.0))

	require.InDelta(t, 8.0, x.Cost("a", "c"), 1e-9)
	require.InDelta(t, 4.0, x.TravelTime("a", "c"), 1e-9)

	_, err := New([]string{"a"}, [][]float64{{0}}, RoadFactor(0))
	require.ErrorContains(t, err, "road factor")
	_, err = New([]string{"a"}, [][]float64{{0}}, CostPerKm(-1))
	require.ErrorContains(t, err, "cost per km")
}

func TestUnknownDistrictPanics(t *testing.T) {
	x := triangleIndex(t)

	require.Panics(t, func() { x.DistanceKm("a", "nowhere") })
	require.Panics(t, func() { x.Cost("nowhere", "a") })
	require.Panics(t, func() { x.TravelTime("nowhere", "a") })
	require.Panics(t, func() { x.Neighbors("nowhere") })
	require.False(t, x.Contains("nowhere"))
	require.True(t, x.Contains("a"))
}

func TestNeighborsOptionNormalizes(t *testing.T) {
	districts := []string{"a", "b", "c"}
	matrix := [][]float64{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}

	x, err := New(districts, matrix, Neighbors(map[string][]string{
		"a": {"c", "b", "c"},
	}))
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, x.Neighbors("a"))
	require.Empty(t, x.Neighbors("b"))

	_, err = New(districts, matrix, Neighbors(map[string][]string{"a": {"a"}}))
	require.ErrorContains(t, err, "own neighbor")
	_, err = New(districts, matrix, Neighbors(map[string][]string{"a": {"z"}}))
	require.ErrorContains(t, err, "unknown neighbor")
	_, err = New(districts, matrix, Neighbors(map[string][]string{"z": {"a"}}))
	require.ErrorContains(t, err, "unknown district")
}

func TestNewRejectsMalformedInput(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorContains(t, err, "no districts")

	_, err = New([]string{"a", "b"}, [][]float64{{0, 1}})
	require.ErrorContains(t, err, "rows")

	_, err = New([]string{"a", "b"}, [][]float64{{0, 1}, {1}})
	require.ErrorContains(t, err, "columns")

	_, err = New([]string{"a", "a"}, [][]float64{{0, 0}, {0, 0}})
	require.ErrorContains(t, err, "twice")
}
