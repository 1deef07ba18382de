package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uber/h3-go/v4"
)

// Rome, far from any icosahedron pentagon, so the local grid is a regular
// hexagonal lattice.
var rome = GeoPoint{Lat: 41.9028, Lng: 12.4964}

func TestAroundBuildsUniformDisk(t *testing.T) {
	districts, weights, err := Around(rome, DefaultResolution, 2)
	require.NoError(t, err)
	require.Len(t, districts, 19)
	require.Len(t, weights, 19)
	for _, w := range weights {
		require.Equal(t, 1.0, w)
	}
	for i := 1; i < len(districts); i++ {
		require.Less(t, districts[i-1], districts[i])
	}

	_, _, err = Around(rome, DefaultResolution, -1)
	require.ErrorContains(t, err, "ring count")
}

func TestDerivedNeighborsMatchDiskTopology(t *testing.T) {
	districts, _, err := Around(rome, DefaultResolution, 2)
	require.NoError(t, err)
	matrix, err := DistanceMatrix(districts)
	require.NoError(t, err)
	x, err := New(districts, matrix)
	require.NoError(t, err)

	// In a radius-2 disk the center reaches all 18 other cells, the six
	// corner cells reach exactly 8, and membership is symmetric.
	centers, minCount := 0, len(districts)
	for _, d := range districts {
		ns := x.Neighbors(d)
		require.NotContains(t, ns, d)
		for _, n := range ns {
			require.Contains(t, x.Neighbors(n), d)
		}
		if len(ns) == 18 {
			centers++
		}
		if len(ns) < minCount {
			minCount = len(ns)
		}
	}
	require.Equal(t, 1, centers)
	require.Equal(t, 8, minCount)
}

func TestFromPointsCountsAndPads(t *testing.T) {
	points := []GeoPoint{rome, rome, rome, rome, rome}
	districts, weights, err := FromPoints(points, DefaultResolution)
	require.NoError(t, err)

	// One occupied cell plus its first ring.
	require.Len(t, districts, 7)
	require.Len(t, weights, 7)

	seed, err := h3.LatLngToCell(h3.NewLatLng(rome.Lat, rome.Lng), DefaultResolution)
	require.NoError(t, err)
	total, occupied := 0.0, 0
	for i, d := range districts {
		total += weights[i]
		if weights[i] > 0 {
			occupied++
			require.Equal(t, seed.String(), d)
			require.Equal(t, float64(len(points)), weights[i])
		}
	}
	require.Equal(t, float64(len(points)), total)
	require.Equal(t, 1, occupied)

	_, _, err = FromPoints(nil, DefaultResolution)
	require.ErrorContains(t, err, "no points")
}

func TestDistanceMatrixIsSymmetricWithZeroDiagonal(t *testing.T) {
	districts, _, err := Around(rome, DefaultResolution, 1)
	require.NoError(t, err)
	matrix, err := DistanceMatrix(districts)
	require.NoError(t, err)

	require.Len(t, matrix, len(districts))
	for i := range matrix {
		require.Len(t, matrix[i], len(districts))
		require.Zero(t, matrix[i][i])
		for j := range matrix[i] {
			require.Equal(t, matrix[i][j], matrix[j][i])
			if i != j {
				// Resolution-7 cell centers one ring apart are a couple
				// of kilometers from each other.
				require.Greater(t, matrix[i][j], 1.0)
				require.Less(t, matrix[i][j], 10.0)
			}
		}
	}

	_, err = DistanceMatrix([]string{"not-a-cell"})
	require.ErrorContains(t, err, "not an H3 cell")
}
