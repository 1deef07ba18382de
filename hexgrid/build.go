package hexgrid

import (
	"fmt"
	"runtime"

	"github.com/nextmv-io/sdk/measure"
	"github.com/uber/h3-go/v4"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// DefaultResolution is the H3 resolution used for districts. Resolution 7
// cells are roughly 5 km², small enough that a district reads as one pickup
// zone and large enough that demand counts per cell are meaningful.
const DefaultResolution = 7

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// FromPoints maps observed demand points onto H3 cells at the given
// resolution and pads the result with the first ring around every occupied
// cell, so a driver can reposition out of a cell that only ever appears as a
// destination. District weights count the points that fell into each cell;
// padding cells carry weight zero. Districts are returned sorted.
func FromPoints(points []GeoPoint, resolution int) ([]string, []float64, error) {
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("hexgrid: no points to build districts from")
	}
	counts := make(map[h3.Cell]int)
	for i, p := range points {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
		if err != nil {
			return nil, nil, fmt.Errorf("hexgrid: point %d (%v, %v): %w", i, p.Lat, p.Lng, err)
		}
		counts[cell]++
	}
	cells := make(map[h3.Cell]int, len(counts))
	for seed, n := range counts {
		cells[seed] = n
	}
	for seed := range counts {
		ring, err := seed.GridDisk(1)
		if err != nil {
			return nil, nil, fmt.Errorf("hexgrid: expanding cell %s: %w", seed, err)
		}
		for _, c := range ring {
			if _, ok := cells[c]; !ok {
				cells[c] = 0
			}
		}
	}
	districts := make([]string, 0, len(cells))
	byID := make(map[string]int, len(cells))
	for c, n := range cells {
		id := c.String()
		districts = append(districts, id)
		byID[id] = n
	}
	slices.Sort(districts)
	weights := make([]float64, len(districts))
	for i, d := range districts {
		weights[i] = float64(byID[d])
	}
	return districts, weights, nil
}

// Around builds a synthetic district set: the H3 grid disk of the given ring
// count around a center coordinate, every district weighted equally. Useful
// for scenarios without an observed demand data set.
func Around(center GeoPoint, resolution, rings int) ([]string, []float64, error) {
	if rings < 0 {
		return nil, nil, fmt.Errorf("hexgrid: ring count must not be negative, got %d", rings)
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lng), resolution)
	if err != nil {
		return nil, nil, fmt.Errorf("hexgrid: center (%v, %v): %w", center.Lat, center.Lng, err)
	}
	disk, err := cell.GridDisk(rings)
	if err != nil {
		return nil, nil, fmt.Errorf("hexgrid: grid disk around %s: %w", cell, err)
	}
	districts := make([]string, len(disk))
	for i, c := range disk {
		districts[i] = c.String()
	}
	slices.Sort(districts)
	weights := make([]float64, len(districts))
	for i := range weights {
		weights[i] = 1
	}
	return districts, weights, nil
}

// DistanceMatrix computes the symmetric great-circle distance matrix in
// kilometers between the centers of the given H3 districts. Rows are filled
// concurrently; the result is deterministic regardless.
func DistanceMatrix(districts []string) ([][]float64, error) {
	points := make([]measure.Point, len(districts))
	for i, d := range districts {
		cell, err := cellFromID(d)
		if err != nil {
			return nil, fmt.Errorf("hexgrid: district %q: %w", d, err)
		}
		ll, err := cell.LatLng()
		if err != nil {
			return nil, fmt.Errorf("hexgrid: center of district %q: %w", d, err)
		}
		points[i] = measure.Point{ll.Lng, ll.Lat}
	}
	haversine := measure.HaversineByPoint()
	matrix := make([][]float64, len(districts))
	for i := range matrix {
		matrix[i] = make([]float64, len(districts))
	}
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for i := range districts {
		i := i
		group.Go(func() error {
			for j := i + 1; j < len(districts); j++ {
				matrix[i][j] = haversine.Cost(points[i], points[j]) / 1000.0
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for i := range matrix {
		for j := 0; j < i; j++ {
			matrix[i][j] = matrix[j][i]
		}
	}
	return matrix, nil
}
