// Package hexgrid provides the spatial model the optimizer routes over: a
// fixed set of H3 districts, a symmetric great-circle distance matrix, and
// the disk-2 neighbor sets that bound which empty repositioning moves are
// representable at all.
package hexgrid

import (
	"fmt"
	"strconv"

	"github.com/uber/h3-go/v4"
	"golang.org/x/exp/slices"
)

const (
	// DefaultRoadFactor approximates road distance from air distance.
	DefaultRoadFactor = 1.3
	// DefaultCostPerKm is the currency cost of one road-adjusted kilometer
	// driven without a passenger.
	DefaultCostPerKm = 0.7
	// NeighborRadius is the topological cutoff for neighbor sets. Districts
	// further than this many rings apart cannot be bridged by a single empty
	// move; the cutoff is part of the index contract, not a tuning knob.
	NeighborRadius = 2
)

// Index is the read-only spatial index: district identifiers, pairwise
// distances and derived neighbor sets. It is never mutated after New returns.
// The distance matrix is referenced, not copied.
type Index struct {
	districts  []string
	pos        map[string]int
	matrixKm   [][]float64
	neighbors  map[string][]string
	roadFactor float64
	costPerKm  float64
}

// Option configures an Index during construction.
type Option func(*Index) error

// RoadFactor overrides the air-to-road distance approximation ratio.
func RoadFactor(f float64) Option {
	return func(x *Index) error {
		if f <= 0 {
			return fmt.Errorf("hexgrid: road factor must be positive, got %v", f)
		}
		x.roadFactor = f
		return nil
	}
}

// CostPerKm overrides the per-kilometer cost factor.
func CostPerKm(f float64) Option {
	return func(x *Index) error {
		if f < 0 {
			return fmt.Errorf("hexgrid: cost per km must not be negative, got %v", f)
		}
		x.costPerKm = f
		return nil
	}
}

// Neighbors supplies explicit neighbor sets instead of deriving them from the
// H3 grid. Intended for non-hexagonal topologies and tests; entries must stay
// inside the district set and a district is never its own neighbor.
func Neighbors(sets map[string][]string) Option {
	return func(x *Index) error {
		x.neighbors = make(map[string][]string, len(sets))
		for d, ns := range sets {
			if _, ok := x.pos[d]; !ok {
				return fmt.Errorf("hexgrid: neighbor set for unknown district %q", d)
			}
			copied := append([]string(nil), ns...)
			slices.Sort(copied)
			copied = slices.Compact(copied)
			for _, n := range copied {
				if n == d {
					return fmt.Errorf("hexgrid: district %q listed as its own neighbor", d)
				}
				if _, ok := x.pos[n]; !ok {
					return fmt.Errorf("hexgrid: district %q has unknown neighbor %q", d, n)
				}
			}
			x.neighbors[d] = copied
		}
		for _, d := range x.districts {
			if _, ok := x.neighbors[d]; !ok {
				x.neighbors[d] = nil
			}
		}
		return nil
	}
}

// New builds the index over the given districts and their pairwise kilometer
// distances. Unless the Neighbors option is used, every district must be an
// H3 cell identifier so neighbor sets can be derived from the grid.
func New(districts []string, matrixKm [][]float64, opts ...Option) (*Index, error) {
	if len(districts) == 0 {
		return nil, fmt.Errorf("hexgrid: no districts")
	}
	if len(matrixKm) != len(districts) {
		return nil, fmt.Errorf("hexgrid: distance matrix has %d rows for %d districts", len(matrixKm), len(districts))
	}
	x := &Index{
		districts:  append([]string(nil), districts...),
		pos:        make(map[string]int, len(districts)),
		matrixKm:   matrixKm,
		roadFactor: DefaultRoadFactor,
		costPerKm:  DefaultCostPerKm,
	}
	for i, d := range x.districts {
		if _, dup := x.pos[d]; dup {
			return nil, fmt.Errorf("hexgrid: district %q listed twice", d)
		}
		if len(matrixKm[i]) != len(districts) {
			return nil, fmt.Errorf("hexgrid: distance matrix row %d has %d columns for %d districts", i, len(matrixKm[i]), len(districts))
		}
		x.pos[d] = i
	}
	for _, o := range opts {
		if err := o(x); err != nil {
			return nil, err
		}
	}
	if x.neighbors == nil {
		if err := x.deriveNeighbors(); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// deriveNeighbors walks the H3 grid disk around every district and keeps the
// cells that are part of the index. Cells outside the fixed set are not
// routable and are dropped here, once.
func (x *Index) deriveNeighbors() error {
	x.neighbors = make(map[string][]string, len(x.districts))
	for _, d := range x.districts {
		cell, err := cellFromID(d)
		if err != nil {
			return fmt.Errorf("hexgrid: district %q: %w", d, err)
		}
		disk, err := cell.GridDisk(NeighborRadius)
		if err != nil {
			return fmt.Errorf("hexgrid: district %q: grid disk: %w", d, err)
		}
		var ns []string
		for _, c := range disk {
			id := c.String()
			if id == d {
				continue
			}
			if _, ok := x.pos[id]; ok {
				ns = append(ns, id)
			}
		}
		slices.Sort(ns)
		x.neighbors[d] = ns
	}
	return nil
}

func cellFromID(id string) (h3.Cell, error) {
	v, err := strconv.ParseUint(id, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("not an H3 cell identifier: %w", err)
	}
	cell := h3.Cell(v)
	if !cell.IsValid() {
		return 0, fmt.Errorf("not a valid H3 cell: %q", id)
	}
	return cell, nil
}

// Districts returns the ordered district identifiers defining matrix
// positions.
func (x *Index) Districts() []string {
	return x.districts
}

// Contains reports whether the district is part of the index.
func (x *Index) Contains(district string) bool {
	_, ok := x.pos[district]
	return ok
}

// DistanceKm returns the great-circle distance between two districts.
// Looking up a district outside the fixed set is a programming error and
// panics.
func (x *Index) DistanceKm(origin, destination string) float64 {
	return x.matrixKm[x.position(origin)][x.position(destination)]
}

// Cost returns the currency cost of driving empty from origin to destination.
func (x *Index) Cost(origin, destination string) float64 {
	return x.DistanceKm(origin, destination) * x.roadFactor * x.costPerKm
}

// TravelTime returns the driving time in minutes between two districts. It is
// derived from the same road-adjusted distance as Cost but computed
// independently.
func (x *Index) TravelTime(origin, destination string) float64 {
	return x.DistanceKm(origin, destination) * x.roadFactor
}

// Neighbors returns the districts within NeighborRadius rings of the given
// district, excluding the district itself, sorted. The returned slice must
// not be modified.
func (x *Index) Neighbors(district string) []string {
	x.position(district)
	return x.neighbors[district]
}

func (x *Index) position(district string) int {
	p, ok := x.pos[district]
	if !ok {
		panic(fmt.Sprintf("hexgrid: unknown district %q", district))
	}
	return p
}
