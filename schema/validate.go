package schema

import (
	"fmt"
	"math"
)

// ReservedStartID is the predecessor name used for the virtual "before any
// ride" node in the optimization model. No ride may claim it.
const ReservedStartID = "start"

const symmetryTolerance = 1e-6

// Validate checks the input document for the inconsistencies that would
// otherwise surface as lookup failures deep inside the model: unknown
// districts, malformed distance matrix, inverted time windows. Any error
// returned here is a data problem the caller cannot recover from within the
// run.
func (in Input) Validate() error {
	if len(in.Districts) == 0 {
		return fmt.Errorf("input has no districts")
	}
	seen := make(map[string]bool, len(in.Districts))
	for i, d := range in.Districts {
		if d == "" {
			return fmt.Errorf("district %d: empty identifier", i)
		}
		if seen[d] {
			return fmt.Errorf("district %q listed twice", d)
		}
		seen[d] = true
	}

	if len(in.Weights) != 0 && len(in.Weights) != len(in.Districts) {
		return fmt.Errorf("weights: got %d values for %d districts", len(in.Weights), len(in.Districts))
	}
	for i, w := range in.Weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weights[%d]: invalid weight %v", i, w)
		}
	}

	if err := validateMatrix(in.DistanceMatrixKm, len(in.Districts)); err != nil {
		return err
	}

	ids := make(map[string]bool, len(in.Rides))
	for i, r := range in.Rides {
		if r.RideID == "" {
			return fmt.Errorf("ride %d: missing id", i)
		}
		if r.RideID == ReservedStartID {
			return fmt.Errorf("ride %d: id %q is reserved", i, ReservedStartID)
		}
		if ids[r.RideID] {
			return fmt.Errorf("ride id %q listed twice", r.RideID)
		}
		ids[r.RideID] = true
		if !seen[r.Origin] {
			return fmt.Errorf("ride %s: origin %q is not a known district", r.RideID, r.Origin)
		}
		if !seen[r.Destination] {
			return fmt.Errorf("ride %s: destination %q is not a known district", r.RideID, r.Destination)
		}
		if r.EndAt <= r.AvailableAt {
			return fmt.Errorf("ride %s: window [%v, %v] is empty", r.RideID, r.AvailableAt, r.EndAt)
		}
		if r.Price < 0 {
			return fmt.Errorf("ride %s: negative price %v", r.RideID, r.Price)
		}
		if r.Duration <= 0 {
			return fmt.Errorf("ride %s: duration must be positive, got %v", r.RideID, r.Duration)
		}
	}

	d := in.Driver
	if d.EndTime <= d.StartTime {
		return fmt.Errorf("driver: shift [%v, %v] is empty", d.StartTime, d.EndTime)
	}
	if !seen[d.StartLocation] {
		return fmt.Errorf("driver: start location %q is not a known district", d.StartLocation)
	}
	if !seen[d.EndLocation] {
		return fmt.Errorf("driver: end location %q is not a known district", d.EndLocation)
	}
	return nil
}

func validateMatrix(m [][]float64, n int) error {
	if len(m) != n {
		return fmt.Errorf("distance matrix: got %d rows for %d districts", len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("distance matrix: row %d has %d columns, want %d", i, len(row), n)
		}
	}
	for i, row := range m {
		if row[i] != 0 {
			return fmt.Errorf("distance matrix: diagonal [%d][%d] = %v, want 0", i, i, row[i])
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("distance matrix: invalid distance %v at [%d][%d]", v, i, j)
			}
			if math.Abs(v-m[j][i]) > symmetryTolerance {
				return fmt.Errorf("distance matrix: asymmetric at [%d][%d]: %v vs %v", i, j, v, m[j][i])
			}
		}
	}
	return nil
}
