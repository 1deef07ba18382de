package routing

import (
	"errors"
	"fmt"

	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// ErrInvariantViolation marks a solved assignment that does not form a
// single walkable path. It indicates a modeling bug and is never masked by
// truncating the itinerary.
var ErrInvariantViolation = errors.New("assignment does not form a single walkable path")

const (
	// activeThreshold decides whether a binary variable counts as chosen.
	activeThreshold = 0.5
	// timeTolerance absorbs solver rounding when comparing times.
	timeTolerance = 1e-6
)

// Extract walks the assignment from the start anchor into the ordered
// segment sequence: empty moves where the next ride departs elsewhere, waits
// where the scheduled start is later than the arrival, then the ride itself.
// A final empty move is emitted only if it leads to the driver's end
// location. Extraction is read-only and deterministic.
func (mo *Model) Extract(a *Assignment) (schema.Itinerary, error) {
	if a == nil {
		return schema.Itinerary{}, errors.New("routing: no assignment to extract")
	}
	var segments []schema.Segment
	currentID := schema.ReservedStartID
	location := mo.driver.StartLocation
	now := mo.driver.StartTime

	for steps := 0; ; steps++ {
		if steps > len(mo.rides) {
			return schema.Itinerary{}, fmt.Errorf("%w: walk still running after %d rides", ErrInvariantViolation, len(mo.rides))
		}
		next, err := mo.activeSuccessor(a, currentID)
		if err != nil {
			return schema.Itinerary{}, err
		}
		if next == nil {
			break
		}
		r := *next

		if r.Origin != location {
			mv, ok := mo.moveTo[originKey{pred: currentID, origin: r.Origin}]
			if !ok || a.moves[mv.ID()] <= activeThreshold {
				return schema.Itinerary{}, fmt.Errorf(
					"%w: ride %s follows %s but no active move bridges %s to %s",
					ErrInvariantViolation, r.RideID, currentID, location, r.Origin)
			}
			travel := mo.topology.TravelTime(location, r.Origin)
			segments = append(segments, schema.Segment{
				Type:      schema.SegmentEmptyMove,
				From:      location,
				To:        r.Origin,
				StartTime: now,
				EndTime:   now + travel,
				Cost:      mo.topology.Cost(location, r.Origin),
			})
			now += travel
			location = r.Origin
		}

		start := a.starts[r.RideID]
		if start-now > timeTolerance {
			segments = append(segments, schema.Segment{
				Type:      schema.SegmentWait,
				From:      location,
				To:        location,
				StartTime: now,
				EndTime:   start,
			})
			now = start
		} else if now-start > timeTolerance {
			return schema.Itinerary{}, fmt.Errorf(
				"%w: ride %s is scheduled at %v before the driver arrives at %v",
				ErrInvariantViolation, r.RideID, start, now)
		}

		segments = append(segments, schema.Segment{
			Type:      schema.SegmentRide,
			RideID:    r.RideID,
			From:      r.Origin,
			To:        r.Destination,
			StartTime: now,
			EndTime:   now + r.Duration,
			Revenue:   r.Price,
			Cost:      mo.topology.Cost(r.Origin, r.Destination),
		})
		now += r.Duration
		location = r.Destination
		currentID = r.RideID
	}

	final, err := mo.activeFinalMove(a, currentID)
	if err != nil {
		return schema.Itinerary{}, err
	}
	if final != nil && final.to == mo.driver.EndLocation {
		travel := mo.topology.TravelTime(final.from, final.to)
		segments = append(segments, schema.Segment{
			Type:      schema.SegmentEmptyMove,
			From:      final.from,
			To:        final.to,
			StartTime: now,
			EndTime:   now + travel,
			Cost:      mo.topology.Cost(final.from, final.to),
		})
	}

	itinerary := schema.Itinerary{Segments: segments}
	for _, s := range segments {
		itinerary.Revenue += s.Revenue
		itinerary.Cost += s.Cost
	}
	itinerary.Profit = itinerary.Revenue - itinerary.Cost
	return itinerary, nil
}

// activeSuccessor finds the one ride chosen to follow the given
// predecessor. Two active successors mean the assignment branched, which a
// conserved flow can never produce.
func (mo *Model) activeSuccessor(a *Assignment, predID string) (*schema.Ride, error) {
	var found *schema.Ride
	for _, candidate := range mo.arcsOut[predID] {
		if a.arcs[candidate.ID()] <= activeThreshold {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: rides %s and %s both follow %s",
				ErrInvariantViolation, found.RideID, candidate.ride.RideID, predID)
		}
		r := candidate.ride
		found = &r
	}
	return found, nil
}

// activeFinalMove finds the empty move chosen after the last ride, if any.
func (mo *Model) activeFinalMove(a *Assignment, predID string) (*emptyMove, error) {
	var found *emptyMove
	for _, candidate := range mo.movesOut[predID] {
		if a.moves[candidate.ID()] <= activeThreshold {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: moves to %s and %s both follow %s",
				ErrInvariantViolation, found.to, candidate.to, predID)
		}
		mv := candidate
		found = &mv
	}
	return found, nil
}
