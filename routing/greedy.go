package routing

import (
	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// Greedy is the profit lower bound the optimizer is compared against: from
// the driver's position, repeatedly take the highest-priced ride that
// departs the current district, has a positive price and whose window
// contains the current time; when none qualifies, let one time unit pass.
// Idle stretches before a pickup appear as wait segments. It never
// repositions empty and shares no state with the solver path. Ties on price
// keep catalog order.
func Greedy(topology Topology, rides []schema.Ride, driver schema.Driver) schema.Itinerary {
	taken := make([]bool, len(rides))
	location := driver.StartLocation
	now := driver.StartTime
	idleSince := now
	var segments []schema.Segment

	for now <= driver.EndTime {
		best := -1
		for i, r := range rides {
			if taken[i] || r.Origin != location || r.Price <= 0 {
				continue
			}
			if now < r.AvailableAt || now > r.EndAt {
				continue
			}
			if best < 0 || r.Price > rides[best].Price {
				best = i
			}
		}
		if best < 0 {
			now++
			continue
		}
		r := rides[best]
		taken[best] = true
		if now > idleSince {
			segments = append(segments, schema.Segment{
				Type:      schema.SegmentWait,
				From:      location,
				To:        location,
				StartTime: idleSince,
				EndTime:   now,
			})
		}
		segments = append(segments, schema.Segment{
			Type:      schema.SegmentRide,
			RideID:    r.RideID,
			From:      r.Origin,
			To:        r.Destination,
			StartTime: now,
			EndTime:   now + r.Duration,
			Revenue:   r.Price,
			Cost:      topology.Cost(r.Origin, r.Destination),
		})
		now += r.Duration
		idleSince = now
		location = r.Destination
	}

	itinerary := schema.Itinerary{Segments: segments}
	for _, s := range segments {
		itinerary.Revenue += s.Revenue
		itinerary.Cost += s.Cost
	}
	itinerary.Profit = itinerary.Revenue - itinerary.Cost
	return itinerary
}
