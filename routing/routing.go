// Package routing builds, solves and extracts the single-driver ride
// scheduling program: which rides to serve in which order, which empty
// repositioning moves to make between them, and when each ride starts, so
// that net profit over one shift is maximized.
//
// The program is assembled once per run, handed to a MILP solver, and the
// solved assignment is walked deterministically into an itinerary. All data
// structures are read-only after construction.
package routing

import (
	"fmt"

	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// Topology is the spatial model the program is built over. hexgrid.Index
// satisfies it; tests substitute fixed topologies.
type Topology interface {
	Districts() []string
	DistanceKm(origin, destination string) float64
	Cost(origin, destination string) float64
	TravelTime(origin, destination string) float64
	Neighbors(district string) []string
}

// DefaultBigM relaxes time constraints on rides that are not taken. It has
// to exceed any feasible time value; minutes of one operating day stay well
// below it.
const DefaultBigM = 10000

// Config carries the model constants that are configuration, not code.
type Config struct {
	// BigM overrides DefaultBigM when positive.
	BigM float64
}

func (c Config) bigM(rides []schema.Ride, driver schema.Driver) (float64, error) {
	m := c.BigM
	if m == 0 {
		m = DefaultBigM
	}
	if m < 0 {
		return 0, fmt.Errorf("routing: big-M must be positive, got %v", m)
	}
	horizon := driver.EndTime
	for _, r := range rides {
		if r.EndAt > horizon {
			horizon = r.EndAt
		}
	}
	if m <= horizon {
		return 0, fmt.Errorf("routing: big-M %v does not exceed the time horizon %v", m, horizon)
	}
	return m, nil
}
