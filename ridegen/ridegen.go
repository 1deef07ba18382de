// Package ridegen samples synthetic ride requests over a district set.
// Origins and destinations are drawn proportionally to district demand
// weights, fares follow a distance-based tariff and pickup windows fall
// inside a configurable operating day. A sample is fully determined by its
// seed.
package ridegen

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// Distances yields pairwise district distances in kilometers.
type Distances interface {
	DistanceKm(origin, destination string) float64
}

// Params control the sample. The zero seed is a valid fixed seed, so two
// runs with identical Params produce identical rides.
type Params struct {
	// Count is the number of rides to generate.
	Count int
	// WindowStart and WindowEnd bound the operating day in minutes since
	// midnight. Pickup windows open in [WindowStart, WindowEnd) and close in
	// (open, WindowEnd].
	WindowStart int
	WindowEnd   int
	// InitialFare is the flag-drop component of every price.
	InitialFare float64
	// PricePerKmMin and PricePerKmMax bound the per-kilometer tariff drawn
	// for each ride.
	PricePerKmMin float64
	PricePerKmMax float64
	// SpeedKmhMin and SpeedKmhMax bound the traffic speed drawn for each
	// ride; speed converts road distance into ride duration.
	SpeedKmhMin float64
	SpeedKmhMax float64
	// RoadFactor converts air distance into road distance for durations.
	RoadFactor float64
	Seed       int64
}

// DefaultParams returns the parameters of the standard scenario: a full
// operating day from 08:00 to 23:00 with an urban tariff.
func DefaultParams() Params {
	return Params{
		Count:         1500,
		WindowStart:   480,
		WindowEnd:     1380,
		InitialFare:   3.0,
		PricePerKmMin: 1.1,
		PricePerKmMax: 1.6,
		SpeedKmhMin:   15,
		SpeedKmhMax:   25,
		RoadFactor:    1.3,
	}
}

func (p Params) validate() error {
	if p.Count < 0 {
		return fmt.Errorf("ridegen: ride count must not be negative, got %d", p.Count)
	}
	if p.WindowEnd <= p.WindowStart {
		return fmt.Errorf("ridegen: operating day [%d, %d] is empty", p.WindowStart, p.WindowEnd)
	}
	if p.InitialFare < 0 {
		return fmt.Errorf("ridegen: initial fare must not be negative, got %v", p.InitialFare)
	}
	if p.PricePerKmMin < 0 || p.PricePerKmMax < p.PricePerKmMin {
		return fmt.Errorf("ridegen: price per km range [%v, %v] is invalid", p.PricePerKmMin, p.PricePerKmMax)
	}
	if p.SpeedKmhMin <= 0 || p.SpeedKmhMax < p.SpeedKmhMin {
		return fmt.Errorf("ridegen: speed range [%v, %v] is invalid", p.SpeedKmhMin, p.SpeedKmhMax)
	}
	if p.RoadFactor <= 0 {
		return fmt.Errorf("ridegen: road factor must be positive, got %v", p.RoadFactor)
	}
	return nil
}

// Generate samples p.Count rides over the given districts. Weights must
// align with districts; at least two districts need positive weight so a
// ride can connect distinct ones.
func Generate(p Params, districts []string, weights []float64, distances Distances) ([]schema.Ride, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(weights) != len(districts) {
		return nil, fmt.Errorf("ridegen: %d weights for %d districts", len(weights), len(districts))
	}
	cumulative := make([]float64, len(weights))
	total, positive := 0.0, 0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("ridegen: negative weight %v for district %q", w, districts[i])
		}
		if w > 0 {
			positive++
		}
		total += w
		cumulative[i] = total
	}
	if positive < 2 {
		return nil, fmt.Errorf("ridegen: need at least two districts with positive weight, got %d", positive)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	pick := func() string {
		i := sort.SearchFloat64s(cumulative, rng.Float64()*total)
		// A zero draw lands on leading zero-weight districts; skip them.
		for cumulative[i] == 0 {
			i++
		}
		return districts[i]
	}

	rides := make([]schema.Ride, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		origin := pick()
		destination := pick()
		for destination == origin {
			destination = pick()
		}
		km := distances.DistanceKm(origin, destination)
		if km <= 0 {
			return nil, fmt.Errorf("ridegen: no distance between districts %q and %q", origin, destination)
		}
		available := float64(p.WindowStart + rng.Intn(p.WindowEnd-p.WindowStart))
		end := available + 1 + float64(rng.Intn(p.WindowEnd-int(available)))
		perKm := p.PricePerKmMin + rng.Float64()*(p.PricePerKmMax-p.PricePerKmMin)
		speed := p.SpeedKmhMin + rng.Float64()*(p.SpeedKmhMax-p.SpeedKmhMin)
		rides = append(rides, schema.Ride{
			RideID:      fmt.Sprintf("r%04d", i+1),
			Origin:      origin,
			Destination: destination,
			AvailableAt: available,
			EndAt:       end,
			Price:       p.InitialFare + km*perKm,
			Duration:    km * p.RoadFactor / speed * 60,
		})
	}
	return rides, nil
}
