// Package schema holds the json documents exchanged by the ride-hailing
// optimization apps: the input produced by cmd/generate and consumed by
// cmd/solve, and the output emitted after a solve run.
package schema

// Input is the expected json input for the solver app. Districts are H3 cell
// identifiers; the distance matrix is indexed by district position and holds
// great-circle kilometers. Everything in here is read-only once loaded.
type Input struct {
	Districts        []string    `json:"districts"`
	Weights          []float64   `json:"weights,omitempty"`
	DistanceMatrixKm [][]float64 `json:"distance_matrix_km"`
	Rides            []Ride      `json:"rides"`
	Driver           Driver      `json:"driver"`
}

// Ride is a priced, time-windowed transportation request between two
// districts. Times are minutes from midnight, duration is minutes.
type Ride struct {
	RideID      string  `json:"id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	AvailableAt float64 `json:"available_at"`
	EndAt       float64 `json:"end_at"`
	Price       float64 `json:"price"`
	Duration    float64 `json:"duration"`
}

// ID is implemented to fulfill the model.Identifier interface.
func (r Ride) ID() string {
	return r.RideID
}

// Driver is the single agent's operating window and start/end location.
type Driver struct {
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
}

// Segment types making up an itinerary.
const (
	SegmentRide      = "ride"
	SegmentEmptyMove = "empty_move"
	SegmentWait      = "wait"
)

// Segment is one leg of the realized itinerary: a revenue ride, an empty
// repositioning move, or a wait at the current location.
type Segment struct {
	Type      string  `json:"type"`
	RideID    string  `json:"ride_id,omitempty"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
}

// Itinerary is the ordered, time-consistent sequence of segments realized by
// one driver in one shift, with its aggregate accounting. Profit is always
// Revenue - Cost over the segments listed.
type Itinerary struct {
	Segments []Segment `json:"segments"`
	Revenue  float64   `json:"revenue"`
	Cost     float64   `json:"cost"`
	Profit   float64   `json:"profit"`
}

// Output is the output of the solver app. Value carries the solver's
// objective for the incumbent; Itinerary and Greedy are absent when the model
// had no usable solution.
type Output struct {
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`
	Runtime     string     `json:"runtime,omitempty"`
	Value       float64    `json:"value,omitempty"`
	Variables   int        `json:"variables,omitempty"`
	Constraints int        `json:"constraints,omitempty"`
	Itinerary   *Itinerary `json:"itinerary,omitempty"`
	Greedy      *Itinerary `json:"greedy,omitempty"`
}
