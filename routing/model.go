package routing

import (
	"fmt"
	"io"

	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// predecessor is what a ride can directly follow: another ride, or the
// start anchor. location is where the driver stands once the predecessor is
// done.
type predecessor struct {
	id       string
	location string
	ride     schema.Ride
	start    bool
}

// ID is implemented to fulfill the model.Identifier interface.
func (p predecessor) ID() string {
	return p.id
}

// arc is the decision "serve this ride immediately after this predecessor".
type arc struct {
	pred predecessor
	ride schema.Ride
}

func (a arc) ID() string {
	return a.pred.id + ">" + a.ride.RideID
}

func (a arc) varName() string {
	return fmt.Sprintf("ride_sequence[%s,%s]", a.pred.id, a.ride.RideID)
}

// emptyMove is the decision "after this predecessor, reposition empty from
// its location to a neighboring district".
type emptyMove struct {
	pred predecessor
	from string
	to   string
}

func (m emptyMove) ID() string {
	return m.pred.id + ">" + m.from + ">" + m.to
}

func (m emptyMove) varName() string {
	return fmt.Sprintf("move_without_ride[%s,%s,%s]", m.pred.id, m.from, m.to)
}

func startTimeVarName(rideID string) string {
	return fmt.Sprintf("ride_start_time[%s]", rideID)
}

type originKey struct {
	pred   string
	origin string
}

// Model is the assembled program plus the lookup structures needed to walk
// a solved assignment back into an itinerary.
type Model struct {
	topology Topology
	rides    []schema.Ride
	driver   schema.Driver
	bigM     float64

	program      mip.Model
	rideSequence model.MultiMap[mip.Bool, arc]
	emptyMoves   model.MultiMap[mip.Bool, emptyMove]
	rideStart    model.MultiMap[mip.Float, schema.Ride]

	preds []predecessor
	arcs  []arc
	moves []emptyMove

	arcsIn       map[string][]arc
	arcsOut      map[string][]arc
	arcsByOrigin map[originKey][]arc
	movesOut     map[string][]emptyMove
	moveTo       map[originKey]emptyMove

	journal *journal
}

// NewModel enumerates variables and constraints for the given catalog and
// driver over the topology. Districts referenced by rides or the driver must
// be part of the topology; a violation is reported as an error before any
// spatial lookup can panic.
func NewModel(topology Topology, rides []schema.Ride, driver schema.Driver, cfg Config) (*Model, error) {
	bigM, err := cfg.bigM(rides, driver)
	if err != nil {
		return nil, err
	}
	districts := topology.Districts()
	known := make(map[string]bool, len(districts))
	for _, d := range districts {
		known[d] = true
	}
	if !known[driver.StartLocation] || !known[driver.EndLocation] {
		return nil, fmt.Errorf("routing: driver references unknown district %q or %q", driver.StartLocation, driver.EndLocation)
	}
	for _, r := range rides {
		if !known[r.Origin] || !known[r.Destination] {
			return nil, fmt.Errorf("routing: ride %q references unknown district %q or %q", r.RideID, r.Origin, r.Destination)
		}
		if r.RideID == schema.ReservedStartID {
			return nil, fmt.Errorf("routing: ride id %q is reserved for the start anchor", r.RideID)
		}
	}

	mo := &Model{
		topology: topology,
		rides:    rides,
		driver:   driver,
		bigM:     bigM,
		journal:  &journal{maximize: true},
	}
	mo.enumerate()
	mo.build()
	return mo, nil
}

// enumerate lays out predecessors, arcs and empty moves in a fixed order, so
// variable creation, the serialized program and extraction are all
// deterministic for a given input.
func (mo *Model) enumerate() {
	mo.preds = make([]predecessor, 0, len(mo.rides)+1)
	mo.preds = append(mo.preds, predecessor{
		id:       schema.ReservedStartID,
		location: mo.driver.StartLocation,
		start:    true,
	})
	for _, r := range mo.rides {
		mo.preds = append(mo.preds, predecessor{id: r.RideID, location: r.Destination, ride: r})
	}

	mo.arcsIn = make(map[string][]arc, len(mo.rides))
	mo.arcsOut = make(map[string][]arc, len(mo.preds))
	mo.arcsByOrigin = make(map[originKey][]arc)
	mo.movesOut = make(map[string][]emptyMove, len(mo.preds))
	mo.moveTo = make(map[originKey]emptyMove)

	for _, p := range mo.preds {
		for _, r := range mo.rides {
			if r.RideID == p.id {
				continue
			}
			a := arc{pred: p, ride: r}
			mo.arcs = append(mo.arcs, a)
			mo.arcsIn[r.RideID] = append(mo.arcsIn[r.RideID], a)
			mo.arcsOut[p.id] = append(mo.arcsOut[p.id], a)
			key := originKey{pred: p.id, origin: r.Origin}
			mo.arcsByOrigin[key] = append(mo.arcsByOrigin[key], a)
		}
		for _, j := range mo.topology.Neighbors(p.location) {
			m := emptyMove{pred: p, from: p.location, to: j}
			mo.moves = append(mo.moves, m)
			mo.movesOut[p.id] = append(mo.movesOut[p.id], m)
			mo.moveTo[originKey{pred: p.id, origin: j}] = m
		}
	}
}

// build declares the variables, the nine constraint families and the
// objective on the underlying solver model, mirroring each into the journal.
func (mo *Model) build() {
	m := mip.NewModel()
	mo.program = m

	mo.rideSequence = model.NewMultiMap(
		func(...arc) mip.Bool {
			return m.NewBool()
		}, mo.arcs)
	mo.emptyMoves = model.NewMultiMap(
		func(...emptyMove) mip.Bool {
			return m.NewBool()
		}, mo.moves)
	mo.rideStart = model.NewMultiMap(
		func(...schema.Ride) mip.Float {
			return m.NewFloat(0, mo.driver.EndTime)
		}, mo.rides)

	for _, a := range mo.arcs {
		mo.rideSequence.Get(a)
		mo.journal.addBinary(a.varName())
	}
	for _, mv := range mo.moves {
		mo.emptyMoves.Get(mv)
		mo.journal.addBinary(mv.varName())
	}
	for _, r := range mo.rides {
		mo.rideStart.Get(r)
		mo.journal.addContinuous(startTimeVarName(r.RideID), 0, mo.driver.EndTime)
	}

	m.Objective().SetMaximize()
	for _, a := range mo.arcs {
		net := a.ride.Price - mo.topology.Cost(a.ride.Origin, a.ride.Destination)
		m.Objective().NewTerm(net, mo.rideSequence.Get(a))
		mo.journal.addObjectiveTerm(net, a.varName())
	}
	for _, mv := range mo.moves {
		cost := mo.topology.Cost(mv.from, mv.to)
		m.Objective().NewTerm(-cost, mo.emptyMoves.Get(mv))
		mo.journal.addObjectiveTerm(-cost, mv.varName())
	}

	mo.addTakenAtMostOnce()
	mo.addFlowConservation()
	mo.addStartAnchor()
	mo.addReachability()
	mo.addMoveExclusivity()
	mo.addTimeWindows()
	mo.addTimeContinuity()
	mo.addFirstRideStart()
	mo.addShiftEnd()
}

// Every ride has at most one predecessor.
func (mo *Model) addTakenAtMostOnce() {
	for _, r := range mo.rides {
		c := mo.lessOrEqual(fmt.Sprintf("at_most_once[%s]", r.RideID), 1)
		for _, a := range mo.arcsIn[r.RideID] {
			c.boolTerm(1, mo.rideSequence.Get(a), a.varName())
		}
	}
}

// A taken ride is followed by exactly one departure from its destination: a
// ride starting there, or one empty move. Arcs to rides starting elsewhere
// do not count as departures; their empty move does, and reachability ties
// the two together.
func (mo *Model) addFlowConservation() {
	for _, s := range mo.rides {
		c := mo.equal(fmt.Sprintf("flow_conservation[%s]", s.RideID), 0)
		for _, a := range mo.arcsByOrigin[originKey{pred: s.RideID, origin: s.Destination}] {
			c.boolTerm(1, mo.rideSequence.Get(a), a.varName())
		}
		for _, mv := range mo.movesOut[s.RideID] {
			c.boolTerm(1, mo.emptyMoves.Get(mv), mv.varName())
		}
		for _, a := range mo.arcsIn[s.RideID] {
			c.boolTerm(-1, mo.rideSequence.Get(a), a.varName())
		}
	}
}

// The driver does exactly one first thing: a ride departing the start
// location, or one empty move away from it. An empty catalog has no first
// ride to anchor, so the constraint is dropped there.
func (mo *Model) addStartAnchor() {
	if len(mo.rides) == 0 {
		return
	}
	c := mo.equal("start_anchor", 1)
	start := originKey{pred: schema.ReservedStartID, origin: mo.driver.StartLocation}
	for _, a := range mo.arcsByOrigin[start] {
		c.boolTerm(1, mo.rideSequence.Get(a), a.varName())
	}
	for _, mv := range mo.movesOut[schema.ReservedStartID] {
		c.boolTerm(1, mo.emptyMoves.Get(mv), mv.varName())
	}
}

// Rides departing district j can follow predecessor p only if the driver
// actually gets to j: either p already ends there, or the empty move
// p.location -> j is active. Where no such move exists the arcs are pinned
// to zero; a hop past the neighbor cutoff is structurally infeasible, not
// discouraged.
func (mo *Model) addReachability() {
	origins := mo.rideOrigins()
	for _, p := range mo.preds {
		for _, origin := range origins {
			if origin == p.location {
				continue
			}
			arcs := mo.arcsByOrigin[originKey{pred: p.id, origin: origin}]
			if len(arcs) == 0 {
				continue
			}
			c := mo.lessOrEqual(fmt.Sprintf("reach[%s,%s]", p.id, origin), 0)
			for _, a := range arcs {
				c.boolTerm(1, mo.rideSequence.Get(a), a.varName())
			}
			if mv, ok := mo.moveTo[originKey{pred: p.id, origin: origin}]; ok {
				c.boolTerm(-1, mo.emptyMoves.Get(mv), mv.varName())
			}
		}
	}
}

// An empty move after ride p requires p to be taken. Moves after the start
// anchor are bounded by the anchor equality instead.
func (mo *Model) addMoveExclusivity() {
	for _, mv := range mo.moves {
		if mv.pred.start {
			continue
		}
		c := mo.lessOrEqual(fmt.Sprintf("move_excl[%s,%s,%s]", mv.pred.id, mv.from, mv.to), 0)
		c.boolTerm(1, mo.emptyMoves.Get(mv), mv.varName())
		for _, a := range mo.arcsIn[mv.pred.id] {
			c.boolTerm(-1, mo.rideSequence.Get(a), a.varName())
		}
	}
}

// A taken ride starts inside its pickup window; big-M frees the start time
// of rides that are not taken.
func (mo *Model) addTimeWindows() {
	for _, r := range mo.rides {
		lo := mo.greaterOrEqual(fmt.Sprintf("window_lo[%s]", r.RideID), r.AvailableAt-mo.bigM)
		lo.floatTerm(1, mo.rideStart.Get(r), startTimeVarName(r.RideID))
		for _, a := range mo.arcsIn[r.RideID] {
			lo.boolTerm(-mo.bigM, mo.rideSequence.Get(a), a.varName())
		}

		hi := mo.lessOrEqual(fmt.Sprintf("window_hi[%s]", r.RideID), r.EndAt+mo.bigM)
		hi.floatTerm(1, mo.rideStart.Get(r), startTimeVarName(r.RideID))
		for _, a := range mo.arcsIn[r.RideID] {
			hi.boolTerm(mo.bigM, mo.rideSequence.Get(a), a.varName())
		}
	}
}

// If ride r directly follows ride s, r cannot start before s completes and
// the driver covers the distance between them.
func (mo *Model) addTimeContinuity() {
	for _, a := range mo.arcs {
		if a.pred.start {
			continue
		}
		s := a.pred.ride
		r := a.ride
		gap := s.Duration + mo.topology.TravelTime(s.Destination, r.Origin)
		c := mo.greaterOrEqual(fmt.Sprintf("continuity[%s,%s]", s.RideID, r.RideID), gap-mo.bigM)
		c.floatTerm(1, mo.rideStart.Get(r), startTimeVarName(r.RideID))
		c.floatTerm(-1, mo.rideStart.Get(s), startTimeVarName(s.RideID))
		c.boolTerm(-mo.bigM, mo.rideSequence.Get(a), a.varName())
	}
}

// The first ride cannot start before the driver's shift opens plus the time
// to reach its origin.
func (mo *Model) addFirstRideStart() {
	for _, a := range mo.arcsOut[schema.ReservedStartID] {
		r := a.ride
		earliest := mo.driver.StartTime + mo.topology.TravelTime(mo.driver.StartLocation, r.Origin)
		c := mo.greaterOrEqual(fmt.Sprintf("first_start[%s]", r.RideID), earliest-mo.bigM)
		c.floatTerm(1, mo.rideStart.Get(r), startTimeVarName(r.RideID))
		c.boolTerm(-mo.bigM, mo.rideSequence.Get(a), a.varName())
	}
}

// Every taken ride leaves enough time to finish and return to the driver's
// end location before the shift closes.
func (mo *Model) addShiftEnd() {
	for _, r := range mo.rides {
		latest := mo.driver.EndTime - r.Duration - mo.topology.TravelTime(r.Destination, mo.driver.EndLocation)
		c := mo.lessOrEqual(fmt.Sprintf("shift_end[%s]", r.RideID), latest+mo.bigM)
		c.floatTerm(1, mo.rideStart.Get(r), startTimeVarName(r.RideID))
		for _, a := range mo.arcsIn[r.RideID] {
			c.boolTerm(mo.bigM, mo.rideSequence.Get(a), a.varName())
		}
	}
}

// rideOrigins returns the districts at least one ride departs from, in
// topology order.
func (mo *Model) rideOrigins() []string {
	hasRide := make(map[string]bool, len(mo.rides))
	for _, r := range mo.rides {
		hasRide[r.Origin] = true
	}
	var origins []string
	for _, d := range mo.topology.Districts() {
		if hasRide[d] {
			origins = append(origins, d)
		}
	}
	return origins
}

// recordedConstraint couples a solver constraint with its journal mirror so
// every term lands in both.
type recordedConstraint struct {
	c   mip.Constraint
	rec *journalConstraint
}

func (mo *Model) lessOrEqual(name string, rhs float64) recordedConstraint {
	return recordedConstraint{
		c:   mo.program.NewConstraint(mip.LessThanOrEqual, rhs),
		rec: mo.journal.addConstraint(name, "<=", rhs),
	}
}

func (mo *Model) equal(name string, rhs float64) recordedConstraint {
	return recordedConstraint{
		c:   mo.program.NewConstraint(mip.Equal, rhs),
		rec: mo.journal.addConstraint(name, "=", rhs),
	}
}

func (mo *Model) greaterOrEqual(name string, rhs float64) recordedConstraint {
	return recordedConstraint{
		c:   mo.program.NewConstraint(mip.GreaterThanOrEqual, rhs),
		rec: mo.journal.addConstraint(name, ">=", rhs),
	}
}

func (rc recordedConstraint) boolTerm(coef float64, v mip.Bool, name string) {
	rc.c.NewTerm(coef, v)
	rc.rec.addTerm(coef, name)
}

func (rc recordedConstraint) floatTerm(coef float64, v mip.Float, name string) {
	rc.c.NewTerm(coef, v)
	rc.rec.addTerm(coef, name)
}

// Variables reports how many decision variables the program declares.
func (mo *Model) Variables() int {
	return len(mo.journal.vars)
}

// Constraints reports how many constraints the program declares.
func (mo *Model) Constraints() int {
	return len(mo.journal.constraints)
}

// BigM reports the big-M constant in effect.
func (mo *Model) BigM() float64 {
	return mo.bigM
}

// WriteLP serializes the assembled program in LP format for audit.
func (mo *Model) WriteLP(w io.Writer) error {
	return mo.journal.writeLP(w)
}
