package routing

import (
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/mip"
)

// Solver outcome labels. A run that stops at its time limit with an
// incumbent is usable but explicitly suboptimal; one that stops with
// nothing proven is unknown rather than infeasible.
const (
	StatusOptimal    = "optimal"
	StatusSuboptimal = "suboptimal"
	StatusInfeasible = "infeasible"
	StatusUnknown    = "unknown"
)

// Solve defaults.
const (
	DefaultSolveDuration = 10 * time.Second
	DefaultGapRelative   = 0.01
)

// SolveOptions are the documented solver knobs.
type SolveOptions struct {
	// Duration caps wall-clock solve time. Non-positive means
	// DefaultSolveDuration.
	Duration time.Duration
	// GapRelative is the relative optimality gap the solver may stop at.
	GapRelative float64
	// Verbose turns on solver engine logging.
	Verbose bool
}

// Result is the solver outcome. Assignment is nil unless the solver
// produced a usable incumbent.
type Result struct {
	Status     string
	Runtime    time.Duration
	Objective  float64
	Assignment *Assignment
}

// Assignment is a snapshot of all solved variable values, detached from the
// solver's lifetime. Extraction reads only this, so walking the same
// assignment twice yields identical output.
type Assignment struct {
	arcs   map[string]float64
	moves  map[string]float64
	starts map[string]float64
}

// Solve hands the program to the HiGHS engine and maps its outcome. An
// empty catalog never reaches the engine: with no rides the program is
// trivially optimal at zero.
func (mo *Model) Solve(opts SolveOptions) (Result, error) {
	if opts.Duration <= 0 {
		opts.Duration = DefaultSolveDuration
	}
	if opts.GapRelative < 0 {
		return Result{}, fmt.Errorf("routing: relative gap must not be negative, got %v", opts.GapRelative)
	}
	if len(mo.rides) == 0 {
		return Result{
			Status: StatusOptimal,
			Assignment: &Assignment{
				arcs:   map[string]float64{},
				moves:  map[string]float64{},
				starts: map[string]float64{},
			},
		}, nil
	}

	solver, err := mip.NewSolver("highs", mo.program)
	if err != nil {
		return Result{}, fmt.Errorf("routing: create solver: %w", err)
	}
	solveOptions := mip.NewSolveOptions()
	if err := solveOptions.SetMaximumDuration(opts.Duration); err != nil {
		return Result{}, fmt.Errorf("routing: set duration: %w", err)
	}
	if err := solveOptions.SetMIPGapRelative(opts.GapRelative); err != nil {
		return Result{}, fmt.Errorf("routing: set relative gap: %w", err)
	}
	if opts.Verbose {
		solveOptions.SetVerbosity(mip.Medium)
	} else {
		solveOptions.SetVerbosity(mip.Off)
	}

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return Result{}, fmt.Errorf("routing: solve: %w", err)
	}

	result := Result{Status: StatusInfeasible}
	if solution == nil {
		return result, nil
	}
	result.Runtime = solution.RunTime()
	if !solution.HasValues() {
		// Nothing usable. If the clock ran out the model is unproven
		// rather than infeasible.
		if result.Runtime >= opts.Duration {
			result.Status = StatusUnknown
		}
		return result, nil
	}
	if solution.IsOptimal() {
		result.Status = StatusOptimal
	} else {
		result.Status = StatusSuboptimal
	}
	result.Objective = solution.ObjectiveValue()
	result.Assignment = mo.snapshot(solution)
	return result, nil
}

func (mo *Model) snapshot(solution mip.Solution) *Assignment {
	a := &Assignment{
		arcs:   make(map[string]float64, len(mo.arcs)),
		moves:  make(map[string]float64, len(mo.moves)),
		starts: make(map[string]float64, len(mo.rides)),
	}
	for _, arc := range mo.arcs {
		a.arcs[arc.ID()] = solution.Value(mo.rideSequence.Get(arc))
	}
	for _, mv := range mo.moves {
		a.moves[mv.ID()] = solution.Value(mo.emptyMoves.Get(mv))
	}
	for _, r := range mo.rides {
		a.starts[r.RideID] = solution.Value(mo.rideStart.Get(r))
	}
	return a
}
