// package main holds the ride-hailing solver app. It reads a generated input
// document, builds the mixed integer program over the district grid, solves
// it with HiGHS and writes the run artifacts: the solution document on
// stdout, plus model.lp, report.txt and segments.csv in the output
// directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Danialmoa/Optimization-Project-RideHailing/hexgrid"
	"github.com/Danialmoa/Optimization-Project-RideHailing/report"
	"github.com/Danialmoa/Optimization-Project-RideHailing/routing"
	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
	"github.com/google/uuid"
	"github.com/nextmv-io/sdk/run"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := run.CLI(solver).Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

// Options are the solver app knobs. The runner exposes every leaf as a
// nested CLI flag and environment variable.
type Options struct {
	Solve struct {
		Duration time.Duration `json:"duration" default:"10s"`
		Gap      float64       `json:"gap" default:"0.01"`
		Verbose  bool          `json:"verbose"`
	} `json:"solve"`
	Model struct {
		BigM       float64 `json:"bigm" default:"10000"`
		RoadFactor float64 `json:"roadfactor" default:"1.3"`
		CostPerKm  float64 `json:"costperkm" default:"0.7"`
	} `json:"model"`
	Output struct {
		Dir string `json:"dir" default:"outputs"`
	} `json:"output"`
}

func solver(input schema.Input, opts Options) ([]schema.Output, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	grid, err := hexgrid.New(
		input.Districts,
		input.DistanceMatrixKm,
		hexgrid.RoadFactor(opts.Model.RoadFactor),
		hexgrid.CostPerKm(opts.Model.CostPerKm),
	)
	if err != nil {
		return nil, err
	}

	mo, err := routing.NewModel(grid, input.Rides, input.Driver, routing.Config{BigM: opts.Model.BigM})
	if err != nil {
		return nil, err
	}

	out := schema.Output{
		RunID:       uuid.NewString(),
		Variables:   mo.Variables(),
		Constraints: mo.Constraints(),
	}
	log.Info().
		Str("run_id", out.RunID).
		Int("districts", len(input.Districts)).
		Int("rides", len(input.Rides)).
		Int("variables", out.Variables).
		Int("constraints", out.Constraints).
		Msg("model built")

	dir := opts.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "model.lp"), mo.WriteLP); err != nil {
		return nil, fmt.Errorf("write model.lp: %w", err)
	}

	result, err := mo.Solve(routing.SolveOptions{
		Duration:    opts.Solve.Duration,
		GapRelative: opts.Solve.Gap,
		Verbose:     opts.Solve.Verbose,
	})
	if err != nil {
		return nil, err
	}
	out.Status = result.Status
	out.Runtime = result.Runtime.String()
	log.Info().
		Str("status", result.Status).
		Dur("runtime", result.Runtime).
		Float64("objective", result.Objective).
		Msg("solve finished")

	if result.Assignment != nil {
		itinerary, err := mo.Extract(result.Assignment)
		if err != nil {
			return nil, err
		}
		out.Value = result.Objective
		out.Itinerary = &itinerary
	} else {
		log.Warn().Str("status", result.Status).Msg("no usable solution, skipping extraction")
	}

	greedy := routing.Greedy(grid, input.Rides, input.Driver)
	out.Greedy = &greedy

	if err := writeFile(filepath.Join(dir, "report.txt"), func(w io.Writer) error {
		return report.Write(w, input.Driver, out)
	}); err != nil {
		return nil, fmt.Errorf("write report.txt: %w", err)
	}
	if out.Itinerary != nil {
		if err := writeFile(filepath.Join(dir, "segments.csv"), func(w io.Writer) error {
			return report.WriteSegments(w, out.Itinerary.Segments)
		}); err != nil {
			return nil, fmt.Errorf("write segments.csv: %w", err)
		}
	}

	return []schema.Output{out}, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
