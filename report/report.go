// Package report renders the run artifacts handed to people and downstream
// tools: the ordered text itinerary and the segment table.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Danialmoa/Optimization-Project-RideHailing/routing"
	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
)

// Write renders the human-readable report: solver status, the itinerary
// walk line by line, totals, and the greedy baseline for comparison. A run
// without a usable incumbent still reports its status.
func Write(w io.Writer, driver schema.Driver, out schema.Output) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "=== DRIVER ITINERARY ===\n")
	switch out.Status {
	case routing.StatusSuboptimal:
		fmt.Fprintf(bw, "Solver status: %s (stopped at its limit, not proven optimal)\n", out.Status)
	default:
		fmt.Fprintf(bw, "Solver status: %s\n", out.Status)
	}

	if out.Itinerary == nil {
		fmt.Fprintf(bw, "No itinerary extracted.\n")
	} else {
		fmt.Fprintf(bw, "Start at location %s at time %.2f\n", driver.StartLocation, driver.StartTime)
		for _, s := range out.Itinerary.Segments {
			writeSegment(bw, s)
		}
		fmt.Fprintf(bw, "\n=== SUMMARY ===\n")
		fmt.Fprintf(bw, "Total revenue: %.2f\n", out.Itinerary.Revenue)
		fmt.Fprintf(bw, "Total cost: %.2f\n", out.Itinerary.Cost)
		fmt.Fprintf(bw, "Net profit: %.2f\n", out.Itinerary.Profit)
	}

	if out.Greedy != nil {
		fmt.Fprintf(bw, "\n=== GREEDY BASELINE ===\n")
		for _, s := range out.Greedy.Segments {
			writeSegment(bw, s)
		}
		fmt.Fprintf(bw, "Baseline profit: %.2f\n", out.Greedy.Profit)
		if out.Itinerary != nil {
			fmt.Fprintf(bw, "Optimizer advantage: %.2f\n", out.Itinerary.Profit-out.Greedy.Profit)
		}
	}

	return bw.Flush()
}

func writeSegment(w io.Writer, s schema.Segment) {
	switch s.Type {
	case schema.SegmentEmptyMove:
		fmt.Fprintf(w, "Empty move from %s to %s at time %.2f (duration: %.2f, cost: %.2f)\n",
			s.From, s.To, s.StartTime, s.EndTime-s.StartTime, s.Cost)
	case schema.SegmentWait:
		fmt.Fprintf(w, "Wait at location %s for %.2f time units\n", s.From, s.EndTime-s.StartTime)
	case schema.SegmentRide:
		fmt.Fprintf(w, "Ride %s from %s to %s starts at %.2f, ends at %.2f (revenue: %.2f)\n",
			s.RideID, s.From, s.To, s.StartTime, s.EndTime, s.Revenue)
	default:
		fmt.Fprintf(w, "Unknown segment %q from %s to %s\n", s.Type, s.From, s.To)
	}
}

// WriteSegments writes the structured segment table, one row per segment.
func WriteSegments(w io.Writer, segments []schema.Segment) error {
	cw := csv.NewWriter(w)
	header := []string{"type", "ride_id", "from", "to", "start_time", "end_time", "revenue", "cost"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range segments {
		row := []string{
			s.Type,
			s.RideID,
			s.From,
			s.To,
			formatNumber(s.StartTime),
			formatNumber(s.EndTime),
			formatNumber(s.Revenue),
			formatNumber(s.Cost),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
