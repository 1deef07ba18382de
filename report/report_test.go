package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/Danialmoa/Optimization-Project-RideHailing/routing"
	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
	"github.com/stretchr/testify/require"
)

func sampleOutput() schema.Output {
	return schema.Output{
		Status: routing.StatusSuboptimal,
		Itinerary: &schema.Itinerary{
			Segments: []schema.Segment{
				{Type: schema.SegmentEmptyMove, From: "A", To: "B", StartTime: 480, EndTime: 493, Cost: 9.1},
				{Type: schema.SegmentWait, From: "B", To: "B", StartTime: 493, EndTime: 500},
				{Type: schema.SegmentRide, RideID: "r0001", From: "B", To: "C", StartTime: 500, EndTime: 510, Revenue: 20, Cost: 7.28},
			},
			Revenue: 20,
			Cost:    16.38,
			Profit:  3.62,
		},
		Greedy: &schema.Itinerary{
			Segments: []schema.Segment{
				{Type: schema.SegmentRide, RideID: "g1", From: "A", To: "B", StartTime: 480, EndTime: 490, Revenue: 10, Cost: 9.1},
			},
			Revenue: 10,
			Cost:    9.1,
			Profit:  0.9,
		},
	}
}

func TestWriteRendersItinerary(t *testing.T) {
	driver := schema.Driver{StartLocation: "A", EndLocation: "C", StartTime: 480, EndTime: 1320}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, driver, sampleOutput()))
	text := buf.String()

	require.Contains(t, text, "=== DRIVER ITINERARY ===\n")
	require.Contains(t, text, "Solver status: suboptimal (stopped at its limit, not proven optimal)\n")
	require.Contains(t, text, "Start at location A at time 480.00\n")
	require.Contains(t, text, "Empty move from A to B at time 480.00 (duration: 13.00, cost: 9.10)\n")
	require.Contains(t, text, "Wait at location B for 7.00 time units\n")
	require.Contains(t, text, "Ride r0001 from B to C starts at 500.00, ends at 510.00 (revenue: 20.00)\n")
	require.Contains(t, text, "=== SUMMARY ===\n")
	require.Contains(t, text, "Total revenue: 20.00\n")
	require.Contains(t, text, "Total cost: 16.38\n")
	require.Contains(t, text, "Net profit: 3.62\n")
	require.Contains(t, text, "=== GREEDY BASELINE ===\n")
	require.Contains(t, text, "Ride g1 from A to B starts at 480.00, ends at 490.00 (revenue: 10.00)\n")
	require.Contains(t, text, "Baseline profit: 0.90\n")
	require.Contains(t, text, "Optimizer advantage: 2.72\n")

	// Sections arrive in reading order.
	require.Less(t, strings.Index(text, "=== DRIVER ITINERARY ==="), strings.Index(text, "=== SUMMARY ==="))
	require.Less(t, strings.Index(text, "=== SUMMARY ==="), strings.Index(text, "=== GREEDY BASELINE ==="))
}

func TestWriteWithoutItinerary(t *testing.T) {
	out := sampleOutput()
	out.Status = routing.StatusInfeasible
	out.Itinerary = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, schema.Driver{StartLocation: "A"}, out))
	text := buf.String()

	require.Contains(t, text, "Solver status: infeasible\n")
	require.Contains(t, text, "No itinerary extracted.\n")
	require.NotContains(t, text, "=== SUMMARY ===")
	require.Contains(t, text, "Baseline profit: 0.90\n")
	require.NotContains(t, text, "Optimizer advantage")
}

func TestWriteOptimalStatusIsUnqualified(t *testing.T) {
	out := sampleOutput()
	out.Status = routing.StatusOptimal

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, schema.Driver{StartLocation: "A", StartTime: 480}, out))

	require.Contains(t, buf.String(), "Solver status: optimal\n")
	require.NotContains(t, buf.String(), "not proven optimal")
}

func TestWriteSegments(t *testing.T) {
	segments := sampleOutput().Itinerary.Segments

	var buf bytes.Buffer
	require.NoError(t, WriteSegments(&buf, segments))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, []string{"type", "ride_id", "from", "to", "start_time", "end_time", "revenue", "cost"}, records[0])
	require.Equal(t, []string{"empty_move", "", "A", "B", "480", "493", "0", "9.1"}, records[1])
	require.Equal(t, []string{"wait", "", "B", "B", "493", "500", "0", "0"}, records[2])
	require.Equal(t, []string{"ride", "r0001", "B", "C", "500", "510", "20", "7.28"}, records[3])
}

func TestWriteSegmentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSegments(&buf, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	require.Equal(t, "type,ride_id,from,to,start_time,end_time,revenue,cost", lines[0])
}
