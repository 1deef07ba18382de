package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestScenarioParamsOverrideDefaults(t *testing.T) {
	sc, err := loadScenario(writeScenario(t, `
rides:
  count: 200
  seed: 7
  window_end: 1200
tariff:
  initial_fare: 5.0
  speed_kmh_min: 20
road_factor: 1.5
`))
	require.NoError(t, err)

	p := sc.params()
	require.Equal(t, 200, p.Count)
	require.EqualValues(t, 7, p.Seed)
	require.Equal(t, 480, p.WindowStart)
	require.Equal(t, 1200, p.WindowEnd)
	require.Equal(t, 5.0, p.InitialFare)
	require.Equal(t, 1.1, p.PricePerKmMin)
	require.Equal(t, 1.6, p.PricePerKmMax)
	require.Equal(t, 20.0, p.SpeedKmhMin)
	require.Equal(t, 25.0, p.SpeedKmhMax)
	require.Equal(t, 1.5, p.RoadFactor)
}

func TestScenarioDistrictsNeedExactlyOneSource(t *testing.T) {
	_, _, err := scenario{}.districts()
	require.ErrorContains(t, err, "either points_csv or center")

	both := scenario{PointsCSV: "points.csv", Center: &geoSpec{Lat: 1, Lng: 2}}
	_, _, err = both.districts()
	require.ErrorContains(t, err, "pick one")
}

func TestParsePoints(t *testing.T) {
	doc := "Name,LONGITUDE,latitude\nfirst,12.4964,41.9028\nsecond,12.51,41.91\n"
	points, err := parsePoints(strings.NewReader(doc), "points.csv")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 41.9028, points[0].Lat)
	require.Equal(t, 12.4964, points[0].Lng)

	_, err = parsePoints(strings.NewReader("Latitude,Longitude\n"), "points.csv")
	require.ErrorContains(t, err, "no data rows")

	_, err = parsePoints(strings.NewReader("lat,lon\n1,2\n"), "points.csv")
	require.ErrorContains(t, err, "must name Latitude and Longitude")

	_, err = parsePoints(strings.NewReader("Latitude,Longitude\nx,2\n"), "points.csv")
	require.ErrorContains(t, err, "row 2")
}

func TestDriverDefaultsToBusiestDistrict(t *testing.T) {
	var sc scenario
	d := sc.driver([]string{"a", "b", "c"}, []float64{1, 5, 2})
	require.Equal(t, 480.0, d.StartTime)
	require.Equal(t, 1320.0, d.EndTime)
	require.Equal(t, "b", d.StartLocation)
	require.Equal(t, "b", d.EndLocation)

	sc.Driver.StartTime = 300
	sc.Driver.EndTime = 900
	sc.Driver.StartLocation = "c"
	d = sc.driver([]string{"a", "b", "c"}, []float64{1, 5, 2})
	require.Equal(t, 300.0, d.StartTime)
	require.Equal(t, 900.0, d.EndTime)
	require.Equal(t, "c", d.StartLocation)
	require.Equal(t, "b", d.EndLocation)
}

func TestBuildAroundCenter(t *testing.T) {
	sc, err := loadScenario(writeScenario(t, `
center:
  lat: 41.9028
  lng: 12.4964
center_rings: 1
rides:
  count: 25
  seed: 3
`))
	require.NoError(t, err)

	input, err := build(sc)
	require.NoError(t, err)
	require.Len(t, input.Districts, 7)
	require.Len(t, input.Rides, 25)
	require.Equal(t, input.Districts[0], input.Driver.StartLocation)
	require.Equal(t, 480.0, input.Driver.StartTime)

	// Same scenario, same instance.
	again, err := build(sc)
	require.NoError(t, err)
	require.Equal(t, input, again)
}
