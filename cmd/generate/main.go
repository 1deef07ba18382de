// package main holds the instance generator app. It reads a scenario yaml,
// builds the H3 district set either from observed demand points or around a
// center coordinate, computes the distance matrix and samples the ride
// catalog, then writes input.json for the solver plus rides.csv for
// inspection.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Danialmoa/Optimization-Project-RideHailing/hexgrid"
	"github.com/Danialmoa/Optimization-Project-RideHailing/ridegen"
	"github.com/Danialmoa/Optimization-Project-RideHailing/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	scenarioPath := flag.String("scenario", "", "path to the scenario yaml")
	outDir := flag.String("out", "data", "directory for input.json and rides.csv")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatal().Msg("missing -scenario")
	}
	sc, err := loadScenario(*scenarioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load scenario")
	}

	input, err := build(sc)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build instance")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("cannot create output directory")
	}
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot encode input")
	}
	inputPath := filepath.Join(*outDir, "input.json")
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("cannot write input.json")
	}
	ridesPath := filepath.Join(*outDir, "rides.csv")
	if err := writeRidesCSV(ridesPath, input.Rides); err != nil {
		log.Fatal().Err(err).Msg("cannot write rides.csv")
	}

	log.Info().
		Int("districts", len(input.Districts)).
		Int("rides", len(input.Rides)).
		Str("input", inputPath).
		Str("rides_csv", ridesPath).
		Msg("instance written")
}

// scenario is the yaml document describing one generated instance. Districts
// come either from a demand point file or from a disk around a center; all
// other fields fall back to the standard urban scenario when omitted.
type scenario struct {
	Resolution  int      `yaml:"h3_resolution"`
	PointsCSV   string   `yaml:"points_csv"`
	Center      *geoSpec `yaml:"center"`
	CenterRings int      `yaml:"center_rings"`
	RoadFactor  float64  `yaml:"road_factor"`
	Rides       struct {
		Count       int   `yaml:"count"`
		Seed        int64 `yaml:"seed"`
		WindowStart int   `yaml:"window_start"`
		WindowEnd   int   `yaml:"window_end"`
	} `yaml:"rides"`
	Tariff struct {
		InitialFare   float64 `yaml:"initial_fare"`
		PricePerKmMin float64 `yaml:"price_per_km_min"`
		PricePerKmMax float64 `yaml:"price_per_km_max"`
		SpeedKmhMin   float64 `yaml:"speed_kmh_min"`
		SpeedKmhMax   float64 `yaml:"speed_kmh_max"`
	} `yaml:"tariff"`
	Driver struct {
		StartTime     float64 `yaml:"start_time"`
		EndTime       float64 `yaml:"end_time"`
		StartLocation string  `yaml:"start_location"`
		EndLocation   string  `yaml:"end_location"`
	} `yaml:"driver"`
}

type geoSpec struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

func loadScenario(path string) (scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, err
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return scenario{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

// params folds the scenario's tariff and ride sections over the standard
// scenario. The seed is taken as given; an omitted seed is seed zero, so the
// same scenario file always generates the same instance.
func (sc scenario) params() ridegen.Params {
	p := ridegen.DefaultParams()
	p.Seed = sc.Rides.Seed
	if sc.Rides.Count > 0 {
		p.Count = sc.Rides.Count
	}
	if sc.Rides.WindowStart > 0 {
		p.WindowStart = sc.Rides.WindowStart
	}
	if sc.Rides.WindowEnd > 0 {
		p.WindowEnd = sc.Rides.WindowEnd
	}
	if sc.Tariff.InitialFare > 0 {
		p.InitialFare = sc.Tariff.InitialFare
	}
	if sc.Tariff.PricePerKmMin > 0 {
		p.PricePerKmMin = sc.Tariff.PricePerKmMin
	}
	if sc.Tariff.PricePerKmMax > 0 {
		p.PricePerKmMax = sc.Tariff.PricePerKmMax
	}
	if sc.Tariff.SpeedKmhMin > 0 {
		p.SpeedKmhMin = sc.Tariff.SpeedKmhMin
	}
	if sc.Tariff.SpeedKmhMax > 0 {
		p.SpeedKmhMax = sc.Tariff.SpeedKmhMax
	}
	if sc.RoadFactor > 0 {
		p.RoadFactor = sc.RoadFactor
	}
	return p
}

// districts resolves the scenario's spatial section into a district set with
// demand weights.
func (sc scenario) districts() ([]string, []float64, error) {
	resolution := sc.Resolution
	if resolution == 0 {
		resolution = hexgrid.DefaultResolution
	}
	switch {
	case sc.PointsCSV != "" && sc.Center != nil:
		return nil, nil, fmt.Errorf("scenario names both points_csv and center, pick one")
	case sc.PointsCSV != "":
		points, err := loadPoints(sc.PointsCSV)
		if err != nil {
			return nil, nil, err
		}
		return hexgrid.FromPoints(points, resolution)
	case sc.Center != nil:
		rings := sc.CenterRings
		if rings == 0 {
			rings = 2
		}
		center := hexgrid.GeoPoint{Lat: sc.Center.Lat, Lng: sc.Center.Lng}
		return hexgrid.Around(center, resolution, rings)
	default:
		return nil, nil, fmt.Errorf("scenario needs either points_csv or center")
	}
}

// driver fills the scenario's driver section with the standard shift and,
// when no location is named, parks the driver in the busiest district.
func (sc scenario) driver(districts []string, weights []float64) schema.Driver {
	d := schema.Driver{
		StartTime:     sc.Driver.StartTime,
		EndTime:       sc.Driver.EndTime,
		StartLocation: sc.Driver.StartLocation,
		EndLocation:   sc.Driver.EndLocation,
	}
	if d.EndTime == 0 {
		d.StartTime = 480
		d.EndTime = 1320
	}
	busiest := 0
	for i, w := range weights {
		if w > weights[busiest] {
			busiest = i
		}
	}
	if d.StartLocation == "" {
		d.StartLocation = districts[busiest]
	}
	if d.EndLocation == "" {
		d.EndLocation = districts[busiest]
	}
	return d
}

func build(sc scenario) (schema.Input, error) {
	districts, weights, err := sc.districts()
	if err != nil {
		return schema.Input{}, err
	}
	log.Info().Int("districts", len(districts)).Msg("district set built")

	matrix, err := hexgrid.DistanceMatrix(districts)
	if err != nil {
		return schema.Input{}, err
	}
	grid, err := hexgrid.New(districts, matrix)
	if err != nil {
		return schema.Input{}, err
	}

	rides, err := ridegen.Generate(sc.params(), districts, weights, grid)
	if err != nil {
		return schema.Input{}, err
	}

	input := schema.Input{
		Districts:        districts,
		Weights:          weights,
		DistanceMatrixKm: matrix,
		Rides:            rides,
		Driver:           sc.driver(districts, weights),
	}
	if err := input.Validate(); err != nil {
		return schema.Input{}, fmt.Errorf("generated instance is inconsistent: %w", err)
	}
	return input, nil
}

// loadPoints reads demand coordinates from a csv file with Latitude and
// Longitude columns, matched case-insensitively.
func loadPoints(path string) ([]hexgrid.GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parsePoints(f, path)
}

func parsePoints(r io.Reader, name string) ([]hexgrid.GeoPoint, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", name)
	}
	latCol, lngCol := -1, -1
	for i, h := range records[0] {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), "latitude"):
			latCol = i
		case strings.EqualFold(strings.TrimSpace(h), "longitude"):
			lngCol = i
		}
	}
	if latCol < 0 || lngCol < 0 {
		return nil, fmt.Errorf("%s: header must name Latitude and Longitude columns", name)
	}
	points := make([]hexgrid.GeoPoint, 0, len(records)-1)
	for i, rec := range records[1:] {
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: latitude: %w", name, i+2, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(rec[lngCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: longitude: %w", name, i+2, err)
		}
		points = append(points, hexgrid.GeoPoint{Lat: lat, Lng: lng})
	}
	return points, nil
}

func writeRidesCSV(path string, rides []schema.Ride) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	header := []string{"id", "origin", "destination", "available_at", "end_at", "price", "duration"}
	if err := cw.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, r := range rides {
		row := []string{
			r.RideID,
			r.Origin,
			r.Destination,
			strconv.FormatFloat(r.AvailableAt, 'g', -1, 64),
			strconv.FormatFloat(r.EndAt, 'g', -1, 64),
			strconv.FormatFloat(r.Price, 'g', -1, 64),
			strconv.FormatFloat(r.Duration, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
