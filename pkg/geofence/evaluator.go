// Package geofence classifies a reported position against the single office geofence.
package geofence

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine distance.
const EarthRadiusMeters = 6371000.0

// DefaultWalkingSpeed is the walking speed in m/s used for arrival estimates.
const DefaultWalkingSpeed = 1.4

// DefaultBufferMeters is the width of the warning ring outside the core radius.
const DefaultBufferMeters = 5.0

// ErrInvalidCoordinates is returned for out-of-range or non-finite coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Classification is the zone a position falls into.
type Classification string

const (
	Inside  Classification = "inside"
	Buffer  Classification = "buffer"
	Outside Classification = "outside"
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Config describes the office geofence. It is loaded once and never mutated.
type Config struct {
	Center       Point
	RadiusMeters float64
	BufferMeters float64
	WalkingSpeed float64
	Address      string
	Timezone     string
}

// Decision is the result of evaluating one position.
type Decision struct {
	DistanceMeters float64        `json:"distance"`
	Classification Classification `json:"status"`
}

// Evaluator is stateless apart from its immutable config and safe for concurrent use.
type Evaluator struct {
	cfg Config
}

// NewEvaluator validates cfg and returns an evaluator bound to it.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if !ValidCoordinates(cfg.Center.Latitude, cfg.Center.Longitude) {
		return nil, fmt.Errorf("office center: %w", ErrInvalidCoordinates)
	}
	if cfg.RadiusMeters <= 0 || math.IsNaN(cfg.RadiusMeters) || math.IsInf(cfg.RadiusMeters, 0) {
		return nil, fmt.Errorf("office radius must be positive, got %v", cfg.RadiusMeters)
	}
	if cfg.BufferMeters < 0 || math.IsNaN(cfg.BufferMeters) {
		return nil, fmt.Errorf("buffer radius cannot be negative, got %v", cfg.BufferMeters)
	}
	if cfg.WalkingSpeed <= 0 {
		cfg.WalkingSpeed = DefaultWalkingSpeed
	}
	return &Evaluator{cfg: cfg}, nil
}

// Config returns a copy of the geofence configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate classifies (lat, lon). The reported distance is rounded to two
// decimals, classification uses the unrounded value.
func (e *Evaluator) Evaluate(lat, lon float64) (Decision, error) {
	d, err := e.distanceTo(lat, lon)
	if err != nil {
		return Decision{}, err
	}

	class := Outside
	switch {
	case d <= e.cfg.RadiusMeters:
		class = Inside
	case d <= e.cfg.RadiusMeters+e.cfg.BufferMeters:
		class = Buffer
	}

	return Decision{DistanceMeters: Round2(d), Classification: class}, nil
}

// EstimatedArrivalSeconds is distance / speed. A non-positive speed falls back
// to the configured walking speed.
func (e *Evaluator) EstimatedArrivalSeconds(lat, lon, speed float64) (float64, error) {
	d, err := e.distanceTo(lat, lon)
	if err != nil {
		return 0, err
	}
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = e.cfg.WalkingSpeed
	}
	return d / speed, nil
}

func (e *Evaluator) distanceTo(lat, lon float64) (float64, error) {
	if !ValidCoordinates(lat, lon) {
		return 0, ErrInvalidCoordinates
	}
	return Distance(e.cfg.Center, Point{Latitude: lat, Longitude: lon}), nil
}

// ValidCoordinates reports whether lat and lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// clamp against rounding drift at antipodes
	if h > 1 {
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
