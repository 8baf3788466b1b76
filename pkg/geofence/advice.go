package geofence

import (
	"fmt"
	"math"
	"strconv"
)

// Severity levels attached to location advice.
const (
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Advice is the user-facing reading of a Decision.
type Advice struct {
	Decision
	CanCheckIn      bool    `json:"can_check_in"`
	Severity        string  `json:"severity"`
	Message         string  `json:"message"`
	CoreRadius      float64 `json:"core_radius"`
	BufferRadius    float64 `json:"buffer_radius"`
	ShortfallMeters float64 `json:"shortfall_meters,omitempty"`
}

// Arrival is a walking-time estimate to the office center.
type Arrival struct {
	DistanceMeters float64 `json:"distance"`
	Seconds        int     `json:"eta_seconds"`
	Minutes        int     `json:"eta_minutes"`
	WalkingSpeed   float64 `json:"walking_speed"`
}

// Advise evaluates (lat, lon) and attaches a message suitable for a client banner.
func (e *Evaluator) Advise(lat, lon float64) (Advice, error) {
	dec, err := e.Evaluate(lat, lon)
	if err != nil {
		return Advice{}, err
	}

	adv := Advice{
		Decision:     dec,
		CoreRadius:   e.cfg.RadiusMeters,
		BufferRadius: e.cfg.RadiusMeters + e.cfg.BufferMeters,
	}

	switch dec.Classification {
	case Inside:
		adv.CanCheckIn = true
		adv.Severity = SeveritySuccess
		adv.Message = fmt.Sprintf("You're inside the office (%sm from center). Ready to check in!", formatMeters(dec.DistanceMeters))
	case Buffer:
		adv.Severity = SeverityWarning
		adv.ShortfallMeters = math.Round((dec.DistanceMeters-e.cfg.RadiusMeters)*10) / 10
		adv.Message = fmt.Sprintf("You're close to the office (%sm away). Move %.1fm closer to check in.",
			formatMeters(dec.DistanceMeters), adv.ShortfallMeters)
	default:
		adv.Severity = SeverityError
		adv.Message = fmt.Sprintf("You're too far from the office (%sm away). You need to be within %sm to check in.",
			formatMeters(dec.DistanceMeters), formatMeters(e.cfg.RadiusMeters))
	}

	return adv, nil
}

// Arrival estimates walking time at the configured speed.
func (e *Evaluator) Arrival(lat, lon float64) (Arrival, error) {
	secs, err := e.EstimatedArrivalSeconds(lat, lon, e.cfg.WalkingSpeed)
	if err != nil {
		return Arrival{}, err
	}
	rounded := int(math.Round(secs))
	return Arrival{
		DistanceMeters: Round2(secs * e.cfg.WalkingSpeed),
		Seconds:        rounded,
		Minutes:        int(math.Ceil(secs / 60)),
		WalkingSpeed:   e.cfg.WalkingSpeed,
	}, nil
}

func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
