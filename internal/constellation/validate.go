// Package constellation holds the domain limits of a LEO constellation and
// validates untrusted candidates against them.
package constellation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mission42/constellation-intent/internal/models"
)

const (
	MinCount       = 1
	MaxSatellites  = 60
	MaxPlanes      = 10
	MinAltitudeKm  = 160.0
	MaxAltitudeKm  = 2000.0
	AltitudeArray  = "array"
	AltitudeScalar = "scalar"
)

// Constraint names reported in ValidationError.
const (
	ConstraintSatellites       = "numSatellites"
	ConstraintPlanes           = "numPlanes"
	ConstraintPlanesSatellites = "numPlanes<=numSatellites"
	ConstraintAltitude         = "altitude"
	ConstraintAltitudeCount    = "altitudes"
)

// Candidate is a parsed, not yet trusted, creation request. Counts are floats so
// that non-integral model output can be told apart from clamping.
type Candidate struct {
	NumSatellites float64
	NumPlanes     float64
	Altitudes     []float64
}

type ValidationError struct {
	Constraint string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("constellation: %s: %s", e.Constraint, e.Reason)
}

func reject(constraint, format string, args ...any) *ValidationError {
	return &ValidationError{Constraint: constraint, Reason: fmt.Sprintf(format, args...)}
}

// Validate clamps counts below 1 up to 1, then checks, in order: satellite bound,
// plane bound, planes <= satellites, altitude count (a single altitude is broadcast
// to every plane) and every altitude's range. The first failure is returned.
//
// In scalar mode the creation API takes one altitude for all planes, so altitudes
// must be uniform.
func Validate(c Candidate, altitudeMode string) (models.ConstellationRequest, *ValidationError) {
	if math.IsNaN(c.NumSatellites) || math.IsInf(c.NumSatellites, 0) || c.NumSatellites != math.Trunc(c.NumSatellites) {
		return models.ConstellationRequest{}, reject(ConstraintSatellites, "the number of satellites must be a whole number")
	}
	if math.IsNaN(c.NumPlanes) || math.IsInf(c.NumPlanes, 0) || c.NumPlanes != math.Trunc(c.NumPlanes) {
		return models.ConstellationRequest{}, reject(ConstraintPlanes, "the number of orbital planes must be a whole number")
	}

	sats := clamp(c.NumSatellites)
	planes := clamp(c.NumPlanes)

	if sats > MaxSatellites {
		return models.ConstellationRequest{}, reject(ConstraintSatellites,
			"the number of satellites must be between %d and %d (got %d)", MinCount, MaxSatellites, sats)
	}
	if planes > MaxPlanes {
		return models.ConstellationRequest{}, reject(ConstraintPlanes,
			"the number of orbital planes must be between %d and %d (got %d)", MinCount, MaxPlanes, planes)
	}
	if planes > sats {
		return models.ConstellationRequest{}, reject(ConstraintPlanesSatellites,
			"the number of orbital planes (%d) cannot exceed the number of satellites (%d)", planes, sats)
	}

	altitudes, verr := broadcast(c.Altitudes, planes)
	if verr != nil {
		return models.ConstellationRequest{}, verr
	}
	for i, a := range altitudes {
		if math.IsNaN(a) || a < MinAltitudeKm || a > MaxAltitudeKm {
			return models.ConstellationRequest{}, reject(ConstraintAltitude,
				"the altitude of plane %d must be between %s and %s km (got %s km)",
				i+1, formatKm(MinAltitudeKm), formatKm(MaxAltitudeKm), formatKm(a))
		}
	}

	if altitudeMode == AltitudeScalar && !uniform(altitudes) {
		return models.ConstellationRequest{}, reject(ConstraintAltitudeCount,
			"all orbital planes must share one altitude")
	}

	return models.ConstellationRequest{
		NumSatellites: sats,
		NumPlanes:     planes,
		Altitudes:     altitudes,
	}, nil
}

func clamp(v float64) int {
	if v < MinCount {
		return MinCount
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func broadcast(altitudes []float64, planes int) ([]float64, *ValidationError) {
	switch {
	case len(altitudes) == 0:
		return nil, reject(ConstraintAltitudeCount, "an altitude in km is required")
	case len(altitudes) == 1:
		out := make([]float64, planes)
		for i := range out {
			out[i] = altitudes[0]
		}
		return out, nil
	case len(altitudes) != planes:
		return nil, reject(ConstraintAltitudeCount,
			"provide one altitude for all planes or exactly one per plane (%d altitudes for %d planes)", len(altitudes), planes)
	default:
		out := make([]float64, len(altitudes))
		copy(out, altitudes)
		return out, nil
	}
}

func uniform(altitudes []float64) bool {
	for _, a := range altitudes {
		if a != altitudes[0] {
			return false
		}
	}
	return true
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
