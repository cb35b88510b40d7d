// Package threat implements the data-fusion threat-assessment rule
// set of §4.8: a fixed set of weighted contributions scored against a
// detection's position, kinematics, and decode quality.
package threat

import (
	"fmt"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/geo"
)

// Score weights, per §4.8.
const (
	scoreZoneMembership    float64 = 50
	scoreHeightExceeded    float64 = 20
	scoreSpeedExceeded     float64 = 10
	scoreOperatorDistance  float64 = 15
	scoreNoRemoteID        float64 = 20
	scoreRemoteIDPresence  float64 = -10
	scoreClassifierInvalid float64 = 10
)

const (
	thresholdHigh   float64 = 50
	thresholdMedium float64 = 20
)

// Limits holds the configured thresholds the assessment compares
// against; zero values fall back to the §4.8 defaults via
// DefaultLimits.
type Limits struct {
	HeightAGLMeters        float64
	SpeedMetersPerSecond   float64
	OperatorDistanceMeters float64
}

// DefaultLimits matches §4.8's literal defaults.
func DefaultLimits() Limits {
	return Limits{
		HeightAGLMeters:        120,
		SpeedMetersPerSecond:   20,
		OperatorDistanceMeters: 5000,
	}
}

// Input bundles everything the rule set reads: the decoded record's
// position/kinematics, the restricted-zone list, the operator's last
// known position, and whether the upstream Wi-Fi classifier thought
// this channel carried a valid OFDM signal.
type Input struct {
	Record            *domain.RemoteIDRecord
	Zones             []domain.Geofence
	OperatorLatitude  float64
	OperatorLongitude float64
	HasOperatorFix    bool
	ClassifierInvalid bool
	Limits            Limits
}

// Assess computes a domain.ThreatAssessment by summing every
// applicable contribution in Input, per §4.8's exact weights, and
// classifying the total against the HIGH/MEDIUM thresholds.
func Assess(in Input) domain.ThreatAssessment {
	var score float64
	var reasons []string

	hasPosition := in.Record != nil && in.Record.Location != nil &&
		in.Record.Location.Latitude != 0 && in.Record.Location.Longitude != 0

	if hasPosition {
		lat := in.Record.Location.Latitude
		lon := in.Record.Location.Longitude

		if name, ok := geo.AnyContains(in.Zones, lat, lon); ok {
			score += scoreZoneMembership
			reasons = append(reasons, fmt.Sprintf("inside restricted zone %q (+%.0f)", name, scoreZoneMembership))
		}

		if in.Record.Location.HeightAGL != nil && *in.Record.Location.HeightAGL > in.Limits.HeightAGLMeters {
			score += scoreHeightExceeded
			reasons = append(reasons, fmt.Sprintf("height AGL %.1fm exceeds limit %.1fm (+%.0f)", *in.Record.Location.HeightAGL, in.Limits.HeightAGLMeters, scoreHeightExceeded))
		}

		if in.Record.Location.GroundSpeed != nil && *in.Record.Location.GroundSpeed > in.Limits.SpeedMetersPerSecond {
			score += scoreSpeedExceeded
			reasons = append(reasons, fmt.Sprintf("ground speed %.1fm/s exceeds limit %.1fm/s (+%.0f)", *in.Record.Location.GroundSpeed, in.Limits.SpeedMetersPerSecond, scoreSpeedExceeded))
		}

		if in.HasOperatorFix {
			distance := geo.DistanceMeters(lat, lon, in.OperatorLatitude, in.OperatorLongitude)
			if distance > in.Limits.OperatorDistanceMeters {
				score += scoreOperatorDistance
				reasons = append(reasons, fmt.Sprintf("operator distance %.0fm exceeds limit %.0fm (+%.0f)", distance, in.Limits.OperatorDistanceMeters, scoreOperatorDistance))
			}
		}
	}

	if in.Record == nil || !in.Record.Valid() {
		score += scoreNoRemoteID
		reasons = append(reasons, fmt.Sprintf("no Remote ID decoded (+%.0f)", scoreNoRemoteID))
	} else {
		score += scoreRemoteIDPresence
		reasons = append(reasons, fmt.Sprintf("Remote ID present (%.0f)", scoreRemoteIDPresence))
	}

	if in.ClassifierInvalid {
		score += scoreClassifierInvalid
		reasons = append(reasons, fmt.Sprintf("classifier verdict invalid (+%.0f)", scoreClassifierInvalid))
	}

	return domain.ThreatAssessment{
		Score:   score,
		Level:   classify(score),
		Reasons: reasons,
	}
}

func classify(score float64) domain.ThreatLevel {
	switch {
	case score >= thresholdHigh:
		return domain.ThreatHigh
	case score >= thresholdMedium:
		return domain.ThreatMedium
	default:
		return domain.ThreatLow
	}
}
