package dsp

import (
	"math"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// ClassifierVerdict is the §4.3 Wi-Fi Classifier output.
type ClassifierVerdict struct {
	IsWiFi     bool
	Confidence float64
	Channel    int // 0 if no confident channel match
}

// ClassifyWiFi runs the weighted-vote classifier over spectral features
// and a center frequency, deciding whether the block plausibly contains
// an 802.11 OFDM transmission and, if so, which 2.4 GHz channel.
func ClassifyWiFi(features domain.SpectralFeatures, centerFreqHz float64) ClassifierVerdict {
	freqScore, channel := frequencyMatchScore(centerFreqHz)
	bwScore := bandwidthMatchScore(features.Bandwidth)
	flatnessScore := flatnessMatchScore(features.SpectralFlatness)

	confidence := 0.4*freqScore + 0.3*bwScore + 0.3*flatnessScore

	return ClassifierVerdict{
		IsWiFi:     confidence >= 0.6,
		Confidence: confidence,
		Channel:    channel,
	}
}

// frequencyMatchScore checks proximity to a 2.4 GHz channel center
// (channels 1-11, 5 MHz spacing starting at 2.412 GHz), decaying
// linearly within +/-5 MHz.
func frequencyMatchScore(centerFreqHz float64) (float64, int) {
	const maxOffsetHz = 5e6
	best := 0.0
	bestChannel := 0
	for ch := 1; ch <= 11; ch++ {
		chCenter := 2.412e9 + float64(ch-1)*5e6
		offset := math.Abs(centerFreqHz - chCenter)
		if offset > maxOffsetHz {
			continue
		}
		score := 1 - offset/maxOffsetHz
		if score > best {
			best = score
			bestChannel = ch
		}
	}
	return best, bestChannel
}

func bandwidthMatchScore(bandwidthHz float64) float64 {
	mhz := bandwidthHz / 1e6
	switch {
	case mhz >= 18 && mhz <= 22:
		return 1.0
	case mhz >= 38 && mhz <= 42:
		return 1.0
	case mhz >= 10 && mhz <= 25:
		return 0.7
	default:
		return 0
	}
}

func flatnessMatchScore(flatness float64) float64 {
	switch {
	case flatness >= 0.3 && flatness <= 0.7:
		return 1.0
	case flatness >= 0.2 && flatness <= 0.8:
		return 0.5
	default:
		return 0
	}
}

// beaconIntervalTargetsMs are the standard 802.11 beacon intervals this
// helper recognizes, in milliseconds.
var beaconIntervalTargetsMs = []float64{100, 102.4, 200, 204.8}

// DetectBeaconFrames examines burst inter-arrival times and returns true
// when the mean interval lands within +/-20ms of one of the standard
// beacon intervals, per §4.3's detect_beacon_frames helper.
func DetectBeaconFrames(bursts []domain.Burst, sampleRate float64) bool {
	if len(bursts) < 2 {
		return false
	}
	var sumIntervalSamples float64
	for i := 1; i < len(bursts); i++ {
		sumIntervalSamples += float64(bursts[i].StartIndex - bursts[i-1].StartIndex)
	}
	meanIntervalMs := (sumIntervalSamples / float64(len(bursts)-1)) / sampleRate * 1000

	for _, target := range beaconIntervalTargetsMs {
		if math.Abs(meanIntervalMs-target) <= 20 {
			return true
		}
	}
	return false
}
