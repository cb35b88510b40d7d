// Package dsp implements the per-block signal conditioning and spectral
// analysis stages of the RF-to-frame pipeline: DC removal, I/Q imbalance
// correction, band-pass filtering, normalization, SNR estimation, PSD
// estimation, burst detection, and the Wi-Fi OFDM gating classifier.
package dsp

import (
	"log/slog"
	"math"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// PreprocessConfig mirrors the teacher's config-struct-per-stage
// convention: a small, explicit, serializable knob set instead of a
// pile of function arguments.
type PreprocessConfig struct {
	EnableDCRemoval    bool
	EnableIQCorrection bool
	BandpassLowHz      float64
	BandpassHighHz     float64
	NormalizeMethod    string // "rms", "peak", "minmax"
}

// Preprocessor runs the §4.1 conditioning chain over a SampleBlock. It
// holds no mutable state between calls; every method operates on the
// block handed to it and returns a new one.
type Preprocessor struct {
	cfg PreprocessConfig
}

func NewPreprocessor(cfg PreprocessConfig) *Preprocessor {
	return &Preprocessor{cfg: cfg}
}

// Process runs DC removal, I/Q correction, band-pass filtering, and
// normalization in that order, then returns the resulting block together
// with its SNR estimate in dB. The output block is always the same
// length as the input.
func (p *Preprocessor) Process(block *domain.SampleBlock) (*domain.SampleBlock, float64) {
	out := block.Clone()

	if p.cfg.EnableDCRemoval {
		removeDCOffset(out.Samples)
	}
	if p.cfg.EnableIQCorrection {
		correctIQImbalance(out.Samples)
	}
	switch {
	case p.cfg.BandpassLowHz > 0 && p.cfg.BandpassHighHz > p.cfg.BandpassLowHz:
		bandpassFilter(out.Samples, out.SampleRate, p.cfg.BandpassLowHz, p.cfg.BandpassHighHz)
	case p.cfg.BandpassLowHz != 0 || p.cfg.BandpassHighHz != 0:
		// At least one cutoff is configured (not the zero-value "filter
		// disabled" case) but the pair is inverted or non-positive, so the stage is
		// skipped entirely rather than calling into bandpassFilter.
		slog.Debug("bandpass filter stage skipped: invalid cutoffs",
			"low_hz", p.cfg.BandpassLowHz, "high_hz", p.cfg.BandpassHighHz)
	}
	normalize(out.Samples, p.cfg.NormalizeMethod)

	snr := computeSNR(out.Samples)
	return out, snr
}

func removeDCOffset(samples []domain.Sample) {
	if len(samples) == 0 {
		return
	}
	var sumI, sumQ float64
	for _, s := range samples {
		sumI += float64(s.I)
		sumQ += float64(s.Q)
	}
	n := float64(len(samples))
	meanI, meanQ := sumI/n, sumQ/n
	for i := range samples {
		samples[i].I -= float32(meanI)
		samples[i].Q -= float32(meanQ)
	}
}

// correctIQImbalance normalizes Q's standard deviation to I's, then
// orthogonalizes Q against I via Gram-Schmidt using the empirical
// correlation ratio, exactly as §4.1 step 2 specifies.
func correctIQImbalance(samples []domain.Sample) {
	n := len(samples)
	if n == 0 {
		return
	}
	var sumI, sumQ float64
	for _, s := range samples {
		sumI += float64(s.I)
		sumQ += float64(s.Q)
	}
	meanI, meanQ := sumI/float64(n), sumQ/float64(n)

	var varI, varQ, corr float64
	for _, s := range samples {
		di := float64(s.I) - meanI
		dq := float64(s.Q) - meanQ
		varI += di * di
		varQ += dq * dq
		corr += di * dq
	}
	varI /= float64(n)
	varQ /= float64(n)
	corr /= float64(n)

	stdI, stdQ := math.Sqrt(varI), math.Sqrt(varQ)
	gainCorrection := 1.0
	if stdQ > 0 {
		gainCorrection = stdI / stdQ
	}

	phaseCorrection := 0.0
	if varI > 0 {
		phaseCorrection = corr / varI
	}

	for i, s := range samples {
		q := float64(s.Q) * gainCorrection
		q -= gainCorrection * phaseCorrection * float64(s.I)
		samples[i].Q = float32(q)
	}
}

func normalize(samples []domain.Sample, method string) {
	n := len(samples)
	if n == 0 {
		return
	}
	switch method {
	case "none":
		return
	case "peak":
		peak := 0.0
		for _, s := range samples {
			if m := magnitude(s); m > peak {
				peak = m
			}
		}
		if peak == 0 {
			return
		}
		scale(samples, peak)
	case "minmax":
		absMax := 0.0
		for _, s := range samples {
			if m := magnitude(s); m > absMax {
				absMax = m
			}
		}
		if absMax == 0 {
			return
		}
		scale(samples, absMax)
	default: // "rms"
		var sumSq float64
		for _, s := range samples {
			sumSq += magnitude(s) * magnitude(s)
		}
		rms := math.Sqrt(sumSq / float64(n))
		if rms == 0 {
			return
		}
		scale(samples, rms)
	}
}

func scale(samples []domain.Sample, by float64) {
	for i := range samples {
		samples[i].I = float32(float64(samples[i].I) / by)
		samples[i].Q = float32(float64(samples[i].Q) / by)
	}
}

func magnitude(s domain.Sample) float64 {
	return math.Hypot(float64(s.I), float64(s.Q))
}

// computeSNR estimates SNR as the ratio of mean power in the central
// half of the block to mean power in the outer two quarters, per §4.1
// step 5.
func computeSNR(samples []domain.Sample) float64 {
	n := len(samples)
	if n < 4 {
		return math.Inf(1)
	}
	quarter := n / 4
	mid := n / 2

	var signalPower float64
	signalSamples := samples[mid-quarter : mid+quarter]
	for _, s := range signalSamples {
		m := magnitude(s)
		signalPower += m * m
	}
	signalPower /= float64(len(signalSamples))

	var noisePower float64
	noiseSamples := make([]domain.Sample, 0, 2*quarter)
	noiseSamples = append(noiseSamples, samples[:quarter]...)
	noiseSamples = append(noiseSamples, samples[n-quarter:]...)
	for _, s := range noiseSamples {
		m := magnitude(s)
		noisePower += m * m
	}
	if len(noiseSamples) > 0 {
		noisePower /= float64(len(noiseSamples))
	}

	if noisePower == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(signalPower/noisePower)
}
