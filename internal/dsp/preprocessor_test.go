package dsp

import (
	"math"
	"testing"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func blockOfLen(n int) *domain.SampleBlock {
	samples := make([]domain.Sample, n)
	for i := range samples {
		samples[i] = domain.Sample{I: float32(math.Sin(float64(i))), Q: float32(math.Cos(float64(i)))}
	}
	return &domain.SampleBlock{
		Samples:    samples,
		SampleRate: 20e6,
		CenterFreq: 2.412e9,
		CapturedAt: time.Unix(0, 0),
	}
}

func TestPreprocessor_PreservesLength(t *testing.T) {
	p := NewPreprocessor(PreprocessConfig{
		EnableDCRemoval:    true,
		EnableIQCorrection: true,
		NormalizeMethod:    "rms",
	})
	block := blockOfLen(4096)
	out, _ := p.Process(block)
	assert.Equal(t, block.Len(), out.Len())
}

func TestPreprocessor_IdentityOnZeroMeanEqualVariance(t *testing.T) {
	n := 1024
	samples := make([]domain.Sample, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * float64(i) / float64(n)
		samples[i] = domain.Sample{I: float32(math.Sin(phase)), Q: float32(math.Cos(phase))}
	}
	block := &domain.SampleBlock{Samples: samples, SampleRate: 20e6}

	p := NewPreprocessor(PreprocessConfig{EnableDCRemoval: true, EnableIQCorrection: true, NormalizeMethod: "none"})
	out, _ := p.Process(block)

	for i := range samples {
		assert.InDelta(t, float64(samples[i].I), float64(out.Samples[i].I), 1e-4)
		assert.InDelta(t, float64(samples[i].Q), float64(out.Samples[i].Q), 1e-4)
	}
}

func TestComputeSNR_InfiniteWhenNoiseIsZero(t *testing.T) {
	n := 16
	samples := make([]domain.Sample, n)
	for i := range samples {
		samples[i] = domain.Sample{I: 1, Q: 0}
	}
	for i := 0; i < n/4; i++ {
		samples[i] = domain.Sample{I: 0, Q: 0}
		samples[n-1-i] = domain.Sample{I: 0, Q: 0}
	}
	snr := computeSNR(samples)
	assert.True(t, math.IsInf(snr, 1))
}

func TestNormalize_RMS(t *testing.T) {
	samples := []domain.Sample{{I: 2, Q: 0}, {I: -2, Q: 0}}
	normalize(samples, "rms")
	for _, s := range samples {
		assert.InDelta(t, 1.0, math.Abs(float64(s.I)), 1e-6)
	}
}

func TestBandpassFilter_BypassedOnInvertedCutoffs(t *testing.T) {
	samples := []domain.Sample{{I: 1, Q: 1}, {I: 2, Q: 2}}
	before := append([]domain.Sample(nil), samples...)
	bandpassFilter(samples, 20e6, 5e6, 1e6) // inverted: low > high
	assert.Equal(t, before, samples)
}
