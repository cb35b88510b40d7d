package dsp

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// SpectralConfig holds the Welch PSD and burst-detector knobs.
type SpectralConfig struct {
	SegmentLength   int     // default 2048
	BurstMinDurationSec float64 // default 1ms
}

func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{SegmentLength: 2048, BurstMinDurationSec: 0.001}
}

// Analyzer computes §4.2 spectral features and the burst list for a
// conditioned SampleBlock.
type Analyzer struct {
	cfg SpectralConfig
}

func NewAnalyzer(cfg SpectralConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze runs Welch PSD estimation, the peak-referenced -10dB
// bandwidth rule, and the burst detector over block.
func (a *Analyzer) Analyze(block *domain.SampleBlock) domain.SpectralFeatures {
	psd, freqs := welchPSD(block.Samples, block.SampleRate, a.cfg.SegmentLength)

	bandwidth, centroid, spread, flatness, peakDB := spectralShape(psd, freqs)

	bursts := detectBursts(block.Samples, block.SampleRate, a.cfg.BurstMinDurationSec)

	return domain.SpectralFeatures{
		Bandwidth:        bandwidth,
		CenterFrequency:  block.CenterFreq,
		PeakPowerDB:      peakDB,
		SpectralCentroid: centroid,
		SpectralSpread:   spread,
		SpectralFlatness: flatness,
		Bursts:           bursts,
	}
}

// welchPSD estimates the power spectral density with a Hann window,
// configurable segment length, 50% overlap, returning a two-sided
// spectrum shifted so DC is centered along with its frequency bins.
func welchPSD(samples []domain.Sample, sampleRate float64, segLen int) ([]float64, []float64) {
	n := len(samples)
	if segLen <= 0 || segLen > n {
		segLen = n
	}
	if segLen == 0 {
		return nil, nil
	}
	hop := segLen / 2
	if hop == 0 {
		hop = 1
	}

	window := hannWindow(segLen)
	windowPower := 0.0
	for _, w := range window {
		windowPower += w * w
	}

	accum := make([]float64, segLen)
	segments := 0

	buf := make([]complex128, segLen)
	for start := 0; start+segLen <= n; start += hop {
		for i := 0; i < segLen; i++ {
			s := samples[start+i]
			buf[i] = complex(float64(s.I)*window[i], float64(s.Q)*window[i])
		}
		fft(buf)
		for i, v := range buf {
			mag := cmplx.Abs(v)
			accum[i] += (mag * mag) / (windowPower * sampleRate)
		}
		segments++
	}
	if segments == 0 {
		// Block shorter than one segment: fall back to a single pass
		// over whatever samples are available, zero-padded.
		for i := 0; i < segLen && i < n; i++ {
			s := samples[i]
			buf[i] = complex(float64(s.I)*window[i], float64(s.Q)*window[i])
		}
		for i := n; i < segLen; i++ {
			buf[i] = 0
		}
		fft(buf)
		for i, v := range buf {
			mag := cmplx.Abs(v)
			accum[i] = (mag * mag) / (windowPower * sampleRate)
		}
		segments = 1
	}

	psd := make([]float64, segLen)
	for i := range accum {
		psd[i] = accum[i] / float64(segments)
	}

	// fftshift: move DC from index 0 to the center.
	shifted := make([]float64, segLen)
	half := segLen / 2
	copy(shifted[:segLen-half], psd[half:])
	copy(shifted[segLen-half:], psd[:half])

	freqs := make([]float64, segLen)
	binHz := sampleRate / float64(segLen)
	for i := 0; i < segLen; i++ {
		freqs[i] = (float64(i) - float64(half)) * binHz
	}

	return shifted, freqs
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// fft is an in-place radix-2 Cooley-Tukey FFT. For non-power-of-two
// lengths it falls back to a direct DFT; segment lengths are expected to
// be powers of two (the default is 2048) so the fast path is the common
// case.
func fft(a []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}
	if n&(n-1) == 0 {
		fftRadix2(a)
		return
	}
	dft(a)
}

func fftRadix2(a []complex128) {
	n := len(a)
	if n == 1 {
		return
	}
	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	fftRadix2(even)
	fftRadix2(odd)
	for k := 0; k < n/2; k++ {
		t := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		a[k] = even[k] + t
		a[k+n/2] = even[k] - t
	}
}

func dft(a []complex128) {
	n := len(a)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			sum += a[j] * cmplx.Rect(1, angle)
		}
		out[k] = sum
	}
	copy(a, out)
}

// spectralShape derives bandwidth (peak-referenced -10dB rule), spectral
// centroid/spread/flatness, and peak power in dB from a PSD.
func spectralShape(psd, freqs []float64) (bandwidth, centroid, spread, flatness, peakDB float64) {
	if len(psd) == 0 {
		return 0, 0, 0, 0, math.Inf(-1)
	}

	peakIdx := 0
	peak := psd[0]
	for i, p := range psd {
		if p > peak {
			peak = p
			peakIdx = i
		}
	}
	peakDB = powerToDB(peak)
	_ = peakIdx

	thresholdDB := peakDB - 10
	minFreq, maxFreq := math.Inf(1), math.Inf(-1)
	found := false
	for i, p := range psd {
		if powerToDB(p) >= thresholdDB {
			found = true
			if freqs[i] < minFreq {
				minFreq = freqs[i]
			}
			if freqs[i] > maxFreq {
				maxFreq = freqs[i]
			}
		}
	}
	if found {
		bandwidth = maxFreq - minFreq
	}

	var sumP, sumFP float64
	for i, p := range psd {
		sumP += p
		sumFP += p * freqs[i]
	}
	if sumP > 0 {
		centroid = sumFP / sumP
	}

	var sumDevSq float64
	for i, p := range psd {
		d := freqs[i] - centroid
		sumDevSq += p * d * d
	}
	if sumP > 0 {
		spread = math.Sqrt(sumDevSq / sumP)
	}

	flatness = spectralFlatness(psd)
	return
}

// spectralFlatness is the ratio of the geometric mean to the arithmetic
// mean of the PSD, a standard tonality measure: near 0 for tonal
// signals, near 1 for noise-like/OFDM signals.
func spectralFlatness(psd []float64) float64 {
	n := len(psd)
	if n == 0 {
		return 0
	}
	var sumLog, sumLin float64
	count := 0
	for _, p := range psd {
		if p <= 0 {
			continue
		}
		sumLog += math.Log(p)
		sumLin += p
		count++
	}
	if count == 0 {
		return 0
	}
	geoMean := math.Exp(sumLog / float64(count))
	arithMean := sumLin / float64(count)
	if arithMean == 0 {
		return 0
	}
	return geoMean / arithMean
}

func powerToDB(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(p)
}

// detectBursts finds maximal runs of instantaneous power above
// 3x the 25th-percentile noise floor, per §4.2. Adjacent runs separated
// by a gap of less than one sample at the detector's resolution (i.e.
// contiguous indices) are merged — which a single linear scan already
// guarantees.
func detectBursts(samples []domain.Sample, sampleRate, minDurationSec float64) []domain.Burst {
	n := len(samples)
	if n == 0 {
		return nil
	}

	power := make([]float64, n)
	for i, s := range samples {
		m := magnitude(s)
		power[i] = m * m
	}

	sorted := append([]float64(nil), power...)
	sort.Float64s(sorted)
	noiseFloor := percentile(sorted, 25)
	threshold := 3 * noiseFloor

	minSamples := int(minDurationSec * sampleRate)
	if minSamples < 1 {
		minSamples = 1
	}

	var bursts []domain.Burst
	inBurst := false
	start := 0
	var sumPower float64

	flush := func(end int) {
		if !inBurst {
			return
		}
		length := end - start
		if length >= minSamples {
			bursts = append(bursts, domain.Burst{
				StartIndex: start,
				EndIndex:   end - 1,
				Duration:   float64(length) / sampleRate,
				MeanPower:  sumPower / float64(length),
			})
		}
	}

	for i := 0; i < n; i++ {
		above := power[i] > threshold
		if above && !inBurst {
			inBurst = true
			start = i
			sumPower = 0
		}
		if inBurst {
			sumPower += power[i]
		}
		if !above && inBurst {
			flush(i)
			inBurst = false
		}
	}
	flush(n)

	return bursts
}

func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(pct / 100 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
