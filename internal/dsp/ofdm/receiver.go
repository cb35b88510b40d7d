// Package ofdm implements the 802.11 OFDM receiver state machine: short
// preamble detection, coarse carrier-offset correction, long-preamble
// fine sync, channel estimation, per-symbol demodulation, and bit
// assembly into candidate MAC frames.
package ofdm

import (
	"math"
	"math/cmplx"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// State names the seven receiver states of §4.4.
type State int

const (
	StateIdle State = iota
	StateSearch
	StateCoarseSync
	StateFineSync
	StateChannelEst
	StateDemod
	StateAssemble
)

const (
	shortTrainingPeriod  = 16
	movingAvgWindow      = 48
	correlationThreshold = 0.56
	minHoldSamples       = 16
	minShortReps         = 10
	longTrainingWindow   = 320
	cyclicPrefixLen      = 16
	fftLen               = 64
)

// Receiver runs the §4.4 state machine over one conditioned SampleBlock
// at a time. It holds no state across blocks: every call to Process
// starts fresh at StateIdle, matching the spec's "state machine per
// block" framing.
type Receiver struct {
	EqualizerConditionThreshold float64 // default 1e3
}

func NewReceiver() *Receiver {
	return &Receiver{EqualizerConditionThreshold: 1e3}
}

// Result is the outcome of running the receiver over one block.
type Result struct {
	Frames        []domain.CandidateFrame
	DroppedNoPreamble bool
	DroppedDiverged   bool
	DroppedBadSignal  bool
}

// Process implements the IDLE->SEARCH->COARSE-SYNC->FINE-SYNC->
// CHANNEL-EST->DEMOD->ASSEMBLE pipeline. No preamble found is not an
// error: it yields an empty Result with DroppedNoPreamble unset to
// false-but-empty, matching §4.4's "emit nothing" failure mode.
func (r *Receiver) Process(block *domain.SampleBlock) Result {
	samples := toComplex(block.Samples)

	preambleIdx, ok := r.search(samples)
	if !ok {
		return Result{}
	}

	cfo := r.coarseSync(samples, preambleIdx, block.SampleRate)
	corrected := correctCFO(samples, cfo, block.SampleRate)

	ltsStart, ok := r.fineSync(corrected, preambleIdx)
	if !ok {
		return Result{DroppedNoPreamble: true}
	}

	channelEstimate, converged := r.channelEstimate(corrected, ltsStart)
	if !converged {
		return Result{DroppedDiverged: true}
	}

	symbolsStart := ltsStart + 2*fftLen // two long training symbols precede DATA
	frame, ok := r.demodAndAssemble(corrected, symbolsStart, channelEstimate, block)
	if !ok {
		return Result{DroppedBadSignal: true}
	}

	return Result{Frames: []domain.CandidateFrame{frame}}
}

func toComplex(samples []domain.Sample) []complex128 {
	out := make([]complex128, len(samples))
	for i, s := range samples {
		out[i] = complex(float64(s.I), float64(s.Q))
	}
	return out
}

// search slides a 16-sample delayed autocorrelation, smoothed by a
// 48-sample moving average, against an instantaneous-power moving
// average, per §4.4 step 2.
func (r *Receiver) search(samples []complex128) (int, bool) {
	n := len(samples)
	if n < shortTrainingPeriod+movingAvgWindow {
		return 0, false
	}

	corr := make([]float64, n)
	power := make([]float64, n)
	for i := shortTrainingPeriod; i < n; i++ {
		corr[i] = real(samples[i] * cmplx.Conj(samples[i-shortTrainingPeriod]))
		power[i] = real(samples[i] * cmplx.Conj(samples[i]))
	}

	avgCorr := movingAverage(corr, movingAvgWindow)
	avgPower := movingAverage(power, movingAvgWindow)

	holdCount := 0
	for i := 0; i < n; i++ {
		ratio := 0.0
		if avgPower[i] > 0 {
			ratio = avgCorr[i] / avgPower[i]
		}
		if ratio > correlationThreshold {
			holdCount++
		} else {
			holdCount = 0
		}
		if holdCount >= minHoldSamples {
			start := i - holdCount + 1
			if r.countShortRepetitions(samples, start) >= minShortReps {
				return start, true
			}
		}
	}
	return 0, false
}

func (r *Receiver) countShortRepetitions(samples []complex128, start int) int {
	reps := 0
	for i := start; i+2*shortTrainingPeriod <= len(samples); i += shortTrainingPeriod {
		a := samples[i : i+shortTrainingPeriod]
		b := samples[i+shortTrainingPeriod : i+2*shortTrainingPeriod]
		if similar(a, b) {
			reps++
		} else {
			break
		}
	}
	return reps
}

func similar(a, b []complex128) bool {
	var num, denA, denB float64
	for i := range a {
		num += real(a[i] * cmplx.Conj(b[i]))
		denA += real(a[i] * cmplx.Conj(a[i]))
		denB += real(b[i] * cmplx.Conj(b[i]))
	}
	if denA == 0 || denB == 0 {
		return false
	}
	return num/math.Sqrt(denA*denB) > correlationThreshold
}

func movingAverage(x []float64, window int) []float64 {
	n := len(x)
	out := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		sum += x[i]
		if i >= window {
			sum -= x[i-window]
		}
		w := window
		if i+1 < w {
			w = i + 1
		}
		out[i] = sum / float64(w)
	}
	return out
}

// coarseSync estimates carrier frequency offset from the angle of the
// sum of conjugate products between consecutive 16-sample short
// training repetitions, per §4.4 step 3.
func (r *Receiver) coarseSync(samples []complex128, preambleIdx int, sampleRate float64) float64 {
	var sum complex128
	count := 0
	for i := preambleIdx; i+2*shortTrainingPeriod <= len(samples) && count < minShortReps; i += shortTrainingPeriod {
		a := samples[i : i+shortTrainingPeriod]
		b := samples[i+shortTrainingPeriod : i+2*shortTrainingPeriod]
		for k := range a {
			sum += cmplx.Conj(a[k]) * b[k]
		}
		count++
	}
	angle := cmplx.Phase(sum)
	return angle / (2 * math.Pi * shortTrainingPeriod) * sampleRate
}

func correctCFO(samples []complex128, cfoHz, sampleRate float64) []complex128 {
	out := make([]complex128, len(samples))
	for i, s := range samples {
		t := float64(i) / sampleRate
		rot := cmplx.Rect(1, -2*math.Pi*cfoHz*t)
		out[i] = s * rot
	}
	return out
}

// fineSync cross-correlates with the known long-training time-domain
// waveform over a 320-sample search window starting at the expected
// long-training position, per §4.4 step 4.
func (r *Receiver) fineSync(samples []complex128, preambleIdx int) (int, bool) {
	lts := longTrainingTimeWaveform()
	searchStart := preambleIdx + 10*shortTrainingPeriod // short preamble is 160 samples
	searchEnd := searchStart + longTrainingWindow
	if searchEnd > len(samples) {
		searchEnd = len(samples)
	}
	if searchEnd-searchStart < len(lts) {
		return 0, false
	}

	best := -1
	bestScore := -1.0
	for i := searchStart; i+len(lts) <= searchEnd; i++ {
		var score float64
		for k, ref := range lts {
			score += real(samples[i+k] * cmplx.Conj(ref))
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// longTrainingTimeWaveform converts the frequency-domain long training
// sequence into a time-domain reference via a 64-point IFFT, with a
// cyclic prefix equal in length to the data symbol's.
func longTrainingTimeWaveform() []complex128 {
	freq := make([]complex128, fftLen)
	for k, v := range longTrainingSequence {
		idx := k - 26
		if idx < 0 {
			idx += fftLen
		}
		freq[idx] = complex(v, 0)
	}
	ifft(freq)
	out := make([]complex128, cyclicPrefixLen+fftLen)
	copy(out[:cyclicPrefixLen], freq[fftLen-cyclicPrefixLen:])
	copy(out[cyclicPrefixLen:], freq)
	return out
}

// subcarrierBin maps a subcarrier offset relative to DC (the same
// -26..26 convention used by longTrainingSequence and
// dataSubcarrierOffsets) to its index in a fftShift-ed, DC-centered FFT
// output. channelEstimate and demodSymbol must share this mapping or
// the channel taps and the data subcarriers they equalize land on
// different bins.
func subcarrierBin(offset int) int {
	return offset + fftLen/2
}

// channelEstimate computes a 64-tap zero-forcing channel estimate from
// the first long-training symbol, per §4.4 step 5, and reports whether
// the equalizer is well-conditioned enough to proceed.
func (r *Receiver) channelEstimate(samples []complex128, ltsStart int) ([]complex128, bool) {
	symbolStart := ltsStart + cyclicPrefixLen
	if symbolStart+fftLen > len(samples) {
		return nil, false
	}
	symbol := make([]complex128, fftLen)
	copy(symbol, samples[symbolStart:symbolStart+fftLen])
	fft(symbol)
	shifted := fftShift(symbol)

	estimate := make([]complex128, fftLen)
	minMag := math.Inf(1)
	maxMag := 0.0
	for k, v := range longTrainingSequence {
		if v == 0 {
			continue
		}
		bin := subcarrierBin(k - 26)
		est := shifted[bin] / complex(v, 0)
		estimate[bin] = est
		mag := cmplx.Abs(est)
		if mag < minMag {
			minMag = mag
		}
		if mag > maxMag {
			maxMag = mag
		}
	}
	if minMag == 0 {
		return estimate, false
	}
	condition := maxMag / minMag
	return estimate, condition <= r.EqualizerConditionThreshold
}

// demodAndAssemble demodulates the SIGNAL symbol (always BPSK) to learn
// the frame's rate and length, then demodulates the remaining symbols at
// that rate and packs the resulting bits MSB-first into bytes, per §4.4
// steps 6-7.
func (r *Receiver) demodAndAssemble(samples []complex128, symbolsStart int, channel []complex128, block *domain.SampleBlock) (domain.CandidateFrame, bool) {
	signalBits, ok := r.demodSymbol(samples, symbolsStart, channel, ModBPSK)
	if !ok || len(signalBits) < 18 {
		return domain.CandidateFrame{}, false
	}

	rateBits := uint8(0)
	for i := 0; i < 4; i++ {
		if signalBits[i] {
			rateBits |= 1 << uint(3-i)
		}
	}
	mod, ok := signalRate(rateBits)
	if !ok {
		return domain.CandidateFrame{}, false
	}
	if !evenParity(signalBits[:17]) {
		return domain.CandidateFrame{}, false
	}

	lengthBits := signalBits[5:17]
	length := 0
	for i, bit := range lengthBits {
		if bit {
			length |= 1 << uint(i)
		}
	}
	if length <= 0 {
		return domain.CandidateFrame{}, false
	}

	totalBits := length * 8
	var bits []bool
	symbolIdx := 1
	for len(bits) < totalBits {
		offset := symbolsStart + symbolIdx*(cyclicPrefixLen+fftLen)
		symBits, ok := r.demodSymbol(samples, offset, channel, mod)
		if !ok {
			return domain.CandidateFrame{}, false
		}
		bits = append(bits, symBits...)
		symbolIdx++
		if symbolIdx > 10000 { // hard safety bound, never reached by valid frames
			return domain.CandidateFrame{}, false
		}
	}
	bits = bits[:totalBits]

	data := packBitsMSBFirst(bits)

	return domain.CandidateFrame{
		Data:       data,
		Channel:    block.Channel,
		CapturedAt: block.CapturedAt,
		Transport:  domain.TransportWiFiBeacon,
		CenterFreq: block.CenterFreq,
	}, true
}

// demodSymbol drops the cyclic prefix, FFTs the remaining 64 samples,
// shifts so DC is centered, zero-forces against the channel estimate,
// and demaps the 48 data subcarriers.
func (r *Receiver) demodSymbol(samples []complex128, offset int, channel []complex128, mod Modulation) ([]bool, bool) {
	symbolStart := offset + cyclicPrefixLen
	if symbolStart+fftLen > len(samples) {
		return nil, false
	}
	symbol := make([]complex128, fftLen)
	copy(symbol, samples[symbolStart:symbolStart+fftLen])
	fft(symbol)
	shifted := fftShift(symbol)

	bits := make([]bool, 0, len(dataSubcarrierOffsets)*mod.BitsPerSymbol())
	for _, k := range dataSubcarrierOffsets {
		bin := subcarrierBin(k)
		h := channel[bin]
		if h == 0 {
			h = complex(1e-9, 0)
		}
		eq := shifted[bin] / h
		bits = append(bits, demap(eq, mod)...)
	}
	return bits, true
}

func evenParity(bits []bool) bool {
	count := 0
	for _, b := range bits {
		if b {
			count++
		}
	}
	return count%2 == 0
}

func packBitsMSBFirst(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if !b {
			continue
		}
		byteIdx := i / 8
		bitIdx := 7 - (i % 8)
		out[byteIdx] |= 1 << uint(bitIdx)
	}
	return out
}
