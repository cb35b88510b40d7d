package ofdm

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestFFT_IFFT_RoundTrip(t *testing.T) {
	in := make([]complex128, 64)
	r := rand.New(rand.NewSource(1))
	for i := range in {
		in[i] = complex(r.Float64(), r.Float64())
	}
	original := append([]complex128(nil), in...)

	fft(in)
	ifft(in)

	for i := range in {
		assert.InDelta(t, real(original[i]), real(in[i]), 1e-9)
		assert.InDelta(t, imag(original[i]), imag(in[i]), 1e-9)
	}
}

func TestFFTShift_MovesDCToCenter(t *testing.T) {
	a := make([]complex128, 8)
	a[0] = complex(1, 0)
	shifted := fftShift(a)
	assert.Equal(t, complex(1, 0), shifted[4])
}

func TestDemap_BPSK(t *testing.T) {
	assert.Equal(t, []bool{false}, demap(complex(1, 0), ModBPSK))
	assert.Equal(t, []bool{true}, demap(complex(-1, 0), ModBPSK))
}

func TestDemap_QPSK(t *testing.T) {
	assert.Equal(t, []bool{false, false}, demap(complex(1, 1), ModQPSK))
	assert.Equal(t, []bool{true, true}, demap(complex(-1, -1), ModQPSK))
}

func TestSignalRate_RejectsReservedCode(t *testing.T) {
	_, ok := signalRate(0b0000)
	assert.False(t, ok)
}

func TestSignalRate_AcceptsKnownCodes(t *testing.T) {
	mod, ok := signalRate(0b1101)
	assert.True(t, ok)
	assert.Equal(t, ModBPSK, mod)
}

func TestReceiver_NoPreambleInNoise(t *testing.T) {
	n := 4096
	samples := make([]domain.Sample, n)
	r := rand.New(rand.NewSource(2))
	for i := range samples {
		samples[i] = domain.Sample{I: float32(r.NormFloat64() * 0.01), Q: float32(r.NormFloat64() * 0.01)}
	}
	block := &domain.SampleBlock{
		Samples:    samples,
		SampleRate: 20e6,
		CenterFreq: 2.412e9,
		CapturedAt: time.Unix(0, 0),
	}

	receiver := NewReceiver()
	result := receiver.Process(block)

	assert.Empty(t, result.Frames)
}

func TestLongTrainingTimeWaveform_HasExpectedLength(t *testing.T) {
	wave := longTrainingTimeWaveform()
	assert.Equal(t, cyclicPrefixLen+fftLen, len(wave))
}

func TestMovingAverage_SmoothsConstantSignal(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 1.0
	}
	avg := movingAverage(x, 10)
	assert.InDelta(t, 1.0, avg[50], 1e-9)
}

// buildSymbol maps one bit per entry of dataSubcarrierOffsets onto a
// BPSK constellation (false -> +1, true -> -1, matching demap's
// decision rule), places each value at its subcarrierBin, and returns
// the cyclic-prefixed time-domain waveform — the inverse of
// demodSymbol, used to synthesize a known OFDM symbol for the
// round-trip test below.
func buildSymbol(bits []bool) []complex128 {
	freq := make([]complex128, fftLen)
	for i, k := range dataSubcarrierOffsets {
		v := 1.0
		if bits[i] {
			v = -1.0
		}
		freq[subcarrierBin(k)] = complex(v, 0)
	}
	ifft(freq)
	out := make([]complex128, cyclicPrefixLen+fftLen)
	copy(out[:cyclicPrefixLen], freq[fftLen-cyclicPrefixLen:])
	copy(out[cyclicPrefixLen:], freq)
	return out
}

// bitsMSBFirst expands each byte of data into 8 bools, most significant
// bit first, matching packBitsMSBFirst's convention.
func bitsMSBFirst(data ...byte) []bool {
	bits := make([]bool, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, b&(1<<uint(i)) != 0)
		}
	}
	return bits
}

// TestReceiver_DecodesKnownSignalAndDataSymbols synthesizes a complete
// short-preamble/long-training/SIGNAL/DATA waveform by construction
// (reusing the package's own IFFT and subcarrier mapping) and checks
// that Process recovers the exact payload bytes encoded in the DATA
// symbol, exercising the channel-estimate and demod subcarrier mapping
// end to end rather than only their constituent helpers.
func TestReceiver_DecodesKnownSignalAndDataSymbols(t *testing.T) {
	const (
		toneLen   = 192 // covers the 10 short-training repetitions search() requires
		ltsStart  = 400 // well inside fineSync's search window, past the tone region
		totalLen  = 750
	)

	samples := make([]complex128, totalLen)
	for i := 0; i < toneLen; i++ {
		samples[i] = cmplx.Rect(1, 2*math.Pi*float64(i)/float64(shortTrainingPeriod))
	}

	lts := longTrainingTimeWaveform()
	copy(samples[ltsStart:ltsStart+len(lts)], lts)

	// SIGNAL field: rate 0b1101 (BPSK), reserved 0, length 4 bytes,
	// even parity over the first 17 bits; the remaining subcarriers of
	// the symbol are unused by the decoder.
	signalBits := make([]bool, len(dataSubcarrierOffsets))
	for i, b := range []bool{true, true, false, true, false, false, false, true} {
		signalBits[i] = b
	}
	signalSymbol := buildSymbol(signalBits)
	signalStart := ltsStart + 2*fftLen
	copy(samples[signalStart:signalStart+len(signalSymbol)], signalSymbol)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	dataBits := make([]bool, len(dataSubcarrierOffsets))
	copy(dataBits, bitsMSBFirst(payload...))
	dataSymbol := buildSymbol(dataBits)
	dataStart := signalStart + cyclicPrefixLen + fftLen
	copy(samples[dataStart:dataStart+len(dataSymbol)], dataSymbol)

	block := &domain.SampleBlock{
		Samples:    toDomainSamples(samples),
		SampleRate: 20e6,
		CenterFreq: 2.412e9,
		CapturedAt: time.Unix(0, 0),
	}

	receiver := NewReceiver()
	result := receiver.Process(block)

	if !assert.Len(t, result.Frames, 1) {
		return
	}
	assert.Equal(t, payload, result.Frames[0].Data)
}

func toDomainSamples(in []complex128) []domain.Sample {
	out := make([]domain.Sample, len(in))
	for i, s := range in {
		out[i] = domain.Sample{I: float32(real(s)), Q: float32(imag(s))}
	}
	return out
}

func TestCorrectCFO_RemovesKnownOffset(t *testing.T) {
	n := 256
	sampleRate := 20e6
	cfo := 1000.0
	samples := make([]complex128, n)
	for i := range samples {
		t := float64(i) / sampleRate
		samples[i] = cmplx.Rect(1, 2*math.Pi*cfo*t)
	}
	corrected := correctCFO(samples, cfo, sampleRate)
	for i := range corrected {
		assert.InDelta(t, 1.0, real(corrected[i]), 1e-6)
		assert.InDelta(t, 0.0, imag(corrected[i]), 1e-6)
	}
}
