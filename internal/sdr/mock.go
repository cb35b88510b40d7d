package sdr

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
)

// MockSource is a deterministic in-memory ports.SampleSource test
// double, mirroring the teacher's sniffer.NewMock pattern of a
// scriptable stand-in for an external hardware collaborator. Rather
// than generating random devices on a ticker, it replays a
// caller-supplied queue of SampleBlocks, so property and scenario
// tests in §8 never depend on real hardware or on non-reproducible
// randomness.
type MockSource struct {
	mu         sync.Mutex
	queue      []*domain.SampleBlock
	cursor     int
	configured []Config
	closed     bool
}

var _ ports.SampleSource = (*MockSource)(nil)

// NewMock builds a MockSource that replays blocks in order.
func NewMock(blocks ...*domain.SampleBlock) *MockSource {
	return &MockSource{queue: blocks}
}

// Configure records the requested tuning so tests can assert on the
// sequence of center frequencies a hopper drove the source to.
func (m *MockSource) Configure(ctx context.Context, centerFreq, sampleRate, gainDB float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured = append(m.configured, Config{CenterFreqHz: centerFreq, SampleRateHz: sampleRate, GainDB: gainDB})
	return nil
}

// ConfigureCalls returns a copy of every Configure call observed so
// far, in order.
func (m *MockSource) ConfigureCalls() []Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Config, len(m.configured))
	copy(out, m.configured)
	return out
}

// ReadBlock returns the next queued block, cycling back to the start
// once the queue is exhausted so a long-running worker loop has a
// steady, reproducible stream to consume. An empty queue yields an
// error rather than blocking forever.
func (m *MockSource) ReadBlock(ctx context.Context, length int) (*domain.SampleBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("sdr: mock source is closed")
	}
	if len(m.queue) == 0 {
		return nil, fmt.Errorf("sdr: mock source queue is empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	block := m.queue[m.cursor%len(m.queue)]
	m.cursor++
	return block.Clone(), nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// NewDeterministicTone builds a SampleBlock containing a pure complex
// exponential at toneHz within a block sampled at sampleRate, useful
// for exercising the DSP and classifier stages against a signal whose
// expected spectral features are known in closed form.
func NewDeterministicTone(sampleRate, centerFreq, toneHz float64, numSamples int, startIndex int64, capturedAt time.Time) *domain.SampleBlock {
	samples := make([]domain.Sample, numSamples)
	for n := 0; n < numSamples; n++ {
		phase := 2 * math.Pi * toneHz * float64(n) / sampleRate
		samples[n] = domain.Sample{I: float32(math.Cos(phase)), Q: float32(math.Sin(phase))}
	}
	return &domain.SampleBlock{
		Samples:    samples,
		StartIndex: startIndex,
		SampleRate: sampleRate,
		CenterFreq: centerFreq,
		CapturedAt: capturedAt,
	}
}

// NewDeterministicNoise builds a SampleBlock of reproducible
// pseudo-random complex samples using a fixed-seed linear congruential
// generator, so repeated test runs see byte-identical noise without
// depending on math/rand's global state.
func NewDeterministicNoise(sampleRate, centerFreq float64, numSamples int, seed uint64, startIndex int64, capturedAt time.Time) *domain.SampleBlock {
	samples := make([]domain.Sample, numSamples)
	state := seed | 1
	next := func() float32 {
		state = state*6364136223846793005 + 1442695040888963407
		// Take the high bits, map to roughly [-1, 1).
		return float32(int32(state>>40)-(1<<23)) / float32(1<<23)
	}
	for n := 0; n < numSamples; n++ {
		samples[n] = domain.Sample{I: next(), Q: next()}
	}
	return &domain.SampleBlock{
		Samples:    samples,
		StartIndex: startIndex,
		SampleRate: sampleRate,
		CenterFreq: centerFreq,
		CapturedAt: capturedAt,
	}
}
