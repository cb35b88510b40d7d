package domain

import "time"

// Sample is a single complex baseband sample (I/Q pair).
type Sample struct {
	I float32
	Q float32
}

// SampleBlock is an ordered, immutable sequence of complex samples captured
// in one acquisition call. All downstream DSP stages operate on a copy or a
// freshly derived block; nothing mutates a SampleBlock in place once it has
// been handed off by the Sample worker.
type SampleBlock struct {
	Samples    []Sample
	StartIndex int64
	SampleRate float64 // Hz
	CenterFreq float64 // Hz
	CapturedAt time.Time
	Channel    int // Wi-Fi channel number active when the block was captured, 0 if unknown
}

// Len returns the number of samples in the block.
func (b *SampleBlock) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Clone returns a deep copy of the block, used by DSP stages that must
// return a same-length block without aliasing the input's backing array.
func (b *SampleBlock) Clone() *SampleBlock {
	out := *b
	out.Samples = make([]Sample, len(b.Samples))
	copy(out.Samples, b.Samples)
	return &out
}
