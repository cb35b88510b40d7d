// Package ports declares the interfaces through which the orchestrator
// reaches hardware, transports, and external sinks, keeping
// internal/core free of any concrete adapter dependency.
package ports

import (
	"context"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// SampleSource is the abstraction for an SDR front end. Implementations
// range from a real USRP-class device to a deterministic in-memory test
// double (internal/sdr).
type SampleSource interface {
	// Configure applies center frequency, sample rate, and gain before
	// acquisition begins. It may be called again between Close calls to
	// retune, e.g. after a channel hop.
	Configure(ctx context.Context, centerFreq, sampleRate, gainDB float64) error

	// ReadBlock blocks until one SampleBlock of the requested length is
	// available or ctx is cancelled.
	ReadBlock(ctx context.Context, length int) (*domain.SampleBlock, error)

	// Close releases the underlying device.
	Close() error
}

// BLESource abstracts a BLE HCI scanner. Advertising reports are pushed
// onto the returned channel until ctx is cancelled or Close is called;
// the channel is closed by the implementation when scanning stops.
type BLESource interface {
	Scan(ctx context.Context) (<-chan *domain.CandidateFrame, error)
	Close() error
}

// ChannelSwitcher retunes a Wi-Fi-capable radio to a given 802.11
// channel number, mirroring the teacher's hopping.ChannelSwitcher
// abstraction but driven by the SDR's center frequency instead of an
// OS network interface.
type ChannelSwitcher interface {
	SetChannel(ctx context.Context, channel int) error
}

// PubSubSink publishes a fused Detection to an external broker. Publish
// must be safe for concurrent use and must not block past ctx's
// deadline.
type PubSubSink interface {
	Publish(ctx context.Context, d *domain.Detection) error
	Close() error
}

// RemoteIDDecoder turns a CandidateFrame produced by either the Wi-Fi or
// BLE ingest paths into a RemoteIDRecord. Implementations must never
// panic on malformed input; a decode failure is reported as an error.
type RemoteIDDecoder interface {
	Decode(frame *domain.CandidateFrame) (*domain.RemoteIDRecord, error)
}
