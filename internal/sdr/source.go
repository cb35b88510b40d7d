// Package sdr provides the Sample Source boundary: the SDR hardware
// driver itself is an external collaborator (§6), so this package only
// ships the consumed-interface contract plus a deterministic in-memory
// test double (see mock.go). A real hardware binding is a separate
// build-tagged adapter outside this exercise's scope.
package sdr

import (
	"context"
	"fmt"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
)

// Config mirrors the acquisition section of the YAML configuration
// (§10.1): the knobs a Sample Source is configured with before
// acquisition begins.
type Config struct {
	CenterFreqHz float64
	SampleRateHz float64
	GainDB       float64
}

// Unconfigured is returned by ReadBlock when Configure has not yet
// been called.
var Unconfigured = fmt.Errorf("sdr: source has not been configured")

// NullSource is a ports.SampleSource that accepts configuration but
// never produces samples; it errors on every ReadBlock. It exists so a
// binary can be wired against internal/sdr without a real hardware
// adapter compiled in, failing loudly rather than silently at the
// acquisition boundary.
type NullSource struct {
	configured bool
	cfg        Config
}

var _ ports.SampleSource = (*NullSource)(nil)

func NewNullSource() *NullSource {
	return &NullSource{}
}

func (n *NullSource) Configure(ctx context.Context, centerFreq, sampleRate, gainDB float64) error {
	n.cfg = Config{CenterFreqHz: centerFreq, SampleRateHz: sampleRate, GainDB: gainDB}
	n.configured = true
	return nil
}

func (n *NullSource) ReadBlock(ctx context.Context, length int) (*domain.SampleBlock, error) {
	if !n.configured {
		return nil, Unconfigured
	}
	return nil, fmt.Errorf("sdr: no hardware adapter compiled in")
}

func (n *NullSource) Close() error {
	return nil
}
