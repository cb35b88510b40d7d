package hopping

import (
	"context"
	"fmt"

	"github.com/skywatch/dronerid/internal/core/ports"
)

// SDRSwitcher implements ports.ChannelSwitcher by retuning a
// ports.SampleSource's center frequency to the requested 802.11
// channel, using the same plan the Hopper was built from to resolve a
// channel number back to a frequency. It plays the role the teacher's
// LinuxChannelSwitcher plays for an OS network interface, but against
// an SDR front end there is no ioctl to shell out to: retuning is just
// a Configure call.
type SDRSwitcher struct {
	source     ports.SampleSource
	sampleRate float64
	gainDB     float64
	byNumber   map[channelKey]float64
}

type channelKey struct {
	number int
	is5GHz bool
}

// NewSDRSwitcher builds a switcher over source, resolving channel
// numbers to center frequencies via plan. sampleRate and gainDB are
// held fixed across hops; only the center frequency changes.
func NewSDRSwitcher(source ports.SampleSource, plan []Channel, sampleRate, gainDB float64) *SDRSwitcher {
	byNumber := make(map[channelKey]float64, len(plan))
	for _, ch := range plan {
		byNumber[channelKey{ch.Number, ch.Is5GHz}] = ch.CenterFreqHz()
	}
	return &SDRSwitcher{source: source, sampleRate: sampleRate, gainDB: gainDB, byNumber: byNumber}
}

// SetChannel retunes the Sample Source to channel's center frequency.
// Ambiguity between identically numbered 2.4 GHz and 5 GHz channels is
// resolved by preferring whichever band appears in the switcher's plan;
// if both do, the 2.4 GHz entry wins, since the plan is expected to be
// band-disjoint in normal operation (see §4.8).
func (s *SDRSwitcher) SetChannel(ctx context.Context, channel int) error {
	freq, ok := s.byNumber[channelKey{channel, false}]
	if !ok {
		freq, ok = s.byNumber[channelKey{channel, true}]
	}
	if !ok {
		return fmt.Errorf("hopping: channel %d is not part of the active plan", channel)
	}
	return s.source.Configure(ctx, freq, s.sampleRate, s.gainDB)
}
