// Package orchestrator wires the acquisition, DSP, decode, and fusion
// stages into a supervised set of concurrent workers, mirroring the
// teacher's Application facade: one place that owns the wiring and the
// worker lifecycle, while each stage's actual logic lives in its own
// package.
package orchestrator

import (
	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/dsp"
	"github.com/skywatch/dronerid/internal/dsp/ofdm"
	"github.com/skywatch/dronerid/internal/oui"
	"github.com/skywatch/dronerid/internal/remoteid"
	"github.com/skywatch/dronerid/internal/wifi/parser"
)

// Pipeline runs one captured SampleBlock through preprocessing,
// spectral analysis, Wi-Fi gating, OFDM reception, and Remote ID
// decoding, per §4.1-§4.6. It holds no per-block mutable state, and
// its *ofdm.Receiver keeps none between Process calls either, so one
// Pipeline is safe to share across DSP workers.
type Pipeline struct {
	preprocessor *dsp.Preprocessor
	analyzer     *dsp.Analyzer
	receiver     *ofdm.Receiver
	decoder      *remoteid.Decoder
}

// NewPipeline builds a Pipeline from the given stage configuration.
func NewPipeline(preCfg dsp.PreprocessConfig, specCfg dsp.SpectralConfig) *Pipeline {
	return &Pipeline{
		preprocessor: dsp.NewPreprocessor(preCfg),
		analyzer:     dsp.NewAnalyzer(specCfg),
		receiver:     ofdm.NewReceiver(),
		decoder:      remoteid.NewDecoder(),
	}
}

// Outcome is everything the orchestrator's DSP worker needs out of one
// processed block: zero or more decoded Remote ID records plus the
// classifier verdict, which the DSP worker publishes on
// drone/classification.
type Outcome struct {
	Records       []*domain.RemoteIDRecord
	Verdict       dsp.ClassifierVerdict
	DroppedReason string // empty unless the OFDM receiver dropped the block
}

// Run conditions block, classifies it, and — when the classifier thinks
// it plausibly carries an 802.11 OFDM transmission — runs the OFDM
// receiver and decodes any resulting candidate frames. Vendor lookup
// (§4.9) is applied to every record before it is returned.
func (p *Pipeline) Run(block *domain.SampleBlock) Outcome {
	conditioned, snr := p.preprocessor.Process(block)
	features := p.analyzer.Analyze(conditioned)
	features.SNRDB = snr

	verdict := dsp.ClassifyWiFi(features, conditioned.CenterFreq)
	if !verdict.IsWiFi {
		return Outcome{Verdict: verdict}
	}

	result := p.receiver.Process(conditioned)
	outcome := Outcome{Verdict: verdict}
	switch {
	case result.DroppedNoPreamble:
		outcome.DroppedReason = "no_preamble"
	case result.DroppedDiverged:
		outcome.DroppedReason = "channel_diverged"
	case result.DroppedBadSignal:
		outcome.DroppedReason = "bad_signal"
	}

	for i := range result.Frames {
		frame := result.Frames[i]

		// The OFDM receiver hands back the assembled MAC frame body; the
		// Frame Parser strips the 802.11 header and isolates the
		// OpenDroneID Vendor-Specific IE before the Remote ID Decoder
		// ever sees a byte, per §4.5.
		parsed, err := parser.Parse(frame.Data)
		if err != nil {
			continue
		}
		vendorData, ok := parsed.OpenDroneIDVendorData()
		if !ok {
			continue
		}
		frame.Data = vendorData
		frame.SourceMAC = parsed.SourceMAC

		rec, err := p.decoder.Decode(&frame)
		if err != nil || !rec.Valid() {
			continue
		}
		rec.Vendor = oui.Lookup(rec.SourceAddress)
		outcome.Records = append(outcome.Records, rec)
	}

	return outcome
}
