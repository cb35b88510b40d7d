package remoteid

import (
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// Bounded tolerance-scan windows, per §4.6 and §8 property 7: for Wi-Fi
// frames that failed the structured path, at most the last 128 bytes
// are retried; for BLE, at most the last 64.
const (
	wifiToleranceWindow = 128
	bleToleranceWindow  = 64
)

// Decoder implements ports.RemoteIDDecoder: structured ASTM F3411
// parsing, pattern fallback, and a bounded tolerance scan over
// suffixes of the input.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode walks frame.Data through the structured parser, then the
// pattern fallback, then the bounded tolerance scan, returning the
// first record that satisfies the §3 emission invariant. When none
// does, it returns the structured parser's record, whose Valid() is
// false; the error is always nil.
func (d *Decoder) Decode(frame *domain.CandidateFrame) (*domain.RemoteIDRecord, error) {
	window := wifiToleranceWindow
	if frame.Transport == domain.TransportBLEAdvertising {
		window = bleToleranceWindow
	}
	rec := d.decodeBytes(frame.Data, window)
	rec.SourceTimestamp = frame.CapturedAt
	rec.Transport = resolveTransport(frame.Transport, rec.Transport)
	rec.SourceAddress = frame.SourceMAC
	rec.CenterFreqHz = frame.CenterFreq
	rec.GainDB = frame.Gain
	return rec, nil
}

func resolveTransport(frameTransport, recordTransport domain.Transport) domain.Transport {
	if recordTransport == domain.TransportPatternDetected {
		return recordTransport
	}
	return frameTransport
}

// decodeBytes runs the full structured -> pattern -> tolerance-scan
// pipeline over an arbitrary byte window (a VS-IE VendorData blob, a
// BLE service-data/manufacturer-data blob, or a raw test buffer),
// bounding the tolerance scan to window bytes.
func (d *Decoder) decodeBytes(data []byte, window int) *domain.RemoteIDRecord {
	rec := &domain.RemoteIDRecord{}
	parseMessages(data, rec)
	if rec.Valid() {
		return rec
	}

	if pattern, ok := scanPatterns(data); ok {
		return pattern
	}

	if scanned, ok := toleranceScan(data, window); ok {
		return scanned
	}

	return rec
}

// DecodeBLE runs the same pipeline but with the shorter BLE tolerance
// window, for service-data/manufacturer-data blobs per §4.7 that arrive
// without a CandidateFrame. The BLE Ingestor goes through Decode, which
// selects the same window for BLE-transport frames.
func (d *Decoder) DecodeBLE(address string, blob []byte, capturedAt time.Time) *domain.RemoteIDRecord {
	rec := d.decodeBytes(blob, bleToleranceWindow)
	rec.SourceTimestamp = capturedAt
	rec.SourceAddress = address
	if rec.Transport != domain.TransportPatternDetected {
		rec.Transport = domain.TransportBLEAdvertising
	}
	return rec
}

// toleranceScan tries each suffix of data, starting from the window
// bound and moving toward the end, and accepts the first structured
// record that satisfies the §3 invariant. This recovers Remote ID
// messages embedded at an unexpected offset within a Wi-Fi frame or BLE
// blob, bounded to the last `window` bytes so the scan cost stays
// constant, per §8 property 7.
func toleranceScan(data []byte, window int) (*domain.RemoteIDRecord, bool) {
	start := 0
	if len(data) > window {
		start = len(data) - window
	}
	for offset := start; offset < len(data); offset++ {
		rec := &domain.RemoteIDRecord{}
		parseMessages(data[offset:], rec)
		if rec.Valid() {
			return rec, true
		}
	}
	return nil, false
}
