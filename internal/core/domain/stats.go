package domain

import "sync/atomic"

// Stats is a lock-free aggregate of pipeline counters, updated by workers
// on the hot path and read by the debug/status HTTP surface and the PDF
// session report. All fields must be accessed through the atomic helpers
// below; the zero value is ready to use.
type Stats struct {
	SampleBlocksCaptured uint64
	FramesCandidate      uint64
	FramesWiFi           uint64
	FramesBLE            uint64
	FramesPattern        uint64
	RecordsDecoded       uint64
	RecordsDropped       uint64
	DetectionsEmitted    uint64
	PubSubPublishErrors  uint64

	// Per-802.11-frame-type counters, reported verbatim in the
	// heartbeat message every 60s, per §4.8.
	FramesBeacon       uint64
	FramesAction       uint64
	FramesProbeResp    uint64
	FramesData         uint64
	FramesControl      uint64
	FramesOtherMgmt    uint64
}

func (s *Stats) IncSampleBlocksCaptured() { atomic.AddUint64(&s.SampleBlocksCaptured, 1) }
func (s *Stats) IncFramesWiFi()           { atomic.AddUint64(&s.FramesWiFi, 1) }
func (s *Stats) IncFramesBLE()            { atomic.AddUint64(&s.FramesBLE, 1) }
func (s *Stats) IncFramesPattern()        { atomic.AddUint64(&s.FramesPattern, 1) }
func (s *Stats) IncRecordsDecoded()       { atomic.AddUint64(&s.RecordsDecoded, 1) }
func (s *Stats) IncRecordsDropped()       { atomic.AddUint64(&s.RecordsDropped, 1) }
func (s *Stats) IncDetectionsEmitted()    { atomic.AddUint64(&s.DetectionsEmitted, 1) }
func (s *Stats) IncPubSubPublishErrors()  { atomic.AddUint64(&s.PubSubPublishErrors, 1) }
func (s *Stats) IncFramesBeacon()         { atomic.AddUint64(&s.FramesBeacon, 1) }
func (s *Stats) IncFramesAction()         { atomic.AddUint64(&s.FramesAction, 1) }
func (s *Stats) IncFramesProbeResp()      { atomic.AddUint64(&s.FramesProbeResp, 1) }
func (s *Stats) IncFramesData()           { atomic.AddUint64(&s.FramesData, 1) }
func (s *Stats) IncFramesControl()        { atomic.AddUint64(&s.FramesControl, 1) }
func (s *Stats) IncFramesOtherMgmt()      { atomic.AddUint64(&s.FramesOtherMgmt, 1) }

func (s *Stats) IncFramesCandidate(n uint64) {
	atomic.AddUint64(&s.FramesCandidate, n)
}

// Snapshot returns a consistent-enough point-in-time copy for reporting.
// Individual counters may be read a tick apart; callers needing strict
// atomicity across fields should not use this path.
func (s *Stats) Snapshot() Stats {
	return Stats{
		SampleBlocksCaptured: atomic.LoadUint64(&s.SampleBlocksCaptured),
		FramesCandidate:      atomic.LoadUint64(&s.FramesCandidate),
		FramesWiFi:           atomic.LoadUint64(&s.FramesWiFi),
		FramesBLE:            atomic.LoadUint64(&s.FramesBLE),
		FramesPattern:        atomic.LoadUint64(&s.FramesPattern),
		RecordsDecoded:       atomic.LoadUint64(&s.RecordsDecoded),
		RecordsDropped:       atomic.LoadUint64(&s.RecordsDropped),
		DetectionsEmitted:    atomic.LoadUint64(&s.DetectionsEmitted),
		PubSubPublishErrors:  atomic.LoadUint64(&s.PubSubPublishErrors),
		FramesBeacon:         atomic.LoadUint64(&s.FramesBeacon),
		FramesAction:         atomic.LoadUint64(&s.FramesAction),
		FramesProbeResp:      atomic.LoadUint64(&s.FramesProbeResp),
		FramesData:           atomic.LoadUint64(&s.FramesData),
		FramesControl:        atomic.LoadUint64(&s.FramesControl),
		FramesOtherMgmt:      atomic.LoadUint64(&s.FramesOtherMgmt),
	}
}
