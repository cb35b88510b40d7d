package domain

import "time"

// Detection is the fused event emitted by the Orchestrator once a
// RemoteIDRecord has been scored by the Threat/Fusion stage. It is the
// unit published to the Pub/Sub Sink and rendered on the debug/status
// surface.
type Detection struct {
	ID        uint64 // monotonic, assigned by the emitter worker
	Record    RemoteIDRecord
	Threat    ThreatAssessment
	FirstSeen time.Time
	LastSeen  time.Time
	SeenCount int
}

// Key groups detections belonging to the same aircraft: Basic-ID when
// present, otherwise falls back to the transport source address so that
// pattern-detection and undecoded records still dedupe across bursts.
func (d *Detection) Key() string {
	if d.Record.BasicID != nil && d.Record.BasicID.UASID != "" {
		return d.Record.BasicID.UASID
	}
	return d.Record.SourceAddress
}
