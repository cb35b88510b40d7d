package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/geo"
	"github.com/skywatch/dronerid/internal/telemetry"
	"github.com/skywatch/dronerid/internal/threat"
)

// DetectionSink is the narrow slice of pubsub.Sink the Emitter needs,
// kept as an interface so tests can substitute a recording fake
// instead of a live MQTT connection.
type DetectionSink interface {
	Publish(ctx context.Context, d *domain.Detection) error
}

// Broadcaster mirrors published detections onto the debug/status
// WebSocket stream (§6.2); web.Hub satisfies it. Nil is a valid,
// no-op Emitter field for callers that don't run the HTTP surface.
type Broadcaster interface {
	Broadcast(d domain.Detection)
}

// Emitter merges decoded RemoteIDRecords from the Wi-Fi and BLE paths,
// keyed by Detection.Key, scores each against the §4.8 threat rule set,
// and publishes the fused Detection. It is the single writer of the
// shared detection table, so its internal state needs no additional
// locking beyond the map mutex guarding reads from the debug/status
// surface.
type Emitter struct {
	sink   DetectionSink
	hub    Broadcaster
	zones  []domain.Geofence
	limits threat.Limits

	// operator is the sensor's own position, used for the §4.8
	// operator-distance check. Nil means the sensor has no fixed
	// position configured, matching a mobile or unsurveyed deployment.
	operator geo.Provider

	mu         sync.RWMutex
	detections map[string]*domain.Detection
	nextID     uint64
}

// NewEmitter builds an Emitter bound to sink and the data-fusion
// parameters from configuration. operator may be nil when the sensor's
// own position is not configured.
func NewEmitter(sink DetectionSink, zones []domain.Geofence, limits threat.Limits, operator geo.Provider) *Emitter {
	return &Emitter{
		sink:       sink,
		zones:      zones,
		limits:     limits,
		operator:   operator,
		detections: make(map[string]*domain.Detection),
	}
}

// SetHub attaches a Broadcaster that mirrors every published detection
// onto the debug/status WebSocket stream; pass nil to disable mirroring.
func (e *Emitter) SetHub(hub Broadcaster) {
	e.hub = hub
}

// Run drains in, merging and publishing a Detection for every record,
// until ctx is cancelled or in is closed.
func (e *Emitter) Run(ctx context.Context, stats *domain.Stats, in <-chan *domain.RemoteIDRecord) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-in:
			if !ok {
				return nil
			}
			d := e.merge(rec)
			stats.IncDetectionsEmitted()
			telemetry.DetectionsEmitted.WithLabelValues(d.Threat.Level.String()).Inc()

			if err := e.sink.Publish(ctx, d); err != nil {
				stats.IncPubSubPublishErrors()
				telemetry.PubSubPublishErrors.WithLabelValues("drone/detection").Inc()
				slog.Warn("publish detection failed", "error", err, "key", d.Key())
			}
			if e.hub != nil {
				e.hub.Broadcast(*d)
			}
		}
	}
}

// merge folds rec into the existing Detection for its key, scoring the
// threat assessment fresh on every sighting since position and
// kinematics change between bursts.
func (e *Emitter) merge(rec *domain.RemoteIDRecord) *domain.Detection {
	var operatorLat, operatorLon float64
	hasOperatorFix := e.operator != nil
	if hasOperatorFix {
		loc := e.operator.GetLocation()
		operatorLat, operatorLon = loc.Latitude, loc.Longitude
	}

	assessment := threat.Assess(threat.Input{
		Record:            rec,
		Zones:             e.zones,
		OperatorLatitude:  operatorLat,
		OperatorLongitude: operatorLon,
		HasOperatorFix:    hasOperatorFix,
		Limits:            e.limits,
	})

	now := rec.SourceTimestamp
	if now.IsZero() {
		now = time.Now()
	}

	key := (&domain.Detection{Record: *rec}).Key()

	e.mu.Lock()
	defer e.mu.Unlock()

	d, exists := e.detections[key]
	if !exists {
		d = &domain.Detection{
			ID:        atomic.AddUint64(&e.nextID, 1),
			FirstSeen: now,
		}
		e.detections[key] = d
	}
	d.Record = *rec
	d.Threat = assessment
	d.LastSeen = now
	d.SeenCount++

	snapshot := *d
	return &snapshot
}

// Snapshot returns the current fused-detection table for the
// debug/status surface and the session report.
func (e *Emitter) Snapshot() []domain.Detection {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Detection, 0, len(e.detections))
	for _, d := range e.detections {
		out = append(out, *d)
	}
	return out
}
