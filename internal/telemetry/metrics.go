package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SampleBlocksCaptured counts SampleBlocks pulled off the Sample
	// Source, labeled by channel.
	SampleBlocksCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "sample_blocks_captured_total",
			Help:      "Total number of sample blocks captured from the SDR",
		},
		[]string{"channel"},
	)

	// SampleBlocksDropped counts blocks dropped by the Sample worker's
	// drop-oldest back-pressure policy.
	SampleBlocksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "sample_blocks_dropped_total",
			Help:      "Total number of sample blocks dropped due to queue back-pressure",
		},
		[]string{"reason"},
	)

	// FramesDecoded counts candidate frames that produced a valid Remote
	// ID record, labeled by transport.
	FramesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "frames_decoded_total",
			Help:      "Total number of candidate frames that decoded to a valid Remote ID record",
		},
		[]string{"transport"},
	)

	// FramesDropped counts candidate frames rejected at any pipeline
	// stage, labeled by the stage and reason.
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "frames_dropped_total",
			Help:      "Total number of candidate frames dropped before producing a record",
		},
		[]string{"stage", "reason"},
	)

	// DetectionsEmitted counts fused Detection events published to the
	// pub/sub sink, labeled by threat level.
	DetectionsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "detections_emitted_total",
			Help:      "Total number of fused detection events emitted",
		},
		[]string{"threat_level"},
	)

	// PubSubPublishErrors counts failed publishes, labeled by topic.
	PubSubPublishErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronerid",
			Name:      "pubsub_publish_errors_total",
			Help:      "Total number of pub/sub publish failures",
		},
		[]string{"topic"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus
// registry. Idempotent; safe to call multiple times.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(SampleBlocksCaptured)
		prometheus.DefaultRegisterer.Register(SampleBlocksDropped)
		prometheus.DefaultRegisterer.Register(FramesDecoded)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(DetectionsEmitted)
		prometheus.DefaultRegisterer.Register(PubSubPublishErrors)
	})
}
