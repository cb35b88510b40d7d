package orchestrator

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
	"github.com/skywatch/dronerid/internal/hopping"
	"github.com/skywatch/dronerid/internal/pubsub"
	"github.com/skywatch/dronerid/internal/telemetry"
)

// ClassificationSink is the narrow slice of pubsub.Sink the dsp worker
// needs to publish each block's classifier verdict on drone/classification,
// independently of whether the block yielded a decoded record.
type ClassificationSink interface {
	PublishClassification(ctx context.Context, payload pubsub.ClassificationPayload) error
}

// queueDepth bounds every inter-worker channel, per §5's back-pressure
// policy. A full sample queue drops the oldest pending block rather
// than blocking the sample worker; producers on the record queue block
// until there is room or the context is cancelled.
const queueDepth = 10

// pushDropOldest enqueues v onto ch, discarding the oldest queued item
// (and counting it as a drop) when the queue is already full. Callers
// must be the queue's sole producer; its only user, the sample queue,
// has exactly one.
func pushDropOldest[T any](ch chan T, v T, onDrop func()) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
		if onDrop != nil {
			onDrop()
		}
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

const (
	sampleReadRetryDelay = 500 * time.Millisecond
	sampleBlockLength    = 150000
)

// sampleWorker pulls SampleBlocks off source and feeds them to the DSP
// stage, honoring the bounded-queue drop-oldest policy on back-pressure.
func sampleWorker(ctx context.Context, source ports.SampleSource, stats *domain.Stats, out chan *domain.SampleBlock) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		block, err := source.ReadBlock(ctx, sampleBlockLength)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("sample source read failed", "error", err)
			telemetry.SampleBlocksDropped.WithLabelValues("read_error").Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sampleReadRetryDelay):
			}
			continue
		}
		stats.IncSampleBlocksCaptured()
		telemetry.SampleBlocksCaptured.WithLabelValues(channelLabel(block.Channel)).Inc()
		pushDropOldest(out, block, func() {
			telemetry.SampleBlocksDropped.WithLabelValues("queue_full").Inc()
		})
	}
}

// dspWorker drains sample blocks, runs them through the Pipeline, and
// forwards every decoded record to out. Every block's classifier verdict
// is also published on drone/classification, per §6.1, since a low-
// confidence verdict is itself useful telemetry even when no record
// decodes.
func dspWorker(ctx context.Context, pipeline *Pipeline, sink ClassificationSink, stats *domain.Stats, in <-chan *domain.SampleBlock, out chan<- *domain.RemoteIDRecord) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-in:
			if !ok {
				return nil
			}
			outcome := pipeline.Run(block)
			if outcome.DroppedReason != "" {
				stats.IncRecordsDropped()
				telemetry.FramesDropped.WithLabelValues("ofdm", outcome.DroppedReason).Inc()
			}
			if err := sink.PublishClassification(ctx, pubsub.ClassificationPayload{
				IsWiFi:     outcome.Verdict.IsWiFi,
				Confidence: outcome.Verdict.Confidence,
				Channel:    outcome.Verdict.Channel,
			}); err != nil {
				stats.IncPubSubPublishErrors()
				telemetry.PubSubPublishErrors.WithLabelValues("drone/classification").Inc()
				slog.Warn("publish classification failed", "error", err)
			}
			for _, rec := range outcome.Records {
				stats.IncFramesWiFi()
				stats.IncRecordsDecoded()
				telemetry.FramesDecoded.WithLabelValues(string(rec.Transport)).Inc()
				select {
				case out <- rec:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// hopperWorker runs the channel hopper until ctx is cancelled. Start
// itself never returns an error; it recovers internally and logs, per
// internal/hopping's own contract.
func hopperWorker(ctx context.Context, hopper *hopping.Hopper) error {
	hopper.Start(ctx)
	return ctx.Err()
}

func channelLabel(channel int) string {
	if channel <= 0 {
		return "unknown"
	}
	return strconv.Itoa(channel)
}
