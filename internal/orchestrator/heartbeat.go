package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/pubsub"
)

// heartbeatInterval matches §4.8's "process-health message every 60s".
const heartbeatInterval = 60 * time.Second

// HealthSink is the narrow slice of pubsub.Sink the heartbeat worker
// needs.
type HealthSink interface {
	PublishHealth(ctx context.Context, payload pubsub.HealthPayload) error
}

// heartbeatWorker publishes a system/health snapshot on a fixed tick
// until ctx is cancelled.
func heartbeatWorker(ctx context.Context, sink HealthSink, clientID string, stats *domain.Stats) error {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s := stats.Snapshot()
			payload := pubsub.HealthPayload{
				Status:               "ok",
				ClientID:             clientID,
				FramesBeacon:         s.FramesBeacon,
				FramesAction:         s.FramesAction,
				FramesProbeResponse:  s.FramesProbeResp,
				FramesData:           s.FramesData,
				FramesControl:        s.FramesControl,
				FramesOther:          s.FramesOtherMgmt,
				DetectionsEmitted:    s.DetectionsEmitted,
			}
			if err := sink.PublishHealth(ctx, payload); err != nil {
				slog.Warn("publish heartbeat failed", "error", err)
			}
		}
	}
}
