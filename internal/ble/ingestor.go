// Package ble runs the BLE advertisement ingest path: it drives a
// ports.BLESource scan loop, offers each advertisement's payloads to
// the Remote ID Decoder, and restarts the scan with bounded
// exponential backoff when the underlying adapter errors, per §4.7.
package ble

import (
	"context"
	"log/slog"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second

	// minPayloadLen is the smallest service-data/manufacturer-data blob
	// the Ingestor will offer to the decoder, per §4.7.
	minPayloadLen = 5
)

// Ingestor owns a BLE Source for the lifetime of Run, restarting scans
// transparently on error and posting decoded records to out.
type Ingestor struct {
	source  ports.BLESource
	decoder ports.RemoteIDDecoder
}

func NewIngestor(source ports.BLESource, decoder ports.RemoteIDDecoder) *Ingestor {
	return &Ingestor{source: source, decoder: decoder}
}

// Run drives the BLE scan loop until ctx is cancelled, sending a
// decoded record to out for every candidate frame whose payload
// satisfies the §3 emission invariant. Run owns the cooperative task
// loop described in §5: it is meant to be invoked from a single
// dedicated goroutine, never called concurrently with itself.
func (in *Ingestor) Run(ctx context.Context, out chan<- *domain.RemoteIDRecord) error {
	backoff := minBackoff

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frames, err := in.source.Scan(ctx)
		if err != nil {
			slog.Warn("ble: scan failed, backing off", "err", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = minBackoff

		if !in.drain(ctx, frames, out) {
			return ctx.Err()
		}
	}
}

// drain consumes frames until the channel closes or ctx is cancelled.
// It returns false if ctx was cancelled.
func (in *Ingestor) drain(ctx context.Context, frames <-chan *domain.CandidateFrame, out chan<- *domain.RemoteIDRecord) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case frame, ok := <-frames:
			if !ok {
				return true
			}
			in.handle(ctx, frame, out)
		}
	}
}

func (in *Ingestor) handle(ctx context.Context, frame *domain.CandidateFrame, out chan<- *domain.RemoteIDRecord) {
	if len(frame.Data) < minPayloadLen {
		return
	}
	rec, err := in.decoder.Decode(frame)
	if err != nil {
		slog.Warn("ble: decode failed", "err", err)
		return
	}
	if !rec.Valid() {
		return
	}
	select {
	case out <- rec:
	case <-ctx.Done():
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(d time.Duration) time.Duration {
	next := d * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
