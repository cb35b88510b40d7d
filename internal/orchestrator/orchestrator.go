package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skywatch/dronerid/internal/ble"
	"github.com/skywatch/dronerid/internal/config"
	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
	"github.com/skywatch/dronerid/internal/dsp"
	"github.com/skywatch/dronerid/internal/geo"
	"github.com/skywatch/dronerid/internal/hopping"
	"github.com/skywatch/dronerid/internal/pubsub"
	"github.com/skywatch/dronerid/internal/remoteid"
	"github.com/skywatch/dronerid/internal/threat"
)

// Orchestrator owns the wiring between the Sample Source, the DSP
// pipeline, the channel hopper, the BLE ingestor, the fusion/emitter
// stage, and the pub/sub sink, and supervises their worker goroutines
// the way the teacher's Application.Run supervises its servers: every
// worker's error is collected by an errgroup.Group, and the first
// failure cancels the rest.
type Orchestrator struct {
	cfg       *config.Config
	sessionID string
	source    ports.SampleSource
	switcher  ports.ChannelSwitcher
	ble       ports.BLESource
	sink      *pubsub.Sink
	stats     *domain.Stats

	hopper   *hopping.Hopper
	pipeline *Pipeline
	emitter  *Emitter
}

// New builds an Orchestrator from its fully resolved dependencies.
// ble may be nil when the sensor has no BLE adapter configured.
func New(cfg *config.Config, source ports.SampleSource, switcher ports.ChannelSwitcher, bleSource ports.BLESource, sink *pubsub.Sink) (*Orchestrator, error) {
	plan, err := hopping.ParsePlan(cfg.System.ChannelPlan)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: channel plan: %w", err)
	}
	if !cfg.System.Include5GHz {
		plan = filter2GHz(plan)
	}

	hopper := hopping.NewHopper(plan, time.Duration(cfg.System.HopDwellS)*time.Second, switcher)

	pipeline := NewPipeline(
		dsp.PreprocessConfig{
			EnableDCRemoval:    true,
			EnableIQCorrection: true,
			BandpassLowHz:      cfg.Preprocessing.BandpassLow,
			BandpassHighHz:     cfg.Preprocessing.BandpassHigh,
			NormalizeMethod:    cfg.Preprocessing.Normalize,
		},
		dsp.DefaultSpectralConfig(),
	)

	zones := make([]domain.Geofence, 0, len(cfg.DataFusion.Zones))
	for _, z := range cfg.DataFusion.Zones {
		zones = append(zones, domain.Geofence{Name: z.Name, Latitude: z.Latitude, Longitude: z.Longitude, RadiusKM: z.RadiusKM})
	}
	limits := threat.Limits{
		HeightAGLMeters:        cfg.DataFusion.HeightAGLLimitM,
		SpeedMetersPerSecond:   cfg.DataFusion.SpeedLimitMPS,
		OperatorDistanceMeters: cfg.DataFusion.OperatorDistanceLimitM,
	}
	// A zero lat/lon pair means the sensor's own position was never
	// configured (a mobile or unsurveyed deployment), so the emitter
	// gets no Provider and the §4.8 operator-distance check is skipped.
	var operator geo.Provider
	if cfg.DataFusion.OperatorLatitude != 0 || cfg.DataFusion.OperatorLongitude != 0 {
		operator = geo.NewStaticProvider(cfg.DataFusion.OperatorLatitude, cfg.DataFusion.OperatorLongitude)
	}
	emitter := NewEmitter(sink, zones, limits, operator)

	return &Orchestrator{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		source:    source,
		switcher:  switcher,
		ble:       bleSource,
		sink:      sink,
		stats:     &domain.Stats{},
		hopper:    hopper,
		pipeline:  pipeline,
		emitter:   emitter,
	}, nil
}

// SessionID identifies this orchestrator run, for log correlation and
// the session report.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// SetHub attaches the debug/status WebSocket hub so every published
// detection is mirrored to /ws/detections clients.
func (o *Orchestrator) SetHub(hub Broadcaster) {
	o.emitter.SetHub(hub)
}

// Stats exposes the running Stats counters for the debug/status
// surface and the session report.
func (o *Orchestrator) Stats() *domain.Stats { return o.stats }

// Detections exposes the emitter's fused-detection table.
func (o *Orchestrator) Detections() []domain.Detection { return o.emitter.Snapshot() }

// Run starts every worker and blocks until ctx is cancelled or a
// worker reports an unrecoverable error.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	sampleChan := make(chan *domain.SampleBlock, queueDepth)
	recordChan := make(chan *domain.RemoteIDRecord, queueDepth)

	g.Go(func() error { return hopperWorker(ctx, o.hopper) })
	g.Go(func() error { return sampleWorker(ctx, o.source, o.stats, sampleChan) })
	g.Go(func() error { return dspWorker(ctx, o.pipeline, o.sink, o.stats, sampleChan, recordChan) })
	g.Go(func() error { return o.emitter.Run(ctx, o.stats, recordChan) })
	g.Go(func() error { return heartbeatWorker(ctx, o.sink, o.cfg.MQTT.ClientID, o.stats) })

	if o.ble != nil {
		ingestor := ble.NewIngestor(o.ble, remoteid.NewDecoder())
		g.Go(func() error { return ingestor.Run(ctx, recordChan) })
	}

	slog.Info("orchestrator started", "session_id", o.sessionID, "channels", len(o.hopper.Channels()), "ble_enabled", o.ble != nil)

	err := g.Wait()
	if ctx.Err() != nil && err == ctx.Err() {
		return nil
	}
	return err
}

func filter2GHz(plan []hopping.Channel) []hopping.Channel {
	out := plan[:0]
	for _, ch := range plan {
		if !ch.Is5GHz {
			out = append(out, ch)
		}
	}
	return out
}
