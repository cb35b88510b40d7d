// Package pubsub implements the Pub/Sub Sink (produced) interface of
// §6.1: a concrete MQTT client publishing fused detections across the
// five topics, with the last-will contract on system/health.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/core/ports"
)

// Config holds the broker connection parameters read from the `mqtt`
// section of the YAML configuration (§10.1).
type Config struct {
	BrokerURL     string
	ClientID      string
	Username      string
	Password      string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// Sink implements ports.PubSubSink against an MQTT broker.
type Sink struct {
	client  mqtt.Client
	cfg     Config
	retries uint
}

var _ ports.PubSubSink = (*Sink)(nil)

// NewSink connects to cfg.BrokerURL, registering the system/health
// last-will message before the connection completes, per §6.1.
func NewSink(cfg Config) (*Sink, error) {
	will := LastWill(cfg.ClientID)
	willPayload, err := json.Marshal(will)
	if err != nil {
		return nil, fmt.Errorf("pubsub: marshaling last-will payload: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetWill(TopicHealth, string(willPayload), QoSHealth, false).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("pubsub: connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("pubsub: connect to %s: %w", cfg.BrokerURL, err)
	}

	return &Sink{client: client, cfg: cfg}, nil
}

// Publish fans a Detection out to drone/detection, drone/position, and
// drone/alert (gated on MEDIUM/HIGH), per §6.1; drone/classification is
// published separately through PublishClassification. Each
// publish is independently bounded by cfg.PublishTimeout; a failure on
// one topic does not block the others, matching §7's "a detection
// event is never blocked by a downstream failure" rule.
func (s *Sink) Publish(ctx context.Context, d *domain.Detection) error {
	var errs []error

	if err := s.publishJSON(TopicDetection, QoSDetection, d); err != nil {
		errs = append(errs, err)
	}

	if err := s.publishJSON(TopicPosition, QoSPosition, positionPayload(d)); err != nil {
		errs = append(errs, err)
	}

	attempted := 2
	if d.Threat.Level == domain.ThreatMedium || d.Threat.Level == domain.ThreatHigh {
		attempted++
		if err := s.publishJSON(TopicAlert, QoSAlert, alertPayload(d)); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("pubsub: %d of %d publishes failed: %v", len(errs), attempted, errs[0])
	}
	return nil
}

// PublishClassification publishes a classifier verdict independently
// of a fused Detection, since classification can run ahead of a fully
// merged record.
func (s *Sink) PublishClassification(ctx context.Context, payload ClassificationPayload) error {
	return s.publishJSON(TopicClassification, QoSClassification, payload)
}

// PublishHealth publishes the periodic heartbeat on system/health.
func (s *Sink) PublishHealth(ctx context.Context, payload HealthPayload) error {
	return s.publishJSON(TopicHealth, QoSHealth, payload)
}

func (s *Sink) publishJSON(topic string, qos byte, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pubsub: marshaling payload for %s: %w", topic, err)
	}
	token := s.client.Publish(topic, qos, false, data)
	if !token.WaitTimeout(s.cfg.PublishTimeout) {
		return fmt.Errorf("pubsub: publish to %s timed out", topic)
	}
	return token.Error()
}

// Close disconnects from the broker, allowing up to 250ms for
// in-flight publishes to drain.
func (s *Sink) Close() error {
	s.client.Disconnect(250)
	return nil
}

func positionPayload(d *domain.Detection) PositionPayload {
	p := PositionPayload{ThreatLevel: d.Threat.Level.String()}
	if d.Record.BasicID != nil {
		p.UASID = d.Record.BasicID.UASID
	}
	if d.Record.Location != nil {
		p.Latitude = d.Record.Location.Latitude
		p.Longitude = d.Record.Location.Longitude
		p.AltitudeMSL = d.Record.Location.AltitudeMSL
		p.HeightAGL = d.Record.Location.HeightAGL
		p.GroundSpeed = d.Record.Location.GroundSpeed
		p.Direction = d.Record.Location.Direction
	}
	return p
}

func alertPayload(d *domain.Detection) AlertPayload {
	a := AlertPayload{ThreatLevel: d.Threat.Level.String(), Score: d.Threat.Score, Reasons: d.Threat.Reasons}
	if d.Record.BasicID != nil {
		a.UASID = d.Record.BasicID.UASID
	}
	return a
}
