package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/dronerid/internal/core/domain"
)

func TestNewSessionReport_OutputProducesAPDF(t *testing.T) {
	height := 150.0
	detections := []domain.Detection{
		{
			ID: 1,
			Record: domain.RemoteIDRecord{
				BasicID:       &domain.BasicID{UASID: "DJI-TEST-001", UASIDType: domain.UASIDTypeSerialNumber},
				Location:      &domain.LocationVector{Latitude: 12.37, Longitude: -1.52, HeightAGL: &height},
				SourceAddress: "AA:BB:CC:DD:EE:FF",
				Vendor:        "DJI",
			},
			Threat:    domain.ThreatAssessment{Score: 70, Level: domain.ThreatHigh, Reasons: []string{`inside restricted zone "zone-a" (+50)`}},
			FirstSeen: time.Unix(1000, 0),
			LastSeen:  time.Unix(1060, 0),
			SeenCount: 3,
		},
		{
			ID: 2,
			Record: domain.RemoteIDRecord{
				SourceAddress: "11:22:33:44:55:66",
				Vendor:        "Parrot",
			},
			Threat:    domain.ThreatAssessment{Score: 20, Level: domain.ThreatMedium, Reasons: []string{"no Remote ID decoded (+20)"}},
			FirstSeen: time.Unix(2000, 0),
			LastSeen:  time.Unix(2030, 0),
			SeenCount: 1,
		},
	}

	stats := domain.Stats{
		SampleBlocksCaptured: 500,
		FramesBeacon:         120,
		RecordsDecoded:       40,
		DetectionsEmitted:    2,
	}

	report := NewSessionReport("session-test-001", detections, stats)
	require.NotNil(t, report)

	var buf bytes.Buffer
	err := report.Output(&buf)
	require.NoError(t, err)

	assert.Greater(t, buf.Len(), 0)
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestNewSessionReport_EmptyDetectionsStillRenders(t *testing.T) {
	report := NewSessionReport("session-test-002", nil, domain.Stats{})

	var buf bytes.Buffer
	err := report.Output(&buf)
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}

func TestDeviceLabel_PrefersUASIDOverSourceAddress(t *testing.T) {
	d := domain.Detection{
		Record: domain.RemoteIDRecord{
			BasicID:       &domain.BasicID{UASID: "SERIAL-123456"},
			SourceAddress: "AA:BB:CC:DD:EE:FF",
		},
	}
	assert.Equal(t, "SERIAL-123456", deviceLabel(d))
}

func TestDeviceLabel_FallsBackToSourceAddress(t *testing.T) {
	d := domain.Detection{
		Record: domain.RemoteIDRecord{SourceAddress: "AA:BB:CC:DD:EE:FF"},
	}
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", deviceLabel(d))
}

func TestDeviceLabel_FallsBackToUnknown(t *testing.T) {
	assert.Equal(t, "unknown", deviceLabel(domain.Detection{}))
}

func TestContainsZoneReason(t *testing.T) {
	assert.True(t, containsZoneReason(`inside restricted zone "zone-a" (+50)`))
	assert.False(t, containsZoneReason("no Remote ID decoded (+20)"))
	assert.False(t, containsZoneReason("short"))
}
