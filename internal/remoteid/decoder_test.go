package remoteid

import (
	"testing"
	"time"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioA_StructuredBasicID(t *testing.T) {
	data := []byte{
		0x00, 0x01,
		0x44, 0x4A, 0x49, 0x2D, 0x54, 0x45, 0x53, 0x54, 0x2D, 0x30, 0x30, 0x31,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	decoder := NewDecoder()
	rec, err := decoder.Decode(&domain.CandidateFrame{Data: data, Transport: domain.TransportWiFiBeacon})
	require.NoError(t, err)
	require.NotNil(t, rec.BasicID)
	assert.Equal(t, "DJI-TEST-001", rec.BasicID.UASID)
	assert.Equal(t, "Serial Number", rec.BasicID.DisplayType())
	assert.Nil(t, rec.Location)
}

func TestScenarioB_LocationVector(t *testing.T) {
	lat := int32(123585000)
	lon := int32(-15352000)

	data := []byte{0x01}
	data = append(data, 0x57) // status: airborne bits set
	data = append(data, 87)   // direction
	data = append(data, 49)   // speed = 49 * 0.25 = 12.25
	data = append(data, byte(int8(5))) // vspeed = 5 * 0.5 = 2.5

	latBytes := make([]byte, 4)
	lonBytes := make([]byte, 4)
	putLE32(latBytes, lat)
	putLE32(lonBytes, lon)
	data = append(data, latBytes...)
	data = append(data, lonBytes...)

	data = append(data, byte(241), byte(0)) // alt = 241*0.5=120.5 (LE uint16 low byte first)
	data = append(data, byte(90), byte(0))  // height = 90*0.5=45.0
	data = append(data, 0, 0, 0, 0, 0)      // reserved

	decoder := NewDecoder()
	rec, err := decoder.Decode(&domain.CandidateFrame{Data: data, Transport: domain.TransportWiFiBeacon})
	require.NoError(t, err)
	require.NotNil(t, rec.Location)

	assert.InDelta(t, 12.3585, rec.Location.Latitude, 1e-6)
	assert.InDelta(t, -1.5352, rec.Location.Longitude, 1e-6)
	require.NotNil(t, rec.Location.AltitudeMSL)
	assert.InDelta(t, 120.5, *rec.Location.AltitudeMSL, 1e-6)
	require.NotNil(t, rec.Location.HeightAGL)
	assert.InDelta(t, 45.0, *rec.Location.HeightAGL, 1e-6)
	require.NotNil(t, rec.Location.GroundSpeed)
	assert.InDelta(t, 12.25, *rec.Location.GroundSpeed, 1e-6)
	require.NotNil(t, rec.Location.Direction)
	assert.Equal(t, 87.0, *rec.Location.Direction)
	require.NotNil(t, rec.Location.VerticalSpeed)
	assert.InDelta(t, 2.5, *rec.Location.VerticalSpeed, 1e-6)
	assert.Equal(t, domain.StatusAirborne, rec.Location.Status)
}

func putLE32(dst []byte, v int32) {
	u := uint32(v)
	dst[0] = byte(u)
	dst[1] = byte(u >> 8)
	dst[2] = byte(u >> 16)
	dst[3] = byte(u >> 24)
}

func TestScenarioC_PatternFallback(t *testing.T) {
	data := make([]byte, 0, 100)
	data = append(data, make([]byte, 50)...)
	data = append(data, []byte("DJI-RID-MAVIC3PRO-12345")...)
	data = append(data, make([]byte, 50)...)

	decoder := NewDecoder()
	rec, err := decoder.Decode(&domain.CandidateFrame{Data: data, Transport: domain.TransportWiFiBeacon})
	require.NoError(t, err)
	require.NotNil(t, rec.BasicID)
	assert.Equal(t, "Pattern Detection (dji_remote_id)", rec.BasicID.DisplayType())
	assert.Equal(t, domain.TransportPatternDetected, rec.Transport)
}

func TestScenarioD_UnknownOUIYieldsNoRecord(t *testing.T) {
	// The frame parser would never hand this VendorData to the decoder
	// (OUI mismatch is filtered upstream), so at the decoder level an
	// arbitrary non-Remote-ID byte blob simply fails every path.
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xDE, 0xAD, 0xBE, 0xEF}
	decoder := NewDecoder()
	rec, err := decoder.Decode(&domain.CandidateFrame{Data: data, Transport: domain.TransportWiFiBeacon})
	require.NoError(t, err)
	assert.False(t, rec.Valid())
}

func TestInvariant_SentinelsMapToAbsent(t *testing.T) {
	data := []byte{0x01}
	data = append(data, 0x00)                         // status: ground
	data = append(data, sentinelDirection)             // direction unknown
	data = append(data, sentinelSpeed)                 // speed unknown
	data = append(data, byte(int8(sentinelVSpeed)))    // vspeed unknown
	data = append(data, 0, 0, 0, 0)                    // lat = 0
	data = append(data, 0, 0, 0, 0)                    // lon = 0
	data = append(data, byte(int16(sentinelAltitude)), byte(int16(sentinelAltitude)>>8))
	data = append(data, byte(int16(sentinelAltitude)), byte(int16(sentinelAltitude)>>8))
	data = append(data, 0, 0, 0, 0, 0)

	rec := &domain.RemoteIDRecord{}
	parseMessages(data, rec)

	require.NotNil(t, rec.Location)
	assert.Nil(t, rec.Location.Direction)
	assert.Nil(t, rec.Location.GroundSpeed)
	assert.Nil(t, rec.Location.VerticalSpeed)
	assert.Nil(t, rec.Location.AltitudeMSL)
	assert.Nil(t, rec.Location.HeightAGL)
}

func TestRoundTrip_BasicIDAndLocation(t *testing.T) {
	basic := EncodeBasicID(domain.UASIDTypeSerialNumber, "ROUNDTRIP01")
	direction := 45.0
	speed := 10.0
	vspeed := -1.5
	altMSL := 100.0
	heightAGL := 50.0
	location := EncodeLocationVector(0x0F, &direction, &speed, &vspeed, 12.345, -98.765, &altMSL, &heightAGL)

	payload := append(basic, location...)

	rec := &domain.RemoteIDRecord{}
	parseMessages(payload, rec)

	require.NotNil(t, rec.BasicID)
	assert.Equal(t, "ROUNDTRIP01", rec.BasicID.UASID)
	assert.Equal(t, domain.UASIDTypeSerialNumber, rec.BasicID.UASIDType)

	require.NotNil(t, rec.Location)
	assert.InDelta(t, 12.345, rec.Location.Latitude, 1e-7)
	assert.InDelta(t, -98.765, rec.Location.Longitude, 1e-7)
	require.NotNil(t, rec.Location.AltitudeMSL)
	assert.InDelta(t, 100.0, *rec.Location.AltitudeMSL, 0.25)
	require.NotNil(t, rec.Location.HeightAGL)
	assert.InDelta(t, 50.0, *rec.Location.HeightAGL, 0.25)
	require.NotNil(t, rec.Location.GroundSpeed)
	assert.InDelta(t, 10.0, *rec.Location.GroundSpeed, 0.125)
	require.NotNil(t, rec.Location.Direction)
	assert.Equal(t, 45.0, *rec.Location.Direction)
}

func TestDecode_Idempotent(t *testing.T) {
	data := []byte{
		0x00, 0x01,
		0x44, 0x4A, 0x49, 0x2D, 0x54, 0x45, 0x53, 0x54, 0x2D, 0x30, 0x30, 0x31,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	decoder := NewDecoder()
	frame := &domain.CandidateFrame{Data: data, Transport: domain.TransportWiFiBeacon, CapturedAt: time.Unix(0, 0)}

	first, err1 := decoder.Decode(frame)
	second, err2 := decoder.Decode(frame)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.BasicID, second.BasicID)
}

func TestToleranceScan_BoundedToWindow(t *testing.T) {
	// Plant a valid Basic-ID message beyond the 128-byte window (at the
	// start, followed by 300 bytes of padding): it must NOT be found by
	// the Wi-Fi-bounded scan, which only retries the last 128 bytes.
	padding := make([]byte, 300)
	basic := EncodeBasicID(domain.UASIDTypeSerialNumber, "TOOFARAWAY0")
	data := append(basic, padding...)
	_, ok := toleranceScan(data, wifiToleranceWindow)
	assert.False(t, ok)
}
