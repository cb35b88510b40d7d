package domain

import "time"

// Transport identifies which broadcast medium produced a Remote ID record.
type Transport string

const (
	TransportWiFiBeacon      Transport = "wifi_beacon"
	TransportWiFiActionNAN   Transport = "wifi_action_nan"
	TransportBLEAdvertising  Transport = "ble_advertising"
	TransportPatternDetected Transport = "pattern_detection"
)

// CandidateFrame is a byte vector plus capture metadata, produced either by
// the OFDM Receiver (Wi-Fi path) or the BLE Ingestor (BLE path). It is
// consumed exactly once by the Remote ID Decoder.
type CandidateFrame struct {
	Data       []byte
	RSSI       int // dBm estimate, 0 if unknown
	Channel    int
	CapturedAt time.Time
	SourceMAC  string // empty if undecoded
	Transport  Transport
	CenterFreq float64
	Gain       float64
}
