// Package parser turns an assembled 802.11 management-frame byte vector
// into its MAC header fields and a parsed body element stream, isolating
// the OpenDroneID Vendor-Specific IE for the Remote ID Decoder.
package parser

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/wifi/ie"
)

// ParsedFrame is the Frame Parser's output: the decoded MAC header plus
// the raw body bytes available for element-stream parsing.
type ParsedFrame struct {
	Type      layers.Dot11Type
	SourceMAC string
	DestMAC   string
	BSSID     string
	Body      []byte
}

// Parse decodes a candidate MAC frame's 802.11 management header via
// gopacket, and returns the body bytes for element-stream parsing. Only
// management frames (Beacon, Action, NAN/public-action variants) are of
// interest to Remote ID; other types are still returned so a caller can
// decide to skip them.
func Parse(data []byte) (*ParsedFrame, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeDot11, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return nil, fmt.Errorf("parser: no Dot11 layer decoded from %d bytes", len(data))
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		return nil, fmt.Errorf("parser: unexpected Dot11 layer type")
	}

	body, err := managementBody(dot11.Type, dot11.Payload)
	if err != nil {
		return nil, err
	}

	return &ParsedFrame{
		Type:      dot11.Type,
		SourceMAC: dot11.Address2.String(),
		DestMAC:   dot11.Address1.String(),
		BSSID:     dot11.Address3.String(),
		Body:      body,
	}, nil
}

// managementBody strips the fixed fields preceding the element stream,
// per §4.5: Beacons are preceded by an 8-byte timestamp, 2-byte beacon
// interval, and 2-byte capability field; Action and NAN frames by a
// category and action byte.
func managementBody(frameType layers.Dot11Type, payload []byte) ([]byte, error) {
	switch frameType {
	case layers.Dot11TypeMgmtBeacon, layers.Dot11TypeMgmtProbeResp:
		const fixedFieldsLen = 12
		if len(payload) < fixedFieldsLen {
			return nil, fmt.Errorf("parser: beacon body too short (%d bytes)", len(payload))
		}
		return payload[fixedFieldsLen:], nil
	case layers.Dot11TypeMgmtAction:
		const fixedFieldsLen = 2
		if len(payload) < fixedFieldsLen {
			return nil, fmt.Errorf("parser: action body too short (%d bytes)", len(payload))
		}
		return payload[fixedFieldsLen:], nil
	default:
		// NAN frames ride inside public-action frames in this
		// pipeline's candidate set; any remaining management subtype
		// is handed back verbatim so a caller can still attempt an IE
		// scan on it.
		return payload, nil
	}
}

// OpenDroneIDVendorData isolates the OpenDroneID VendorData from a
// parsed frame's body element stream, per §4.5's vendor-specific IE
// rule.
func (f *ParsedFrame) OpenDroneIDVendorData() ([]byte, bool) {
	return ie.OpenDroneIDVendorData(f.Body)
}

// ToCandidateFrame wraps a parsed Wi-Fi frame in the domain's transport
// envelope used by the Remote ID Decoder.
func ToCandidateFrame(f *ParsedFrame, transport domain.Transport, rssi, channel int, capturedAt time.Time, centerFreq, gain float64) domain.CandidateFrame {
	return domain.CandidateFrame{
		Data:       f.Body,
		RSSI:       rssi,
		Channel:    channel,
		CapturedAt: capturedAt,
		SourceMAC:  f.SourceMAC,
		Transport:  transport,
		CenterFreq: centerFreq,
		Gain:       gain,
	}
}
