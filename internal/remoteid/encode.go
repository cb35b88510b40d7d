package remoteid

import (
	"encoding/binary"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// EncodeBasicID builds the wire bytes for a Basic-ID message (type byte
// + id-type byte + 20-byte padded id), the 21-byte variant, per §4.6.
func EncodeBasicID(idType domain.UASIDType, uasID string) []byte {
	out := make([]byte, 2+20)
	out[0] = msgTypeBasicID
	out[1] = encodeUASIDType(idType)
	copy(out[2:], []byte(uasID))
	return out
}

func encodeUASIDType(t domain.UASIDType) byte {
	switch t {
	case domain.UASIDTypeSerialNumber:
		return 1
	case domain.UASIDTypeCAARegistration:
		return 2
	case domain.UASIDTypeUTMUUID:
		return 3
	case domain.UASIDTypeSpecificSessionID:
		return 4
	default:
		return 0
	}
}

// EncodeLocationVector builds the wire bytes for a Location/Vector
// message (type byte + 23-byte payload), inverting the fixed-point
// encodings of §3/§4.6 exactly.
func EncodeLocationVector(status byte, direction, speed *float64, vspeed *float64, lat, lon float64, altMSL, heightAGL *float64) []byte {
	out := make([]byte, 1+23)
	out[0] = msgTypeLocation

	out[1] = status

	if direction == nil {
		out[2] = sentinelDirection
	} else {
		out[2] = byte(*direction)
	}

	if speed == nil {
		out[3] = sentinelSpeed
	} else {
		out[3] = byte(*speed / 0.25)
	}

	if vspeed == nil {
		out[4] = byte(int8(sentinelVSpeed))
	} else {
		out[4] = byte(int8(*vspeed / 0.5))
	}

	binary.LittleEndian.PutUint32(out[5:9], uint32(int32(lat/1e-7)))
	binary.LittleEndian.PutUint32(out[9:13], uint32(int32(lon/1e-7)))

	altSentinel := int16(sentinelAltitude)
	if altMSL == nil {
		binary.LittleEndian.PutUint16(out[13:15], uint16(altSentinel))
	} else {
		binary.LittleEndian.PutUint16(out[13:15], uint16(int16(*altMSL/0.5)))
	}

	if heightAGL == nil {
		binary.LittleEndian.PutUint16(out[15:17], uint16(altSentinel))
	} else {
		binary.LittleEndian.PutUint16(out[15:17], uint16(int16(*heightAGL/0.5)))
	}

	return out
}
