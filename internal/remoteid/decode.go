// Package remoteid implements the ASTM F3411 message decoder: it walks
// the OpenDroneID VendorData byte stream (or a raw BLE advertisement
// blob) and produces a domain.RemoteIDRecord, falling back to a bounded
// pattern scan when no structured message is recognized.
package remoteid

import (
	"encoding/binary"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// ASTM F3411 message type identifiers, §4.6.
const (
	msgTypeBasicID    = 0x0
	msgTypeLocation   = 0x1
	msgTypeAuth       = 0x2
	msgTypeSelfID     = 0x3
	msgTypeSystem     = 0x4
	msgTypeOperatorID = 0x5
)

const (
	sentinelAltitude  = -1000
	sentinelDirection = 0xFF
	sentinelSpeed     = 0xFF
	sentinelVSpeed    = 0x7F
)

// parseMessages walks a sequence of ASTM F3411 messages and populates
// rec in place. It returns the number of messages successfully
// consumed; malformed trailing bytes are tolerated per §4.6 (stop,
// return whatever completed cleanly).
func parseMessages(data []byte, rec *domain.RemoteIDRecord) int {
	offset := 0
	consumed := 0

	for offset < len(data) {
		if offset+1 > len(data) {
			break
		}
		msgType := data[offset]
		offset++

		switch msgType {
		case msgTypeBasicID:
			adv, ok := parseBasicID(data[offset:], rec)
			if !ok {
				return consumed
			}
			offset += adv

		case msgTypeLocation:
			if !parseLocation(data[offset:], rec) {
				return consumed
			}
			offset += 23

		case msgTypeAuth:
			adv, ok := parseAuthentication(data[offset:], rec)
			if !ok {
				return consumed
			}
			offset += adv

		case msgTypeSelfID:
			if !parseSelfID(data[offset:], rec) {
				return consumed
			}
			offset += 24

		case msgTypeSystem:
			if !parseSystem(data[offset:], rec) {
				return consumed
			}
			offset += 3

		case msgTypeOperatorID:
			if !parseOperatorID(data[offset:], rec) {
				return consumed
			}
			offset += 21

		default:
			return consumed
		}
		consumed++
	}
	return consumed
}

// parseBasicID handles both the 21-byte (1 type + 20 id) and 23-byte
// (+2 trailing zero bytes) variants, per §4.6's message table.
func parseBasicID(data []byte, rec *domain.RemoteIDRecord) (int, bool) {
	if len(data) < 21 {
		return 0, false
	}
	idType := data[0]
	idBytes := data[1:21]

	adv := 21
	if len(data) >= 23 && data[21] == 0x00 && data[22] == 0x00 {
		adv = 23
	}

	rec.BasicID = &domain.BasicID{
		UASID:     decodePrintable(idBytes),
		UASIDType: mapUASIDType(idType),
	}
	return adv, true
}

func mapUASIDType(raw byte) domain.UASIDType {
	switch raw {
	case 1:
		return domain.UASIDTypeSerialNumber
	case 2:
		return domain.UASIDTypeCAARegistration
	case 3:
		return domain.UASIDTypeUTMUUID
	case 4:
		return domain.UASIDTypeSpecificSessionID
	default:
		return domain.UASIDTypeNone
	}
}

// parseLocation decodes the 23-byte Location/Vector message: status,
// direction, speed, vspeed, lat(4), lon(4), alt(2), height(2), plus 5
// reserved trailing bytes, per §4.6 and §3's sentinel-mapping invariant.
func parseLocation(data []byte, rec *domain.RemoteIDRecord) bool {
	if len(data) < 23 {
		return false
	}

	status := data[0]
	direction := data[1]
	speedRaw := data[2]
	vspeedRaw := int8(data[3])
	latRaw := int32(binary.LittleEndian.Uint32(data[4:8]))
	lonRaw := int32(binary.LittleEndian.Uint32(data[8:12]))
	altRaw := int16(binary.LittleEndian.Uint16(data[12:14]))
	heightRaw := int16(binary.LittleEndian.Uint16(data[14:16]))

	loc := &domain.LocationVector{
		Status:    mapOperationalStatus(status),
		Latitude:  float64(latRaw) * 1e-7,
		Longitude: float64(lonRaw) * 1e-7,
	}

	if direction != sentinelDirection {
		v := float64(direction)
		loc.Direction = &v
	}
	if speedRaw != sentinelSpeed {
		v := float64(speedRaw) * 0.25
		loc.GroundSpeed = &v
	}
	if int(vspeedRaw) != sentinelVSpeed {
		v := float64(vspeedRaw) * 0.5
		loc.VerticalSpeed = &v
	}
	if int(altRaw) != sentinelAltitude {
		v := float64(altRaw) * 0.5
		loc.AltitudeMSL = &v
	}
	if int(heightRaw) != sentinelAltitude {
		v := float64(heightRaw) * 0.5
		loc.HeightAGL = &v
	}

	rec.Location = loc
	return true
}

func mapOperationalStatus(raw byte) domain.OperationalStatus {
	if raw&0x0F != 0 {
		return domain.StatusAirborne
	}
	return domain.StatusGround
}

func parseAuthentication(data []byte, rec *domain.RemoteIDRecord) (int, bool) {
	if len(data) < 4 {
		return 0, false
	}
	authType, page, lastPage, length := data[0], data[1], data[2], int(data[3])
	if len(data) < 4+length {
		return 0, false
	}
	payload := append([]byte(nil), data[4:4+length]...)
	rec.Auth = &domain.Authentication{
		AuthType:      int(authType),
		PageIndex:     int(page),
		LastPageIndex: int(lastPage),
		Payload:       payload,
	}
	return 4 + length, true
}

func parseSelfID(data []byte, rec *domain.RemoteIDRecord) bool {
	if len(data) < 24 {
		return false
	}
	rec.SelfID = &domain.SelfID{
		DescriptionType: int(data[0]),
		Description:     decodePrintable(data[1:24]),
	}
	return true
}

func parseSystem(data []byte, rec *domain.RemoteIDRecord) bool {
	if len(data) < 3 {
		return false
	}
	rec.System = &domain.SystemMessage{
		OperatorLocationType: int(data[0]),
		EUClass:              int(data[1]),
		Category:             int(data[2]),
	}
	return true
}

func parseOperatorID(data []byte, rec *domain.RemoteIDRecord) bool {
	if len(data) < 21 {
		return false
	}
	rec.OperatorID = &domain.OperatorID{
		OperatorIDType: int(data[0]),
		OperatorID:     decodePrintable(data[1:21]),
	}
	return true
}

// decodePrintable keeps ASCII 0x20-0x7E and trims trailing NULs; if
// fewer than max(6, half the bytes left after trimming) survive, it
// falls back to uppercase hex of the original bytes, per §4.6.
func decodePrintable(b []byte) string {
	trimmed := trimTrailingNuls(b)

	printable := make([]byte, 0, len(trimmed))
	for _, c := range trimmed {
		if c >= 0x20 && c <= 0x7E {
			printable = append(printable, c)
		}
	}

	if len(printable) >= maxInt(6, len(trimmed)/2) {
		return string(printable)
	}
	return hexUpper(b)
}

func trimTrailingNuls(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0x00 {
		end--
	}
	return b[:end]
}

func hexUpper(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0x0F]
	}
	return string(out)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
