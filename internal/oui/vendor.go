// Package oui resolves a MAC address or BLE address's first three
// octets against a small embedded IEEE OUI-to-vendor table, per
// §4.9. Resolution is purely additive metadata: it never blocks or
// fails detection, and an unresolved OUI yields an empty string.
package oui

import "strings"

// commonVendors is a small embedded subset of the IEEE OUI registry,
// covering vendors the Remote ID pattern-fallback groups already name
// (DJI) plus a handful of common Wi-Fi/BLE chipset makers, mirroring
// the teacher's CommonOUIs static fallback table but scoped to what
// this sensor is likely to see.
var commonVendors = map[string]string{
	"60:60:1F": "DJI",
	"34:D2:62": "DJI",
	"A0:14:3D": "DJI",
	"00:17:F2": "Apple",
	"00:12:FB": "Samsung",
	"F4:F5:E8": "Google",
	"FC:A1:83": "Parrot",
	"90:3A:E6": "Parrot",
	"00:50:F2": "Microsoft",
}

// Lookup resolves mac's OUI (the first three octets, colon or
// hyphen separated) to a vendor name. It returns an empty string when
// the OUI is not in the table or mac is malformed; Lookup never
// returns an error, matching §4.9's best-effort contract.
func Lookup(mac string) string {
	oui := normalizeOUI(mac)
	if oui == "" {
		return ""
	}
	return commonVendors[oui]
}

// normalizeOUI extracts and upper-cases the first three colon- or
// hyphen-separated octets of mac, returning "" if mac is too short or
// not hex-formatted.
func normalizeOUI(mac string) string {
	mac = strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
	parts := strings.Split(mac, ":")
	if len(parts) < 3 {
		return ""
	}
	for _, p := range parts[:3] {
		if len(p) != 2 || !isHex(p[0]) || !isHex(p[1]) {
			return ""
		}
	}
	return strings.Join(parts[:3], ":")
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}
