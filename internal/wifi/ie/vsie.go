package ie

// OpenDroneIDOUI is the IEEE-assigned OUI carried by the OpenDroneID
// Vendor-Specific Information Element, per §4.5 and §6's wire format.
var OpenDroneIDOUI = [3]byte{0xFA, 0x0B, 0xBC}

// OpenDroneIDVendorData scans the Vendor-Specific IEs in data and
// returns the VendorData of the first one whose OUI matches
// OpenDroneIDOUI; other OUIs are dropped, per §4.5. A Vendor-Specific
// value is `OUI(3) || VendorType(1) || VendorData`, so at least 4 bytes
// are required before VendorData can be isolated.
func OpenDroneIDVendorData(data []byte) ([]byte, bool) {
	for _, val := range VendorSpecific(data) {
		if len(val) < 4 {
			continue
		}
		if val[0] == OpenDroneIDOUI[0] && val[1] == OpenDroneIDOUI[1] && val[2] == OpenDroneIDOUI[2] {
			return val[4:], true
		}
	}
	return nil, false
}
