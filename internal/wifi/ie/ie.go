// Package ie parses the (ElementID, Length, Value) information-element
// stream carried in 802.11 management-frame bodies, and isolates the
// OpenDroneID Vendor-Specific IE within it.
package ie

// IE is one decoded information element.
type IE struct {
	ID   int
	Data []byte
}

// IterateIEs calls callback for each complete IE found in data, stopping
// as soon as a length would overrun the remaining bytes — §4.5's
// robustness rule: stop parsing, return whatever completed cleanly.
// Duplicate element IDs are allowed and each occurrence is reported.
func IterateIEs(data []byte, callback func(id int, value []byte)) {
	offset := 0
	limit := len(data)

	for offset < limit {
		if offset+2 > limit {
			break
		}

		id := int(data[offset])
		length := int(data[offset+1])
		offset += 2

		if offset+length > limit {
			break
		}

		callback(id, data[offset:offset+length])
		offset += length
	}
}

// FindIE returns the value of the first IE with the given ID, or nil if
// none is present.
func FindIE(data []byte, targetID int) []byte {
	var result []byte
	IterateIEs(data, func(id int, value []byte) {
		if result == nil && id == targetID {
			result = value
		}
	})
	return result
}

// All returns every IE found in data, in stream order.
func All(data []byte) []IE {
	var out []IE
	IterateIEs(data, func(id int, value []byte) {
		out = append(out, IE{ID: id, Data: value})
	})
	return out
}

const vendorSpecificID = 0xDD

// VendorSpecific returns the value of every tag-221 (Vendor-Specific) IE
// in data.
func VendorSpecific(data []byte) [][]byte {
	var results [][]byte
	IterateIEs(data, func(id int, value []byte) {
		if id == vendorSpecificID {
			results = append(results, value)
		}
	})
	return results
}
