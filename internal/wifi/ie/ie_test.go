package ie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterateIEs_StopsOnLengthOverrun(t *testing.T) {
	// IE(id=1, len=2, value missing second byte) -> only a valid leading
	// zero-length IE should be reported, per the "stop on overrun" rule.
	data := []byte{0x00, 0x00, 0x01, 0x02, 0xAA}
	var seen []IE
	IterateIEs(data, func(id int, value []byte) {
		seen = append(seen, IE{ID: id, Data: append([]byte(nil), value...)})
	})
	assert.Len(t, seen, 1)
	assert.Equal(t, 0, seen[0].ID)
}

func TestFindIE_ReturnsFirstMatch(t *testing.T) {
	data := []byte{0x03, 0x01, 0x06, 0x00, 0x00}
	val := FindIE(data, 3)
	assert.Equal(t, []byte{0x06}, val)
}

func TestVendorSpecific_CollectsAllTag221(t *testing.T) {
	data := []byte{
		0xDD, 0x03, 0x00, 0x50, 0xF2,
		0xDD, 0x02, 0xFA, 0x0B,
	}
	results := VendorSpecific(data)
	assert.Len(t, results, 2)
}

func TestOpenDroneIDVendorData_MatchesOUI(t *testing.T) {
	data := []byte{
		0xDD, 0x06, 0xFA, 0x0B, 0xBC, 0x0D, 0xAA, 0xBB,
	}
	vendorData, ok := OpenDroneIDVendorData(data)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB}, vendorData)
}

func TestOpenDroneIDVendorData_RejectsOtherOUI(t *testing.T) {
	data := []byte{
		0xDD, 0x06, 0x00, 0x50, 0xF2, 0x04, 0xAA, 0xBB,
	}
	_, ok := OpenDroneIDVendorData(data)
	assert.False(t, ok)
}
