package ofdm

// longTrainingSequence is the canonical 802.11a/g long-training sequence
// in the frequency domain, indices -26..26 (53 values, center is DC and
// is zero). Used both to build the time-domain reference waveform for
// fine sync cross-correlation and as the per-subcarrier reference for
// channel estimation.
var longTrainingSequence = [53]float64{
	1, 1, -1, -1, 1, 1, -1, 1, -1, 1, 1, 1, 1, 1, 1, -1, -1, 1, 1, -1, 1, -1, 1, 1, 1, 1,
	0,
	1, -1, -1, 1, 1, -1, 1, -1, 1, -1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, 1, -1, 1, 1, 1, 1,
}

// dataSubcarrierOffsets lists the 48 data-subcarrier offsets relative to
// DC, excluding pilots at +/-7 and +/-21 and excluding DC itself, per
// §4.4 step 6.
var dataSubcarrierOffsets = buildDataSubcarrierOffsets()

func buildDataSubcarrierOffsets() []int {
	pilots := map[int]bool{7: true, -7: true, 21: true, -21: true}
	offsets := make([]int, 0, 48)
	for k := -26; k <= 26; k++ {
		if k == 0 || pilots[k] {
			continue
		}
		offsets = append(offsets, k)
	}
	return offsets
}

// Modulation identifies the per-symbol demapping scheme, selected by the
// SIGNAL field's rate bits.
type Modulation int

const (
	ModBPSK Modulation = iota
	ModQPSK
	ModQAM16
	ModQAM64
)

// BitsPerSymbol is the number of coded bits carried by one data
// subcarrier under the given modulation.
func (m Modulation) BitsPerSymbol() int {
	switch m {
	case ModQPSK:
		return 2
	case ModQAM16:
		return 4
	case ModQAM64:
		return 6
	default:
		return 1
	}
}

// signalRate maps the SIGNAL field's 4-bit RATE value to a modulation.
// Reserved/unrecognized codes return ok=false so the caller can drop the
// frame and return to SEARCH, per §4.4 step 7.
func signalRate(rateBits uint8) (Modulation, bool) {
	switch rateBits {
	case 0b1101, 0b1111: // 6, 9 Mbps
		return ModBPSK, true
	case 0b0101, 0b0111: // 12, 18 Mbps
		return ModQPSK, true
	case 0b1001, 0b1011: // 24, 36 Mbps
		return ModQAM16, true
	case 0b0001, 0b0011: // 48, 54 Mbps
		return ModQAM64, true
	default:
		return 0, false
	}
}
