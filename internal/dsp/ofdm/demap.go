package ofdm

// demap performs Gray-coded hard-decision demapping of one equalized
// subcarrier value into its coded bits, per §4.4 step 6: BPSK is the
// sign of the real part, QPSK the signs of real/imag, and 16-/64-QAM
// threshold the scaled in-phase/quadrature components against the
// standard Gray-coded decision boundaries.
func demap(v complex128, mod Modulation) []bool {
	switch mod {
	case ModQPSK:
		return []bool{real(v) < 0, imag(v) < 0}
	case ModQAM16:
		return append(grayQAM4Level(real(v)), grayQAM4Level(imag(v))...)
	case ModQAM64:
		return append(grayQAM8Level(real(v)), grayQAM8Level(imag(v))...)
	default: // BPSK
		return []bool{real(v) < 0}
	}
}

// grayQAM4Level demaps one axis of 16-QAM (4 levels, 2 bits), Gray-coded
// decision thresholds at -2, 0, +2 on the normalized constellation.
func grayQAM4Level(x float64) []bool {
	b0 := x < 0
	var b1 bool
	if b0 {
		b1 = x > -2
	} else {
		b1 = x < 2
	}
	return []bool{b0, b1}
}

// grayQAM8Level demaps one axis of 64-QAM (8 levels, 3 bits), Gray-coded
// decision thresholds at -6, -4, -2, 0, +2, +4, +6.
func grayQAM8Level(x float64) []bool {
	b0 := x < 0
	var b1 bool
	if b0 {
		b1 = x > -4
	} else {
		b1 = x < 4
	}
	var b2 bool
	switch {
	case x < -4:
		b2 = x > -6
	case x < 0:
		b2 = x < -2
	case x < 4:
		b2 = x > 2
	default:
		b2 = x < 6
	}
	return []bool{b0, b1, b2}
}
