package ofdm

import "math/cmplx"
import "math"

// fft is an in-place radix-2 Cooley-Tukey FFT, sufficient for the fixed
// 64-point OFDM symbol size used throughout this package.
func fft(a []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}
	bitReverse(a)
	for size := 2; size <= n; size *= 2 {
		half := size / 2
		w := cmplx.Rect(1, -2*math.Pi/float64(size))
		for start := 0; start < n; start += size {
			wk := complex(1.0, 0.0)
			for k := 0; k < half; k++ {
				u := a[start+k]
				v := a[start+k+half] * wk
				a[start+k] = u + v
				a[start+k+half] = u - v
				wk *= w
			}
		}
	}
}

// ifft is the inverse of fft, implemented via conjugate-fft-conjugate
// with a 1/n scale.
func ifft(a []complex128) {
	n := len(a)
	for i := range a {
		a[i] = cmplx.Conj(a[i])
	}
	fft(a)
	for i := range a {
		a[i] = cmplx.Conj(a[i]) / complex(float64(n), 0)
	}
}

func bitReverse(a []complex128) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// fftShift moves DC from index 0 to the center, matching numpy's
// fftshift and the convention used by the channel-estimate and demod
// reference tables (which are indexed -26..26 around DC).
func fftShift(a []complex128) []complex128 {
	n := len(a)
	out := make([]complex128, n)
	half := n / 2
	copy(out[:n-half], a[half:])
	copy(out[n-half:], a[:half])
	return out
}
