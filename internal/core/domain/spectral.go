package domain

// Burst is a maximal run of instantaneous power above the detector's
// threshold, expressed in sample indices relative to the owning block.
type Burst struct {
	StartIndex int
	EndIndex   int
	Duration   float64 // seconds
	MeanPower  float64
}

// SpectralFeatures is the flat record produced by the Spectral Analyzer for
// one sample block. It is discarded after classification unless a caller
// chooses to attach it to a detection event for diagnostics.
type SpectralFeatures struct {
	Bandwidth        float64 // Hz, -10dB rule
	CenterFrequency  float64 // Hz
	PeakPowerDB      float64
	SpectralCentroid float64
	SpectralSpread   float64
	SpectralFlatness float64
	SNRDB            float64
	Bursts           []Burst
}
