// SPDX-License-Identifier: EPL-2.0

package engine

import "time"

// EchoTap is one delayed, gain-scaled reflection within an echo unit.
type EchoTap struct {
	Delay time.Duration
	GainL float64
	GainR float64
}

// PannerStrategy selects how a spatial source is panned.
type PannerStrategy int

const (
	// PannerStereo pans with plain stereo amplitude panning.
	PannerStereo PannerStrategy = iota
	// PannerHRTF asks the backend for head-related transfer function
	// panning. Backends without HRTF support may fall back to stereo.
	PannerHRTF
)

// DistanceModel maps listener-source distance to attenuation.
type DistanceModel int

const (
	// DistanceNone disables distance attenuation.
	DistanceNone DistanceModel = iota
	DistanceLinear
	DistanceExponential
	DistanceInverse
)

func (m DistanceModel) String() string {
	switch m {
	case DistanceNone:
		return "none"
	case DistanceLinear:
		return "linear"
	case DistanceExponential:
		return "exponential"
	case DistanceInverse:
		return "inverse"
	}
	return "unknown"
}

// FilterKind identifies a biquad filter design.
type FilterKind int

const (
	FilterIdentity FilterKind = iota
	FilterLowpass
	FilterHighpass
	FilterBandpass
)

// defaultQ is the Butterworth quality factor used when the caller does
// not supply one.
const defaultQ = 0.7071135624381276

// FilterDesign describes a source filter. Build values with Identity,
// Lowpass, Highpass or Bandpass rather than filling the struct by hand.
type FilterDesign struct {
	Kind      FilterKind
	Frequency float64
	Q         float64
	Bandwidth float64
}

// Identity returns the pass-through filter design.
func Identity() FilterDesign {
	return FilterDesign{Kind: FilterIdentity}
}

// Lowpass returns a lowpass design at the given cutoff frequency. An
// optional quality factor may follow; it defaults to Butterworth.
func Lowpass(frequency float64, q ...float64) FilterDesign {
	return FilterDesign{Kind: FilterLowpass, Frequency: frequency, Q: pickQ(q)}
}

// Highpass returns a highpass design at the given cutoff frequency. An
// optional quality factor may follow; it defaults to Butterworth.
func Highpass(frequency float64, q ...float64) FilterDesign {
	return FilterDesign{Kind: FilterHighpass, Frequency: frequency, Q: pickQ(q)}
}

// Bandpass returns a bandpass design centered on frequency with the
// given bandwidth in octaves.
func Bandpass(frequency, bandwidth float64) FilterDesign {
	return FilterDesign{Kind: FilterBandpass, Frequency: frequency, Bandwidth: bandwidth}
}

func pickQ(q []float64) float64 {
	if len(q) > 0 {
		return q[0]
	}
	return defaultQ
}
