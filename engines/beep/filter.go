// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"math"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/engine"
)

// biquad is a direct form I stereo biquad. Coefficients follow the RBJ
// audio EQ cookbook, normalized by a0.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

// newBiquad builds a filter from a design. The identity design yields a
// nil filter, meaning pass-through.
func newBiquad(design engine.FilterDesign, rate gopxl.SampleRate) (*biquad, error) {
	if design.Kind == engine.FilterIdentity {
		return nil, nil
	}

	nyquist := float64(rate) / 2
	if design.Frequency <= 0 || design.Frequency >= nyquist {
		return nil, fmt.Errorf("%w: frequency %v outside (0, %v)",
			ErrBadFilterDesign, design.Frequency, nyquist)
	}

	w0 := 2 * math.Pi * design.Frequency / float64(rate)
	sinw0 := math.Sin(w0)
	cosw0 := math.Cos(w0)

	var alpha float64
	switch design.Kind {
	case engine.FilterLowpass, engine.FilterHighpass:
		if design.Q <= 0 {
			return nil, fmt.Errorf("%w: q %v, must be positive",
				ErrBadFilterDesign, design.Q)
		}
		alpha = sinw0 / (2 * design.Q)
	case engine.FilterBandpass:
		if design.Bandwidth <= 0 {
			return nil, fmt.Errorf("%w: bandwidth %v, must be positive",
				ErrBadFilterDesign, design.Bandwidth)
		}
		alpha = sinw0 * math.Sinh(math.Ln2/2*design.Bandwidth*w0/sinw0)
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrBadFilterDesign, design.Kind)
	}

	f := &biquad{}
	a0 := 1 + alpha
	switch design.Kind {
	case engine.FilterLowpass:
		f.b0 = (1 - cosw0) / 2
		f.b1 = 1 - cosw0
		f.b2 = (1 - cosw0) / 2
	case engine.FilterHighpass:
		f.b0 = (1 + cosw0) / 2
		f.b1 = -(1 + cosw0)
		f.b2 = (1 + cosw0) / 2
	case engine.FilterBandpass:
		// Constant 0 dB peak gain variant.
		f.b0 = alpha
		f.b1 = 0
		f.b2 = -alpha
	}
	f.b0 /= a0
	f.b1 /= a0
	f.b2 /= a0
	f.a1 = -2 * cosw0 / a0
	f.a2 = (1 - alpha) / a0
	return f, nil
}

func (f *biquad) process(samples [][2]float64) {
	for i := range samples {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] -
				f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
}
