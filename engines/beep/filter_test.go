// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/soundscape/engine"
)

func runDC(f *biquad, frames int) float64 {
	block := make([][2]float64, frames)
	for i := range block {
		block[i] = [2]float64{1, 1}
	}
	f.process(block)
	return block[frames-1][0]
}

func TestLowpassPassesDC(t *testing.T) {
	t.Parallel()

	f, err := newBiquad(engine.Lowpass(1000), 48000)
	if err != nil {
		t.Fatalf("newBiquad() error = %v", err)
	}
	if got := runDC(f, 2000); math.Abs(got-1) > 0.01 {
		t.Errorf("DC response = %v, want ≈1", got)
	}
}

func TestHighpassBlocksDC(t *testing.T) {
	t.Parallel()

	f, err := newBiquad(engine.Highpass(1000), 48000)
	if err != nil {
		t.Fatalf("newBiquad() error = %v", err)
	}
	if got := runDC(f, 2000); math.Abs(got) > 0.01 {
		t.Errorf("DC response = %v, want ≈0", got)
	}
}

func TestBandpassBlocksDC(t *testing.T) {
	t.Parallel()

	f, err := newBiquad(engine.Bandpass(1000, 1), 48000)
	if err != nil {
		t.Fatalf("newBiquad() error = %v", err)
	}
	if got := runDC(f, 2000); math.Abs(got) > 0.01 {
		t.Errorf("DC response = %v, want ≈0", got)
	}
}

func TestIdentityMeansNoFilter(t *testing.T) {
	t.Parallel()

	f, err := newBiquad(engine.Identity(), 48000)
	if err != nil {
		t.Fatalf("newBiquad() error = %v", err)
	}
	if f != nil {
		t.Errorf("newBiquad(Identity) = %v, want nil", f)
	}
}

func TestBiquadBadDesigns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		design engine.FilterDesign
	}{
		{"negative frequency", engine.Lowpass(-10)},
		{"zero frequency", engine.Highpass(0)},
		{"frequency at nyquist", engine.Lowpass(24000)},
		{"zero q", engine.Lowpass(1000, 0)},
		{"negative bandwidth", engine.Bandpass(1000, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := newBiquad(tt.design, 48000); !errors.Is(err, ErrBadFilterDesign) {
				t.Errorf("newBiquad() error = %v, want ErrBadFilterDesign", err)
			}
		})
	}
}
