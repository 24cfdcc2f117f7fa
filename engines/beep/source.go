// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"math"
	"sync"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/engine"
)

// Source is a mixable signal point. It stays in the root mixer for its
// whole life, streaming silence while idle, and drops out of the mix
// once closed.
type Source struct {
	sess     *Session
	spatial  bool
	strategy engine.PannerStrategy

	mu          sync.Mutex
	gen         *Generator
	playing     bool
	gain        float64
	filter      *biquad
	x, y, z     float64
	maxDistance float64
	procs       []attachment
	closed      bool
}

type attachment struct {
	fx   engine.Effect
	proc effectProc
}

// Stream renders one mix block: generator output, then filter, gain,
// spatial placement and attached effects, in that order.
func (s *Source) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}

	n := 0
	if s.playing && s.gen != nil {
		n, _ = s.gen.stream(samples)
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	if n > 0 {
		if s.filter != nil {
			s.filter.process(samples[:n])
		}
		gl, gr := s.gain, s.gain
		if s.spatial {
			al, ar := s.spatialGains()
			gl *= al
			gr *= ar
		}
		for i := 0; i < n; i++ {
			samples[i][0] *= gl
			samples[i][1] *= gr
		}
	}

	// Effects run over the whole block, silence included, so delay and
	// reverb tails keep ringing after the generator stops.
	for _, a := range s.procs {
		a.proc.process(samples)
	}
	return len(samples), true
}

func (s *Source) Err() error { return nil }

// spatialGains returns per-channel gains from listener-relative pan and
// distance attenuation. Called with s.mu held.
func (s *Source) spatialGains() (float64, float64) {
	listener, model := s.sess.listenerSnapshot()
	dx := s.x - listener[0]
	dy := s.y - listener[1]
	dz := s.z - listener[2]
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	att := attenuation(model, dist, s.maxDistance)

	pan := 0.0
	if dist > 0 {
		pan = dx / dist
	}
	// Equal-power pan, pan in [-1, 1].
	angle := (pan + 1) * math.Pi / 4
	return att * math.Cos(angle), att * math.Sin(angle)
}

// attenuation maps distance to a gain in [0, 1]. A max of zero means
// unlimited range.
func attenuation(model engine.DistanceModel, dist, max float64) float64 {
	if max > 0 && dist >= max {
		return 0
	}
	switch model {
	case engine.DistanceNone:
		return 1
	case engine.DistanceLinear:
		if max <= 0 {
			return 1
		}
		return 1 - dist/max
	case engine.DistanceInverse:
		return 1 / (1 + math.Max(dist-1, 0))
	case engine.DistanceExponential:
		if max <= 0 {
			return math.Exp(-dist)
		}
		// 60 dB down at the audible limit.
		return math.Exp(-6.908 * dist / max)
	}
	return 1
}

// AddGenerator binds a generator to the source. One generator at a
// time; binding a second replaces the first.
func (s *Source) AddGenerator(gen engine.Generator) error {
	g, ok := gen.(*Generator)
	if !ok {
		return fmt.Errorf("%w: generator %T", ErrForeignUnit, gen)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = g
	return nil
}

// RemoveGenerator unbinds the generator if it is the bound one.
func (s *Source) RemoveGenerator(gen engine.Generator) error {
	g, ok := gen.(*Generator)
	if !ok {
		return fmt.Errorf("%w: generator %T", ErrForeignUnit, gen)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == g {
		s.gen = nil
	}
	return nil
}

func (s *Source) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	return nil
}

func (s *Source) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

func (s *Source) SetGain(gain float64) error {
	if gain < 0 {
		return fmt.Errorf("gain %v, must not be negative", gain)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = gain
	return nil
}

// SetFilter replaces the source filter. The identity design removes
// filtering entirely.
func (s *Source) SetFilter(design engine.FilterDesign) error {
	f, err := newBiquad(design, s.sess.rate)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return nil
}

func (s *Source) SetPosition(x, y, z float64) error {
	if !s.spatial {
		return engine.ErrNotSpatial
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y, s.z = x, y, z
	return nil
}

func (s *Source) SetMaxDistance(distance float64) error {
	if !s.spatial {
		return engine.ErrNotSpatial
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxDistance = distance
	return nil
}

// Close silences the source and lets the mixer drop it on the next mix
// block. Closing twice is a no-op.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen = nil
	s.procs = nil
	return nil
}

func (s *Source) attach(fx engine.Effect, rate gopxl.SampleRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.procs {
		if a.fx == fx {
			return nil
		}
	}
	switch v := fx.(type) {
	case *Echo:
		s.procs = append(s.procs, attachment{fx: fx, proc: newEchoProc(v, rate)})
	case *Reverb:
		s.procs = append(s.procs, attachment{fx: fx, proc: newReverbProc(v, rate)})
	default:
		return fmt.Errorf("%w: effect %T", ErrForeignUnit, fx)
	}
	return nil
}

func (s *Source) detach(fx engine.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.procs[:0]
	for _, a := range s.procs {
		if a.fx != fx {
			kept = append(kept, a)
		}
	}
	s.procs = kept
}
