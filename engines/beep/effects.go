// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"math"
	"sync"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/engine"
)

// effectProc is the per-source instance of a shared effect unit. It is
// only called from the mix goroutine.
type effectProc interface {
	process(samples [][2]float64)
}

// Echo is a shared multi-tap echo unit. It holds the tap list; every
// source routed to it runs its own delay line built from that list.
type Echo struct {
	mu      sync.Mutex
	taps    []engine.EchoTap
	version uint64
}

// SetTaps replaces the tap list. Routed sources pick the change up on
// their next mix block.
func (e *Echo) SetTaps(taps []engine.EchoTap) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taps = make([]engine.EchoTap, len(taps))
	copy(e.taps, taps)
	e.version++
	return nil
}

// Close clears the taps; routed sources fall silent on the effect path.
func (e *Echo) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taps = nil
	e.version++
	return nil
}

func (e *Echo) snapshot() ([]engine.EchoTap, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.taps, e.version
}

// echoProc is a ring-buffer delay line over the dry signal. Each tap
// reads the line at its own offset with per-channel gains.
type echoProc struct {
	unit    *Echo
	rate    gopxl.SampleRate
	version uint64

	ring   [][2]float64
	w      int
	delays []int
	gainL  []float64
	gainR  []float64
}

func newEchoProc(unit *Echo, rate gopxl.SampleRate) *echoProc {
	p := &echoProc{unit: unit, rate: rate}
	p.rebuild()
	return p
}

func (p *echoProc) rebuild() {
	taps, version := p.unit.snapshot()
	p.version = version
	p.delays = p.delays[:0]
	p.gainL = p.gainL[:0]
	p.gainR = p.gainR[:0]

	longest := 0
	for _, tap := range taps {
		d := p.rate.N(tap.Delay)
		if d < 1 {
			d = 1
		}
		if d > longest {
			longest = d
		}
		p.delays = append(p.delays, d)
		p.gainL = append(p.gainL, tap.GainL)
		p.gainR = append(p.gainR, tap.GainR)
	}
	if longest == 0 {
		p.ring = nil
		return
	}
	p.ring = make([][2]float64, longest+1)
	p.w = 0
}

func (p *echoProc) process(samples [][2]float64) {
	if _, version := p.unit.snapshot(); version != p.version {
		p.rebuild()
	}
	if p.ring == nil {
		return
	}
	size := len(p.ring)
	for i := range samples {
		dry := samples[i]
		p.ring[p.w] = dry
		for t, d := range p.delays {
			echoed := p.ring[(p.w-d+size)%size]
			samples[i][0] += echoed[0] * p.gainL[t]
			samples[i][1] += echoed[1] * p.gainR[t]
		}
		p.w = (p.w + 1) % size
	}
}

// Reverb is a shared reverb unit parameterized by t60 decay time. The
// per-source processor is a bank of parallel feedback combs, a coarse
// approximation rather than a full room model.
type Reverb struct {
	mu      sync.Mutex
	t60     float64
	version uint64
}

// SetDecayTime sets the t60 decay time in seconds.
func (r *Reverb) SetDecayTime(t60 float64) error {
	if t60 <= 0 {
		return fmt.Errorf("decay time %v, must be positive", t60)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t60 = t60
	r.version++
	return nil
}

// Close silences the unit for routed sources.
func (r *Reverb) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t60 = 0
	r.version++
	return nil
}

func (r *Reverb) snapshot() (float64, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t60, r.version
}

// combDelaysMs are mutually prime-ish comb lengths, in milliseconds.
var combDelaysMs = [4]float64{29.7, 37.1, 41.1, 43.7}

const reverbWet = 0.25

type comb struct {
	buf [][2]float64
	w   int
	fb  float64
}

type reverbProc struct {
	unit    *Reverb
	rate    gopxl.SampleRate
	version uint64
	combs   []comb
}

func newReverbProc(unit *Reverb, rate gopxl.SampleRate) *reverbProc {
	p := &reverbProc{unit: unit, rate: rate}
	p.rebuild()
	return p
}

func (p *reverbProc) rebuild() {
	t60, version := p.unit.snapshot()
	p.version = version
	if t60 <= 0 {
		p.combs = nil
		return
	}
	p.combs = make([]comb, len(combDelaysMs))
	for i, ms := range combDelaysMs {
		delaySec := ms / 1000
		n := int(delaySec * float64(p.rate))
		if n < 1 {
			n = 1
		}
		p.combs[i] = comb{
			buf: make([][2]float64, n),
			// Feedback for a 60 dB decay after t60 seconds.
			fb: math.Pow(10, -3*delaySec/t60),
		}
	}
}

func (p *reverbProc) process(samples [][2]float64) {
	if _, version := p.unit.snapshot(); version != p.version {
		p.rebuild()
	}
	if len(p.combs) == 0 {
		return
	}
	norm := reverbWet / float64(len(p.combs))
	for i := range samples {
		dry := samples[i]
		var wetL, wetR float64
		for c := range p.combs {
			cb := &p.combs[c]
			out := cb.buf[cb.w]
			cb.buf[cb.w][0] = dry[0] + out[0]*cb.fb
			cb.buf[cb.w][1] = dry[1] + out[1]*cb.fb
			cb.w++
			if cb.w == len(cb.buf) {
				cb.w = 0
			}
			wetL += out[0]
			wetR += out[1]
		}
		samples[i][0] += wetL * norm
		samples[i][1] += wetR * norm
	}
}
