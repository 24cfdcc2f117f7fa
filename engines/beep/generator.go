// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"sync"
	"time"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/engine"
)

// Generator is a playback cursor over a Buffer. Pitch and speed both go
// through one resampler, so they multiply into a single playback ratio
// rather than acting independently.
type Generator struct {
	sess *Session

	mu        sync.Mutex
	buf       *Buffer
	cursor    gopxl.StreamSeeker
	length    int
	resampler *gopxl.Resampler
	looping   bool
	pitch     float64
	speed     float64
	drained   bool
	closed    bool
}

// SetBuffer binds the generator to a buffer and rewinds it.
func (g *Generator) SetBuffer(buf engine.Buffer) error {
	bb, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: buffer %T", ErrForeignUnit, buf)
	}
	cursor, length, err := bb.streamer()
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.buf = bb
	g.cursor = cursor
	g.length = length
	g.drained = false
	g.resampler = gopxl.ResampleRatio(g.sess.cfg.Quality, g.pitch*g.speed, loopReader{g})
	return nil
}

// SetLooping makes the cursor wrap at the end instead of stopping.
func (g *Generator) SetLooping(looping bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.looping = looping
	if looping {
		g.drained = false
	}
	return nil
}

// SetPitch sets the pitch bend multiplier.
func (g *Generator) SetPitch(pitch float64) error {
	if pitch <= 0 {
		return fmt.Errorf("pitch %v, must be positive", pitch)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pitch = pitch
	if g.resampler != nil {
		g.resampler.SetRatio(g.pitch * g.speed)
	}
	return nil
}

// SetSpeed sets the playback speed multiplier.
func (g *Generator) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed %v, must be positive", speed)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.speed = speed
	if g.resampler != nil {
		g.resampler.SetRatio(g.pitch * g.speed)
	}
	return nil
}

// Position reports the cursor position within the bound buffer.
func (g *Generator) Position() (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cursor == nil {
		return 0, engine.ErrNoBufferBound
	}
	return g.sess.rate.D(g.cursor.Position()), nil
}

// SetPosition seeks the cursor, clamping to the buffer bounds, and
// returns the position that took effect.
func (g *Generator) SetPosition(pos time.Duration) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cursor == nil {
		return 0, engine.ErrNoBufferBound
	}

	n := g.sess.rate.N(pos)
	if n < 0 {
		n = 0
	}
	if n > g.length {
		n = g.length
	}
	if err := g.cursor.Seek(n); err != nil {
		return 0, fmt.Errorf("seeking to %v: %w", pos, err)
	}
	g.drained = n >= g.length && !g.looping
	return g.sess.rate.D(g.cursor.Position()), nil
}

// Close detaches the generator from its buffer. The buffer itself is
// owned by the caller and stays valid.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cursor = nil
	g.resampler = nil
	g.buf = nil
	return nil
}

// stream pulls resampled audio. It reports false once the cursor is
// exhausted and not looping.
func (g *Generator) stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.resampler == nil || g.drained {
		return 0, false
	}
	n, ok := g.resampler.Stream(samples)
	return n, ok && n > 0
}

// loopReader feeds the resampler from the cursor, wrapping at the end
// when looping. It is only ever called from Generator.stream, which
// already holds g.mu.
type loopReader struct {
	g *Generator
}

func (l loopReader) Stream(samples [][2]float64) (int, bool) {
	g := l.g
	if g.length == 0 {
		g.drained = true
		return 0, false
	}
	filled := 0
	zeroWraps := 0
	for filled < len(samples) {
		if g.drained || g.cursor == nil {
			break
		}
		n, ok := g.cursor.Stream(samples[filled:])
		filled += n
		if n > 0 {
			zeroWraps = 0
		}
		if ok && g.cursor.Position() < g.length {
			continue
		}
		if !g.looping {
			g.drained = true
			break
		}
		if err := g.cursor.Seek(0); err != nil {
			g.drained = true
			break
		}
		// Two wraps in a row without progress means the cursor will
		// never produce anything; bail instead of spinning.
		if n == 0 {
			zeroWraps++
			if zeroWraps > 1 {
				g.drained = true
				break
			}
		}
	}
	return filled, filled > 0
}

func (loopReader) Err() error { return nil }
