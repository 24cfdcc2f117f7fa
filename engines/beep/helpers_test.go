// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/internal/audiotest"
)

// nullOutput swallows the mix instead of driving a sound card. Tests
// pull blocks through the root mixer with render.
type nullOutput struct {
	mu      sync.Mutex
	rate    gopxl.SampleRate
	root    gopxl.Streamer
	started bool
	closed  bool
}

func (o *nullOutput) start(rate gopxl.SampleRate, _ time.Duration, root gopxl.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rate = rate
	o.root = root
	o.started = true
	return nil
}

func (o *nullOutput) lock()   { o.mu.Lock() }
func (o *nullOutput) unlock() { o.mu.Unlock() }

func (o *nullOutput) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *nullOutput) render(frames int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := make([][2]float64, frames)
	o.root.Stream(buf)
	return buf
}

func newTestSession(t *testing.T) (*Session, *nullOutput) {
	t.Helper()
	out := &nullOutput{}
	sess := newSession(DefaultConfig(), out)
	if err := sess.start(); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess, out
}

// writeToneWAV writes a one second 440 Hz fixture at the session rate.
func writeToneWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := audiotest.WriteSineWAV(path, 48000, 440, 48000); err != nil {
		t.Fatalf("WriteSineWAV() error = %v", err)
	}
	return path
}

// writeConstantWAV writes totalSamples of a constant 0.5 amplitude
// signal at the session rate.
func writeConstantWAV(t *testing.T, totalSamples int) string {
	t.Helper()
	samples := make([]int, totalSamples)
	for i := range samples {
		samples[i] = 16384
	}
	path := filepath.Join(t.TempDir(), "flat.wav")
	if err := audiotest.WriteWAV(path, 48000, samples); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	return path
}
