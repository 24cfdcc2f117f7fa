// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"sync"
	"time"

	gopxl "github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ik5/soundscape/engine"
)

// Config controls the playback backend.
type Config struct {
	// SampleRate of the output device in Hz.
	SampleRate int

	// BufferSize of the output device. Larger is safer, smaller is
	// snappier.
	BufferSize time.Duration

	// Quality of the resamplers (1..64); beep's docs suggest 3-4 for
	// real time use.
	Quality int
}

// DefaultConfig returns the configuration used when NewEngine is called
// without one.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 48000,
		BufferSize: 100 * time.Millisecond,
		Quality:    4,
	}
}

// Validate reports whether the configuration is usable.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate %d too low", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size %v, must be positive", c.BufferSize)
	}
	if c.Quality < 1 || c.Quality > 64 {
		return fmt.Errorf("resampler quality %d out of range", c.Quality)
	}
	return nil
}

// Engine is an engine.Engine backed by gopxl/beep and the speaker
// package. The speaker is a process-wide device, so at most one session
// can be open at a time; closing it allows opening another.
type Engine struct {
	cfg *Config

	mu      sync.Mutex
	current *Session
}

// NewEngine creates a beep-backed engine. Passing no config uses
// DefaultConfig.
func NewEngine(cfg ...*Config) (*Engine, error) {
	config := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		config = cfg[0]
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	return &Engine{cfg: config}, nil
}

// NewSession initializes the speaker and starts the mix loop.
func (e *Engine) NewSession() (engine.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && !e.current.isClosed() {
		return nil, ErrSessionOpen
	}

	sess := newSession(e.cfg, speakerOutput{})
	if err := sess.start(); err != nil {
		return nil, fmt.Errorf("starting speaker: %w", err)
	}
	e.current = sess
	return sess, nil
}

// output abstracts the speaker so sessions are testable without an
// audio device.
type output interface {
	start(rate gopxl.SampleRate, bufferSize time.Duration, root gopxl.Streamer) error
	lock()
	unlock()
	close()
}

type speakerOutput struct{}

func (speakerOutput) start(rate gopxl.SampleRate, bufferSize time.Duration, root gopxl.Streamer) error {
	if err := speaker.Init(rate, rate.N(bufferSize)); err != nil {
		return err
	}
	speaker.Play(root)
	return nil
}

func (speakerOutput) lock()   { speaker.Lock() }
func (speakerOutput) unlock() { speaker.Unlock() }
func (speakerOutput) close()  { speaker.Close() }
