// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ik5/soundscape/engine"
)

// PlayState is the lifecycle state of a sound.
type PlayState int

const (
	// Idle means no generator exists; the sound has never played or was
	// stopped.
	Idle PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// PlayParams are the per-call parameters of Play. Start from the
// sound's Params() and override fields rather than building the struct
// from zero, since the zero value disables looping and mutes pitch and
// volume.
type PlayParams struct {
	Looping bool
	Pitch   float64
	Volume  float64

	// ReverbT60 enables a per-sound reverb attachment with the given
	// decay time in seconds when positive; zero or negative removes the
	// attachment.
	ReverbT60 float64

	// Echo enables the per-sound echo attachment, regenerating its taps
	// from EchoTapCount and EchoDuration on every call.
	Echo         bool
	EchoTapCount int
	EchoDuration time.Duration

	// PitchByHeight derives the pitch bend from the sign of the sound's
	// height relative to the listener: above 0.90, below 1.05, level
	// 1.00. Only effective on spatial sounds.
	PitchByHeight bool

	// SpeedByHeight derives the playback speed the same way: above
	// 0.85, below 1.15, level 1.00. Independent of PitchByHeight.
	SpeedByHeight bool
}

// Sound is a playable entity: one cached buffer, one mixable source,
// and a generator that exists only between Play and Stop. Effects
// attach per sound and route to the source on demand.
type Sound struct {
	scene *Scene
	path  string
	buf   engine.Buffer

	mu           sync.Mutex
	source       engine.Source
	gen          engine.Generator
	state        PlayState
	echoFX       engine.Echo
	reverbFX     engine.Reverb
	echoRouted   bool
	reverbRouted bool
	pos          *position // nil for non-spatial sounds
	id           int
	closed       bool
}

type position struct {
	x, y, z float64
}

// NewSound creates a non-positional sound for the audio file at path.
// The buffer is resolved through the scene's cache; the mixable source
// is dedicated to this sound.
func NewSound(scene *Scene, path string) (*Sound, error) {
	return newSound(scene, path, func() (engine.Source, error) {
		return scene.session.NewDirectSource()
	}, nil)
}

func newSound(scene *Scene, path string, makeSource func() (engine.Source, error), pos *position) (*Sound, error) {
	if scene.isClosed() {
		return nil, ErrSceneClosed
	}
	buf, err := scene.cache.acquire(scene.session, path)
	if err != nil {
		return nil, err
	}
	source, err := makeSource()
	if err != nil {
		scene.cache.release(path)
		return nil, fmt.Errorf("creating source: %w", err)
	}
	return &Sound{
		scene:  scene,
		path:   path,
		buf:    buf,
		source: source,
		pos:    pos,
		id:     -1, // not registered yet
	}, nil
}

// Path returns the source file identifier the sound was created from.
func (s *Sound) Path() string { return s.path }

// Duration returns the length of the underlying buffer.
func (s *Sound) Duration() time.Duration { return s.buf.Duration() }

// State returns the current lifecycle state.
func (s *Sound) State() PlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Params returns the default Play parameters of this sound: looping at
// unity pitch and volume, no reverb, echo off with 20 taps over one
// second when enabled, and height modulation on only for spatial
// sounds.
func (s *Sound) Params() PlayParams {
	spatial := s.pos != nil
	return PlayParams{
		Looping:       true,
		Pitch:         1,
		Volume:        1,
		EchoTapCount:  20,
		EchoDuration:  time.Second,
		PitchByHeight: spatial,
		SpeedByHeight: spatial,
	}
}

// Play starts or resumes playback. Without arguments the sound's
// Params() are used. On the first call since construction or the last
// Stop, the generator is created, bound to the buffer, attached to the
// source and configured with looping, pitch and volume; later calls
// reapply only what can change while playing: effect attachments,
// height-driven pitch and speed, and the position wraparound for
// exhausted non-looping playback.
func (s *Sound) Play(params ...PlayParams) error {
	p := s.Params()
	if len(params) > 0 {
		p = params[0]
	}
	if err := s.validateParams(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: sound is closed", ErrInvalidState)
	}

	if s.gen == nil {
		if err := s.createGenerator(p); err != nil {
			return err
		}
	}
	if err := s.applyReverb(p); err != nil {
		return err
	}
	if err := s.applyEcho(p); err != nil {
		return err
	}
	if err := s.rewindIfExhausted(); err != nil {
		return err
	}
	if err := s.applyHeightModulation(p); err != nil {
		return err
	}

	if err := s.source.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	s.state = Playing
	return nil
}

func (s *Sound) validateParams(p PlayParams) error {
	if p.Pitch <= 0 {
		return fmt.Errorf("%w: pitch %v, must be positive", ErrConfiguration, p.Pitch)
	}
	if p.Volume < 0 {
		return fmt.Errorf("%w: volume %v, must not be negative", ErrConfiguration, p.Volume)
	}
	if p.Echo {
		if p.EchoTapCount < 1 {
			return fmt.Errorf("%w: echo tap count %d, must be at least 1", ErrConfiguration, p.EchoTapCount)
		}
		if p.EchoDuration <= 0 {
			return fmt.Errorf("%w: echo duration %v, must be positive", ErrConfiguration, p.EchoDuration)
		}
	}
	return nil
}

func (s *Sound) createGenerator(p PlayParams) error {
	gen, err := s.scene.session.NewGenerator()
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	if err := gen.SetBuffer(s.buf); err != nil {
		gen.Close()
		return fmt.Errorf("binding buffer: %w", err)
	}
	if err := s.source.AddGenerator(gen); err != nil {
		gen.Close()
		return fmt.Errorf("attaching generator: %w", err)
	}
	var errs []error
	errs = append(errs, gen.SetLooping(p.Looping))
	errs = append(errs, gen.SetPitch(p.Pitch))
	errs = append(errs, s.source.SetGain(p.Volume))
	if err := errors.Join(errs...); err != nil {
		s.source.RemoveGenerator(gen)
		gen.Close()
		return fmt.Errorf("configuring generator: %w", err)
	}
	s.gen = gen
	return nil
}

// applyReverb keeps the reverb route in sync with the invariant that a
// route exists iff reverb was last enabled with a positive decay time.
func (s *Sound) applyReverb(p PlayParams) error {
	if p.ReverbT60 > 0 {
		if s.reverbFX == nil {
			fx, err := s.scene.session.NewReverb()
			if err != nil {
				return fmt.Errorf("creating reverb: %w", err)
			}
			s.reverbFX = fx
		}
		if err := s.reverbFX.SetDecayTime(p.ReverbT60); err != nil {
			return fmt.Errorf("setting reverb decay: %w", err)
		}
		if err := s.scene.session.Route(s.source, s.reverbFX); err != nil {
			return fmt.Errorf("routing reverb: %w", err)
		}
		if !s.reverbRouted {
			s.scene.logger.Debug("reverb routed", "path", s.path, "t60", p.ReverbT60)
		}
		s.reverbRouted = true
		return nil
	}
	if s.reverbRouted {
		if err := s.scene.session.Unroute(s.source, s.reverbFX); err != nil {
			return fmt.Errorf("unrouting reverb: %w", err)
		}
		s.reverbRouted = false
		s.scene.logger.Debug("reverb unrouted", "path", s.path)
	}
	return nil
}

func (s *Sound) applyEcho(p PlayParams) error {
	if p.Echo {
		if s.echoFX == nil {
			fx, err := s.scene.session.NewEcho()
			if err != nil {
				return fmt.Errorf("creating echo: %w", err)
			}
			s.echoFX = fx
		}
		taps, err := EchoTaps(p.EchoTapCount, p.EchoDuration)
		if err != nil {
			return err
		}
		if err := s.echoFX.SetTaps(taps); err != nil {
			return fmt.Errorf("setting echo taps: %w", err)
		}
		if err := s.scene.session.Route(s.source, s.echoFX); err != nil {
			return fmt.Errorf("routing echo: %w", err)
		}
		if !s.echoRouted {
			s.scene.logger.Debug("echo routed", "path", s.path, "taps", p.EchoTapCount)
		}
		s.echoRouted = true
		return nil
	}
	if s.echoRouted {
		if err := s.scene.session.Unroute(s.source, s.echoFX); err != nil {
			return fmt.Errorf("unrouting echo: %w", err)
		}
		s.echoRouted = false
		s.scene.logger.Debug("echo unrouted", "path", s.path)
	}
	return nil
}

// rewindIfExhausted restarts finished non-looping playback from the
// beginning instead of playing nothing.
func (s *Sound) rewindIfExhausted() error {
	pos, err := s.gen.Position()
	if err != nil {
		return fmt.Errorf("reading position: %w", err)
	}
	if pos >= s.buf.Duration() {
		if _, err := s.gen.SetPosition(0); err != nil {
			return fmt.Errorf("rewinding: %w", err)
		}
	}
	return nil
}

func (s *Sound) applyHeightModulation(p PlayParams) error {
	if s.pos == nil || (!p.PitchByHeight && !p.SpeedByHeight) {
		return nil
	}
	listenerY := s.scene.listenerY()
	y := s.pos.y

	if p.PitchByHeight {
		pitch := 1.0
		switch {
		case y > listenerY:
			pitch = 0.90
		case y < listenerY:
			pitch = 1.05
		}
		if err := s.gen.SetPitch(pitch); err != nil {
			return fmt.Errorf("setting height pitch: %w", err)
		}
	}
	if p.SpeedByHeight {
		speed := 1.0
		switch {
		case y > listenerY:
			speed = 0.85
		case y < listenerY:
			speed = 1.15
		}
		if err := s.gen.SetSpeed(speed); err != nil {
			return fmt.Errorf("setting height speed: %w", err)
		}
	}
	return nil
}

// Pause pauses playback, keeping the generator and its position. It is
// a no-op unless the sound is playing.
func (s *Sound) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return nil
	}
	if err := s.source.Pause(); err != nil {
		return fmt.Errorf("pausing: %w", err)
	}
	s.state = Paused
	return nil
}

// Stop detaches and drops the generator, returning the sound to Idle.
// The buffer and the source persist. Idempotent.
func (s *Sound) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Sound) stopLocked() error {
	if s.gen == nil {
		return nil
	}
	var errs []error
	errs = append(errs, s.source.RemoveGenerator(s.gen))
	errs = append(errs, s.gen.Close())
	s.gen = nil
	s.state = Idle
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("stopping: %w", err)
	}
	return nil
}

// Seek moves the playback position by a signed delta, clamped to
// [0, Duration]. It returns the position the engine confirmed. Seeking
// requires a generator, so calling Seek before Play or after Stop
// returns ErrInvalidState.
func (s *Sound) Seek(delta time.Duration) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == nil {
		return 0, fmt.Errorf("%w: seek requires active playback", ErrInvalidState)
	}

	current, err := s.gen.Position()
	if err != nil {
		return 0, fmt.Errorf("reading position: %w", err)
	}
	target := current + delta
	if target < 0 {
		target = 0
	}
	if dur := s.buf.Duration(); target > dur {
		target = dur
	}
	confirmed, err := s.gen.SetPosition(target)
	if err != nil {
		return 0, fmt.Errorf("seeking: %w", err)
	}
	return confirmed, nil
}

// PlaybackPosition returns the generator's playback position, or zero
// when the sound is idle.
func (s *Sound) PlaybackPosition() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == nil {
		return 0, nil
	}
	return s.gen.Position()
}

// SetLowpass applies a lowpass filter to the source, e.g. for occlusion
// or muffling. The quality factor is optional.
func (s *Sound) SetLowpass(frequency float64, q ...float64) error {
	return s.setFilter(engine.Lowpass(frequency, q...))
}

// SetHighpass applies a highpass filter to the source, e.g. to thin a
// sound heard through a wall or pipe. The quality factor is optional.
func (s *Sound) SetHighpass(frequency float64, q ...float64) error {
	return s.setFilter(engine.Highpass(frequency, q...))
}

// SetBandpass applies a bandpass filter centered on frequency with the
// given bandwidth.
func (s *Sound) SetBandpass(frequency, bandwidth float64) error {
	return s.setFilter(engine.Bandpass(frequency, bandwidth))
}

// ClearFilter restores the pass-through filter.
func (s *Sound) ClearFilter() error {
	return s.setFilter(engine.Identity())
}

func (s *Sound) setFilter(design engine.FilterDesign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: sound is closed", ErrInvalidState)
	}
	if err := s.source.SetFilter(design); err != nil {
		return fmt.Errorf("setting filter: %w", err)
	}
	return nil
}

// SetVolume sets the source gain directly, independent of Play
// parameters, effective immediately whether playing or not.
func (s *Sound) SetVolume(volume float64) error {
	if volume < 0 {
		return fmt.Errorf("%w: volume %v, must not be negative", ErrConfiguration, volume)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: sound is closed", ErrInvalidState)
	}
	if err := s.source.SetGain(volume); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}
	return nil
}

// Close stops playback, detaches and closes the per-sound effect units,
// releases the source and gives the buffer reference back to the
// cache. Spatial sounds are removed from the scene registry. Idempotent.
func (s *Sound) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var errs []error
	errs = append(errs, s.stopLocked())
	if s.echoRouted {
		errs = append(errs, s.scene.session.Unroute(s.source, s.echoFX))
	}
	if s.reverbRouted {
		errs = append(errs, s.scene.session.Unroute(s.source, s.reverbFX))
	}
	if s.echoFX != nil {
		errs = append(errs, s.echoFX.Close())
	}
	if s.reverbFX != nil {
		errs = append(errs, s.reverbFX.Close())
	}
	errs = append(errs, s.source.Close())
	spatial := s.pos != nil
	id := s.id
	s.mu.Unlock()

	s.scene.cache.release(s.path)
	if spatial && id >= 0 {
		s.scene.deregister(id)
	}
	return errors.Join(errs...)
}
