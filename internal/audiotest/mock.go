// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides a deterministic in-memory audio engine for
// testing the scene graph, plus helpers for writing small WAV fixtures.
package audiotest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ik5/soundscape/engine"
)

// Engine is a mock engine.Engine. Buffer durations and load failures
// are scripted per path before the scene touches them.
type Engine struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	failures  map[string]error
	reverbErr error
	modelErr  error
	Sessions  []*Session
}

// NewEngine creates a mock engine. Unscripted paths load with a
// duration of one second.
func NewEngine() *Engine {
	return &Engine{
		durations: make(map[string]time.Duration),
		failures:  make(map[string]error),
	}
}

// SetDuration scripts the decoded duration reported for path.
func (e *Engine) SetDuration(path string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.durations[path] = d
}

// FailLoad scripts LoadBuffer to fail for path.
func (e *Engine) FailLoad(path string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[path] = err
}

// FailReverb scripts NewReverb to fail on sessions created afterwards.
func (e *Engine) FailReverb(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reverbErr = err
}

// FailDistanceModel scripts SetDistanceModel to fail on sessions
// created afterwards.
func (e *Engine) FailDistanceModel(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modelErr = err
}

func (e *Engine) NewSession() (engine.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &Session{
		eng:       e,
		routes:    make(map[routeKey]bool),
		reverbErr: e.reverbErr,
		modelErr:  e.modelErr,
	}
	e.Sessions = append(e.Sessions, s)
	return s, nil
}

type routeKey struct {
	src engine.Source
	fx  engine.Effect
}

// Session records every object it creates and every call that mutates
// session state, so tests can assert on the engine's view of the scene.
type Session struct {
	eng *Engine

	mu        sync.Mutex
	closed    bool
	reverbErr error
	modelErr  error
	routes    map[routeKey]bool
	Loads     []string
	Buffers   []*Buffer
	Sources   []*Source
	Gens      []*Generator
	Echoes    []*Echo
	Reverbs   []*Reverb
	Listener  [3]float64
	Model     engine.DistanceModel
	ModelSets int
}

func (s *Session) LoadBuffer(path string) (engine.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrSessionClosed
	}
	s.Loads = append(s.Loads, path)

	s.eng.mu.Lock()
	failure := s.eng.failures[path]
	dur, ok := s.eng.durations[path]
	s.eng.mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	if !ok {
		dur = time.Second
	}
	b := &Buffer{Path: path, Dur: dur}
	s.Buffers = append(s.Buffers, b)
	return b, nil
}

func (s *Session) NewDirectSource() (engine.Source, error) {
	return s.newSource(false, engine.PannerStereo)
}

func (s *Session) NewSpatialSource(strategy engine.PannerStrategy) (engine.Source, error) {
	return s.newSource(true, strategy)
}

func (s *Session) newSource(spatial bool, strategy engine.PannerStrategy) (engine.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrSessionClosed
	}
	src := &Source{
		Spatial:  spatial,
		Strategy: strategy,
		Gain:     1,
		Filter:   engine.Identity(),
	}
	s.Sources = append(s.Sources, src)
	return src, nil
}

func (s *Session) NewGenerator() (engine.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrSessionClosed
	}
	g := &Generator{Pitch: 1, Speed: 1, Looping: false}
	s.Gens = append(s.Gens, g)
	return g, nil
}

func (s *Session) NewEcho() (engine.Echo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrSessionClosed
	}
	e := &Echo{}
	s.Echoes = append(s.Echoes, e)
	return e, nil
}

func (s *Session) NewReverb() (engine.Reverb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrSessionClosed
	}
	if s.reverbErr != nil {
		return nil, s.reverbErr
	}
	r := &Reverb{}
	s.Reverbs = append(s.Reverbs, r)
	return r, nil
}

func (s *Session) Route(src engine.Source, fx engine.Effect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey{src, fx}] = true
	return nil
}

func (s *Session) Unroute(src engine.Source, fx engine.Effect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, routeKey{src, fx})
	return nil
}

// Routed reports whether src is currently routed to fx.
func (s *Session) Routed(src engine.Source, fx engine.Effect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes[routeKey{src, fx}]
}

// RouteCount returns the number of live routes.
func (s *Session) RouteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.routes)
}

func (s *Session) SetListenerPosition(x, y, z float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Listener = [3]float64{x, y, z}
	return nil
}

func (s *Session) SetDistanceModel(model engine.DistanceModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modelErr != nil {
		return s.modelErr
	}
	s.Model = model
	s.ModelSets++
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Buffer is a mock decoded buffer.
type Buffer struct {
	Path     string
	Dur      time.Duration
	mu       sync.Mutex
	released bool
}

func (b *Buffer) Duration() time.Duration { return b.Dur }

func (b *Buffer) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return fmt.Errorf("%w: %s", engine.ErrBufferReleased, b.Path)
	}
	b.released = true
	return nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Generator is a mock playback cursor. Fields are exported for test
// assertions; take Lock when reading them from another goroutine.
type Generator struct {
	mu      sync.Mutex
	Buffer  engine.Buffer
	Looping bool
	Pitch   float64
	Speed   float64
	Pos     time.Duration
	Closed  bool
}

func (g *Generator) SetBuffer(buf engine.Buffer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Buffer = buf
	return nil
}

func (g *Generator) SetLooping(looping bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Looping = looping
	return nil
}

func (g *Generator) SetPitch(pitch float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Pitch = pitch
	return nil
}

func (g *Generator) SetSpeed(speed float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Speed = speed
	return nil
}

func (g *Generator) Position() (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Pos, nil
}

func (g *Generator) SetPosition(pos time.Duration) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Buffer == nil {
		return 0, engine.ErrNoBufferBound
	}
	g.Pos = pos
	return g.Pos, nil
}

func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Closed = true
	return nil
}

// MovePosition advances the mock cursor, simulating playback progress.
func (g *Generator) MovePosition(pos time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Pos = pos
}

// Source is a mock mixable node.
type Source struct {
	Spatial  bool
	Strategy engine.PannerStrategy

	mu          sync.Mutex
	Gens        []engine.Generator
	AddCalls    int
	PlayCalls   int
	PauseCalls  int
	Gain        float64
	Filter      engine.FilterDesign
	X, Y, Z     float64
	MaxDistance float64
	Playing     bool
	Closed      bool
}

func (s *Source) AddGenerator(gen engine.Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.Gens {
		if g == gen {
			return errors.New("generator already attached")
		}
	}
	s.Gens = append(s.Gens, gen)
	s.AddCalls++
	return nil
}

func (s *Source) RemoveGenerator(gen engine.Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.Gens {
		if g == gen {
			s.Gens = append(s.Gens[:i], s.Gens[i+1:]...)
			return nil
		}
	}
	return errors.New("generator not attached")
}

func (s *Source) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Playing = true
	s.PlayCalls++
	return nil
}

func (s *Source) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Playing = false
	s.PauseCalls++
	return nil
}

func (s *Source) SetGain(gain float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gain = gain
	return nil
}

func (s *Source) SetFilter(design engine.FilterDesign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Filter = design
	return nil
}

func (s *Source) SetPosition(x, y, z float64) error {
	if !s.Spatial {
		return engine.ErrNotSpatial
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.X, s.Y, s.Z = x, y, z
	return nil
}

func (s *Source) SetMaxDistance(distance float64) error {
	if !s.Spatial {
		return engine.ErrNotSpatial
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaxDistance = distance
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Echo is a mock echo unit.
type Echo struct {
	mu       sync.Mutex
	Taps     []engine.EchoTap
	SetCalls int
	Closed   bool
}

func (e *Echo) SetTaps(taps []engine.EchoTap) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Taps = append([]engine.EchoTap(nil), taps...)
	e.SetCalls++
	return nil
}

func (e *Echo) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Closed = true
	return nil
}

// CurrentTaps returns a copy of the tap list.
func (e *Echo) CurrentTaps() []engine.EchoTap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.EchoTap(nil), e.Taps...)
}

// Reverb is a mock reverb unit.
type Reverb struct {
	mu     sync.Mutex
	T60    float64
	Closed bool
}

func (r *Reverb) SetDecayTime(t60 float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.T60 = t60
	return nil
}

func (r *Reverb) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}
