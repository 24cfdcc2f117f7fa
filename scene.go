// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ik5/soundscape/engine"
)

// Scene is an explicitly constructed mixing scene: one engine session,
// one shared echo unit, one shared reverb unit, a bounded buffer cache
// and a registry of the spatial sounds that live in it. There is no
// hidden process-wide state; every sound is constructed against a
// scene and released with Close.
type Scene struct {
	cfg     SceneConfig
	logger  *log.Logger
	session engine.Session
	echo    engine.Echo
	reverb  engine.Reverb
	cache   *bufferCache

	mu       sync.Mutex
	closed   bool
	listener [3]float64
	maxDist  float64
	nextID   int
	spatial  map[int]*SpatialSound
}

// NewScene opens a session on the engine and builds the shared effect
// units. Passing no config uses DefaultSceneConfig.
func NewScene(eng engine.Engine, cfg ...*SceneConfig) (*Scene, error) {
	config := DefaultSceneConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		config = cfg[0]
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	session, err := eng.NewSession()
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	echo, err := session.NewEcho()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("creating shared echo: %w", err)
	}
	reverb, err := session.NewReverb()
	if err != nil {
		echo.Close()
		session.Close()
		return nil, fmt.Errorf("creating shared reverb: %w", err)
	}
	if err := session.SetDistanceModel(config.DistanceModel); err != nil {
		echo.Close()
		reverb.Close()
		session.Close()
		return nil, fmt.Errorf("setting distance model: %w", err)
	}

	logger := config.logger()
	return &Scene{
		cfg:     *config,
		logger:  logger,
		session: session,
		echo:    echo,
		reverb:  reverb,
		cache:   newBufferCache(config.CacheCapacity, logger),
		maxDist: config.MaxDistance,
		spatial: make(map[int]*SpatialSound),
	}, nil
}

// Close releases every registered sound, the cached buffers, the shared
// effect units and the session. The scene must not be used afterwards.
func (s *Scene) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sounds := make([]*SpatialSound, 0, len(s.spatial))
	for _, snd := range s.spatial {
		sounds = append(sounds, snd)
	}
	s.mu.Unlock()

	var errs []error
	for _, snd := range sounds {
		if err := snd.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.cache.close()
	if err := s.echo.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.reverb.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.session.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SetListener moves the scene-wide listener and mirrors the new
// position to the session immediately.
func (s *Scene) SetListener(x, y, z float64) error {
	s.mu.Lock()
	s.listener = [3]float64{x, y, z}
	s.mu.Unlock()
	return s.session.SetListenerPosition(x, y, z)
}

// SetListenerXY moves the listener on the horizontal plane, keeping the
// current z.
func (s *Scene) SetListenerXY(x, y float64) error {
	s.mu.Lock()
	z := s.listener[2]
	s.listener = [3]float64{x, y, z}
	s.mu.Unlock()
	return s.session.SetListenerPosition(x, y, z)
}

// Listener returns the current listener position.
func (s *Scene) Listener() (x, y, z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener[0], s.listener[1], s.listener[2]
}

// MaxDistance returns the maximum audible distance applied to spatial
// sounds.
func (s *Scene) MaxDistance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxDist
}

// SetMaxDistance changes the maximum audible distance and broadcasts it
// to every registered spatial sound. Each sound's Play is re-invoked
// with its default parameters, which refreshes the height-driven
// pitch/speed modulation and the effect routing along the way.
func (s *Scene) SetMaxDistance(distance float64) error {
	if distance <= 0 {
		return fmt.Errorf("%w: max distance %v, must be positive", ErrConfiguration, distance)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSceneClosed
	}
	s.maxDist = distance
	sounds := make([]*SpatialSound, 0, len(s.spatial))
	for _, snd := range s.spatial {
		sounds = append(sounds, snd)
	}
	s.mu.Unlock()

	var errs []error
	for _, snd := range sounds {
		if err := snd.applyMaxDistance(distance); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetDistanceModel selects the falloff model. All spatial sounds share
// the one session, so the model is applied exactly once.
func (s *Scene) SetDistanceModel(model engine.DistanceModel) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSceneClosed
	}
	s.cfg.DistanceModel = model
	s.mu.Unlock()

	s.logger.Debug("distance model changed", "model", model)
	return s.session.SetDistanceModel(model)
}

// Echo returns the scene's shared echo unit.
func (s *Scene) Echo() engine.Echo { return s.echo }

// Reverb returns the scene's shared reverb unit.
func (s *Scene) Reverb() engine.Reverb { return s.reverb }

// Session exposes the underlying engine session for callers that need
// to reach past the scene graph.
func (s *Scene) Session() engine.Session { return s.session }

// SpatialCount reports how many spatial sounds are registered.
func (s *Scene) SpatialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spatial)
}

func (s *Scene) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scene) listenerY() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener[1]
}

// register adds a spatial sound to the scene arena and returns its
// stable handle.
func (s *Scene) register(snd *SpatialSound) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.spatial[id] = snd
	return id
}

// deregister removes a spatial sound from the arena. Safe to call with
// an already-removed handle.
func (s *Scene) deregister(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spatial, id)
}
