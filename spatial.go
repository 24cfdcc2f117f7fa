// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"fmt"

	"github.com/ik5/soundscape/engine"
)

// SpatialSound is a positional sound: a Sound whose source sits at a 3D
// position, attenuated by distance from the scene listener and panned
// by the scene's panner strategy. Spatial sounds register in the scene
// at construction and leave it on Close, so scene-wide broadcasts like
// Scene.SetMaxDistance reach every live instance and nothing leaks.
//
// Height modulation (pitch and speed driven by the sound's vertical
// position relative to the listener) defaults to on; see PlayParams.
type SpatialSound struct {
	*Sound
}

// NewSpatialSound creates a positional sound for the audio file at path
// placed at (x, y, z). The scene's current max distance is applied to
// the new source.
func NewSpatialSound(scene *Scene, path string, x, y, z float64) (*SpatialSound, error) {
	base, err := newSound(scene, path, func() (engine.Source, error) {
		return scene.session.NewSpatialSource(scene.cfg.Panner)
	}, &position{x: x, y: y, z: z})
	if err != nil {
		return nil, err
	}

	if err := base.source.SetMaxDistance(scene.MaxDistance()); err != nil {
		base.Close()
		return nil, fmt.Errorf("applying max distance: %w", err)
	}
	if err := base.source.SetPosition(x, y, z); err != nil {
		base.Close()
		return nil, fmt.Errorf("placing source: %w", err)
	}

	snd := &SpatialSound{Sound: base}
	base.id = scene.register(snd)
	return snd, nil
}

// SetPosition moves the sound and mirrors the new position to the
// source node immediately.
func (s *SpatialSound) SetPosition(x, y, z float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPositionLocked(x, y, z)
}

// SetPositionXY moves the sound on the horizontal plane, keeping the
// current z. The read of z and the move happen under one critical
// section, so a concurrent SetPosition cannot slip a z change in
// between.
func (s *SpatialSound) SetPositionXY(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPositionLocked(x, y, s.pos.z)
}

func (s *SpatialSound) setPositionLocked(x, y, z float64) error {
	if s.closed {
		return fmt.Errorf("%w: sound is closed", ErrInvalidState)
	}
	s.pos.x, s.pos.y, s.pos.z = x, y, z
	if err := s.source.SetPosition(x, y, z); err != nil {
		return fmt.Errorf("moving source: %w", err)
	}
	return nil
}

// Position returns the sound's current position.
func (s *SpatialSound) Position() (x, y, z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.x, s.pos.y, s.pos.z
}

// applyMaxDistance is the scene broadcast hook: it mirrors the new
// distance to the source node and re-invokes Play with the sound's
// defaults, which refreshes height modulation and effect routing.
func (s *SpatialSound) applyMaxDistance(distance float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	err := s.source.SetMaxDistance(distance)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("applying max distance: %w", err)
	}
	return s.Play()
}
