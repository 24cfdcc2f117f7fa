// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ik5/soundscape/engine"
)

// SceneConfig controls scene-wide behavior. Start from
// DefaultSceneConfig and override fields rather than building the
// struct from zero, since the zero value fails Validate.
type SceneConfig struct {
	// CacheCapacity bounds the number of decoded buffers kept alive.
	CacheCapacity int

	// MaxDistance is the initial maximum audible distance applied to
	// every spatial sound at construction.
	MaxDistance float64

	// DistanceModel selects the falloff model for the session.
	DistanceModel engine.DistanceModel

	// Panner selects the panning strategy for spatial sources.
	Panner engine.PannerStrategy

	// Logger receives debug records of cache and routing activity.
	// Nil means discard.
	Logger *log.Logger
}

// DefaultSceneConfig returns the configuration used when NewScene is
// called without one.
func DefaultSceneConfig() *SceneConfig {
	return &SceneConfig{
		CacheCapacity: 100,
		MaxDistance:   50,
		DistanceModel: engine.DistanceLinear,
		Panner:        engine.PannerHRTF,
	}
}

// Validate reports whether the configuration is usable.
func (c *SceneConfig) Validate() error {
	if c.CacheCapacity < 1 {
		return fmt.Errorf("%w: cache capacity %d, must be at least 1", ErrConfiguration, c.CacheCapacity)
	}
	if c.MaxDistance <= 0 {
		return fmt.Errorf("%w: max distance %v, must be positive", ErrConfiguration, c.MaxDistance)
	}
	return nil
}

func (c *SceneConfig) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}
