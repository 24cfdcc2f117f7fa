// SPDX-License-Identifier: EPL-2.0

package engine

import "time"

// Engine is the entry point of an audio backend. One engine produces
// mixing sessions; everything else hangs off a Session.
type Engine interface {
	// NewSession opens a mixing/output session. Backends that only
	// support a single session per process must make repeated calls
	// fail rather than silently sharing state.
	NewSession() (Session, error)
}

// Session is a live mixing/output session. All objects created from a
// session belong to it and become invalid once it is closed.
type Session interface {
	// LoadBuffer decodes the audio file at path into a playable buffer.
	LoadBuffer(path string) (Buffer, error)

	// NewDirectSource creates a non-positional mixable source.
	NewDirectSource() (Source, error)

	// NewSpatialSource creates a 3D-positional source using the given
	// panning strategy.
	NewSpatialSource(strategy PannerStrategy) (Source, error)

	// NewGenerator creates an unbound playback cursor.
	NewGenerator() (Generator, error)

	// NewEcho creates a global echo effect unit with an empty tap list.
	NewEcho() (Echo, error)

	// NewReverb creates a global reverb effect unit.
	NewReverb() (Reverb, error)

	// Route connects a source to an effect. Routing an already routed
	// pair is a no-op.
	Route(src Source, fx Effect) error

	// Unroute removes the connection between a source and an effect.
	// Unrouting a pair that was never routed is a no-op.
	Unroute(src Source, fx Effect) error

	// SetListenerPosition moves the session-wide listener.
	SetListenerPosition(x, y, z float64) error

	// SetDistanceModel selects the falloff model for spatial sources.
	SetDistanceModel(model DistanceModel) error

	Close() error
}

// Buffer is decoded, ready-to-play audio sample data.
type Buffer interface {
	// Duration of the decoded audio.
	Duration() time.Duration

	// Release frees the backend-side resources of the buffer. The
	// buffer must not be used afterwards.
	Release() error
}

// Generator is a stateful playback cursor over a buffer.
type Generator interface {
	SetBuffer(buf Buffer) error
	SetLooping(looping bool) error

	// SetPitch sets the pitch bend multiplier (1.0 = unchanged).
	SetPitch(pitch float64) error

	// SetSpeed sets the playback speed multiplier (1.0 = unchanged),
	// independent of pitch where the backend supports it.
	SetSpeed(speed float64) error

	// Position reports the current playback position.
	Position() (time.Duration, error)

	// SetPosition moves the playback cursor and returns the position
	// the backend actually applied. The call is synchronous: when it
	// returns, the new position is in effect.
	SetPosition(pos time.Duration) (time.Duration, error)

	Close() error
}

// Source is a mixable signal point with gain and a replaceable filter.
// Spatial sources additionally carry a 3D position and a maximum
// audible distance; direct sources return ErrNotSpatial for those.
type Source interface {
	AddGenerator(gen Generator) error
	RemoveGenerator(gen Generator) error
	Play() error
	Pause() error
	SetGain(gain float64) error

	// SetFilter replaces the source filter atomically. The latest
	// design wins; Identity restores pass-through.
	SetFilter(design FilterDesign) error

	SetPosition(x, y, z float64) error
	SetMaxDistance(distance float64) error

	Close() error
}

// Effect is a global effect unit that sources can be routed to.
type Effect interface {
	Close() error
}

// Echo is a multi-tap echo unit. SetTaps replaces the whole tap list
// atomically.
type Echo interface {
	Effect
	SetTaps(taps []EchoTap) error
}

// Reverb is a reverb unit parameterized by decay time.
type Reverb interface {
	Effect

	// SetDecayTime sets the t60 decay time in seconds.
	SetDecayTime(t60 float64) error
}
