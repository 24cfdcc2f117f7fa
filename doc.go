// SPDX-License-Identifier: EPL-2.0

// Package soundscape is a spatial-audio scene graph with resource
// caching and effect routing.
//
// A Scene binds an audio engine session, a bounded LRU cache of decoded
// buffers, shared echo and reverb units, and a registry of spatial
// sounds. Sounds are per-file playable entities owning a dedicated
// mixable source; spatial sounds add a 3D position with distance
// attenuation and height-driven pitch/speed modulation. The mixing
// math itself lives behind the engine boundary (see the engine
// package); this package only manages state, lifecycle and routing.
//
// # Quick Start
//
//	eng, _ := beep.NewEngine()
//	scene, err := soundscape.NewScene(eng)
//	if err != nil {
//	    // ...
//	}
//	defer scene.Close()
//
//	steps, _ := soundscape.NewSpatialSound(scene, "steps.ogg", 0, 0, 0)
//	defer steps.Close()
//	steps.Play()
//
//	// Move the world around the listener.
//	steps.SetPosition(3, 1, 0)
//	scene.SetListener(0, 0, 0)
//
// # Playback control
//
// Play creates the generator lazily, Pause keeps it and its position,
// Stop drops it. Seek moves by a signed delta clamped to the buffer
// duration and returns the position the engine confirmed:
//
//	pos, err := steps.Seek(-2 * time.Second)
//
// Per-call parameters are a struct; start from the sound's defaults:
//
//	p := steps.Params()
//	p.ReverbT60 = 1.5
//	p.Echo = true
//	steps.Play(p)
//
// # Buffer cache
//
// Decoded buffers are shared across all sounds of a scene through a
// reference-counted LRU keyed by file path. The cache never evicts a
// buffer a live sound still references; unreferenced buffers fall out
// least-recently-used first once the capacity (default 100) is
// exceeded.
//
// # Scene-wide broadcasts
//
// Scene.SetMaxDistance applies a new maximum audible distance to every
// registered spatial sound and re-invokes each sound's Play with its
// defaults. Scene.SetDistanceModel changes the falloff model of the
// one shared session.
//
// # Engines
//
// Anything implementing engine.Engine drives the scene. The
// engines/beep package provides a playback backend on gopxl/beep;
// internal tests run against a deterministic mock.
package soundscape
