// SPDX-License-Identifier: EPL-2.0

// Package engine defines the call contract between the soundscape scene
// graph and an audio backend.
//
// The scene graph in the root package never touches audio samples. It
// manipulates backend objects through the interfaces here:
//   - Engine produces Sessions
//   - Session loads Buffers, creates Sources, Generators and effect
//     units, and owns signal routing
//   - Buffer is decoded audio keyed by file path
//   - Generator is a playback cursor (position, pitch, speed, looping)
//   - Source is a mixable node with gain, filter and, for spatial
//     sources, a 3D position and distance falloff
//   - Echo and Reverb are global effect units sources route into
//
// # Backends
//
// A production backend backed by gopxl/beep lives in engines/beep. A
// deterministic in-memory backend for tests lives in
// internal/audiotest. Any other implementation of Engine works as long
// as it honors the guarantees spelled out on each interface:
//
//   - Route and Unroute are order-independent and idempotent
//   - Buffer durations are stable for the lifetime of the handle
//   - Generator.SetPosition is synchronous: the confirmed position is
//     returned, no settling delay is needed
//   - SetFilter replaces the previous design atomically
//
// # Value types
//
// EchoTap, FilterDesign, DistanceModel and PannerStrategy are plain
// values shared by all backends. FilterDesign values are built with the
// Lowpass, Highpass, Bandpass and Identity constructors, mirroring the
// usual biquad design parameters (cutoff frequency plus an optional
// quality factor, or center frequency plus bandwidth).
package engine
