// SPDX-License-Identifier: EPL-2.0

// Package beep implements the engine contract on top of gopxl/beep and
// its speaker package.
//
// The backend runs one mixing session per process, pulling all sources
// through a single root mixer into the sound card. Decoding is handled
// by beep's codec packages, selected by file extension:
//   - .wav (github.com/gopxl/beep/wav)
//   - .mp3 (github.com/gopxl/beep/mp3)
//   - .ogg, .oga (github.com/gopxl/beep/vorbis)
//   - .flac (github.com/gopxl/beep/flac)
//
// Buffers are decoded fully into memory and resampled to the session
// rate at load time, so playback never touches the disk.
//
// # Opening a session
//
//	eng, err := beep.NewEngine()
//	if err != nil {
//	    // Handle error
//	}
//	sess, err := eng.NewSession()
//	if err != nil {
//	    // Handle error
//	}
//	defer sess.Close()
//
// # Fidelity notes
//
// Pitch and speed share one resampler, so the two multipliers combine
// into a single playback ratio. HRTF panning is not available; spatial
// sources use equal-power stereo panning with distance attenuation.
// The reverb unit is a bank of parallel feedback combs tuned by t60,
// not a full room model.
package beep
