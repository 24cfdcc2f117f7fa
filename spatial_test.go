// SPDX-License-Identifier: EPL-2.0

package soundscape_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/ik5/soundscape"
	"github.com/ik5/soundscape/engine"
	"github.com/ik5/soundscape/internal/audiotest"
)

func newTestSpatial(t *testing.T, scene *soundscape.Scene, path string, x, y, z float64) *soundscape.SpatialSound {
	t.Helper()

	snd, err := soundscape.NewSpatialSound(scene, path, x, y, z)
	if err != nil {
		t.Fatalf("NewSpatialSound(%q) error = %v", path, err)
	}
	t.Cleanup(func() { snd.Close() })
	return snd
}

func TestSpatialConstruction(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 1, 2, 3)

	src := sess.Sources[0]
	if !src.Spatial {
		t.Fatal("source is not spatial")
	}
	if src.Strategy != engine.PannerHRTF {
		t.Errorf("panner = %v, want HRTF default", src.Strategy)
	}
	if src.X != 1 || src.Y != 2 || src.Z != 3 {
		t.Errorf("source at (%v,%v,%v), want (1,2,3)", src.X, src.Y, src.Z)
	}
	if src.MaxDistance != 50 {
		t.Errorf("max distance = %v, want scene default 50", src.MaxDistance)
	}
	if got := scene.SpatialCount(); got != 1 {
		t.Errorf("SpatialCount() = %d, want 1", got)
	}

	p := snd.Params()
	if !p.PitchByHeight || !p.SpeedByHeight {
		t.Error("height modulation not enabled by default on spatial sound")
	}
}

func TestSpatialSetPosition(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 0, 0, 7)
	src := sess.Sources[0]

	if err := snd.SetPosition(4, 5, 6); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if src.X != 4 || src.Y != 5 || src.Z != 6 {
		t.Errorf("source at (%v,%v,%v), want (4,5,6)", src.X, src.Y, src.Z)
	}

	// The XY form keeps the current z.
	if err := snd.SetPositionXY(9, 8); err != nil {
		t.Fatalf("SetPositionXY() error = %v", err)
	}
	if src.X != 9 || src.Y != 8 || src.Z != 6 {
		t.Errorf("source at (%v,%v,%v), want (9,8,6)", src.X, src.Y, src.Z)
	}
	if x, y, z := snd.Position(); x != 9 || y != 8 || z != 6 {
		t.Errorf("Position() = (%v,%v,%v), want (9,8,6)", x, y, z)
	}
}

func TestSetPositionXYKeepsConcurrentZ(t *testing.T) {
	t.Parallel()

	scene, _, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 0, 0, 1)

	// Hammer the XY form while z changes underneath it. Once z settles
	// at 2, no XY move may resurrect the old value.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := snd.SetPositionXY(2, 3); err != nil {
				return
			}
		}
	}()

	for range 1000 {
		if err := snd.SetPosition(0, 0, 2); err != nil {
			t.Errorf("SetPosition() error = %v", err)
			break
		}
	}
	close(stop)
	wg.Wait()

	if err := snd.SetPositionXY(4, 5); err != nil {
		t.Fatalf("SetPositionXY() error = %v", err)
	}
	if _, _, z := snd.Position(); z != 2 {
		t.Errorf("z = %v, want 2 to survive concurrent XY moves", z)
	}
}

func TestListenerMirrorsToSession(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)

	if err := scene.SetListener(1, 2, 3); err != nil {
		t.Fatalf("SetListener() error = %v", err)
	}
	if sess.Listener != [3]float64{1, 2, 3} {
		t.Errorf("session listener = %v, want [1 2 3]", sess.Listener)
	}

	if err := scene.SetListenerXY(7, 8); err != nil {
		t.Fatalf("SetListenerXY() error = %v", err)
	}
	if sess.Listener != [3]float64{7, 8, 3} {
		t.Errorf("session listener = %v, want [7 8 3] (z kept)", sess.Listener)
	}
}

func TestHeightPitchModulation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		soundY    float64
		listenerY float64
		wantPitch float64
		wantSpeed float64
	}{
		{"sound above listener", 5, 0, 0.90, 0.85},
		{"sound below listener", 0, 5, 1.05, 1.15},
		{"same height", 3, 3, 1.00, 1.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scene, sess, _ := newTestScene(t)
			if err := scene.SetListener(0, tt.listenerY, 0); err != nil {
				t.Fatalf("SetListener() error = %v", err)
			}
			snd := newTestSpatial(t, scene, "steps.ogg", 0, tt.soundY, 0)

			if err := snd.Play(); err != nil {
				t.Fatalf("Play() error = %v", err)
			}
			gen := sess.Gens[0]
			if gen.Pitch != tt.wantPitch {
				t.Errorf("pitch = %v, want %v", gen.Pitch, tt.wantPitch)
			}
			if gen.Speed != tt.wantSpeed {
				t.Errorf("speed = %v, want %v", gen.Speed, tt.wantSpeed)
			}
		})
	}
}

func TestHeightModulationDisabledPerCall(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 0, 5, 0)

	p := snd.Params()
	p.PitchByHeight = false
	p.SpeedByHeight = false
	p.Pitch = 1.3
	if err := snd.Play(p); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	gen := sess.Gens[0]
	if gen.Pitch != 1.3 {
		t.Errorf("pitch = %v, want explicit 1.3", gen.Pitch)
	}
	if gen.Speed != 1 {
		t.Errorf("speed = %v, want 1", gen.Speed)
	}
}

func TestDistanceBroadcast(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	sounds := []*soundscape.SpatialSound{
		newTestSpatial(t, scene, "a.ogg", 0, 0, 0),
		newTestSpatial(t, scene, "b.ogg", 1, 0, 0),
		newTestSpatial(t, scene, "c.ogg", 2, 0, 0),
	}
	for _, snd := range sounds {
		if err := snd.Play(); err != nil {
			t.Fatalf("Play() error = %v", err)
		}
	}

	if err := scene.SetMaxDistance(75); err != nil {
		t.Fatalf("SetMaxDistance() error = %v", err)
	}

	if got := scene.MaxDistance(); got != 75 {
		t.Errorf("MaxDistance() = %v, want 75", got)
	}
	for i, src := range sess.Sources {
		if src.MaxDistance != 75 {
			t.Errorf("source %d max distance = %v, want 75", i, src.MaxDistance)
		}
	}
	// Play was re-invoked without duplicating generators or attachments.
	if len(sess.Gens) != 3 {
		t.Errorf("got %d generators after broadcast, want 3", len(sess.Gens))
	}
	for i, src := range sess.Sources {
		if src.AddCalls != 1 {
			t.Errorf("source %d AddGenerator calls = %d, want 1", i, src.AddCalls)
		}
		if src.PlayCalls != 2 {
			t.Errorf("source %d Play calls = %d, want 2", i, src.PlayCalls)
		}
	}
	for _, snd := range sounds {
		if got := snd.State(); got != soundscape.Playing {
			t.Errorf("State() = %v after broadcast, want playing", got)
		}
	}
}

func TestDistanceBroadcastStartsIdleSounds(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 0, 0, 0)

	if err := scene.SetMaxDistance(30); err != nil {
		t.Fatalf("SetMaxDistance() error = %v", err)
	}

	// Reusing Play as the propagation mechanism starts idle sounds.
	if got := snd.State(); got != soundscape.Playing {
		t.Errorf("State() = %v, want playing", got)
	}
	if len(sess.Gens) != 1 {
		t.Errorf("got %d generators, want 1", len(sess.Gens))
	}
}

func TestSetMaxDistanceValidation(t *testing.T) {
	t.Parallel()

	scene, _, _ := newTestScene(t)
	if err := scene.SetMaxDistance(0); !errors.Is(err, soundscape.ErrConfiguration) {
		t.Errorf("SetMaxDistance(0) error = %v, want ErrConfiguration", err)
	}
	if err := scene.SetMaxDistance(-5); !errors.Is(err, soundscape.ErrConfiguration) {
		t.Errorf("SetMaxDistance(-5) error = %v, want ErrConfiguration", err)
	}
}

func TestDistanceModelAppliedOncePerChange(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	newTestSpatial(t, scene, "a.ogg", 0, 0, 0)
	newTestSpatial(t, scene, "b.ogg", 1, 0, 0)

	before := sess.ModelSets // one from scene construction
	if err := scene.SetDistanceModel(engine.DistanceInverse); err != nil {
		t.Fatalf("SetDistanceModel() error = %v", err)
	}
	if sess.Model != engine.DistanceInverse {
		t.Errorf("model = %v, want inverse", sess.Model)
	}
	// All sounds share one session, so the model is set exactly once,
	// not once per registered sound.
	if got := sess.ModelSets - before; got != 1 {
		t.Errorf("SetDistanceModel hit the session %d times, want 1", got)
	}
}

func TestSpatialDeregistersOnClose(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	snd := newTestSpatial(t, scene, "steps.ogg", 0, 0, 0)
	keep := newTestSpatial(t, scene, "keep.ogg", 0, 0, 0)

	if err := snd.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := scene.SpatialCount(); got != 1 {
		t.Errorf("SpatialCount() = %d, want 1 after close", got)
	}

	// Broadcast must skip the closed sound and reach the live one.
	if err := scene.SetMaxDistance(42); err != nil {
		t.Fatalf("SetMaxDistance() error = %v", err)
	}
	if got := sess.Sources[1].MaxDistance; got != 42 {
		t.Errorf("live source max distance = %v, want 42", got)
	}
	if got := keep.State(); got != soundscape.Playing {
		t.Errorf("live sound State() = %v, want playing", got)
	}
}

func TestSpatialSoundSharesBuffers(t *testing.T) {
	t.Parallel()

	scene, sess, _ := newTestScene(t)
	newTestSpatial(t, scene, "steps.ogg", 0, 0, 0)
	newTestSound(t, scene, "steps.ogg")

	if got := len(sess.Loads); got != 1 {
		t.Errorf("LoadBuffer called %d times for one path, want 1", got)
	}
}

func TestMockSourceRejectsSpatialCallsOnDirect(t *testing.T) {
	t.Parallel()

	eng := audiotest.NewEngine()
	sess, err := eng.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	src, err := sess.NewDirectSource()
	if err != nil {
		t.Fatalf("NewDirectSource() error = %v", err)
	}
	if err := src.SetPosition(1, 2, 3); !errors.Is(err, engine.ErrNotSpatial) {
		t.Errorf("SetPosition on direct source error = %v, want ErrNotSpatial", err)
	}
	if err := src.SetMaxDistance(10); !errors.Is(err, engine.ErrNotSpatial) {
		t.Errorf("SetMaxDistance on direct source error = %v, want ErrNotSpatial", err)
	}
}
