// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/soundscape/engine"
	"github.com/ik5/soundscape/internal/audiotest"
)

func TestLoadBufferWAV(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	buf, err := sess.LoadBuffer(writeToneWAV(t))
	if err != nil {
		t.Fatalf("LoadBuffer() error = %v", err)
	}

	if got := buf.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}

	if err := buf.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if err := buf.Release(); !errors.Is(err, engine.ErrBufferReleased) {
		t.Errorf("second Release() error = %v, want ErrBufferReleased", err)
	}
}

func TestLoadBufferUnsupportedExtension(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	_, err := sess.LoadBuffer(filepath.Join(t.TempDir(), "tune.mid"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("LoadBuffer() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadBufferMissingFile(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	if _, err := sess.LoadBuffer(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("LoadBuffer() expected error for missing file")
	}
}

func TestSessionClosedOps(t *testing.T) {
	t.Parallel()

	sess, out := newTestSession(t)
	if err := sess.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !out.closed {
		t.Error("output not closed")
	}
	if err := sess.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := sess.LoadBuffer("x.wav"); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("LoadBuffer() error = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.NewDirectSource(); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("NewDirectSource() error = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.NewSpatialSource(engine.PannerStereo); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("NewSpatialSource() error = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.NewGenerator(); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("NewGenerator() error = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.NewEcho(); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("NewEcho() error = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.NewReverb(); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("NewReverb() error = %v, want ErrSessionClosed", err)
	}
	if err := sess.SetListenerPosition(0, 0, 0); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("SetListenerPosition() error = %v, want ErrSessionClosed", err)
	}
	if err := sess.SetDistanceModel(engine.DistanceNone); !errors.Is(err, engine.ErrSessionClosed) {
		t.Errorf("SetDistanceModel() error = %v, want ErrSessionClosed", err)
	}
}

func TestRouteIdempotent(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	src, err := sess.NewDirectSource()
	if err != nil {
		t.Fatalf("NewDirectSource() error = %v", err)
	}
	echo, err := sess.NewEcho()
	if err != nil {
		t.Fatalf("NewEcho() error = %v", err)
	}

	if err := sess.Route(src, echo); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if err := sess.Route(src, echo); err != nil {
		t.Fatalf("second Route() error = %v", err)
	}
	if got := len(src.(*Source).procs); got != 1 {
		t.Errorf("attached processors = %d, want 1", got)
	}

	if err := sess.Unroute(src, echo); err != nil {
		t.Fatalf("Unroute() error = %v", err)
	}
	if err := sess.Unroute(src, echo); err != nil {
		t.Fatalf("second Unroute() error = %v", err)
	}
	if got := len(src.(*Source).procs); got != 0 {
		t.Errorf("attached processors = %d, want 0", got)
	}
}

func TestRouteForeignSource(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	echo, err := sess.NewEcho()
	if err != nil {
		t.Fatalf("NewEcho() error = %v", err)
	}

	foreign := &audiotest.Source{}
	if err := sess.Route(foreign, echo); !errors.Is(err, ErrForeignUnit) {
		t.Fatalf("Route() error = %v, want ErrForeignUnit", err)
	}
}

func TestListenerSnapshot(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t)
	if err := sess.SetListenerPosition(1, 2, 3); err != nil {
		t.Fatalf("SetListenerPosition() error = %v", err)
	}
	if err := sess.SetDistanceModel(engine.DistanceExponential); err != nil {
		t.Fatalf("SetDistanceModel() error = %v", err)
	}

	pos, model := sess.listenerSnapshot()
	if pos != [3]float64{1, 2, 3} {
		t.Errorf("listener = %v, want [1 2 3]", pos)
	}
	if model != engine.DistanceExponential {
		t.Errorf("model = %v, want exponential", model)
	}
}
