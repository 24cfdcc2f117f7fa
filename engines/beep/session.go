// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gopxl "github.com/gopxl/beep"

	"github.com/ik5/soundscape/engine"
)

// Session is a live mixing session on top of a beep mixer. All sources
// feed one root mixer that the output device pulls from.
type Session struct {
	cfg    *Config
	out    output
	rate   gopxl.SampleRate
	format gopxl.Format
	mixer  *gopxl.Mixer
	codecs *codecRegistry

	mu     sync.Mutex
	closed bool

	// posMu guards the listener and the distance model. Sources read
	// them from the mix goroutine while holding their own lock, so
	// nothing may take posMu and then a source lock.
	posMu    sync.Mutex
	listener [3]float64
	model    engine.DistanceModel
}

func newSession(cfg *Config, out output) *Session {
	rate := gopxl.SampleRate(cfg.SampleRate)
	return &Session{
		cfg:    cfg,
		out:    out,
		rate:   rate,
		format: gopxl.Format{SampleRate: rate, NumChannels: 2, Precision: 2},
		mixer:  &gopxl.Mixer{},
		codecs: newCodecRegistry(),
		model:  engine.DistanceLinear,
	}
}

func (s *Session) start() error {
	return s.out.start(s.rate, s.cfg.BufferSize, s.mixer)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LoadBuffer decodes the file at path, picked by extension, and
// resamples it to the session rate so buffers can be mixed directly.
func (s *Session) LoadBuffer(path string) (engine.Buffer, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}

	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := s.codecs.get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stream, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer stream.Close()

	var src gopxl.Streamer = stream
	if format.SampleRate != s.rate {
		src = gopxl.Resample(s.cfg.Quality, format.SampleRate, s.rate, stream)
	}

	buf := gopxl.NewBuffer(s.format)
	buf.Append(src)
	return &Buffer{format: s.format, buf: buf}, nil
}

// NewDirectSource creates a non-positional source and adds it to the
// root mixer.
func (s *Session) NewDirectSource() (engine.Source, error) {
	return s.newSource(false, engine.PannerStereo)
}

// NewSpatialSource creates a positional source. HRTF panning is not
// available in this backend; the strategy is recorded and stereo
// amplitude panning is used either way.
func (s *Session) NewSpatialSource(strategy engine.PannerStrategy) (engine.Source, error) {
	return s.newSource(true, strategy)
}

func (s *Session) newSource(spatial bool, strategy engine.PannerStrategy) (*Source, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}
	src := &Source{
		sess:     s,
		spatial:  spatial,
		strategy: strategy,
		gain:     1,
	}
	s.out.lock()
	s.mixer.Add(src)
	s.out.unlock()
	return src, nil
}

// NewGenerator creates an unbound playback cursor.
func (s *Session) NewGenerator() (engine.Generator, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}
	return &Generator{sess: s, pitch: 1, speed: 1}, nil
}

// NewEcho creates an echo unit with no taps.
func (s *Session) NewEcho() (engine.Echo, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}
	return &Echo{}, nil
}

// NewReverb creates a reverb unit with a one second decay.
func (s *Session) NewReverb() (engine.Reverb, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}
	return &Reverb{t60: 1}, nil
}

// Route attaches an effect processor to the source output. Routing the
// same pair twice is a no-op.
func (s *Session) Route(src engine.Source, fx engine.Effect) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}
	bsrc, ok := src.(*Source)
	if !ok {
		return fmt.Errorf("%w: source %T", ErrForeignUnit, src)
	}
	return bsrc.attach(fx, s.rate)
}

// Unroute detaches the effect processor, if attached.
func (s *Session) Unroute(src engine.Source, fx engine.Effect) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}
	bsrc, ok := src.(*Source)
	if !ok {
		return fmt.Errorf("%w: source %T", ErrForeignUnit, src)
	}
	bsrc.detach(fx)
	return nil
}

// SetListenerPosition moves the session listener. Spatial sources pick
// the change up on their next mix block.
func (s *Session) SetListenerPosition(x, y, z float64) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}
	s.posMu.Lock()
	s.listener = [3]float64{x, y, z}
	s.posMu.Unlock()
	return nil
}

// SetDistanceModel selects the falloff curve for spatial sources.
func (s *Session) SetDistanceModel(model engine.DistanceModel) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}
	s.posMu.Lock()
	s.model = model
	s.posMu.Unlock()
	return nil
}

func (s *Session) listenerSnapshot() ([3]float64, engine.DistanceModel) {
	s.posMu.Lock()
	defer s.posMu.Unlock()
	return s.listener, s.model
}

// Close stops the output device. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.out.close()
	return nil
}
