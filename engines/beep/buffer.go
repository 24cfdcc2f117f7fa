// SPDX-License-Identifier: EPL-2.0

package beep

import (
	"os"
	"sync"
	"time"

	gopxl "github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/ik5/soundscape/engine"
)

// DecodeFunc turns an open file into a seekable sample stream.
type DecodeFunc func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error)

// codecRegistry maps file extensions to decoders.
type codecRegistry struct {
	mtx    sync.Mutex
	codecs map[string]DecodeFunc
}

func newCodecRegistry() *codecRegistry {
	r := &codecRegistry{codecs: make(map[string]DecodeFunc)}
	r.register(".wav", func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error) {
		return wav.Decode(f)
	})
	r.register(".mp3", func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error) {
		return mp3.Decode(f)
	})
	r.register(".ogg", func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error) {
		return vorbis.Decode(f)
	})
	r.register(".oga", func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error) {
		return vorbis.Decode(f)
	})
	r.register(".flac", func(f *os.File) (gopxl.StreamSeekCloser, gopxl.Format, error) {
		return flac.Decode(f)
	})
	return r
}

func (r *codecRegistry) register(ext string, d DecodeFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[ext] = d
}

func (r *codecRegistry) get(ext string) (DecodeFunc, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[ext]
	return d, ok
}

// Buffer holds decoded samples at the session rate.
type Buffer struct {
	mu     sync.Mutex
	format gopxl.Format
	buf    *gopxl.Buffer
}

// Duration of the decoded audio.
func (b *Buffer) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf == nil {
		return 0
	}
	return b.format.SampleRate.D(b.buf.Len())
}

// Release drops the sample data. The buffer must not be used
// afterwards.
func (b *Buffer) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf == nil {
		return engine.ErrBufferReleased
	}
	b.buf = nil
	return nil
}

// streamer returns a fresh cursor over the whole buffer.
func (b *Buffer) streamer() (gopxl.StreamSeeker, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf == nil {
		return nil, 0, engine.ErrBufferReleased
	}
	n := b.buf.Len()
	return b.buf.Streamer(0, n), n, nil
}
