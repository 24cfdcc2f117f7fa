// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono 16-bit PCM samples to a WAV file at path.
func WriteWAV(path string, sampleRate int, samples []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("%w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteSineWAV writes a mono sine tone fixture: frequency in Hz,
// length in whole samples.
func WriteSineWAV(path string, sampleRate int, frequency float64, totalSamples int) error {
	samples := make([]int, totalSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int(math.Round(0.5 * 32767 * math.Sin(2*math.Pi*frequency*t)))
	}
	return WriteWAV(path, sampleRate, samples)
}
