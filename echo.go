// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ik5/soundscape/engine"
)

// tapJitter is the upper bound of the random offset added to each tap
// delay so taps do not land on a perfect grid.
const tapJitter = 10 * time.Millisecond

// EchoTaps generates tapCount echo taps spread across (delta, duration]
// in increasing order, where delta = duration / tapCount. Each tap gets
// a random delay jitter and independent random left/right gains; the
// gains are normalized so that max(sum of squared left gains, sum of
// squared right gains) is 1, preventing clipping for any tap count.
func EchoTaps(tapCount int, duration time.Duration) ([]engine.EchoTap, error) {
	if tapCount < 1 {
		return nil, fmt.Errorf("%w: echo tap count %d, must be at least 1", ErrConfiguration, tapCount)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: echo duration %v, must be positive", ErrConfiguration, duration)
	}

	delta := duration / time.Duration(tapCount)
	taps := make([]engine.EchoTap, tapCount)
	for i := range taps {
		jitter := time.Duration(rand.Float64() * float64(tapJitter))
		taps[i] = engine.EchoTap{
			Delay: delta + time.Duration(i)*delta + jitter,
			GainL: rand.Float64(),
			GainR: rand.Float64(),
		}
	}

	var sumL, sumR float64
	for _, t := range taps {
		sumL += t.GainL * t.GainL
		sumR += t.GainR * t.GainR
	}
	norm := 1 / math.Sqrt(math.Max(sumL, sumR))
	for i := range taps {
		taps[i].GainL *= norm
		taps[i].GainR *= norm
	}
	return taps, nil
}
