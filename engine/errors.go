// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNotSpatial     = errors.New("source is not spatial")
	ErrSessionClosed  = errors.New("session is closed")
	ErrNoBufferBound  = errors.New("generator has no buffer bound")
	ErrBufferReleased = errors.New("buffer has been released")
)
