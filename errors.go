// SPDX-License-Identifier: EPL-2.0

package soundscape

import "errors"

var (
	// ErrResourceLoad reports that a buffer failed to decode or load.
	ErrResourceLoad = errors.New("resource failed to load")
	// ErrInvalidState reports an operation whose precondition is not met.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrConfiguration reports an invalid parameter or combination.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrSceneClosed reports use of a scene after Close.
	ErrSceneClosed = errors.New("scene is closed")
)
