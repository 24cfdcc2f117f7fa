// SPDX-License-Identifier: EPL-2.0

package beep

import "errors"

var (
	ErrBadConfig         = errors.New("bad engine configuration")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSessionOpen       = errors.New("a session is already open")
	ErrBadFilterDesign   = errors.New("bad filter design")
	ErrForeignUnit       = errors.New("object does not belong to this backend")
)
