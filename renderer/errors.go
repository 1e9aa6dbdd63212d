package renderer

import "errors"

var (
	ErrUnsupported = errors.New("renderer: no graphics context available")
	ErrNotRunning  = errors.New("renderer: background is not running")

	ErrInvalidConfig = errors.New("renderer: invalid background config")
)
