package renderer

import "errors"

var (
	ErrSceneNotDefined   = errors.New("renderer: no scene defined")
	ErrInvalidDimensions = errors.New("renderer: frame dimensions must be positive")
	ErrInvalidOptions    = errors.New("renderer: invalid options")
	ErrInterrupted       = errors.New("renderer: interrupted while rendering")
)
