package camera

import "errors"

var (
	ErrUnknownProjection   = errors.New("camera: unknown projection")
	ErrDuplicateProjection = errors.New("camera: projection already registered")
	ErrInvalidParams       = errors.New("camera: invalid projection parameters")
)
