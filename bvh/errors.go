package bvh

import "errors"

var (
	ErrUnknownStrategy   = errors.New("bvh: unknown build strategy")
	ErrDuplicateStrategy = errors.New("bvh: build strategy already registered")
	ErrNoStrategies      = errors.New("bvh: no build strategies registered")
)
