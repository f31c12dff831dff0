package sampler

import "errors"

var (
	ErrUnknownSampler     = errors.New("sampler: unknown sampler")
	ErrUnknownAccumulator = errors.New("sampler: unknown accumulator")
)
