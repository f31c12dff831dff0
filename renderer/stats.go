package renderer

import (
	"time"

	"github.com/rtlab/pathtracer/bvh"
	"github.com/rtlab/pathtracer/tracer"
)

type WorkerStat struct {
	// The worker id.
	Id int

	// The number of assigned blocks, their total height and the
	// percentage of total frame area it represents.
	Blocks       int
	Rows         uint32
	FramePercent float32

	// Render time for assigned blocks
	RenderTime time.Duration

	// Rays traced by this worker.
	Counters tracer.Counters
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Totals over all workers.
	Counters tracer.Counters
	Samples  uint64

	// Acceleration structure details.
	Faces int
	BVH   bvh.Stats

	// Total render time for entire frame.
	RenderTime time.Duration
}
