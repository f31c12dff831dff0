package renderer

// A horizontal band of frame rows.
type Block struct {
	Y uint32
	H uint32
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks and assign them to a pool of workers.
	//
	// This function returns the list of blocks for each worker. Every
	// frame row is covered by exactly one block.
	Schedule(workers int, frameH uint32) [][]Block
}

// The interleaved scheduler splits the frame into fixed height blocks and
// deals them to workers in round-robin order. Neighbouring rows usually
// cost about the same to trace so each worker ends up with a similar share
// of the work. The assignment only depends on the worker count and frame
// height which keeps renders with random samplers reproducible.
type interleavedScheduler struct {
	blockH uint32
}

// Create a new interleaved scheduler instance
func NewInterleavedScheduler(blockH uint32) BlockScheduler {
	if blockH == 0 {
		blockH = 1
	}
	return &interleavedScheduler{blockH: blockH}
}

func (sch *interleavedScheduler) Schedule(workers int, frameH uint32) [][]Block {
	if workers < 1 {
		workers = 1
	}
	if blocks := int((frameH + sch.blockH - 1) / sch.blockH); blocks < workers {
		workers = blocks
	}

	assignment := make([][]Block, workers)
	var index int
	for y := uint32(0); y < frameH; y += sch.blockH {
		h := sch.blockH
		if y+h > frameH {
			h = frameH - y
		}

		assignment[index%workers] = append(assignment[index%workers], Block{Y: y, H: h})
		index++
	}

	return assignment
}
