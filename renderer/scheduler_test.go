package renderer

import "testing"

func TestInterleavedScheduler(t *testing.T) {
	type spec struct {
		workers   int
		frameH    uint32
		blockH    uint32
		expBlocks []int
		expRows   []uint32
	}
	specs := []spec{
		spec{2, 10, 2, []int{3, 2}, []uint32{6, 4}},
		spec{3, 10, 4, []int{1, 1, 1}, []uint32{4, 4, 2}},
		// More workers than blocks
		spec{8, 5, 4, []int{1, 1}, []uint32{4, 1}},
		spec{1, 7, 3, []int{3}, []uint32{7}},
		spec{0, 2, 1, []int{2}, []uint32{2}},
	}

	for index, s := range specs {
		assignment := NewInterleavedScheduler(s.blockH).Schedule(s.workers, s.frameH)
		if len(assignment) != len(s.expBlocks) {
			t.Fatalf("[spec %d] expected %d workers to get blocks; got %d", index, len(s.expBlocks), len(assignment))
		}

		covered := make([]int, s.frameH)
		for worker, blocks := range assignment {
			if len(blocks) != s.expBlocks[worker] {
				t.Fatalf("[spec %d] expected worker %d to get %d blocks; got %d", index, worker, s.expBlocks[worker], len(blocks))
			}

			var rows uint32
			for _, block := range blocks {
				rows += block.H
				for y := block.Y; y < block.Y+block.H; y++ {
					covered[y]++
				}
			}
			if rows != s.expRows[worker] {
				t.Fatalf("[spec %d] expected worker %d to get %d rows; got %d", index, worker, s.expRows[worker], rows)
			}
		}

		for y, count := range covered {
			if count != 1 {
				t.Fatalf("[spec %d] expected row %d to be scheduled once; got %d", index, y, count)
			}
		}
	}
}

func TestInterleavedSchedulerZeroBlockHeight(t *testing.T) {
	assignment := NewInterleavedScheduler(0).Schedule(2, 3)
	if len(assignment[0]) != 2 || len(assignment[1]) != 1 {
		t.Fatalf("expected single row blocks; got %v", assignment)
	}
}
