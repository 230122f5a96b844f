package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list. Assignments always add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame rows in proportion to each tracer's
// speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	return splitBySpeed(tracers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// or the frame height has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) || sum(sch.blockAssignment) != frameH {
		sch.blockAssignment = splitBySpeed(tracers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics
	throughput := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		stats := tr.Stats()
		renderTime := float64(stats.RenderTime)
		if renderTime <= 0 {
			renderTime = 1
		}
		blockH := float64(stats.BlockH)
		if blockH == 0 {
			blockH = 1
		}
		throughput[idx] = blockH / renderTime
		total += throughput[idx]
	}

	sch.blockAssignment = distribute(throughput, total, frameH)
	return sch.blockAssignment
}

func splitBySpeed(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		weights[idx] = float64(tr.Speed())
		if weights[idx] <= 0 {
			weights[idx] = 1
		}
		total += weights[idx]
	}
	return distribute(weights, total, frameH)
}

// Assign max(1, floor(weight/total * frameH)) rows to each tracer. Rows that
// don't add up to the frame height are appended to the first tracer; rows
// overshooting it are taken back from the largest blocks.
func distribute(weights []float64, total float64, frameH uint32) []uint32 {
	assignment := make([]uint32, len(weights))
	if len(weights) == 0 {
		return assignment
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, w := range weights {
		assignment[idx] = uint32(math.Max(1.0, math.Floor(w*scaler)))
		scheduledRows += assignment[idx]
	}

	for scheduledRows > frameH {
		largest := 0
		for idx := range assignment {
			if assignment[idx] > assignment[largest] {
				largest = idx
			}
		}
		if assignment[largest] == 0 {
			break
		}
		assignment[largest]--
		scheduledRows--
	}

	assignment[0] += frameH - scheduledRows
	return assignment
}

func sum(values []uint32) uint32 {
	var total uint32
	for _, v := range values {
		total += v
	}
	return total
}
