package renderer

import (
	"fmt"

	"github.com/arjpeg/raytracer/types"
)

// The largest supported frame (in pixels).
const MaxPixels = 1 << 26

// Accumulator keeps a running radiance sum per pixel together with the number
// of accumulated frames. The converged value of a pixel is sum / frames.
type Accumulator struct {
	width  uint32
	height uint32
	cells  []types.Vec4
	frames uint32
}

// Create an accumulator for a width x height frame.
func NewAccumulator(width, height uint32) (*Accumulator, error) {
	acc := &Accumulator{}
	if err := acc.Resize(width, height); err != nil {
		return nil, err
	}
	return acc, nil
}

// Reallocate the buffer for a new resolution and reset it. On error the
// current buffer is left untouched.
func (a *Accumulator) Resize(width, height uint32) error {
	if width == 0 || height == 0 || uint64(width)*uint64(height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, width, height)
	}

	a.width, a.height = width, height
	a.cells = make([]types.Vec4, int(width)*int(height))
	a.frames = 0
	return nil
}

// Discard all accumulated samples.
func (a *Accumulator) Reset() {
	for idx := range a.cells {
		a.cells[idx] = types.Vec4{}
	}
	a.frames = 0
}

// Get the number of accumulated frames.
func (a *Accumulator) Frames() uint32 {
	return a.frames
}

// Get the buffer dimensions.
func (a *Accumulator) Size() (uint32, uint32) {
	return a.width, a.height
}

// Combine a frame of samples with the buffer history and write the result
// to out. When accumulate is set, every cell adds its sample, the frame
// counter is incremented and out receives the running mean. Otherwise out
// receives the samples as-is and the buffer is not touched.
func (a *Accumulator) Commit(samples []types.Vec4, accumulate bool, out []types.Vec4) error {
	if len(samples) != len(a.cells) || len(out) != len(a.cells) {
		return fmt.Errorf("%w: got %d samples and %d outputs for %d cells", ErrBufferSizeMismatch, len(samples), len(out), len(a.cells))
	}

	if !accumulate {
		copy(out, samples)
		return nil
	}

	a.frames++
	scale := 1.0 / float32(a.frames)
	for idx, sample := range samples {
		a.cells[idx] = a.cells[idx].Add(sample)
		out[idx] = a.cells[idx].Mul(scale)
	}

	return nil
}
