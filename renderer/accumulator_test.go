package renderer

import (
	"errors"
	"testing"

	"github.com/arjpeg/raytracer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledSamples(count int, v float32) []types.Vec4 {
	samples := make([]types.Vec4, count)
	for idx := range samples {
		samples[idx] = types.XYZW(v, v*2, v*3, 1)
	}
	return samples
}

func TestAccumulatorRunningMean(t *testing.T) {
	acc, err := NewAccumulator(4, 2)
	require.NoError(t, err)

	out := make([]types.Vec4, 8)
	require.NoError(t, acc.Commit(filledSamples(8, 1), true, out))
	assert.Equal(t, uint32(1), acc.Frames())
	assert.Equal(t, types.XYZW(1, 2, 3, 1), out[0])

	require.NoError(t, acc.Commit(filledSamples(8, 3), true, out))
	assert.Equal(t, uint32(2), acc.Frames())
	for idx, v := range out {
		assert.Equal(t, types.XYZW(2, 4, 6, 1), v, "cell %d", idx)
	}
}

func TestAccumulatorDisabledLeavesBufferUntouched(t *testing.T) {
	acc, err := NewAccumulator(3, 3)
	require.NoError(t, err)

	out := make([]types.Vec4, 9)
	samples := filledSamples(9, 0.25)
	for i := 0; i < 3; i++ {
		require.NoError(t, acc.Commit(samples, false, out))
		assert.Equal(t, samples, out)
		assert.Equal(t, uint32(0), acc.Frames())
	}

	// The disabled commits must not have leaked into the running sum
	require.NoError(t, acc.Commit(filledSamples(9, 1), true, out))
	assert.Equal(t, uint32(1), acc.Frames())
	assert.Equal(t, types.XYZW(1, 2, 3, 1), out[4])
}

func TestAccumulatorReset(t *testing.T) {
	acc, err := NewAccumulator(2, 2)
	require.NoError(t, err)

	out := make([]types.Vec4, 4)
	require.NoError(t, acc.Commit(filledSamples(4, 5), true, out))
	require.NoError(t, acc.Commit(filledSamples(4, 5), true, out))

	acc.Reset()
	assert.Equal(t, uint32(0), acc.Frames())

	require.NoError(t, acc.Commit(filledSamples(4, 1), true, out))
	assert.Equal(t, uint32(1), acc.Frames())
	assert.Equal(t, types.XYZW(1, 2, 3, 1), out[3])
}

func TestAccumulatorResize(t *testing.T) {
	acc, err := NewAccumulator(2, 2)
	require.NoError(t, err)

	out := make([]types.Vec4, 4)
	require.NoError(t, acc.Commit(filledSamples(4, 1), true, out))

	invalid := [][2]uint32{{0, 10}, {10, 0}, {1 << 14, 1 << 14}}
	for _, dims := range invalid {
		err = acc.Resize(dims[0], dims[1])
		assert.True(t, errors.Is(err, ErrInvalidFrameSize), "expected ErrInvalidFrameSize for %v; got %v", dims, err)

		w, h := acc.Size()
		assert.Equal(t, uint32(2), w)
		assert.Equal(t, uint32(2), h)
		assert.Equal(t, uint32(1), acc.Frames())
	}

	require.NoError(t, acc.Resize(3, 5))
	w, h := acc.Size()
	assert.Equal(t, uint32(3), w)
	assert.Equal(t, uint32(5), h)
	assert.Equal(t, uint32(0), acc.Frames())

	_, err = NewAccumulator(0, 0)
	assert.True(t, errors.Is(err, ErrInvalidFrameSize))
}

func TestAccumulatorCommitSizeMismatch(t *testing.T) {
	acc, err := NewAccumulator(2, 2)
	require.NoError(t, err)

	err = acc.Commit(filledSamples(3, 1), true, make([]types.Vec4, 4))
	assert.True(t, errors.Is(err, ErrBufferSizeMismatch))

	err = acc.Commit(filledSamples(4, 1), true, make([]types.Vec4, 2))
	assert.True(t, errors.Is(err, ErrBufferSizeMismatch))

	assert.Equal(t, uint32(0), acc.Frames())
}
