package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Normalize(t *testing.T) {
	v := XYZ(3, 0, 4).Normalize()
	assert.InDelta(t, 1.0, v.Len(), 1e-6)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[2], 1e-6)

	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector must not produce NaNs")
}

func TestVec3Reflect(t *testing.T) {
	n := XYZ(0, 1, 0)
	r := XYZ(1, -1, 0).Reflect(n)
	assert.Equal(t, XYZ(1, 1, 0), r)
}

func TestVec3Helpers(t *testing.T) {
	assert.Equal(t, XYZ(2, 6, 12), XYZ(1, 2, 3).MulVec(XYZ(2, 3, 4)))
	assert.Equal(t, float32(7), XYZ(-9, 7, 1).MaxComponent())
	assert.True(t, XYZ(1, 2, 3).IsFinite())

	var zero float32
	assert.False(t, XYZ(1, 1/zero, 0).IsFinite())
}

func TestMat4Inverse(t *testing.T) {
	view := LookAtV(XYZ(0, 0, 2), XYZ(0, 0, 1), XYZ(0, 1, 0))
	invView := view.Inv()

	assert.True(t, view.Mul4(invView).ApproxEqual(Ident4(), 1e-5))

	// The translation column of the inverse view matrix is the eye position.
	eye := invView.Col(3)
	assert.InDeltaSlice(t, []float32{0, 0, 2, 1}, eye[:], 1e-5)
}
