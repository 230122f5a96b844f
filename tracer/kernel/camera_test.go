package kernel

import (
	"testing"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
	"github.com/stretchr/testify/assert"
)

func TestPrimaryRayThroughCenter(t *testing.T) {
	cam := NewCameraData(scene.NewCamera())
	ray := PrimaryRay(cam, 2, 2, 5, 5)

	assert.InDeltaSlice(t, []float32{0, 0, 2}, ray.Origin[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, 0, -1}, ray.Direction[:], 1e-5)
}

func TestPrimaryRayOrientation(t *testing.T) {
	cam := NewCameraData(scene.NewCamera())

	// Row 0 is the top of the image.
	topLeft := PrimaryRay(cam, 0, 0, 64, 64)
	assert.Less(t, topLeft.Direction[0], float32(0))
	assert.Greater(t, topLeft.Direction[1], float32(0))

	bottomRight := PrimaryRay(cam, 63, 63, 64, 64)
	assert.Greater(t, bottomRight.Direction[0], float32(0))
	assert.Less(t, bottomRight.Direction[1], float32(0))

	assert.InDelta(t, 1, topLeft.Direction.Len(), 1e-5)
}

func TestPrimaryRayFollowsCameraTransform(t *testing.T) {
	c := scene.NewCameraFacing(types.XYZ(5, 1, 0), types.XYZ(-1, 0, 0))
	ray := PrimaryRay(NewCameraData(c), 10, 10, 21, 21)

	assert.InDeltaSlice(t, []float32{5, 1, 0}, ray.Origin[:], 1e-4)
	assert.InDeltaSlice(t, []float32{-1, 0, 0}, ray.Direction[:], 1e-4)
}

func TestCameraDataApproxEqual(t *testing.T) {
	c := scene.NewCamera()
	a := NewCameraData(c)
	assert.True(t, a.ApproxEqual(NewCameraData(c), 1e-6))

	c.Move(scene.Forward, 0.5)
	assert.False(t, a.ApproxEqual(NewCameraData(c), 1e-6))
}
