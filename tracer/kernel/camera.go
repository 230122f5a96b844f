package kernel

import (
	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
)

// Inverse camera transforms used to reconstruct primary rays.
type CameraData struct {
	InvView       types.Mat4
	InvProjection types.Mat4
}

func NewCameraData(c *scene.Camera) CameraData {
	return CameraData{
		InvView:       c.InvView(),
		InvProjection: c.InvProjection(),
	}
}

// Returns true if both transforms match within eps.
func (cd CameraData) ApproxEqual(other CameraData, eps float32) bool {
	return cd.InvView.ApproxEqual(other.InvView, eps) && cd.InvProjection.ApproxEqual(other.InvProjection, eps)
}

// Build the primary ray through the center of pixel (px, py). Row 0 is the
// top of the image.
func PrimaryRay(cam CameraData, px, py, width, height uint32) Ray {
	ndcX := (float32(px)+0.5)/float32(width)*2 - 1
	ndcY := 1 - (float32(py)+0.5)/float32(height)*2

	target := cam.InvProjection.Mul4x1(types.XYZW(ndcX, ndcY, 1, 1))
	viewDir := target.Vec3().Mul(1 / target[3]).Normalize()
	worldDir := cam.InvView.Mul4x1(viewDir.Vec4(0)).Vec3().Normalize()

	return Ray{
		Origin:    cam.InvView.Col(3).Vec3(),
		Direction: worldDir,
	}
}
