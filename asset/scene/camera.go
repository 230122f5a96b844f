package scene

import (
	"math"

	"github.com/arjpeg/raytracer/types"
)

const (
	defaultFOV  float32 = 45
	defaultNear float32 = 0.1
	defaultFar  float32 = 1000

	maxPitch float32 = 89
)

type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

var worldUp = types.XYZ(0, 1, 0)

// A first-person camera described by an eye position and yaw/pitch angles
// (in degrees). Yaw 270 and pitch 0 look down the -Z axis.
type Camera struct {
	Eye   types.Vec3
	Yaw   float32
	Pitch float32

	// Vertical field of view in degrees and clip planes.
	FOV  float32
	Near float32
	Far  float32

	// Viewport aspect ratio (width / height).
	Aspect float32

	viewMat    types.Mat4
	projMat    types.Mat4
	invViewMat types.Mat4
	invProjMat types.Mat4
}

// Create a camera at (0, 0, 2) looking towards the origin.
func NewCamera() *Camera {
	return NewCameraFacing(types.XYZ(0, 0, 2), types.XYZ(0, 0, -1))
}

// Create a camera at eye looking along forward.
func NewCameraFacing(eye, forward types.Vec3) *Camera {
	c := &Camera{
		Eye:    eye,
		FOV:    defaultFOV,
		Near:   defaultNear,
		Far:    defaultFar,
		Aspect: 1,
	}
	c.LookTowards(forward)
	return c
}

// Point the camera along dir.
func (c *Camera) LookTowards(dir types.Vec3) {
	dir = dir.Normalize()
	if dir.Len() == 0 {
		dir = types.XYZ(0, 0, -1)
	}

	yaw := float32(math.Atan2(float64(dir[2]), float64(dir[0])) * 180 / math.Pi)
	if yaw < 0 {
		yaw += 360
	}
	c.Yaw = yaw
	c.Pitch = clampPitch(float32(math.Asin(float64(dir[1])) * 180 / math.Pi))
	c.Update()
}

// Get the unit view direction.
func (c *Camera) Forward() types.Vec3 {
	yaw := float64(c.Yaw) * math.Pi / 180
	pitch := float64(c.Pitch) * math.Pi / 180
	return types.XYZ(
		float32(math.Cos(yaw)*math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw)*math.Cos(pitch)),
	).Normalize()
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	if aspect > 0 {
		c.Aspect = aspect
	}
	c.Update()
}

// Move the camera along dir.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	fwd := c.Forward()
	right := fwd.Cross(worldUp).Normalize()

	switch dir {
	case Forward:
		c.Eye = c.Eye.Add(fwd.Mul(amount))
	case Backward:
		c.Eye = c.Eye.Sub(fwd.Mul(amount))
	case Left:
		c.Eye = c.Eye.Sub(right.Mul(amount))
	case Right:
		c.Eye = c.Eye.Add(right.Mul(amount))
	case Up:
		c.Eye = c.Eye.Add(worldUp.Mul(amount))
	case Down:
		c.Eye = c.Eye.Sub(worldUp.Mul(amount))
	}
	c.Update()
}

// Adjust yaw and pitch by the given deltas (in degrees). Pitch is clamped
// to +/- 89 degrees.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+deltaYaw), 360))
	if c.Yaw < 0 {
		c.Yaw += 360
	}
	c.Pitch = clampPitch(c.Pitch + deltaPitch)
	c.Update()
}

// Recalculate the view and projection matrices and their inverses.
func (c *Camera) Update() {
	if c.FOV == 0 {
		c.FOV = defaultFOV
	}
	if c.Near == 0 {
		c.Near = defaultNear
	}
	if c.Far == 0 {
		c.Far = defaultFar
	}
	if c.Aspect == 0 {
		c.Aspect = 1
	}

	c.viewMat = types.LookAtV(c.Eye, c.Eye.Add(c.Forward()), worldUp)
	c.projMat = types.Perspective4(c.FOV, c.Aspect, c.Near, c.Far)
	c.invViewMat = c.viewMat.Inv()
	c.invProjMat = c.projMat.Inv()
}

func (c *Camera) View() types.Mat4 {
	return c.viewMat
}

func (c *Camera) Projection() types.Mat4 {
	return c.projMat
}

func (c *Camera) InvView() types.Mat4 {
	return c.invViewMat
}

func (c *Camera) InvProjection() types.Mat4 {
	return c.invProjMat
}

func clampPitch(pitch float32) float32 {
	if pitch > maxPitch {
		return maxPitch
	}
	if pitch < -maxPitch {
		return -maxPitch
	}
	return pitch
}
