package scene

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/arjpeg/raytracer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScene(t *testing.T) {
	sc := NewScene()
	require.NoError(t, sc.Validate())
	require.Len(t, sc.Spheres, 1)
	require.Len(t, sc.Materials, 1)

	assert.Equal(t, float32(0.5), sc.Spheres[0].Radius)
	assert.Equal(t, types.XYZ(0.6, 0.2, 0.7), sc.Materials[0].Albedo)
	assert.NotNil(t, sc.Camera)
}

func TestSceneRevisionChangesOnMutation(t *testing.T) {
	sc := NewScene()
	rev := sc.Revision()
	assert.Equal(t, rev, sc.Revision(), "reading the revision must not change it")

	sc.AddSphere(Sphere{Position: types.XYZ(1, 0, 0), Radius: 1})
	assert.NotEqual(t, rev, sc.Revision())

	rev = sc.Revision()
	require.NoError(t, sc.SetSphere(0, Sphere{Radius: 2}))
	assert.NotEqual(t, rev, sc.Revision())

	rev = sc.Revision()
	err := sc.SetSphere(5, Sphere{Radius: 2})
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.Equal(t, rev, sc.Revision(), "failed updates must not change the revision")
}

func TestSceneValidation(t *testing.T) {
	type spec struct {
		mutate func(sc *Scene)
		errMsg string
	}
	specs := []spec{
		{func(sc *Scene) { sc.Spheres = nil }, "no spheres defined"},
		{func(sc *Scene) { sc.Materials = nil }, "no materials defined"},
		{func(sc *Scene) { sc.Spheres[0].Radius = 0 }, "invalid radius"},
		{func(sc *Scene) { sc.Spheres[0].Radius = -1 }, "invalid radius"},
		{func(sc *Scene) { sc.Spheres[0].MaterialIndex = 1 }, "references material 1 (have 1)"},
		{func(sc *Scene) {
			var zero float32
			sc.Materials[0].EmissionStrength = 1 / zero
		}, "non-finite values"},
	}

	for index, s := range specs {
		sc := NewScene()
		s.mutate(sc)
		err := sc.Validate()
		require.ErrorIs(t, err, ErrInvalidScene, "[spec %d]", index)
		assert.Contains(t, err.Error(), s.errMsg, "[spec %d]", index)
	}
}

func TestRandomSphere(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		s := RandomSphere(rng)
		for _, c := range s.Position {
			assert.True(t, c >= -5 && c < 5, "position component %f out of range", c)
		}
		assert.True(t, s.Radius >= 0.3 && s.Radius < 1.2, "radius %f out of range", s.Radius)
	}
}

func TestSceneStats(t *testing.T) {
	sc := NewScene()
	sc.AddMaterial(Material{EmissionColor: types.XYZ(1, 1, 1), EmissionStrength: 2})

	stats := sc.Stats()
	assert.True(t, strings.Contains(stats, "Spheres"))
	assert.True(t, strings.Contains(stats, "Emissive materials"))
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.InDelta(t, 270, c.Yaw, 1e-4)
	assert.InDelta(t, 0, c.Pitch, 1e-4)

	fwd := c.Forward()
	assert.InDelta(t, 0, fwd[0], 1e-5)
	assert.InDelta(t, 0, fwd[1], 1e-5)
	assert.InDelta(t, -1, fwd[2], 1e-5)

	// The inverse view matrix translation is the eye position.
	eye := c.InvView().Col(3)
	assert.InDeltaSlice(t, []float32{0, 0, 2, 1}, eye[:], 1e-5)
}

func TestCameraRotateClampsPitch(t *testing.T) {
	c := NewCamera()
	c.Rotate(0, 120)
	assert.Equal(t, float32(89), c.Pitch)
	c.Rotate(-300, -500)
	assert.Equal(t, float32(-89), c.Pitch)
	assert.True(t, c.Yaw >= 0 && c.Yaw < 360)
}

func TestCameraMove(t *testing.T) {
	c := NewCamera()
	c.Move(Forward, 1)
	assert.InDelta(t, 1, c.Eye[2], 1e-5)
	c.Move(Right, 2)
	assert.InDelta(t, 2, c.Eye[0], 1e-5)
	c.Move(Up, 0.5)
	assert.InDelta(t, 0.5, c.Eye[1], 1e-5)
}
