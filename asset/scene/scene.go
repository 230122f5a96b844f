package scene

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"

	"github.com/arjpeg/raytracer/types"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

var (
	ErrInvalidScene     = errors.New("scene: invalid scene")
	ErrIndexOutOfBounds = errors.New("scene: index out of bounds")
)

// An implicit sphere primitive. Spheres reference their material by index
// into the scene material table.
type Sphere struct {
	Position      types.Vec3
	Radius        float32
	MaterialIndex uint32
}

// Generate a sphere with a random position in [-5, 5) and a random radius in
// [0.3, 1.2) that uses the first scene material.
func RandomSphere(rng *rand.Rand) Sphere {
	return Sphere{
		Position: types.XYZ(
			rng.Float32()*10-5,
			rng.Float32()*10-5,
			rng.Float32()*10-5,
		),
		Radius:        0.3 + rng.Float32()*0.9,
		MaterialIndex: 0,
	}
}

// A surface material.
type Material struct {
	// The diffuse reflectance of the surface; each channel in [0, 1].
	Albedo types.Vec3

	// Surface roughness. It is stored with the material but does not
	// currently affect scattering.
	Roughness float32

	// Emitted radiance is EmissionColor * EmissionStrength.
	EmissionColor    types.Vec3
	EmissionStrength float32
}

// Get the radiance emitted by this material.
func (m Material) Emission() types.Vec3 {
	return m.EmissionColor.Mul(m.EmissionStrength)
}

// Optional per-scene render overrides. Nil/zero fields keep the renderer
// defaults.
type RenderSettings struct {
	Accumulate *bool
	MaxBounces uint32
	SkyColor   *types.Vec3
	Mode       string
	LightDir   *types.Vec3
}

type Scene struct {
	Spheres   []Sphere
	Materials []Material

	// The scene camera.
	Camera *Camera

	// Render overrides loaded together with the scene.
	Settings RenderSettings

	// Identity of the current scene contents. It changes whenever the
	// scene is mutated through its methods.
	revision uuid.UUID
}

// Create the default scene: a single diffuse sphere of radius 0.5 at the origin.
func NewScene() *Scene {
	sc := &Scene{
		Spheres: []Sphere{
			{Position: types.XYZ(0, 0, 0), Radius: 0.5, MaterialIndex: 0},
		},
		Materials: []Material{
			{Albedo: types.XYZ(0.6, 0.2, 0.7), Roughness: 0.2},
		},
		Camera: NewCamera(),
	}
	sc.Touch()
	return sc
}

// Get the scene revision.
func (sc *Scene) Revision() uuid.UUID {
	if sc.revision == uuid.Nil {
		sc.Touch()
	}
	return sc.revision
}

// Mark the scene contents as changed. Callers that modify the Spheres or
// Materials slices directly must call Touch so renderers reset accumulation.
func (sc *Scene) Touch() {
	sc.revision = uuid.New()
}

// Append a sphere and return its index.
func (sc *Scene) AddSphere(s Sphere) uint32 {
	sc.Spheres = append(sc.Spheres, s)
	sc.Touch()
	return uint32(len(sc.Spheres) - 1)
}

// Append a material and return its index.
func (sc *Scene) AddMaterial(m Material) uint32 {
	sc.Materials = append(sc.Materials, m)
	sc.Touch()
	return uint32(len(sc.Materials) - 1)
}

// Replace the sphere at the given index.
func (sc *Scene) SetSphere(index int, s Sphere) error {
	if index < 0 || index >= len(sc.Spheres) {
		return fmt.Errorf("%w: sphere %d (have %d)", ErrIndexOutOfBounds, index, len(sc.Spheres))
	}
	sc.Spheres[index] = s
	sc.Touch()
	return nil
}

// Replace the material at the given index.
func (sc *Scene) SetMaterial(index int, m Material) error {
	if index < 0 || index >= len(sc.Materials) {
		return fmt.Errorf("%w: material %d (have %d)", ErrIndexOutOfBounds, index, len(sc.Materials))
	}
	sc.Materials[index] = m
	sc.Touch()
	return nil
}

// Check that the scene can be safely traced. Every sphere must have a
// positive finite radius and reference an existing material.
func (sc *Scene) Validate() error {
	if len(sc.Spheres) == 0 {
		return fmt.Errorf("%w: no spheres defined", ErrInvalidScene)
	}
	if len(sc.Materials) == 0 {
		return fmt.Errorf("%w: no materials defined", ErrInvalidScene)
	}

	for idx, s := range sc.Spheres {
		if !s.Position.IsFinite() {
			return fmt.Errorf("%w: sphere %d has a non-finite position", ErrInvalidScene, idx)
		}
		if !(s.Radius > 0) || math.IsInf(float64(s.Radius), 0) {
			return fmt.Errorf("%w: sphere %d has invalid radius %f", ErrInvalidScene, idx, s.Radius)
		}
		if int(s.MaterialIndex) >= len(sc.Materials) {
			return fmt.Errorf("%w: sphere %d references material %d (have %d)", ErrInvalidScene, idx, s.MaterialIndex, len(sc.Materials))
		}
	}

	for idx, m := range sc.Materials {
		if !m.Albedo.IsFinite() || !m.EmissionColor.IsFinite() || math.IsNaN(float64(m.EmissionStrength)) || math.IsInf(float64(m.EmissionStrength), 0) {
			return fmt.Errorf("%w: material %d has non-finite values", ErrInvalidScene, idx)
		}
	}

	return nil
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Count", "Size"})
	table.Append([]string{"Spheres", fmt.Sprintf("%d", len(sc.Spheres)), fmtSize(sc.Spheres)})
	table.Append([]string{"Materials", fmt.Sprintf("%d", len(sc.Materials)), fmtSize(sc.Materials)})

	var emissive int
	for _, m := range sc.Materials {
		if m.Emission().MaxComponent() > 0 {
			emissive++
		}
	}
	table.Append([]string{"Emissive materials", fmt.Sprintf("%d", emissive), " "})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(sc.Spheres, sc.Materials), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
