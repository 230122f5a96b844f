package kernel

import (
	"fmt"
	"strings"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
)

// The integrator shading mode.
type Mode uint8

const (
	// Stochastic multi-bounce path tracing with emissive surfaces.
	PathTrace Mode = iota

	// Deterministic shading with a fixed directional light. Rays bounce
	// along the mirror direction and never consume random numbers.
	Lambert
)

func (m Mode) String() string {
	switch m {
	case PathTrace:
		return "path"
	case Lambert:
		return "lambert"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Parse a mode name ("path" or "lambert").
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "path", "pathtrace", "":
		return PathTrace, nil
	case "lambert":
		return Lambert, nil
	}
	return PathTrace, fmt.Errorf("kernel: unknown integrator mode %q", name)
}

var (
	DefaultSkyColor = types.XYZ(0.6, 0.7, 0.9)
	DefaultLightDir = types.XYZ(-1, -1, -1).Normalize()
)

const DefaultEpsilon float32 = 1e-4

// Integrator configuration.
type Config struct {
	Mode       Mode
	MaxBounces uint32

	// Radiance returned for rays escaping the scene.
	SkyColor types.Vec3

	// Unit direction the light travels along. Used in Lambert mode.
	LightDir types.Vec3

	// Offset applied along the surface normal to bounce ray origins.
	Epsilon float32
}

// Five bounce stochastic path tracing.
func PathTracePreset() Config {
	return Config{
		Mode:       PathTrace,
		MaxBounces: 5,
		SkyColor:   DefaultSkyColor,
		LightDir:   DefaultLightDir,
		Epsilon:    DefaultEpsilon,
	}
}

// Two bounce deterministic shading with a fixed light.
func LambertPreset() Config {
	return Config{
		Mode:       Lambert,
		MaxBounces: 2,
		SkyColor:   DefaultSkyColor,
		LightDir:   DefaultLightDir,
		Epsilon:    DefaultEpsilon,
	}
}

// Read-only scene buffers consumed by the integrator.
type SceneData struct {
	Spheres   []scene.Sphere
	Materials []scene.Material
}

// Copy the scene buffers so later scene edits do not leak into a frame in flight.
func NewSceneData(sc *scene.Scene) *SceneData {
	sd := &SceneData{
		Spheres:   make([]scene.Sphere, len(sc.Spheres)),
		Materials: make([]scene.Material, len(sc.Materials)),
	}
	copy(sd.Spheres, sc.Spheres)
	copy(sd.Materials, sc.Materials)
	return sd
}

// The Integrator interface is implemented by light transport algorithms
// that turn a primary ray into one radiance sample.
type Integrator interface {
	Sample(ray Ray, rng *RandomState) types.Vec4
}

type PathIntegrator struct {
	cfg   Config
	scene *SceneData
}

// Create an integrator for the given scene.
func NewPathIntegrator(cfg Config, sd *SceneData) *PathIntegrator {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	cfg.LightDir = cfg.LightDir.Normalize()
	return &PathIntegrator{cfg: cfg, scene: sd}
}

// Get the integrator configuration.
func (in *PathIntegrator) Config() Config {
	return in.cfg
}

// Trace ray through the scene and return a single radiance sample with alpha
// set to 1.
func (in *PathIntegrator) Sample(ray Ray, rng *RandomState) types.Vec4 {
	var light types.Vec3
	contribution := types.Splat3(1)

	for bounce := uint32(0); bounce < in.cfg.MaxBounces; bounce++ {
		hit := Trace(ray, in.scene.Spheres)
		if hit.Miss() {
			light = light.Add(in.cfg.SkyColor.MulVec(contribution))
			break
		}

		mat := in.material(hit.ObjectIndex)
		contribution = contribution.MulVec(mat.Albedo)
		light = light.Add(mat.Emission().MulVec(contribution))

		var dir types.Vec3
		switch in.cfg.Mode {
		case Lambert:
			diffuse := hit.Normal.Dot(in.cfg.LightDir.Neg())
			if diffuse > 0 {
				light = light.Add(contribution.Mul(diffuse))
			}
			dir = ray.Direction.Reflect(hit.Normal).Normalize()
		default:
			dir = hit.Normal.Add(rng.UnitVec3()).Normalize()
			if dir.Len() == 0 {
				dir = hit.Normal
			}
		}

		ray = Ray{
			Origin:    hit.Position.Add(hit.Normal.Mul(in.cfg.Epsilon)),
			Direction: dir,
		}
	}

	return light.Vec4(1)
}

func (in *PathIntegrator) material(sphereIndex uint32) scene.Material {
	matIndex := in.scene.Spheres[sphereIndex].MaterialIndex
	if int(matIndex) >= len(in.scene.Materials) {
		panic(fmt.Sprintf("kernel: sphere %d references material %d but only %d are defined", sphereIndex, matIndex, len(in.scene.Materials)))
	}
	return in.scene.Materials[matIndex]
}
