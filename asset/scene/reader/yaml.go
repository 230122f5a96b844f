package reader

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/arjpeg/raytracer/asset"
	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/log"
	"github.com/arjpeg/raytracer/types"
	"gopkg.in/yaml.v3"
)

type yamlCamera struct {
	Eye     []float32 `yaml:"eye"`
	Forward []float32 `yaml:"forward"`
	FOV     float32   `yaml:"fov"`
}

type yamlMaterial struct {
	Name             string    `yaml:"name"`
	Albedo           []float32 `yaml:"albedo"`
	Roughness        float32   `yaml:"roughness"`
	EmissionColor    []float32 `yaml:"emission_color"`
	EmissionStrength float32   `yaml:"emission_strength"`
}

// A material reference by table index or by material name.
type materialRef struct {
	value string
	set   bool
}

func (r *materialRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: material reference must be an index or a name", node.Line)
	}
	r.value = node.Value
	r.set = true
	return nil
}

type yamlSphere struct {
	Position []float32   `yaml:"position"`
	Radius   float32     `yaml:"radius"`
	Material materialRef `yaml:"material"`
}

type yamlRandomSpheres struct {
	Count    int         `yaml:"count"`
	Seed     int64       `yaml:"seed"`
	Material materialRef `yaml:"material"`
}

type yamlRender struct {
	Accumulate *bool     `yaml:"accumulate"`
	MaxBounces uint32    `yaml:"max_bounces"`
	SkyColor   []float32 `yaml:"sky_color"`
	Mode       string    `yaml:"mode"`
	LightDir   []float32 `yaml:"light_dir"`
}

type yamlScene struct {
	Camera        *yamlCamera        `yaml:"camera"`
	Materials     []yamlMaterial     `yaml:"materials"`
	Spheres       []yamlSphere       `yaml:"spheres"`
	RandomSpheres *yamlRandomSpheres `yaml:"random_spheres"`
	Render        yamlRender         `yaml:"render"`
}

type yamlSceneReader struct {
	logger log.Logger
}

// Create a new yaml scene description reader.
func newYamlSceneReader() *yamlSceneReader {
	return &yamlSceneReader{
		logger: log.New("yaml reader"),
	}
}

// Read scene description from a yaml document.
func (p *yamlSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing scene description from "%s"`, sceneRes.Path())
	start := time.Now()

	var doc yamlScene
	decoder := yaml.NewDecoder(sceneRes)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yamlSceneReader: could not parse %s: %w", sceneRes.Path(), err)
	}

	sc, err := p.build(&doc)
	if err != nil {
		return nil, fmt.Errorf("yamlSceneReader: %s: %w", sceneRes.Path(), err)
	}

	if err = sc.Validate(); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded scene with %d spheres and %d materials in %d ms", len(sc.Spheres), len(sc.Materials), time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}

func (p *yamlSceneReader) build(doc *yamlScene) (*scene.Scene, error) {
	sc := &scene.Scene{
		Camera: scene.NewCamera(),
	}

	if doc.Camera != nil {
		eye, err := vec3Or(doc.Camera.Eye, sc.Camera.Eye, "camera.eye")
		if err != nil {
			return nil, err
		}
		fwd, err := vec3Or(doc.Camera.Forward, types.XYZ(0, 0, -1), "camera.forward")
		if err != nil {
			return nil, err
		}
		sc.Camera.Eye = eye
		if doc.Camera.FOV != 0 {
			sc.Camera.FOV = doc.Camera.FOV
		}
		sc.Camera.LookTowards(fwd)
	}

	nameToIndex := make(map[string]uint32)
	for idx, m := range doc.Materials {
		albedo, err := vec3Or(m.Albedo, types.Splat3(1), fmt.Sprintf("materials[%d].albedo", idx))
		if err != nil {
			return nil, err
		}
		emission, err := vec3Or(m.EmissionColor, types.Vec3{}, fmt.Sprintf("materials[%d].emission_color", idx))
		if err != nil {
			return nil, err
		}

		if m.Name != "" {
			if _, exists := nameToIndex[m.Name]; exists {
				return nil, fmt.Errorf("duplicate material name %q", m.Name)
			}
			nameToIndex[m.Name] = uint32(idx)
		}

		sc.Materials = append(sc.Materials, scene.Material{
			Albedo:           albedo,
			Roughness:        m.Roughness,
			EmissionColor:    emission,
			EmissionStrength: m.EmissionStrength,
		})
	}

	for idx, s := range doc.Spheres {
		pos, err := vec3Or(s.Position, types.Vec3{}, fmt.Sprintf("spheres[%d].position", idx))
		if err != nil {
			return nil, err
		}
		matIndex, err := resolveMaterial(s.Material, nameToIndex)
		if err != nil {
			return nil, fmt.Errorf("spheres[%d]: %w", idx, err)
		}
		sc.Spheres = append(sc.Spheres, scene.Sphere{
			Position:      pos,
			Radius:        s.Radius,
			MaterialIndex: matIndex,
		})
	}

	if rs := doc.RandomSpheres; rs != nil && rs.Count > 0 {
		matIndex, err := resolveMaterial(rs.Material, nameToIndex)
		if err != nil {
			return nil, fmt.Errorf("random_spheres: %w", err)
		}
		rng := rand.New(rand.NewSource(rs.Seed))
		for i := 0; i < rs.Count; i++ {
			s := scene.RandomSphere(rng)
			s.MaterialIndex = matIndex
			sc.Spheres = append(sc.Spheres, s)
		}
		p.logger.Debugf("generated %d random spheres (seed %d)", rs.Count, rs.Seed)
	}

	if err := p.buildSettings(&doc.Render, &sc.Settings); err != nil {
		return nil, err
	}

	sc.Touch()
	return sc, nil
}

func (p *yamlSceneReader) buildSettings(in *yamlRender, out *scene.RenderSettings) error {
	out.Accumulate = in.Accumulate
	out.MaxBounces = in.MaxBounces
	out.Mode = in.Mode

	if in.SkyColor != nil {
		sky, err := toVec3(in.SkyColor, "render.sky_color")
		if err != nil {
			return err
		}
		out.SkyColor = &sky
	}
	if in.LightDir != nil {
		dir, err := toVec3(in.LightDir, "render.light_dir")
		if err != nil {
			return err
		}
		out.LightDir = &dir
	}
	return nil
}

func resolveMaterial(ref materialRef, nameToIndex map[string]uint32) (uint32, error) {
	if !ref.set {
		return 0, nil
	}
	if index, err := strconv.ParseUint(ref.value, 10, 32); err == nil {
		return uint32(index), nil
	}
	index, ok := nameToIndex[ref.value]
	if !ok {
		return 0, fmt.Errorf("unknown material %q", ref.value)
	}
	return index, nil
}

func vec3Or(v []float32, def types.Vec3, field string) (types.Vec3, error) {
	if v == nil {
		return def, nil
	}
	return toVec3(v, field)
}

func toVec3(v []float32, field string) (types.Vec3, error) {
	if len(v) != 3 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", field, len(v))
	}
	return types.XYZ(v[0], v[1], v[2]), nil
}
