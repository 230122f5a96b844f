package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arjpeg/raytracer/asset"
	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYaml = `
camera:
  eye: [0, 1, 4]
  forward: [0, 0, -1]
  fov: 60
materials:
  - name: red
    albedo: [1, 0, 0]
    roughness: 0.5
  - name: light
    albedo: [1, 1, 1]
    emission_color: [1, 0.9, 0.8]
    emission_strength: 4
spheres:
  - position: [0, 0, 0]
    radius: 0.5
    material: red
  - position: [0, 3, 0]
    radius: 1
    material: 1
random_spheres:
  count: 3
  seed: 7
  material: red
render:
  accumulate: false
  max_bounces: 3
  sky_color: [0.1, 0.2, 0.3]
  mode: lambert
  light_dir: [-1, -1, -1]
`

func TestYamlReader(t *testing.T) {
	res := asset.NewResourceFromStream("scene.yaml", strings.NewReader(sceneYaml))
	sc, err := newYamlSceneReader().Read(res)
	require.NoError(t, err)

	require.Len(t, sc.Materials, 2)
	assert.Equal(t, types.XYZ(1, 0, 0), sc.Materials[0].Albedo)
	assert.Equal(t, float32(4), sc.Materials[1].EmissionStrength)

	require.Len(t, sc.Spheres, 5)
	assert.Equal(t, uint32(0), sc.Spheres[0].MaterialIndex)
	assert.Equal(t, uint32(1), sc.Spheres[1].MaterialIndex)
	for _, s := range sc.Spheres[2:] {
		assert.Equal(t, uint32(0), s.MaterialIndex)
	}

	assert.Equal(t, types.XYZ(0, 1, 4), sc.Camera.Eye)
	assert.Equal(t, float32(60), sc.Camera.FOV)
	assert.InDelta(t, 270, sc.Camera.Yaw, 1e-4)

	require.NotNil(t, sc.Settings.Accumulate)
	assert.False(t, *sc.Settings.Accumulate)
	assert.Equal(t, uint32(3), sc.Settings.MaxBounces)
	assert.Equal(t, "lambert", sc.Settings.Mode)
	require.NotNil(t, sc.Settings.SkyColor)
	assert.Equal(t, types.XYZ(0.1, 0.2, 0.3), *sc.Settings.SkyColor)
}

func TestYamlReaderRandomSpheresAreReproducible(t *testing.T) {
	read := func() *scene.Scene {
		res := asset.NewResourceFromStream("scene.yaml", strings.NewReader(sceneYaml))
		sc, err := newYamlSceneReader().Read(res)
		require.NoError(t, err)
		return sc
	}

	assert.Equal(t, read().Spheres, read().Spheres)
}

func TestYamlReaderErrors(t *testing.T) {
	type spec struct {
		doc    string
		errMsg string
	}
	specs := []spec{
		{"materials:\n  - albedo: [1, 0]\nspheres:\n  - radius: 1\n", "expected 3 arguments; got 2"},
		{"materials:\n  - albedo: [1, 0, 0]\nspheres:\n  - radius: 1\n    material: missing\n", `unknown material "missing"`},
		{"materials:\n  - albedo: [1, 0, 0]\nspheres:\n  - radius: 1\n    material: 3\n", "references material 3"},
		{"materials:\n  - name: a\n  - name: a\n", `duplicate material name "a"`},
		{"spheres:\n  - radius: 1\n    colour: red\n", "field colour not found"},
		{"materials:\n  - albedo: [1, 0, 0]\n", "no spheres defined"},
	}

	for index, s := range specs {
		res := asset.NewResourceFromStream("scene.yaml", strings.NewReader(s.doc))
		_, err := newYamlSceneReader().Read(res)
		require.Error(t, err, "[spec %d]", index)
		assert.Contains(t, err.Error(), s.errMsg, "[spec %d]", index)
	}
}

func TestReadSceneSelectsReaderByExtension(t *testing.T) {
	dir := t.TempDir()
	sceneFile := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(sceneFile, []byte(sceneYaml), 0o644))

	sc, err := ReadScene(sceneFile)
	require.NoError(t, err)
	assert.Len(t, sc.Spheres, 5)

	_, err = ReadScene(filepath.Join(dir, "scene.obj"))
	require.EqualError(t, err, "readScene: unsupported file format")
}
