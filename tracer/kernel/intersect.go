package kernel

import (
	"math"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
)

// The hit distance reported for rays that escape the scene.
const MissDistance float32 = -1

type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// The result of an intersection query. For misses only HitDistance is set.
type HitRecord struct {
	HitDistance float32
	Position    types.Vec3
	Normal      types.Vec3
	ObjectIndex uint32
}

// Returns true if the ray did not hit anything.
func (h HitRecord) Miss() bool {
	return h.HitDistance < 0
}

// Find the closest sphere hit along ray. Spheres are tested in order and a
// later sphere only wins if it is strictly closer, so the lowest index wins
// ties.
func Trace(ray Ray, spheres []scene.Sphere) HitRecord {
	closest := -1
	bestT := float32(math.MaxFloat32)
	var bestLocal types.Vec3

	for idx := range spheres {
		sphere := &spheres[idx]
		origin := ray.Origin.Sub(sphere.Position)

		a := ray.Direction.Dot(ray.Direction)
		b := 2 * origin.Dot(ray.Direction)
		c := origin.Dot(origin) - sphere.Radius*sphere.Radius

		disc := b*b - 4*a*c
		if disc <= 0 {
			continue
		}

		t := (-b - float32(math.Sqrt(float64(disc)))) / (2 * a)
		if t >= 0 && t < bestT {
			bestT = t
			closest = idx
			bestLocal = origin.Add(ray.Direction.Mul(t))
		}
	}

	if closest < 0 {
		return HitRecord{HitDistance: MissDistance}
	}

	return HitRecord{
		HitDistance: bestT,
		Position:    bestLocal.Add(spheres[closest].Position),
		Normal:      bestLocal.Normalize(),
		ObjectIndex: uint32(closest),
	}
}
