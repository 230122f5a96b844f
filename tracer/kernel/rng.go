package kernel

import "github.com/arjpeg/raytracer/types"

// RandomState is the mutable seed of a per-pixel random stream. Each in-flight
// pixel owns its state exclusively; streams are never shared.
type RandomState uint32

const mantissaScale = 1.0 / float32(1<<23)

// Derive the seed for pixel (px, py) of a width x height frame at the given
// frame time. Pixel centers are normalized to [0, 1) on each axis.
func Seed(px, py, width, height uint32, time float32) RandomState {
	u := (float32(px) + 0.5) / float32(width)
	v := (float32(py) + 0.5) / float32(height)

	return RandomState(
		wrapUint32(u*1000) ^
			(wrapUint32(v*1000) << 16) ^
			wrapUint32(time*time*1000),
	)
}

// Advance the stream and return a uniform float in [0, 1).
func (s *RandomState) Float() float32 {
	*s = RandomState(hash(uint32(*s)))
	return float32(uint32(*s)&0x7fffff) * mantissaScale
}

// Draw three floats in x, y, z order.
func (s *RandomState) Vec3() types.Vec3 {
	x := s.Float()
	y := s.Float()
	z := s.Float()
	return types.XYZ(x, y, z)
}

// Draw a random unit vector by normalizing a point of the [-1, 1) cube. A
// degenerate draw yields +Y.
func (s *RandomState) UnitVec3() types.Vec3 {
	v := s.Vec3().Mul(2).Sub(types.Splat3(1)).Normalize()
	if v.Len() == 0 {
		return types.XYZ(0, 1, 0)
	}
	return v
}

// Integer finalizer (xorshift-multiply-xorshift-multiply-xorshift).
func hash(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// Convert a non-negative float to uint32, wrapping values beyond 2^32.
func wrapUint32(f float32) uint32 {
	if !(f > 0) {
		return 0
	}
	if f >= 1<<63 {
		return 0xffffffff
	}
	return uint32(uint64(f))
}
