package renderer

import (
	"fmt"
	"time"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/tracer/kernel"
	"github.com/arjpeg/raytracer/types"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Max number of path segments traced per sample.
	NumBounces uint32

	// Average samples over frames instead of displaying the latest sample.
	Accumulate bool

	// Background radiance for rays escaping the scene.
	SkyColor types.Vec3

	// Integrator mode and its fixed light direction (lambert mode).
	Mode     kernel.Mode
	LightDir types.Vec3

	// Ray origin offset along the surface normal.
	Epsilon float32

	// Exposure for tonemapping.
	Exposure float32

	// Frame time advance per rendered frame in seconds. When zero, the
	// time since the renderer was created is used.
	TimeStep float32

	// Clock used for wall time based frame times. Defaults to time.Now.
	Clock func() time.Time
}

// Get the default options: 512x512 progressive path tracing with 5 bounces.
func DefaultOptions() Options {
	preset := kernel.PathTracePreset()
	return Options{
		FrameW:     512,
		FrameH:     512,
		NumBounces: preset.MaxBounces,
		Accumulate: true,
		SkyColor:   preset.SkyColor,
		Mode:       preset.Mode,
		LightDir:   preset.LightDir,
		Epsilon:    preset.Epsilon,
		Exposure:   1.0,
		TimeStep:   1.0,
	}
}

// Override options with the non-empty scene render settings.
func (o Options) Apply(settings scene.RenderSettings) (Options, error) {
	if settings.Accumulate != nil {
		o.Accumulate = *settings.Accumulate
	}
	if settings.MaxBounces != 0 {
		o.NumBounces = settings.MaxBounces
	}
	if settings.SkyColor != nil {
		o.SkyColor = *settings.SkyColor
	}
	if settings.LightDir != nil {
		o.LightDir = *settings.LightDir
	}
	if settings.Mode != "" {
		mode, err := kernel.ParseMode(settings.Mode)
		if err != nil {
			return o, err
		}
		o.Mode = mode
	}
	return o, nil
}

// Check options for consistency.
func (o Options) Validate() error {
	if o.FrameW == 0 || o.FrameH == 0 || uint64(o.FrameW)*uint64(o.FrameH) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, o.FrameW, o.FrameH)
	}
	if o.Exposure < 0 {
		return fmt.Errorf("renderer: exposure must be non-negative; got %f", o.Exposure)
	}
	if o.TimeStep < 0 {
		return fmt.Errorf("renderer: time step must be non-negative; got %f", o.TimeStep)
	}
	if o.Mode == kernel.Lambert && o.LightDir.Len() == 0 {
		return fmt.Errorf("renderer: lambert mode requires a non-zero light direction")
	}
	return nil
}

// Get the integrator configuration.
func (o Options) KernelConfig() kernel.Config {
	return kernel.Config{
		Mode:       o.Mode,
		MaxBounces: o.NumBounces,
		SkyColor:   o.SkyColor,
		LightDir:   o.LightDir.Normalize(),
		Epsilon:    o.Epsilon,
	}
}
