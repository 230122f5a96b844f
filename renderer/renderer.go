package renderer

import (
	"context"
	"image"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/types"
)

type Renderer interface {
	// Render the next progressive frame. On failure the previously rendered
	// frame is kept and the returned error wraps ErrInterrupted when the
	// context was cancelled.
	Render(ctx context.Context) (*image.RGBA, error)

	// Get the last successfully rendered frame or nil if no frame has been
	// rendered yet.
	Frame() *image.RGBA

	// Get the linear radiance values of the last successfully rendered frame.
	Radiance() []types.Vec4

	// Replace the camera. The accumulation buffer is reset on the next frame
	// if the camera transforms changed.
	UpdateCamera(*scene.Camera)

	// Replace the scene. The accumulation buffer is reset on the next frame.
	UpdateScene(*scene.Scene) error

	// Change the frame size. All accumulated samples are discarded.
	Resize(frameW, frameH uint32) error

	// Toggle sample accumulation.
	SetAccumulate(bool)

	// Get the progressive rendering state.
	State() FrameState

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
