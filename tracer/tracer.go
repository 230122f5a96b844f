package tracer

import (
	"context"
	"time"

	"github.com/arjpeg/raytracer/types"
)

type UpdateType uint8

// The supported update types.
const (
	// A *scene.Scene whose buffers replace the current scene data.
	UpdateScene UpdateType = iota

	// A kernel.CameraData with the inverse camera transforms.
	UpdateCamera

	// A kernel.Config for the integrator.
	UpdateKernelConfig
)

func (u UpdateType) String() string {
	switch u {
	case UpdateScene:
		return "scene"
	case UpdateCamera:
		return "camera"
	case UpdateKernelConfig:
		return "kernel config"
	}
	return "unknown"
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// The block is abandoned when this context is cancelled.
	Ctx context.Context

	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Frame time used for seeding the per-pixel random streams.
	Time float32

	// The frame sample buffer (FrameW * FrameH entries, row-major). A tracer
	// only writes the rows of its block.
	Samples []types.Vec4

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time spent applying pending updates before rendering the block.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the computation speed estimate. Speeds are only meaningful
	// when compared to other tracers.
	Speed() uint32

	// Setup the tracer for rendering frames of the given dimensions and
	// start its worker.
	Init(frameW, frameH uint32) error

	// Enqueue block request. The outcome is always reported through the
	// request DoneChan or ErrChan.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Updates are applied
	// before the next block is rendered.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats

	// Shutdown and cleanup tracer.
	Close()
}
