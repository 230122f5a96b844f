package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/log"
	"github.com/arjpeg/raytracer/tracer"
	"github.com/arjpeg/raytracer/tracer/kernel"
	"github.com/arjpeg/raytracer/types"
	"github.com/google/uuid"
)

// The default renderer splits each frame into blocks, renders them using a
// pool of tracers and folds the result into an accumulation buffer.
type defaultRenderer struct {
	sync.Mutex

	logger log.Logger

	tracers          []tracer.Tracer
	scheduler        tracer.BlockScheduler
	blockAssignments []uint32

	options Options

	scene          *scene.Scene
	camera         *scene.Camera
	sceneRevision  uuid.UUID
	uploadedScene  *scene.Scene
	uploadedCamera kernel.CameraData
	cameraUploaded bool

	accumulator *Accumulator
	samples     []types.Vec4
	output      []types.Vec4
	spare       []types.Vec4
	frame       *image.RGBA

	startTime time.Time
	state     FrameState
	stats     FrameStats
	closed    bool
}

// Create a new renderer that uses the supplied tracers and block scheduler.
// The renderer initializes the tracers and takes ownership of them.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	acc, err := NewAccumulator(opts.FrameW, opts.FrameH)
	if err != nil {
		return nil, err
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		tracers:     tracers,
		scheduler:   scheduler,
		options:     opts,
		scene:       sc,
		camera:      sc.Camera,
		accumulator: acc,
		startTime:   opts.Clock(),
		stats: FrameStats{
			Tracers: make([]TracerStat, len(tracers)),
		},
	}
	r.allocBuffers()
	r.camera.SetupProjection(r.aspect())

	for _, tr := range r.tracers {
		if err = tr.Init(opts.FrameW, opts.FrameH); err != nil {
			r.Close()
			return nil, err
		}
		tr.Update(tracer.UpdateKernelConfig, opts.KernelConfig())
	}

	r.logger.Noticef("rendering %dx%d frames using %d tracer(s) in %s mode", opts.FrameW, opts.FrameH, len(tracers), opts.Mode)
	return r, nil
}

func (r *defaultRenderer) aspect() float32 {
	return float32(r.options.FrameW) / float32(r.options.FrameH)
}

func (r *defaultRenderer) allocBuffers() {
	pixels := int(r.options.FrameW) * int(r.options.FrameH)
	r.samples = make([]types.Vec4, pixels)
	r.spare = make([]types.Vec4, pixels)
}

// Shutdown the renderer and all attached tracers.
func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	if r.closed {
		return
	}
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.closed = true
}

// Get last frame stats.
func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()

	stats := r.stats
	stats.Tracers = append([]TracerStat(nil), r.stats.Tracers...)
	return stats
}

func (r *defaultRenderer) State() FrameState {
	r.Lock()
	defer r.Unlock()
	return r.state
}

func (r *defaultRenderer) Frame() *image.RGBA {
	r.Lock()
	defer r.Unlock()
	return r.frame
}

func (r *defaultRenderer) Radiance() []types.Vec4 {
	r.Lock()
	defer r.Unlock()
	if r.output == nil {
		return nil
	}
	return append([]types.Vec4(nil), r.output...)
}

func (r *defaultRenderer) UpdateCamera(cam *scene.Camera) {
	if cam == nil {
		return
	}

	r.Lock()
	defer r.Unlock()
	r.camera = cam
	r.camera.SetupProjection(r.aspect())
	if !r.cameraUploaded || kernel.NewCameraData(cam) != r.uploadedCamera {
		r.resetAccumulation()
	}
}

// Discard accumulated samples. Called with the lock held.
func (r *defaultRenderer) resetAccumulation() {
	r.accumulator.Reset()
	r.state.FramesAccumulated = 0
	r.stats.FramesAccumulated = 0
}

// Force a full scene and camera upload on the next frame.
func (r *defaultRenderer) invalidateUploads() {
	r.uploadedScene = nil
	r.cameraUploaded = false
}

func (r *defaultRenderer) UpdateScene(sc *scene.Scene) error {
	if sc == nil {
		return ErrSceneNotDefined
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()
	if sc != r.uploadedScene || sc.Revision() != r.sceneRevision {
		r.resetAccumulation()
	}
	r.scene = sc
	if sc.Camera != nil {
		r.camera = sc.Camera
		r.camera.SetupProjection(r.aspect())
	}
	return nil
}

func (r *defaultRenderer) SetAccumulate(accumulate bool) {
	r.Lock()
	defer r.Unlock()
	r.options.Accumulate = accumulate
}

func (r *defaultRenderer) Resize(frameW, frameH uint32) error {
	r.Lock()
	defer r.Unlock()

	if r.closed {
		return ErrClosed
	}
	if frameW == r.options.FrameW && frameH == r.options.FrameH {
		return nil
	}
	if err := r.accumulator.Resize(frameW, frameH); err != nil {
		return err
	}

	r.options.FrameW, r.options.FrameH = frameW, frameH
	r.state.FramesAccumulated = 0
	r.stats.FramesAccumulated = 0
	r.allocBuffers()
	r.blockAssignments = nil
	r.camera.SetupProjection(r.aspect())
	for _, tr := range r.tracers {
		if err := tr.Init(frameW, frameH); err != nil {
			return err
		}
	}

	r.logger.Infof("resized frame to %dx%d", frameW, frameH)
	return nil
}

// Push scene and camera changes to the tracers. Any change discards the
// accumulated samples. A scene that fails validation is not sent and no
// upload state is recorded.
func (r *defaultRenderer) syncTracers() error {
	reset := false

	sceneChanged := r.scene != r.uploadedScene || r.scene.Revision() != r.sceneRevision
	if sceneChanged {
		if err := r.scene.Validate(); err != nil {
			return err
		}
		for _, tr := range r.tracers {
			tr.Update(tracer.UpdateScene, r.scene)
		}
		r.uploadedScene = r.scene
		r.sceneRevision = r.scene.Revision()
		reset = true
	}

	camData := kernel.NewCameraData(r.camera)
	if !r.cameraUploaded || camData != r.uploadedCamera {
		for _, tr := range r.tracers {
			tr.Update(tracer.UpdateCamera, camData)
		}
		r.uploadedCamera = camData
		r.cameraUploaded = true
		reset = true
	}

	if reset && r.accumulator.Frames() != 0 {
		r.logger.Debug("scene or camera changed; resetting accumulation buffer")
	}
	if reset {
		r.resetAccumulation()
	}
	return nil
}

func (r *defaultRenderer) frameTime() float32 {
	if r.options.TimeStep > 0 {
		return float32(r.state.FramesRendered+1) * r.options.TimeStep
	}
	return float32(r.options.Clock().Sub(r.startTime).Seconds())
}

// Render the next frame.
func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	r.Lock()
	defer r.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	if err := r.syncTracers(); err != nil {
		return nil, err
	}

	frameTime := r.frameTime()
	start := time.Now()
	if err := r.renderBlocks(ctx, frameTime); err != nil {
		// Tracers may have rejected part of the queued state
		if !errors.Is(err, ErrInterrupted) {
			r.invalidateUploads()
		}
		return nil, err
	}

	out := r.spare
	if err := r.accumulator.Commit(r.samples, r.options.Accumulate, out); err != nil {
		return nil, err
	}
	r.spare, r.output = r.output, out
	if r.spare == nil || len(r.spare) != len(out) {
		r.spare = make([]types.Vec4, len(out))
	}

	r.frame = toneMap(r.output, r.options.FrameW, r.options.FrameH, r.options.Exposure)

	r.state.FramesRendered++
	r.state.FramesAccumulated = r.accumulator.Frames()
	r.state.Time = frameTime
	r.updateStats(time.Since(start))

	return r.frame, nil
}

// Schedule the frame blocks and wait for every tracer to report back.
func (r *defaultRenderer) renderBlocks(ctx context.Context, frameTime float32) error {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	pending := 0
	var blockY uint32
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			Ctx:      ctx,
			FrameW:   r.options.FrameW,
			FrameH:   r.options.FrameH,
			BlockY:   blockY,
			BlockH:   blockH,
			Time:     frameTime,
			Samples:  r.samples,
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockH
		pending++
	}

	// Tracers always reply so waiting for all of them guarantees that no
	// block is still writing to the sample buffer when we return.
	var firstErr error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr == nil {
		return nil
	}

	if errors.Is(firstErr, context.Canceled) || errors.Is(firstErr, context.DeadlineExceeded) || ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrInterrupted, firstErr)
	}
	return firstErr
}

func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats.RenderTime = renderTime
	r.stats.FramesAccumulated = r.accumulator.Frames()
	for idx, tr := range r.tracers {
		trStats := tr.Stats()
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       r.blockAssignments[idx],
			FramePercent: 100.0 * float32(r.blockAssignments[idx]) / float32(r.options.FrameH),
			RenderTime:   trStats.RenderTime,
		}
	}
}
