package cpu

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/log"
	"github.com/arjpeg/raytracer/tracer"
	"github.com/arjpeg/raytracer/tracer/kernel"
)

// A tracer that evaluates the integrator on the host CPU. Each block is
// split row-wise across a pool of goroutines.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Number of goroutines used for rendering a block.
	workers int

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateMu     sync.Mutex
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Speed estimate.
	speed uint32

	frameW, frameH uint32

	// Uploaded state. Only accessed by the worker goroutine once the
	// worker is running.
	sceneData  *kernel.SceneData
	camera     kernel.CameraData
	hasCamera  bool
	kernelCfg  kernel.Config
	integrator *kernel.PathIntegrator
}

// Create a new cpu tracer using the given number of worker goroutines. If
// workers is <= 0, one worker per logical core is used.
func NewTracer(id string, workers int, pipeline *Pipeline) (*Tracer, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if pipeline == nil {
		pipeline = DefaultPipeline(NoDebug)
	}
	if pipeline.Integrator == nil {
		return nil, fmt.Errorf("cpu tracer: pipeline for %s has no integrator stage", id)
	}

	logger := log.New(fmt.Sprintf("cpu tracer (%s)", id))
	info, err := GetDeviceInfo()
	if err != nil {
		logger.Warningf("could not detect device info; using default speed estimate: %v", err)
	}

	return &Tracer{
		logger:       logger,
		id:           id,
		workers:      workers,
		updateBuffer: make(map[tracer.UpdateType]interface{}),
		blockReqChan: make(chan tracer.BlockRequest, 1),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
		speed:        info.SpeedEstimate(workers),
		kernelCfg:    kernel.PathTracePreset(),
	}, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *Tracer) Speed() uint32 {
	return tr.speed
}

// Get the number of worker goroutines.
func (tr *Tracer) Workers() int {
	return tr.workers
}

// Initialize tracer.
func (tr *Tracer) Init(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("%w: frame dimensions %dx%d", ErrInvalidBlock, frameW, frameH)
	}

	tr.Lock()
	defer tr.Unlock()

	tr.frameW, tr.frameH = frameW, frameH

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	tr.sceneData = nil
	tr.integrator = nil
}

// Enqueue block request.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()
	if !running {
		blockReq.ErrChan <- fmt.Errorf("%w (%s)", ErrTracerBusy, tr.id)
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	default:
		// reject the request if the worker already has a queued block
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- fmt.Errorf("%w (%s)", ErrTracerBusy, tr.id)
	}
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateMu.Lock()
	tr.updateBuffer[updateType] = data
	tr.updateMu.Unlock()
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Upload scene data.
func (tr *Tracer) UploadSceneData(sc *scene.Scene) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	tr.sceneData = kernel.NewSceneData(sc)
	tr.integrator = nil
	tr.logger.Debugf("uploaded %d spheres and %d materials", len(sc.Spheres), len(sc.Materials))
	return nil
}

// Upload camera data.
func (tr *Tracer) UploadCameraData(cam kernel.CameraData) error {
	tr.camera = cam
	tr.hasCamera = true
	return nil
}

// Upload integrator configuration.
func (tr *Tracer) UploadKernelConfig(cfg kernel.Config) error {
	tr.kernelCfg = cfg
	tr.integrator = nil
	tr.logger.Debugf("using %s integrator with %d bounces", cfg.Mode, cfg.MaxBounces)
	return nil
}

// Commit queued changes. Every queued update is applied even if some of
// them fail; the first error is returned.
func (tr *Tracer) commitUpdates() error {
	tr.updateMu.Lock()
	pending := tr.updateBuffer
	tr.updateBuffer = make(map[tracer.UpdateType]interface{})
	tr.updateMu.Unlock()

	var firstErr error
	for updateType, data := range pending {
		var err error
		switch payload := data.(type) {
		case *scene.Scene:
			err = tr.UploadSceneData(payload)
		case kernel.CameraData:
			err = tr.UploadCameraData(payload)
		case *scene.Camera:
			err = tr.UploadCameraData(kernel.NewCameraData(payload))
		case kernel.Config:
			err = tr.UploadKernelConfig(payload)
		default:
			err = fmt.Errorf("%w: %s update with payload %T", ErrUnknownUpdate, updateType, data)
		}

		if err != nil {
			tr.logger.Errorf("could not apply %s update: %v", updateType, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (tr *Tracer) hasPendingUpdates() bool {
	tr.updateMu.Lock()
	defer tr.updateMu.Unlock()
	return len(tr.updateBuffer) != 0
}

// Spawn a go-routine to process block render requests.
func (tr *Tracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}

	closeChan := make(chan struct{})
	tr.closeChan = closeChan
	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				if tr.hasPendingUpdates() {
					err = tr.commitUpdates()
					if err != nil {
						blockReq.ErrChan <- err
						continue
					}
					tr.stats.UpdateTime = time.Since(startTime)
				}

				// Render block and reply with our completion status
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *Tracer) renderBlock(blockReq *tracer.BlockRequest) error {
	var err error

	if tr.sceneData == nil {
		return ErrNoSceneData
	}
	if !tr.hasCamera {
		return ErrNoCameraData
	}
	if err = validateBlock(blockReq); err != nil {
		return err
	}
	if blockReq.Ctx == nil {
		blockReq.Ctx = context.Background()
	}
	if tr.integrator == nil {
		tr.integrator = kernel.NewPathIntegrator(tr.kernelCfg, tr.sceneData)
	}

	// Execute pipeline
	if _, err = tr.pipeline.Integrator(tr, blockReq); err != nil {
		return err
	}
	for _, stage := range tr.pipeline.PostProcess {
		if _, err = stage(tr, blockReq); err != nil {
			return err
		}
	}

	return nil
}

func validateBlock(blockReq *tracer.BlockRequest) error {
	switch {
	case blockReq.FrameW == 0 || blockReq.FrameH == 0:
		return fmt.Errorf("%w: frame dimensions %dx%d", ErrInvalidBlock, blockReq.FrameW, blockReq.FrameH)
	case blockReq.BlockH == 0 || blockReq.BlockY+blockReq.BlockH > blockReq.FrameH:
		return fmt.Errorf("%w: rows %d-%d outside frame height %d", ErrInvalidBlock, blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, blockReq.FrameH)
	case uint64(len(blockReq.Samples)) < uint64(blockReq.FrameW)*uint64(blockReq.FrameH):
		return fmt.Errorf("%w: sample buffer holds %d entries; need %d", ErrInvalidBlock, len(blockReq.Samples), blockReq.FrameW*blockReq.FrameH)
	}
	return nil
}
