package cpu

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjpeg/raytracer/tracer"
	"github.com/arjpeg/raytracer/tracer/kernel"
	"github.com/arjpeg/raytracer/types"
)

// Debug flags.
type DebugFlag uint16

const (
	NoDebug                     DebugFlag = 0
	PrimaryRayIntersectionDepth DebugFlag = 1 << iota
	PrimaryRayIntersectionNormals
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable stages that are used to render a block.
type Pipeline struct {
	// This stage traces one primary ray per pixel and writes a single
	// radiance sample into the block request sample buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed after the
	// integrator.
	PostProcess []PipelineStage
}

func DefaultPipeline(debugFlags DebugFlag) *Pipeline {
	pipeline := &Pipeline{
		Integrator:  SampleIntegrator(),
		PostProcess: make([]PipelineStage, 0),
	}

	if debugFlags&PrimaryRayIntersectionDepth == PrimaryRayIntersectionDepth {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugPrimaryRayIntersectionDepth("debug-primary-intersection-depth.png"))
	}
	if debugFlags&PrimaryRayIntersectionNormals == PrimaryRayIntersectionNormals {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugPrimaryRayIntersectionNormals("debug-primary-intersection-normals.png"))
	}

	return pipeline
}

// Evaluate the integrator once for every pixel of the block.
func SampleIntegrator() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		integrator := tr.integrator
		cam := tr.camera

		err := tr.forEachRow(blockReq, func(y uint32) {
			row := blockReq.Samples[y*blockReq.FrameW : (y+1)*blockReq.FrameW]
			for x := uint32(0); x < blockReq.FrameW; x++ {
				rng := kernel.Seed(x, y, blockReq.FrameW, blockReq.FrameH, blockReq.Time)
				ray := kernel.PrimaryRay(cam, x, y, blockReq.FrameW, blockReq.FrameH)
				row[x] = integrator.Sample(ray, &rng)
			}
		})
		return time.Since(start), err
	}
}

// Dump the primary ray hit distance of the block rows to a grayscale png
// file. Closer hits are brighter; misses are black.
func DebugPrimaryRayIntersectionDepth(imgFile string) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		depth := make([]float32, blockReq.FrameW*blockReq.FrameH)
		var (
			mu       sync.Mutex
			maxDepth float32
		)

		err := tr.forEachRow(blockReq, func(y uint32) {
			var rowMax float32
			for x := uint32(0); x < blockReq.FrameW; x++ {
				hit := kernel.Trace(kernel.PrimaryRay(tr.camera, x, y, blockReq.FrameW, blockReq.FrameH), tr.sceneData.Spheres)
				if hit.Miss() {
					continue
				}
				depth[y*blockReq.FrameW+x] = hit.HitDistance
				if hit.HitDistance > rowMax {
					rowMax = hit.HitDistance
				}
			}
			mu.Lock()
			if rowMax > maxDepth {
				maxDepth = rowMax
			}
			mu.Unlock()
		})
		if err != nil {
			return time.Since(start), err
		}

		scale := maxDepth
		im := image.NewGray(image.Rect(0, 0, int(blockReq.FrameW), int(blockReq.FrameH)))
		for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
			for x := uint32(0); x < blockReq.FrameW; x++ {
				d := depth[y*blockReq.FrameW+x]
				if d <= 0 || scale <= 0 {
					continue
				}
				im.SetGray(int(x), int(y), color.Gray{Y: uint8(255 * (1 - 0.9*d/scale))})
			}
		}

		return time.Since(start), writePNG(imgFile, im)
	}
}

// Dump the primary ray hit normals of the block rows to a png file. Normal
// components are mapped from [-1, 1] to [0, 255].
func DebugPrimaryRayIntersectionNormals(imgFile string) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		im := image.NewRGBA(image.Rect(0, 0, int(blockReq.FrameW), int(blockReq.FrameH)))

		err := tr.forEachRow(blockReq, func(y uint32) {
			for x := uint32(0); x < blockReq.FrameW; x++ {
				hit := kernel.Trace(kernel.PrimaryRay(tr.camera, x, y, blockReq.FrameW, blockReq.FrameH), tr.sceneData.Spheres)
				if hit.Miss() {
					continue
				}
				n := hit.Normal.Add(types.Splat3(1)).Mul(0.5 * 255)
				im.SetRGBA(int(x), int(y), color.RGBA{uint8(n[0]), uint8(n[1]), uint8(n[2]), 255})
			}
		})
		if err != nil {
			return time.Since(start), err
		}

		return time.Since(start), writePNG(imgFile, im)
	}
}

// Split the rows of the block across the tracer workers. Each row is
// processed by exactly one worker. Cancellation is checked between rows.
func (tr *Tracer) forEachRow(blockReq *tracer.BlockRequest, fn func(y uint32)) error {
	ctx := blockReq.Ctx
	endRow := blockReq.BlockY + blockReq.BlockH
	nextRow := blockReq.BlockY

	workers := tr.workers
	if workers > int(blockReq.BlockH) {
		workers = int(blockReq.BlockH)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				if ctx != nil && ctx.Err() != nil {
					return
				}
				y := atomic.AddUint32(&nextRow, 1) - 1
				if y >= endRow {
					return
				}
				fn(y)
			}
		}()
	}
	wg.Wait()

	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%s: block %d-%d abandoned: %w", tr.id, blockReq.BlockY, endRow, ctx.Err())
	}
	return nil
}

func writePNG(imgFile string, im image.Image) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, im)
}
