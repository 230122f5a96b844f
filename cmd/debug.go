package cmd

import (
	"context"

	"github.com/arjpeg/raytracer/renderer"
	"github.com/arjpeg/raytracer/tracer"
	"github.com/arjpeg/raytracer/tracer/cpu"
	"github.com/urfave/cli"
)

// Render a single frame and dump the primary ray hit depth and normals.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts, err := renderOptions(ctx, sc)
	if err != nil {
		return err
	}

	// A single tracer renders the whole frame as one block so each debug
	// stage sees every row.
	pipeline := &cpu.Pipeline{
		Integrator: cpu.SampleIntegrator(),
		PostProcess: []cpu.PipelineStage{
			cpu.DebugPrimaryRayIntersectionDepth(ctx.String("depth-out")),
			cpu.DebugPrimaryRayIntersectionNormals(ctx.String("normals-out")),
		},
	}
	tracers, err := createTracers(1, ctx.Int("workers"), pipeline)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NaiveScheduler(), tracers, opts)
	if err != nil {
		tracers[0].Close()
		return err
	}
	defer r.Close()

	if _, err = r.Render(context.Background()); err != nil {
		logger.Error(err)
		return err
	}

	logger.Noticef("wrote depth image to %s and normal image to %s", ctx.String("depth-out"), ctx.String("normals-out"))
	return nil
}
