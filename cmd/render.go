package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/arjpeg/raytracer/asset/scene"
	"github.com/arjpeg/raytracer/renderer"
	"github.com/arjpeg/raytracer/tracer"
	"github.com/arjpeg/raytracer/tracer/cpu"
	"github.com/arjpeg/raytracer/tracer/kernel"
	"github.com/arjpeg/raytracer/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a progressively refined still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts, err := renderOptions(ctx, sc)
	if err != nil {
		return err
	}

	tracers, err := createTracers(ctx.Int("tracers"), ctx.Int("workers"), cpu.DefaultPipeline(cpu.NoDebug))
	if err != nil {
		return err
	}

	scheduler := tracer.PerfectScheduler()
	if ctx.String("scheduler") == "naive" {
		scheduler = tracer.NaiveScheduler()
	}

	r, err := renderer.NewDefault(sc, scheduler, tracers, opts)
	if err != nil {
		for _, tr := range tracers {
			tr.Close()
		}
		return err
	}
	defer r.Close()

	renderCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if timeout := ctx.Duration("timeout"); timeout > 0 {
		renderCtx, cancel = context.WithTimeout(renderCtx, timeout)
		defer cancel()
	}

	frames := ctx.Int("frames")
	if frames <= 0 {
		frames = 1
	}

	logger.Noticef("rendering %d frame(s)", frames)
	start := time.Now()
	for frame := 0; frame < frames; frame++ {
		if _, err = r.Render(renderCtx); err != nil {
			if !errors.Is(err, renderer.ErrInterrupted) {
				return err
			}
			logger.Warningf("stopping after %d frame(s): %v", frame, err)
			break
		}
		logger.Debugf("frame %d: %d accumulated sample(s)", frame, r.State().FramesAccumulated)
	}
	logger.Noticef("rendered %d frame(s) in %d ms", r.State().FramesRendered, time.Since(start).Nanoseconds()/1000000)

	// Display stats
	displayFrameStats(r.Stats())

	im := r.Frame()
	if im == nil {
		return errors.New("no frame was rendered")
	}
	return writeFrame(ctx.String("out"), im)
}

// Build the render options. Explicit flags override the scene render
// settings which override the defaults.
func renderOptions(ctx *cli.Context, sc *scene.Scene) (renderer.Options, error) {
	opts, err := renderer.DefaultOptions().Apply(sc.Settings)
	if err != nil {
		return opts, err
	}

	if ctx.IsSet("mode") {
		mode, err := kernel.ParseMode(ctx.String("mode"))
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}

	// Modes without an explicit bounce count use their preset
	if !ctx.IsSet("bounces") && sc.Settings.MaxBounces == 0 && opts.Mode == kernel.Lambert {
		opts.NumBounces = kernel.LambertPreset().MaxBounces
	}

	if ctx.IsSet("width") {
		opts.FrameW = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		opts.FrameH = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("bounces") {
		opts.NumBounces = uint32(ctx.Int("bounces"))
	}
	if ctx.IsSet("accumulate") {
		opts.Accumulate = ctx.BoolT("accumulate")
	}
	if ctx.IsSet("sky") {
		if opts.SkyColor, err = parseVec3(ctx.String("sky")); err != nil {
			return opts, fmt.Errorf("sky: %w", err)
		}
	}
	if ctx.IsSet("light-dir") {
		if opts.LightDir, err = parseVec3(ctx.String("light-dir")); err != nil {
			return opts, fmt.Errorf("light-dir: %w", err)
		}
	}
	if ctx.IsSet("exposure") {
		opts.Exposure = float32(ctx.Float64("exposure"))
	}
	if ctx.IsSet("time-step") {
		opts.TimeStep = float32(ctx.Float64("time-step"))
	}

	return opts, opts.Validate()
}

// Create count cpu tracers sharing the available cores.
func createTracers(count, workers int, pipeline *cpu.Pipeline) ([]tracer.Tracer, error) {
	if count <= 0 {
		count = 1
	}
	if workers <= 0 {
		workers = runtime.NumCPU() / count
		if workers == 0 {
			workers = 1
		}
	}

	tracers := make([]tracer.Tracer, 0, count)
	for idx := 0; idx < count; idx++ {
		tr, err := cpu.NewTracer(fmt.Sprintf("cpu-%d", idx), workers, pipeline)
		if err != nil {
			for _, created := range tracers {
				created.Close()
			}
			return nil, err
		}
		logger.Infof(`attached tracer "%s" with %d worker(s)`, tr.Id(), workers)
		tracers = append(tracers, tr)
	}

	return tracers, nil
}

func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected 3 comma separated values; got %q", value)
	}
	for idx, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, fmt.Errorf("invalid component %q: %w", part, err)
		}
		v[idx] = float32(f)
	}
	return v, nil
}

func writeFrame(imgFile string, im image.Image) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, im); err != nil {
		return fmt.Errorf("error encoding png file: %w", err)
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1000000)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d frame(s)", stats.FramesAccumulated), "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
