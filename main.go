package main

import (
	"os"

	"github.com/arjpeg/raytracer/cmd"
	"github.com/arjpeg/raytracer/log"
	"github.com/urfave/cli"
)

// Flags shared by the commands that set up a renderer.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:   "width",
			Value:  512,
			Usage:  "frame width",
			EnvVar: "RAYTRACER_WIDTH",
		},
		cli.IntFlag{
			Name:   "height",
			Value:  512,
			Usage:  "frame height",
			EnvVar: "RAYTRACER_HEIGHT",
		},
		cli.IntFlag{
			Name:   "bounces",
			Value:  5,
			Usage:  "max number of bounces per path",
			EnvVar: "RAYTRACER_BOUNCES",
		},
		cli.StringFlag{
			Name:   "mode",
			Value:  "path",
			Usage:  "integrator mode (path or lambert)",
			EnvVar: "RAYTRACER_MODE",
		},
		cli.StringFlag{
			Name:   "sky",
			Value:  "0.6,0.7,0.9",
			Usage:  "sky color as r,g,b",
			EnvVar: "RAYTRACER_SKY",
		},
		cli.StringFlag{
			Name:   "light-dir",
			Value:  "-1,-1,-1",
			Usage:  "light direction as x,y,z (lambert mode)",
			EnvVar: "RAYTRACER_LIGHT_DIR",
		},
		cli.BoolTFlag{
			Name:   "accumulate",
			Usage:  "average samples across frames",
			EnvVar: "RAYTRACER_ACCUMULATE",
		},
		cli.Float64Flag{
			Name:   "exposure",
			Value:  1.0,
			Usage:  "camera exposure for tone-mapping",
			EnvVar: "RAYTRACER_EXPOSURE",
		},
		cli.Float64Flag{
			Name:   "time-step",
			Value:  1.0,
			Usage:  "frame time advance in seconds; 0 uses the wall clock",
			EnvVar: "RAYTRACER_TIME_STEP",
		},
		cli.IntFlag{
			Name:   "workers",
			Value:  0,
			Usage:  "goroutines per tracer; 0 splits the available cores",
			EnvVar: "RAYTRACER_WORKERS",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytracer"
	app.Usage = "render sphere scenes using progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log level (debug, info, notice, warning, error)",
			EnvVar: "RAYTRACER_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile yaml scene descriptions into a binary compressed format",
			Description: `
Parse a scene definition from a yaml file, validate it and write it to a zip
archive next to the source file. The archive can be supplied as an argument
to the render command.`,
			ArgsUsage: "scene_file1.yaml scene_file2.yaml ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics",
			ArgsUsage: "scene_file",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list available cpu devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render a progressively refined frame",
					Description: `
Render a number of progressive frames and write the final image to a png
file. When no scene file is specified the built-in default scene is used.`,
					ArgsUsage: "[scene_file]",
					Flags: append(renderFlags(),
						cli.IntFlag{
							Name:   "frames, f",
							Value:  64,
							Usage:  "number of frames to render",
							EnvVar: "RAYTRACER_FRAMES",
						},
						cli.IntFlag{
							Name:   "tracers",
							Value:  1,
							Usage:  "number of cpu tracers",
							EnvVar: "RAYTRACER_TRACERS",
						},
						cli.StringFlag{
							Name:   "scheduler",
							Value:  "perfect",
							Usage:  "block scheduler (naive or perfect)",
							EnvVar: "RAYTRACER_SCHEDULER",
						},
						cli.DurationFlag{
							Name:   "timeout",
							Usage:  "stop rendering after this duration and keep the last complete frame",
							EnvVar: "RAYTRACER_TIMEOUT",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
			},
		},
		{
			Name:      "debug",
			Usage:     "dump primary ray intersection depth and normals",
			ArgsUsage: "[scene_file]",
			Flags: append(renderFlags(),
				cli.StringFlag{
					Name:  "depth-out",
					Value: "debug-primary-intersection-depth.png",
					Usage: "image filename for the depth dump",
				},
				cli.StringFlag{
					Name:  "normals-out",
					Value: "debug-primary-intersection-normals.png",
					Usage: "image filename for the normals dump",
				},
			),
			Action: cmd.Debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("raytracer").Error(err)
		os.Exit(1)
	}
}
