package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/job"
	"github.com/df07/go-bvh-pathtracer/pkg/output"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, renders one image and writes it below the output directory
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	flags.SetOutput(stderr)

	configPath := flags.String("config", "", "YAML file with render settings")
	sceneName := flags.String("scene", "", "Scene: "+strings.Join(scene.Names(), ", "))
	width := flags.Int("width", 0, "Image width")
	height := flags.Int("height", 0, "Image height")
	spp := flags.Int("spp", 0, "Samples per pixel")
	depth := flags.Int("depth", 0, "Maximum bounce depth")
	seed := flags.Uint64("seed", 0, "Base random seed")
	workers := flags.Int("workers", 0, "Parallel workers (0 = one per CPU)")
	integratorName := flags.String("integrator", "", "Integrator: path or roulette")
	minBounces := flags.Int("min-bounces", 0, "Bounces traced before russian roulette starts")
	stopProb := flags.Float64("stop-prob", 0, "Russian roulette termination probability per bounce")
	bvhName := flags.String("bvh", "", "BVH build: object, spatial or none")
	leafSize := flags.Int("leaf", 0, "Override the BVH leaf size")
	toneMap := flags.String("tonemap", "", "Tone mapper: gamma, reinhard or filmic")
	format := flags.String("format", "", "Output format: "+strings.Join(output.Formats, ", "))
	outDir := flags.String("out", "", "Output directory")
	meshPath := flags.String("mesh", "", "STL or PLY model to add at the origin")
	statsPath := flags.String("stats", "", "Write render statistics as JSON to this file ('-' for stdout)")
	dumpConfig := flags.Bool("dump-config", false, "Print the effective configuration as YAML and exit")

	flags.Usage = func() {
		fmt.Fprintln(stderr, "BVH Path Tracer")
		fmt.Fprintln(stderr, "Usage: pathtracer [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		flags.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Output will be saved to <out>/<scene>/render_<timestamp>.<format>")
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	// Flags given on the command line take precedence over the file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = *sceneName
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "spp":
			cfg.SamplesPerPixel = *spp
		case "depth":
			cfg.MaxDepth = *depth
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "integrator":
			cfg.Integrator = *integratorName
		case "min-bounces":
			cfg.MinBounces = *minBounces
		case "stop-prob":
			cfg.StopProbability = *stopProb
		case "bvh":
			cfg.BVH = *bvhName
		case "leaf":
			cfg.LeafSize = *leafSize
		case "tonemap":
			cfg.ToneMap = *toneMap
		case "format":
			cfg.Format = *format
		case "out":
			cfg.OutputDir = *outDir
		case "mesh":
			cfg.Mesh = &config.Mesh{Path: *meshPath}
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *dumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	id := uuid.New()
	log := slog.New(slog.NewTextHandler(stderr, nil)).With("render", id.String(), "scene", cfg.Scene)
	j, err := job.NewWithID(id, cfg, core.NewSlogLogger(log))
	if err != nil {
		return err
	}

	result, err := j.Run(ctx)
	if err != nil {
		return err
	}

	tm, err := output.NewToneMapper(cfg.ToneMap)
	if err != nil {
		return err
	}
	path := j.OutputPath(time.Now())
	if err := output.SaveFile(path, result.Framebuffer, tm); err != nil {
		return err
	}
	log.Info("render saved", "path", path)

	if *statsPath != "" {
		return writeStats(*statsPath, result, stdout)
	}
	return nil
}

func writeStats(path string, result *job.Result, stdout io.Writer) error {
	if path == "-" {
		return result.WriteStats(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create stats file")
	}
	defer file.Close()
	if err := result.WriteStats(file); err != nil {
		return err
	}
	return errors.Wrap(file.Close(), "close stats file")
}
