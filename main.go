package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName string
	file      string
	width     int
	height    int
	depth     int
	samples   string
	workers   int
	format    string
	output    string
	watch     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.sceneName, "scene", "default", "Built-in scene: "+strings.Join(scene.BuiltinNames(), ", "))
	flag.StringVar(&opts.file, "file", "", "JSON scene file (overrides -scene)")
	flag.IntVar(&opts.width, "width", 640, "Image width in pixels")
	flag.IntVar(&opts.height, "height", 480, "Image height in pixels")
	flag.IntVar(&opts.depth, "depth", 3, "Maximum reflection/refraction depth")
	flag.StringVar(&opts.samples, "samples", "center", "Sample pattern: "+strings.Join(renderer.PatternNames(), ", "))
	flag.IntVar(&opts.workers, "workers", 0, "Concurrent render workers (0 = CPU count)")
	flag.StringVar(&opts.format, "format", "png", "Output format: png or avs")
	flag.StringVar(&opts.output, "output", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	flag.BoolVar(&opts.watch, "watch", false, "Re-render when the scene file or its images change (requires -file)")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Whitted Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, renderer.NewDefaultLogger()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders once, then keeps re-rendering on file changes when watching
func run(ctx context.Context, opts options, logger core.Logger) error {
	if err := validateOptions(opts); err != nil {
		return err
	}

	files, err := renderOnce(ctx, opts, logger)
	if err != nil || !opts.watch {
		return err
	}

	watcher, err := loaders.NewWatcher(loaders.DefaultDebounce, files...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	logger.Printf("Watching %d files for changes (Ctrl+C to stop)\n", len(files))
	return watcher.Run(ctx, func(path string) {
		logger.Printf("%s changed, re-rendering...\n", path)
		latest, err := renderOnce(ctx, opts, logger)
		if err != nil {
			logger.Printf("Error: %v\n", err)
			return
		}
		if len(latest) != len(files) {
			logger.Printf("Warning: scene now references %d files; restart to watch new images\n", len(latest))
		}
	})
}

func validateOptions(opts options) error {
	if opts.format != "png" && opts.format != "avs" {
		return fmt.Errorf("unknown format %q (want png or avs)", opts.format)
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", opts.width, opts.height)
	}
	if opts.depth < 0 {
		return fmt.Errorf("depth must not be negative, got %d", opts.depth)
	}
	if opts.watch && opts.file == "" {
		return errors.New("-watch requires -file")
	}
	return nil
}

// renderOnce loads, renders and saves the scene, returning the files it was built from
func renderOnce(ctx context.Context, opts options, logger core.Logger) ([]string, error) {
	pattern, err := renderer.ParsePattern(opts.samples)
	if err != nil {
		return nil, err
	}

	s, files, err := createScene(opts.sceneName, opts.file)
	if err != nil {
		return nil, err
	}

	raytracer := renderer.NewRaytracer(s, renderer.SamplingConfig{
		Width:    opts.width,
		Height:   opts.height,
		MaxDepth: opts.depth,
		Pattern:  pattern,
		Workers:  opts.workers,
	}, logger)

	img, stats, err := raytracer.Render(ctx, nil)
	if err != nil {
		return files, err
	}

	filename := outputPath(opts, time.Now())
	if err := writeImage(filename, opts.format, img); err != nil {
		return files, err
	}

	printStats(os.Stdout, stats)
	logger.Printf("Render saved as %s\n", filename)
	return files, nil
}

// createScene builds a built-in scene by name, or loads file when it is set
func createScene(name, file string) (*scene.Scene, []string, error) {
	if file != "" {
		return loaders.LoadSceneFiles(file)
	}
	s, err := scene.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

// outputPath returns the explicit -output path or a timestamped one under output/
func outputPath(opts options, now time.Time) string {
	if opts.output != "" {
		return opts.output
	}
	base := opts.sceneName
	if opts.file != "" {
		base = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	}
	name := fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), opts.format)
	return filepath.Join("output", base, name)
}

func writeImage(filename, format string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	switch format {
	case "avs":
		err = loaders.WriteAVS(file, img)
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return fmt.Errorf("error saving %s: %w", strings.ToUpper(format), err)
	}
	return file.Close()
}

func printStats(w io.Writer, stats renderer.RenderStats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Rendered %dx%d (%d pixels, %d samples/pixel) in %v\n",
		stats.Width, stats.Height, stats.TotalPixels(), stats.SamplesPerPixel, stats.Elapsed.Round(time.Millisecond))
	p.Fprintf(w, "Rays: %d primary, %d shadow, %d reflected, %d refracted\n",
		stats.PrimaryRays, stats.ShadowRays, stats.ReflectedRays, stats.RefractedRays)
	p.Fprintf(w, "Throughput: %.0f rays/s\n", stats.RaysPerSecond())
}
