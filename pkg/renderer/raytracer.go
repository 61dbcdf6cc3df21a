package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// ErrPixelOutOfRange is returned when inspecting a pixel outside the image
var ErrPixelOutOfRange = errors.New("pixel out of range")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width      int           // Image width in pixels
	Height     int           // Image height in pixels
	MaxDepth   int           // Deepest level that still spawns reflected and refracted rays
	Pattern    SamplePattern // Sub-pixel sample offsets averaged per pixel
	Workers    int           // Number of bands rendered concurrently (0 = use CPU count)
	TileHeight int           // Rows per band
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:      640,
		Height:     480,
		MaxDepth:   3,
		Pattern:    CenterSample(),
		Workers:    runtime.NumCPU(),
		TileHeight: 16,
	}
}

// withDefaults fills unset fields from DefaultSamplingConfig
func (c SamplingConfig) withDefaults() SamplingConfig {
	d := DefaultSamplingConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	if len(c.Pattern) == 0 {
		c.Pattern = d.Pattern
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.TileHeight <= 0 {
		c.TileHeight = d.TileHeight
	}
	return c
}

// TileProgress reports a finished band
type TileProgress struct {
	Tile      *Tile
	Completed int // Bands finished so far, this one included
	Total     int
}

// Raytracer renders a scene into an RGBA framebuffer
type Raytracer struct {
	scene  *scene.Scene
	config SamplingConfig
	camera *Camera
	logger core.Logger
}

// NewRaytracer creates a raytracer. Zero config fields take their defaults; a nil logger discards output.
func NewRaytracer(s *scene.Scene, config SamplingConfig, logger core.Logger) *Raytracer {
	config = config.withDefaults()
	if logger == nil {
		logger = discardLogger{}
	}
	return &Raytracer{
		scene:  s,
		config: config,
		camera: NewCamera(s.Viewpoint, s.Window, config.Width, config.Height),
		logger: logger,
	}
}

// Config returns the effective sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Render traces every pixel, scheduling horizontal bands across the configured
// number of workers. progress, when non-nil, is called once per finished band,
// never concurrently. A cancelled context aborts the render with its error.
func (rt *Raytracer) Render(ctx context.Context, progress func(TileProgress)) (*image.RGBA, RenderStats, error) {
	start := time.Now()
	width, height := rt.config.Width, rt.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	counters := &RayCounters{}
	tiles := NewTileGrid(width, height, width, rt.config.TileHeight)
	renderer := NewTileRenderer(NewTracer(rt.scene, rt.config.MaxDepth, counters), rt.camera, rt.config.Pattern)

	rt.logger.Printf("Rendering %dx%d, %d objects, %d lights, %d samples/pixel, %d workers\n",
		width, height, rt.scene.GetPrimitiveCount(), len(rt.scene.Lights), len(rt.config.Pattern), rt.config.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.config.Workers)

	var mu sync.Mutex
	completed := 0
	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		tile := tile
		g.Go(func() error {
			if err := renderer.RenderTileBounds(gctx, tile.Bounds, img); err != nil {
				return err
			}
			if progress != nil {
				mu.Lock()
				completed++
				progress(TileProgress{Tile: tile, Completed: completed, Total: len(tiles)})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("render aborted: %w", err)
	}
	// Wait returns nil when cancellation only stopped scheduling
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("render aborted: %w", err)
	}

	stats := RenderStats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: len(rt.config.Pattern),
		Tiles:           len(tiles),
		Elapsed:         time.Since(start),
	}
	counters.fill(&stats)
	rt.logger.Printf("Render completed in %v (%d rays)\n", stats.Elapsed, stats.TotalRays())
	return img, stats, nil
}

// PixelInspection describes what the centre ray of a pixel sees
type PixelInspection struct {
	X, Y     int
	Ray      core.Ray
	Hit      bool
	Kind     string // Primitive variant, empty on a miss
	Point    core.Vec3
	Normal   core.Vec3
	UV       core.Vec2
	Distance float64
	Material material.Material
	Color    core.Color // Shaded color of the centre sample
}

// InspectPixel traces the centre ray of pixel (x, y) and reports the nearest hit
func (rt *Raytracer) InspectPixel(x, y int) (PixelInspection, error) {
	if x < 0 || y < 0 || x >= rt.config.Width || y >= rt.config.Height {
		return PixelInspection{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrPixelOutOfRange, x, y, rt.config.Width, rt.config.Height)
	}

	ray := rt.camera.GetRay(x, y, core.NewVec2(0.5, 0.5))
	tracer := NewTracer(rt.scene, rt.config.MaxDepth, nil)
	result := PixelInspection{X: x, Y: y, Ray: ray}

	hit, ok := rt.scene.FindClosestIntersection(ray, geometry.NewNearest())
	if !ok {
		result.Color = rt.scene.Background
		return result, nil
	}

	result.Hit = true
	result.Kind = geometry.Kind(hit.Object)
	result.Point = hit.Point
	result.Normal = hit.Normal
	result.UV = hit.UV
	result.Distance = hit.Distance
	result.Material = hit.Object.Base().Material
	result.Color = tracer.Shade(ray, hit, 1.0, 1)
	return result, nil
}
