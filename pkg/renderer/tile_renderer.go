package renderer

import (
	"context"
	"image"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{ID: id, Bounds: bounds}
}

// NewTileGrid creates a grid of tiles covering the entire image. A tile width
// equal to the image width yields horizontal bands.
func NewTileGrid(width, height, tileWidth, tileHeight int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileWidth - 1) / tileWidth // Ceiling division
	tilesY := (height + tileHeight - 1) / tileHeight

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileWidth
			y0 := tileY * tileHeight
			x1 := min(x0+tileWidth, width) // Don't exceed image bounds
			y1 := min(y0+tileHeight, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}
	return tiles
}

// TileRenderer renders the pixels of individual tiles into a shared framebuffer
type TileRenderer struct {
	tracer  *Tracer
	camera  *Camera
	pattern SamplePattern
}

// NewTileRenderer creates a tile renderer averaging pattern samples per pixel
func NewTileRenderer(tracer *Tracer, camera *Camera, pattern SamplePattern) *TileRenderer {
	return &TileRenderer{tracer: tracer, camera: camera, pattern: pattern}
}

// RenderTileBounds renders every pixel within bounds into img. Distinct bounds
// touch disjoint framebuffer slots, so tiles may render concurrently.
// Cancellation is checked once per row.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, img *image.RGBA) error {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			img.SetRGBA(i, j, tr.samplePixel(i, j).ToRGBA())
		}
	}
	return nil
}

// samplePixel averages the traced colors of every sample in the pattern
func (tr *TileRenderer) samplePixel(i, j int) core.Color {
	sum := core.Color{}
	for _, offset := range tr.pattern {
		ray := tr.camera.GetRay(i, j, offset)
		tr.tracer.Counters.addPrimary()
		sum = sum.Add(tr.tracer.Trace(ray, geometry.NewNearest(), 1.0, 1))
	}
	avg := sum.Scale(1.0 / float64(len(tr.pattern)))
	avg.A = 1
	return avg
}
