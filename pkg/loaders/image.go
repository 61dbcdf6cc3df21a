package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// LoadImage loads a PNG or JPEG image as a texture. Alpha is kept straight
// (not premultiplied) so opacity maps and texture transparency can read it.
func LoadImage(filename string) (*material.Texture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts a decoded image to a texture, row 0 first
func TextureFromImage(img image.Image) *material.Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	texels := make([]core.Color, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			texels[y*width+x] = core.Color{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
				A: float64(c.A) / 255,
			}
		}
	}
	return material.NewTexture(width, height, texels)
}
