package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// ErrInvalidAVS is returned when an AVS stream is truncated or its header is implausible
var ErrInvalidAVS = errors.New("invalid AVS image")

// maxAVSDimension bounds the header values ReadAVS accepts
const maxAVSDimension = 1 << 15

// WriteAVS encodes img in the AVS X image format: a big-endian uint32 width and
// height followed by one A, R, G, B byte quadruple per pixel in row-major order.
func WriteAVS(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)

	header := [2]uint32{uint32(bounds.Dx()), uint32(bounds.Dy())}
	if err := binary.Write(bw, binary.BigEndian, header); err != nil {
		return fmt.Errorf("failed to write AVS header: %w", err)
	}

	pixel := make([]byte, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixel[0], pixel[1], pixel[2], pixel[3] = c.A, c.R, c.G, c.B
			if _, err := bw.Write(pixel); err != nil {
				return fmt.Errorf("failed to write AVS pixels: %w", err)
			}
		}
	}
	return bw.Flush()
}

// ReadAVS decodes an AVS X image
func ReadAVS(r io.Reader) (*image.NRGBA, error) {
	br := bufio.NewReader(r)

	var header [2]uint32
	if err := binary.Read(br, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidAVS, err)
	}
	width, height := int(header[0]), int(header[1])
	if width > maxAVSDimension || height > maxAVSDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrInvalidAVS, width, height, maxAVSDimension)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	pixel := make([]byte, 4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if _, err := io.ReadFull(br, pixel); err != nil {
				return nil, fmt.Errorf("%w: pixel (%d, %d): %v", ErrInvalidAVS, x, y, err)
			}
			img.SetNRGBA(x, y, color.NRGBA{A: pixel[0], R: pixel[1], G: pixel[2], B: pixel[3]})
		}
	}
	return img, nil
}
