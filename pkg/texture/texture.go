// Package texture decodes image files into raster content for patch
// texturing. PNG, JPEG and GIF come from the standard library decoders;
// BMP, TIFF and WebP are registered from golang.org/x/image.
package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrOpen is returned when the texture file cannot be opened.
	ErrOpen = errors.New("texture: open failure")

	// ErrDecodeFailure is returned when the file content is not a
	// decodable image.
	ErrDecodeFailure = errors.New("texture: decode failure")
)

// Decoder turns a file path into raster content.
type Decoder interface {
	Decode(path string) (*Raster, error)
}

// Raster is decoded, non-premultiplied RGBA content, 4 bytes per pixel,
// rows packed without padding.
type Raster struct {
	img    *image.NRGBA
	Format string // decoder name, e.g. "png"
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.img.Rect.Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.img.Rect.Dy() }

// Bits returns the packed RGBA bytes, first row first.
func (r *Raster) Bits() []byte { return r.img.Pix }

// Image returns the raster as a standard image.
func (r *Raster) Image() image.Image { return r.img }

// FileDecoder reads images from the filesystem.
type FileDecoder struct {
	// FlipY stores the bottom row first, matching the texture-coordinate
	// origin of OpenGL style renderers.
	FlipY bool
}

// Decode implements Decoder.
func (d FileDecoder) Decode(path string) (*Raster, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()
	return d.DecodeReader(f)
}

// DecodeReader decodes raster content from r.
func (d FileDecoder) DecodeReader(r io.Reader) (*Raster, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrDecodeFailure, format)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Rect, src, b.Min, xdraw.Src)
	if d.FlipY {
		flipRows(dst)
	}
	return &Raster{img: dst, Format: format}, nil
}

func flipRows(img *image.NRGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bot := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}
