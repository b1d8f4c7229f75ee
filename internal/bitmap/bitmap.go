package bitmap

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Format is the pixel layout of a Bitmap. The zero value is not a valid format.
type Format uint8

const (
	RGB Format = iota + 1
	RGBA
)

var (
	ErrUnknownFormat = errors.New("bitmap: unknown format")
	ErrDimensions    = errors.New("bitmap: invalid dimensions")
)

func (f Format) BytesPerPixel() int {
	switch f {
	case RGB:
		return 3
	case RGBA:
		return 4
	default:
		return 0
	}
}

func (f Format) Valid() bool {
	return f == RGB || f == RGBA
}

func (f Format) String() string {
	switch f {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rgb":
		return RGB, nil
	case "rgba":
		return RGBA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Bitmap holds 8-bit-per-channel pixels in a single contiguous buffer. Rows
// are stored bottom-to-top: row 0 is the visually bottom row.
type Bitmap struct {
	width, height int
	format        Format
	data          []byte
}

// New wraps data as a bitmap and takes ownership of it.
func New(width, height int, format Format, data []byte) (*Bitmap, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	want := width * height * format.BytesPerPixel()
	if want/height/format.BytesPerPixel() != width {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrDimensions, width, height)
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d", ErrDimensions, width, height, format, want, len(data))
	}
	return &Bitmap{width: width, height: height, format: format, data: data}, nil
}

func (b *Bitmap) Width() int     { return b.width }
func (b *Bitmap) Height() int    { return b.height }
func (b *Bitmap) Format() Format { return b.format }
func (b *Bitmap) Data() []byte   { return b.data }

// Stride is the number of bytes in a single row.
func (b *Bitmap) Stride() int {
	return b.width * b.format.BytesPerPixel()
}

// Row returns the bytes of row y, counted from the bottom of the image.
func (b *Bitmap) Row(y int) []byte {
	stride := b.Stride()
	return b.data[y*stride : (y+1)*stride]
}

// Consistent reports whether the buffer still matches the dimensions and
// format, which stops holding once the bitmap has been freed.
func (b *Bitmap) Consistent() bool {
	return b.format.Valid() && b.width > 0 && b.height > 0 && len(b.data) == b.height*b.Stride()
}

// Free detaches the pixel buffer and hands it back to the caller so it can be
// returned to whatever allocated it. Subsequent calls return nil.
func (b *Bitmap) Free() []byte {
	data := b.data
	b.data = nil
	return data
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap(%d,%d,%s)", b.width, b.height, b.format)
}

// Image copies the bitmap into a top-to-bottom, non-premultiplied image.
func (b *Bitmap) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	bpp := b.format.BytesPerPixel()
	for y := range b.height {
		src := b.Row(b.height - y - 1)
		dst := img.Pix[y*img.Stride : y*img.Stride+b.width*4]
		if b.format == RGBA {
			copy(dst, src)
			continue
		}
		for x := range b.width {
			dst[x*4+0] = src[x*bpp+0]
			dst[x*4+1] = src[x*bpp+1]
			dst[x*4+2] = src[x*bpp+2]
			dst[x*4+3] = 0xff
		}
	}
	return img
}
