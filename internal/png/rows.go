package png

import (
	"fmt"
	"image"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
)

// codecRow maps row i in PNG order (top-to-bottom) onto the bitmap row that
// holds it (bottom-to-top).
func codecRow(i, height int) int {
	return height - i - 1
}

// rowTable slices data into height rows of stride bytes, indexed in PNG order.
func rowTable(data []byte, height, stride int) [][]byte {
	rows := make([][]byte, height)
	for i := range rows {
		off := codecRow(i, height) * stride
		rows[i] = data[off : off+stride]
	}
	return rows
}

// bufferSize returns the row byte count and total buffer size for a bitmap of
// the given dimensions, or false if it cannot be represented.
func bufferSize(width, height int, format bitmap.Format) (int, int, bool) {
	bpp := format.BytesPerPixel()
	if width <= 0 || height <= 0 || bpp == 0 {
		return 0, 0, false
	}
	stride := width * bpp
	if stride/bpp != width {
		return 0, 0, false
	}
	size := stride * height
	if size/height != stride {
		return 0, 0, false
	}
	return stride, size, true
}

// readRows copies a normalized image into the row table.
func readRows(img image.Image, rows [][]byte, format bitmap.Format) error {
	switch m := img.(type) {
	case *image.NRGBA:
		if format != bitmap.RGBA {
			break
		}
		for i, row := range rows {
			off := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+i)
			copy(row, m.Pix[off:off+len(row)])
		}
		return nil

	case *image.RGBA:
		if format != bitmap.RGB {
			break
		}
		for i, row := range rows {
			src := m.Pix[m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+i):]
			for x := 0; x < len(row)/3; x++ {
				row[x*3+0] = src[x*4+0]
				row[x*3+1] = src[x*4+1]
				row[x*3+2] = src[x*4+2]
			}
		}
		return nil
	}
	return fmt.Errorf("cannot read %T into %s rows", img, format)
}

// alphaNRGBA never reports itself opaque, so the encoder keeps the alpha
// channel and writes colour type RGBA even when every pixel is opaque.
type alphaNRGBA struct {
	*image.NRGBA
}

func (alphaNRGBA) Opaque() bool { return false }

// writeRows copies the row table into pix, which must hold width*height*4
// bytes, and returns it as an image of the colour model matching format.
func writeRows(rows [][]byte, pix []byte, width int, format bitmap.Format) image.Image {
	height := len(rows)
	stride := width * 4
	rect := image.Rect(0, 0, width, height)

	if format == bitmap.RGBA {
		for i, row := range rows {
			copy(pix[i*stride:], row)
		}
		return alphaNRGBA{&image.NRGBA{Pix: pix, Stride: stride, Rect: rect}}
	}

	for i, row := range rows {
		dst := pix[i*stride:]
		for x := range width {
			dst[x*4+0] = row[x*3+0]
			dst[x*4+1] = row[x*3+1]
			dst[x*4+2] = row[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return &image.RGBA{Pix: pix, Stride: stride, Rect: rect}
}
