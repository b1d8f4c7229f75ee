package png

import (
	"image"
	"image/color"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"golang.org/x/image/draw"
)

// decodePipeline declares the transforms that reduce any PNG colour type to
// the requested layout. Caller stages run once samples are 8-bit RGB(A).
func decodePipeline(format bitmap.Format, extra []PipelineStage) []PipelineStage {
	stages := []PipelineStage{
		&Strip16Stage{},
		&ExpandPaletteStage{},
		&GrayToRGBStage{},
	}
	stages = append(stages, extra...)
	if format == bitmap.RGBA {
		return append(stages, &FillerStage{})
	}
	return append(stages, &BackgroundStage{Background: color.White})
}

// Strip16Stage reduces 16-bit samples to 8 bits by keeping the high byte.
type Strip16Stage struct{}

func (s *Strip16Stage) Process(p *PngImage) error {
	switch m := p.Img.(type) {
	case *image.Gray16:
		out := image.NewGray(m.Rect)
		for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
			src := m.Pix[m.PixOffset(m.Rect.Min.X, y):]
			dst := out.Pix[out.PixOffset(m.Rect.Min.X, y):]
			for x := 0; x < m.Rect.Dx(); x++ {
				dst[x] = src[x*2]
			}
		}
		p.Img = out

	case *image.NRGBA64:
		out := image.NewNRGBA(m.Rect)
		strip16(out.Pix, out.Stride, m.Pix, m.Stride, m.Rect)
		p.Img = out

	case *image.RGBA64:
		if m.Opaque() {
			// premultiplied and straight alpha agree when every pixel is opaque
			out := image.NewRGBA(m.Rect)
			strip16(out.Pix, out.Stride, m.Pix, m.Stride, m.Rect)
			p.Img = out
			break
		}
		out := image.NewNRGBA(m.Rect)
		for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
			for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
				c := color.NRGBA64Model.Convert(m.RGBA64At(x, y)).(color.NRGBA64)
				out.SetNRGBA(x, y, color.NRGBA{uint8(c.R >> 8), uint8(c.G >> 8), uint8(c.B >> 8), uint8(c.A >> 8)})
			}
		}
		p.Img = out
	}
	return nil
}

func strip16(dst []byte, dstStride int, src []byte, srcStride int, r image.Rectangle) {
	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		d := dst[y*dstStride : y*dstStride+n]
		s := src[y*srcStride:]
		for i := range d {
			d[i] = s[i*2]
		}
	}
}

// ExpandPaletteStage converts indexed colour to direct colour. Palette entries
// carrying transparency become alpha.
type ExpandPaletteStage struct{}

func (s *ExpandPaletteStage) Process(p *PngImage) error {
	m, ok := p.Img.(*image.Paletted)
	if !ok {
		return nil
	}

	var lut [256]color.NRGBA
	for i := range lut {
		lut[i] = color.NRGBA{A: 0xff}
	}
	for i, c := range m.Palette {
		if i >= len(lut) {
			break
		}
		if c != nil {
			lut[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
	}

	out := image.NewNRGBA(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		src := m.Pix[m.PixOffset(m.Rect.Min.X, y):]
		dst := out.Pix[out.PixOffset(m.Rect.Min.X, y):]
		for x := 0; x < m.Rect.Dx(); x++ {
			c := lut[src[x]]
			dst[x*4+0] = c.R
			dst[x*4+1] = c.G
			dst[x*4+2] = c.B
			dst[x*4+3] = c.A
		}
	}
	p.Img = out
	return nil
}

// GrayToRGBStage replicates grayscale samples across the three colour
// channels. Grayscale with alpha or a transparency key already arrives as NRGBA.
type GrayToRGBStage struct{}

func (s *GrayToRGBStage) Process(p *PngImage) error {
	m, ok := p.Img.(*image.Gray)
	if !ok {
		return nil
	}

	out := image.NewRGBA(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		src := m.Pix[m.PixOffset(m.Rect.Min.X, y):]
		dst := out.Pix[out.PixOffset(m.Rect.Min.X, y):]
		for x := 0; x < m.Rect.Dx(); x++ {
			v := src[x]
			dst[x*4+0] = v
			dst[x*4+1] = v
			dst[x*4+2] = v
			dst[x*4+3] = 0xff
		}
	}
	p.Img = out
	return nil
}

// FillerStage produces non-premultiplied RGBA, filling a constant opaque alpha
// byte for sources without one.
type FillerStage struct{}

func (s *FillerStage) Process(p *PngImage) error {
	switch m := p.Img.(type) {
	case *image.NRGBA:
		return nil
	case *image.RGBA:
		if m.Opaque() {
			p.Img = &image.NRGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}
			return nil
		}
	}

	b := p.Img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetNRGBA(x, y, color.NRGBAModel.Convert(p.Img.At(x, y)).(color.NRGBA))
		}
	}
	p.Img = out
	return nil
}

// BackgroundStage composites the image over an opaque background, removing
// alpha. Blending is linear, so a half-transparent pixel lands half way
// between its colour and the background.
type BackgroundStage struct {
	Background color.Color
}

func (s *BackgroundStage) Process(p *PngImage) error {
	bg := s.Background
	if bg == nil {
		bg = color.White
	}

	b := p.Img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, b, p.Img, b.Min, draw.Over)
	p.Img = out
	return nil
}
