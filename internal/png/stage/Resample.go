package stage

import (
	"image"

	"github.com/rm-hull/png-bitmap/internal/png"
	"golang.org/x/image/draw"
)

// ResizeStage scales the image with a Catmull-Rom kernel. When only one of
// Width or Height is set the other follows the source aspect ratio.
type ResizeStage struct {
	Width, Height int
}

func (s *ResizeStage) OutputSize(width, height int) (int, int) {
	switch {
	case s.Width > 0 && s.Height > 0:
		return s.Width, s.Height
	case s.Width > 0:
		return s.Width, max(1, height*s.Width/width)
	case s.Height > 0:
		return max(1, width*s.Height/height), s.Height
	}
	return width, height
}

func (s *ResizeStage) Process(p *png.PngImage) error {
	w, h := s.OutputSize(p.Bounds.Dx(), p.Bounds.Dy())
	if w == p.Bounds.Dx() && h == p.Bounds.Dy() {
		return nil
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Rect, p.Img, p.Bounds, draw.Src, nil)
	p.Img = scaled
	return nil
}
