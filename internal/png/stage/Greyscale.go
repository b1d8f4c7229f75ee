package stage

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/rm-hull/png-bitmap/internal/png"
)

type GreyscaleStage struct{}

// Process converts the image to greyscale, keeping each pixel's alpha.
// Luminance is computed on premultiplied colour, so it is scaled back up by
// alpha before being stored.
func (s *GreyscaleStage) Process(p *png.PngImage) error {
	grey := effect.Grayscale(p.Img)
	gb := grey.Bounds()
	out := image.NewNRGBA(p.Bounds)
	for y := p.Bounds.Min.Y; y < p.Bounds.Max.Y; y++ {
		for x := p.Bounds.Min.X; x < p.Bounds.Max.X; x++ {
			_, _, _, a := p.Img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			lum := uint32(grey.GrayAt(gb.Min.X+x-p.Bounds.Min.X, gb.Min.Y+y-p.Bounds.Min.Y).Y)
			lum = min(lum*0xffff/a, 0xff)
			out.SetNRGBA(x, y, color.NRGBA{uint8(lum), uint8(lum), uint8(lum), uint8(a >> 8)})
		}
	}
	p.Img = out
	return nil
}
