package stage

import (
	"image"
	"image/color"
	"math"

	"github.com/rm-hull/png-bitmap/internal/png"
)

type ReplaceColorStage struct {
	Tolerance float64
	Replace   color.Color
}

// Process fades pixels close to Replace towards transparency. A pixel exactly
// matching Replace becomes fully transparent; one at the edge of Tolerance
// keeps its alpha.
func (s *ReplaceColorStage) Process(p *png.PngImage) error {
	if s.Tolerance <= 0 {
		return nil
	}
	target := color.NRGBAModel.Convert(s.Replace).(color.NRGBA)
	tR, tG, tB := float64(target.R), float64(target.G), float64(target.B)

	out := image.NewNRGBA(p.Bounds)
	for y := p.Bounds.Min.Y; y < p.Bounds.Max.Y; y++ {
		for x := p.Bounds.Min.X; x < p.Bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(p.Img.At(x, y)).(color.NRGBA)
			dR, dG, dB := tR-float64(c.R), tG-float64(c.G), tB-float64(c.B)
			dist := math.Sqrt(dR*dR + dG*dG + dB*dB)
			if dist < s.Tolerance {
				c.A = uint8(dist / s.Tolerance * float64(c.A))
			}
			out.SetNRGBA(x, y, c)
		}
	}
	p.Img = out
	return nil
}
