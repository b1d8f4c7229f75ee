package stage

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/rm-hull/png-bitmap/internal/png"
)

type GaussianBlurStage struct {
	Sigma float64
}

// Process applies a Gaussian blur to the image using the specified Sigma value.
// A non-positive Sigma leaves the image unchanged.
func (s *GaussianBlurStage) Process(p *png.PngImage) error {
	if s.Sigma <= 0 {
		return nil
	}
	p.Img = blur.Gaussian(p.Img, s.Sigma)
	return nil
}
