package png

import (
	"image"
	"image/png"
	"io"
)

type PngImage struct {
	Img    image.Image
	Bounds image.Rectangle
}

type PipelineStage interface {
	Process(img *PngImage) error
}

// Sizer is implemented by stages that change the image dimensions, so the
// pixel buffer can be sized before any pixel data is decoded.
type Sizer interface {
	OutputSize(width, height int) (int, int)
}

func NewPngFromReader(r io.Reader) (*PngImage, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return &PngImage{
		Img:    img,
		Bounds: img.Bounds(),
	}, nil
}

func (p *PngImage) Pipeline(stages ...PipelineStage) error {
	for _, stage := range stages {
		if err := stage.Process(p); err != nil {
			return err
		}
		p.Bounds = p.Img.Bounds()
	}
	return nil
}

func outputSize(width, height int, stages []PipelineStage) (int, int) {
	for _, stage := range stages {
		if s, ok := stage.(Sizer); ok {
			width, height = s.OutputSize(width, height)
		}
	}
	return width, height
}
