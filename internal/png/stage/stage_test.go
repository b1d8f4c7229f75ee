package stage

import (
	"bytes"
	"image"
	"image/color"
	imgpng "image/png"
	"testing"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *png.PngImage {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return &png.PngImage{Img: img, Bounds: img.Bounds()}
}

func TestGaussianBlurStage(t *testing.T) {
	p := solid(4, 4, color.NRGBA{10, 20, 30, 255})
	before := p.Img

	assert.NoError(t, (&GaussianBlurStage{Sigma: 0}).Process(p))
	assert.Same(t, before, p.Img)

	assert.NoError(t, (&GaussianBlurStage{Sigma: 1.0}).Process(p))
	assert.Equal(t, image.Rect(0, 0, 4, 4), p.Img.Bounds())
}

func TestGreyscaleStage(t *testing.T) {
	p := solid(2, 2, color.NRGBA{200, 100, 50, 255})
	p.Img.(*image.NRGBA).SetNRGBA(1, 1, color.NRGBA{0, 0, 0, 0})

	require.NoError(t, (&GreyscaleStage{}).Process(p))
	out := p.Img.(*image.NRGBA)

	c := out.NRGBAAt(0, 0)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(1, 1))
}

func TestResizeStage(t *testing.T) {
	tests := []struct {
		stage ResizeStage
		wantW int
		wantH int
	}{
		{ResizeStage{Width: 4, Height: 2}, 4, 2},
		{ResizeStage{Width: 4}, 4, 2},
		{ResizeStage{Height: 4}, 8, 4},
		{ResizeStage{}, 8, 4},
	}
	for _, tt := range tests {
		w, h := tt.stage.OutputSize(8, 4)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)

		p := solid(8, 4, color.NRGBA{0, 0, 255, 255})
		require.NoError(t, tt.stage.Process(p))
		assert.Equal(t, image.Rect(0, 0, tt.wantW, tt.wantH), p.Img.Bounds())
	}
}

func TestReplaceColorStage(t *testing.T) {
	p := solid(3, 1, color.NRGBA{255, 255, 255, 255})
	img := p.Img.(*image.NRGBA)
	img.SetNRGBA(1, 0, color.NRGBA{235, 255, 255, 255})
	img.SetNRGBA(2, 0, color.NRGBA{0, 0, 0, 255})

	require.NoError(t, (&ReplaceColorStage{Tolerance: 40, Replace: color.White}).Process(p))
	out := p.Img.(*image.NRGBA)

	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(127), out.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(2, 0).A)
}

func TestParseStages(t *testing.T) {
	stages, err := ParseStages("replace:#ffffff:50, blur:1.5,greyscale,resize:64x")
	require.NoError(t, err)
	require.Len(t, stages, 4)
	assert.Equal(t, &ReplaceColorStage{Tolerance: 50, Replace: color.NRGBA{255, 255, 255, 255}}, stages[0])
	assert.Equal(t, &GaussianBlurStage{Sigma: 1.5}, stages[1])
	assert.Equal(t, &GreyscaleStage{}, stages[2])
	assert.Equal(t, &ResizeStage{Width: 64}, stages[3])

	stages, err = ParseStages("")
	assert.NoError(t, err)
	assert.Empty(t, stages)

	for _, bad := range []string{"sharpen", "blur:x", "resize:64", "resize:x", "replace:fff:1", "replace:ffffff"} {
		_, err := ParseStages(bad)
		assert.Error(t, err, bad)
	}
}

func TestResizeDuringDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imgpng.Encode(&buf, solid(8, 4, color.NRGBA{0, 255, 0, 255}).Img))

	bm, err := png.Decode(&buf, bitmap.RGB, &ResizeStage{Width: 4})
	require.NoError(t, err)
	defer png.Free(bm)

	assert.Equal(t, 4, bm.Width())
	assert.Equal(t, 2, bm.Height())
	assert.Len(t, bm.Data(), 4*2*3)
}
