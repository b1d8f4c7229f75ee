package png

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimate(t *testing.T) {
	a, alloc, opened := newTestAdapter()

	var files []string
	for i, c := range []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 128}} {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
		for y := range 3 {
			for x := range 4 {
				img.SetNRGBA(x, y, c)
			}
		}
		files = append(files, writeFile(t, encodePNG(t, img)))
		assert.NotEmpty(t, files[i])
	}

	data, err := a.Animate(files, 0.5)
	require.NoError(t, err)
	assert.Contains(t, string(data), "acTL")
	assert.Equal(t, 0, alloc.outstanding(), "frames freed once converted")
	assert.Len(t, *opened, 3)

	first, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), first.Bounds())
	r, g, _, _ := first.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
}

func TestAnimateErrors(t *testing.T) {
	_, err := Animate(nil, 1)
	assert.Error(t, err)

	_, err = Animate([]string{filepath.Join(t.TempDir(), "missing.png")}, 1)
	assert.ErrorIs(t, err, ErrFileOpen)
}
