package cmd

import (
	"image"
	"image/color"
	imgpng "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(0, 0, color.NRGBA{9, 8, 7, 255})
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, imgpng.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestParseCompression(t *testing.T) {
	level, err := ParseCompression("")
	assert.NoError(t, err)
	assert.Equal(t, imgpng.DefaultCompression, level)

	level, err = ParseCompression("BEST")
	assert.NoError(t, err)
	assert.Equal(t, imgpng.BestCompression, level)

	_, err = ParseCompression("max")
	assert.Error(t, err)
}

func TestConfigureAdapter(t *testing.T) {
	saved := png.DefaultAdapter
	defer func() { png.DefaultAdapter = saved }()

	t.Setenv("BITMAP_MAX_BYTES", "16")
	t.Setenv("PNG_COMPRESSION", "fast")
	require.NoError(t, ConfigureAdapter())
	assert.Equal(t, imgpng.BestSpeed, png.DefaultAdapter.CompressionLevel)

	_, err := png.Load(samplePNG(t), bitmap.RGBA)
	assert.ErrorIs(t, err, png.ErrCodecInternal)

	t.Setenv("BITMAP_MAX_BYTES", "lots")
	assert.Error(t, ConfigureAdapter())
}

func TestEnvInt(t *testing.T) {
	t.Setenv("PORT", "9090")
	assert.Equal(t, 9090, EnvInt("PORT", 8080))
	t.Setenv("PORT", "")
	assert.Equal(t, 8080, EnvInt("PORT", 8080))
}

func TestConvertAndRaw(t *testing.T) {
	in := samplePNG(t)
	dir := t.TempDir()

	out := filepath.Join(dir, "out.png")
	require.NoError(t, Convert(in, out, bitmap.RGB, "greyscale"))
	bm, err := png.Load(out, bitmap.RGB)
	require.NoError(t, err)
	assert.Equal(t, 4, bm.Width())
	png.Free(bm)

	raw := filepath.Join(dir, "out.raw")
	require.NoError(t, Raw(in, raw, bitmap.RGBA))
	data, err := os.ReadFile(raw)
	require.NoError(t, err)
	require.Len(t, data, 4*2*4)
	assert.Equal(t, []byte{9, 8, 7, 255}, data[16:20], "source top row is the second bitmap row")

	assert.NoError(t, Inspect(in, bitmap.RGB))
	assert.ErrorIs(t, Inspect(filepath.Join(dir, "missing.png"), bitmap.RGB), png.ErrFileOpen)
	assert.Error(t, Convert(in, out, bitmap.RGB, "nonsense"))
}

func TestAnimateCommand(t *testing.T) {
	in := samplePNG(t)
	out := filepath.Join(t.TempDir(), "anim.png")
	require.NoError(t, Animate([]string{in, in}, out, 0.25))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
