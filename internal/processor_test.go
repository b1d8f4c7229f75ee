package internal

import (
	"image"
	"image/color"
	imgpng "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
	"github.com/rm-hull/png-bitmap/internal/png/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, imgpng.Encode(f, img))
}

func setupInbox(t *testing.T) (string, string) {
	t.Helper()
	inDir, outDir := t.TempDir(), filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0})
		img.SetNRGBA(1, 0, color.NRGBA{10, 20, 30, 255})
		writePNG(t, filepath.Join(inDir, name), img)
	}
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "broken.png"), []byte("nope"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("ignored"), 0644))
	return inDir, outDir
}

func TestProcessor(t *testing.T) {
	inDir, outDir := setupInbox(t)

	p, err := NewProcessor(BatchConfig{InDir: inDir, OutDir: outDir, PoolSize: 2, Format: bitmap.RGB})
	require.NoError(t, err)

	errs := p.Run()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], png.ErrDecode)

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		bm, err := png.Load(filepath.Join(outDir, name), bitmap.RGBA)
		require.NoError(t, err)
		// top row of the source is the last bitmap row
		assert.Equal(t, []byte{255, 255, 255, 255, 10, 20, 30, 255}, bm.Row(1)[:8])
		png.Free(bm)
	}
	_, err = os.Stat(filepath.Join(outDir, "broken.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessorSkipsExisting(t *testing.T) {
	inDir, outDir := setupInbox(t)
	require.NoError(t, os.MkdirAll(outDir, 0755))
	existing := filepath.Join(outDir, "a.png")
	require.NoError(t, os.WriteFile(existing, []byte("already here"), 0644))

	p, err := NewProcessor(BatchConfig{
		InDir:    inDir,
		OutDir:   outDir,
		PoolSize: 1,
		Format:   bitmap.RGBA,
		Stages:   []png.PipelineStage{&stage.GreyscaleStage{}},
	})
	require.NoError(t, err)
	p.Run()

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestProcessorMaxFiles(t *testing.T) {
	inDir, outDir := setupInbox(t)

	p, err := NewProcessor(BatchConfig{InDir: inDir, OutDir: outDir, PoolSize: 2, Format: bitmap.RGBA, MaxFiles: 2})
	require.NoError(t, err)
	assert.Empty(t, p.Run())

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.png", "b.png"}, names)
}

func TestNewProcessorValidation(t *testing.T) {
	_, err := NewProcessor(BatchConfig{InDir: t.TempDir(), PoolSize: 0, Format: bitmap.RGB})
	assert.Error(t, err)

	_, err = NewProcessor(BatchConfig{InDir: t.TempDir(), PoolSize: 1})
	assert.ErrorIs(t, err, png.ErrInvalidFormat)

	_, err = NewProcessor(BatchConfig{InDir: t.TempDir(), PoolSize: 1, Format: bitmap.RGB})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestRunBatch(t *testing.T) {
	assert.NoError(t, RunBatch(BatchConfig{InDir: t.TempDir(), OutDir: t.TempDir(), PoolSize: 1, Format: bitmap.RGB}))

	inDir, outDir := setupInbox(t)
	err := RunBatch(BatchConfig{InDir: inDir, OutDir: outDir, PoolSize: 4, Format: bitmap.RGBA})
	assert.ErrorIs(t, err, png.ErrDecode)
}

func TestNewScheduler(t *testing.T) {
	_, err := NewScheduler(BatchConfig{}, 0)
	assert.Error(t, err)

	inDir, outDir := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(inDir, "only.png"), image.NewGray(image.Rect(0, 0, 2, 2)))

	s, err := NewScheduler(BatchConfig{InDir: inDir, OutDir: outDir, PoolSize: 1, Format: bitmap.RGB}, time.Hour)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, s.Shutdown())
	}()

	_, err = os.Stat(filepath.Join(outDir, "only.png"))
	assert.NoError(t, err, "initial run converts immediately")
}
