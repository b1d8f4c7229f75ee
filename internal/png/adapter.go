package png

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
)

// Adapter converts between PNG streams and bitmaps. An Adapter holds no
// per-call state and is safe for concurrent use.
type Adapter struct {
	Allocator        Allocator
	CompressionLevel png.CompressionLevel

	pool *encoderPool
	open func(name string) (io.ReadCloser, error)
}

func NewAdapter(alloc Allocator, level png.CompressionLevel) *Adapter {
	return &Adapter{
		Allocator:        alloc,
		CompressionLevel: level,
		pool:             &encoderPool{},
	}
}

var DefaultAdapter = NewAdapter(NewHeapAllocator(DefaultAllocLimit), png.DefaultCompression)

func Load(path string, format bitmap.Format, extra ...PipelineStage) (*bitmap.Bitmap, error) {
	return DefaultAdapter.Load(path, format, extra...)
}

func Decode(r io.Reader, format bitmap.Format, extra ...PipelineStage) (*bitmap.Bitmap, error) {
	return DefaultAdapter.Decode(r, format, extra...)
}

func Write(path string, bm *bitmap.Bitmap) error {
	return DefaultAdapter.Write(path, bm)
}

func Encode(w io.Writer, bm *bitmap.Bitmap) error {
	return DefaultAdapter.Encode(w, bm)
}

func Free(bm *bitmap.Bitmap) {
	DefaultAdapter.Free(bm)
}

func (a *Adapter) allocator() Allocator {
	if a.Allocator == nil {
		return DefaultAdapter.Allocator
	}
	return a.Allocator
}

func (a *Adapter) openFile(name string) (io.ReadCloser, error) {
	if a.open != nil {
		return a.open(name)
	}
	return os.Open(name)
}

// Load reads the PNG file at path into a bitmap of the requested format. The
// caller owns the result and must release it with Free.
func (a *Adapter) Load(path string, format bitmap.Format, extra ...PipelineStage) (*bitmap.Bitmap, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}

	f, err := a.openFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return a.decode(bufio.NewReader(f), format, extra)
}

// Decode reads a PNG stream into a bitmap of the requested format. Extra
// stages run on the 8-bit RGB(A) image before alpha is filled or composited.
func (a *Adapter) Decode(r io.Reader, format bitmap.Format, extra ...PipelineStage) (*bitmap.Bitmap, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	return a.decode(r, format, extra)
}

func (a *Adapter) decode(r io.Reader, format bitmap.Format, extra []PipelineStage) (bm *bitmap.Bitmap, err error) {
	alloc := a.allocator()
	var data []byte

	defer func() {
		if rec := recover(); rec != nil {
			bm = nil
			err = fmt.Errorf("%w: aborted: %v", ErrDecode, rec)
		}
		if err != nil && data != nil {
			alloc.Release(data)
		}
	}()

	var header bytes.Buffer
	cfg, err := png.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrDecode, err)
	}

	stages := decodePipeline(format, extra)
	width, height := outputSize(cfg.Width, cfg.Height, stages)
	stride, size, ok := bufferSize(width, height, format)
	if !ok {
		return nil, fmt.Errorf("%w: cannot size a %dx%d %s buffer", ErrCodecInternal, width, height, format)
	}

	data, err = alloc.Alloc(size)
	if err != nil {
		data = nil
		return nil, fmt.Errorf("%w: %w", ErrCodecInternal, err)
	}
	rows := rowTable(data, height, stride)

	img, err := NewPngFromReader(io.MultiReader(&header, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := img.Pipeline(stages...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if img.Bounds.Dx() != width || img.Bounds.Dy() != height {
		return nil, fmt.Errorf("%w: decoded %dx%d image, header promised %dx%d",
			ErrDecode, img.Bounds.Dx(), img.Bounds.Dy(), width, height)
	}

	if err := readRows(img.Img, rows, format); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	bm, err = bitmap.New(width, height, format, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return bm, nil
}

func checkBitmap(bm *bitmap.Bitmap) error {
	if bm == nil {
		return fmt.Errorf("%w: nil bitmap", ErrInvalidFormat)
	}
	if !bm.Format().Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, bm.Format())
	}
	if !bm.Consistent() {
		return fmt.Errorf("%w: %s buffer does not match its dimensions", ErrEncode, bm)
	}
	return nil
}

// Write encodes bm as a PNG file at path. Output is staged in a temporary file
// alongside path and only renamed into place once it is complete, so a failed
// write never leaves a truncated PNG behind.
func (a *Adapter) Write(path string, bm *bitmap.Bitmap) error {
	if err := checkBitmap(bm); err != nil {
		return err
	}

	tmpFile, err := createTemp(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	w := bufio.NewWriter(tmpFile)
	if err := a.encode(w, bm); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrFileOpen, err)
	}

	cleanupTemp = false
	return nil
}

// createTemp opens an empty file next to path. A new file gets the same
// umask-derived mode os.Create would give it; when path already exists the
// temporary file takes over its permission bits.
func createTemp(path string) (*os.File, error) {
	dir, base := filepath.Split(path)
	existing, statErr := os.Stat(path)

	for range 100 {
		name := filepath.Join(dir, fmt.Sprintf(".%s-%d.tmp", base, rand.Uint32()))
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if statErr == nil {
			if err := f.Chmod(existing.Mode().Perm()); err != nil {
				_ = f.Close()
				_ = os.Remove(name)
				return nil, err
			}
		}
		return f, nil
	}
	return nil, fmt.Errorf("no free temporary name for %s", path)
}

// Encode writes bm to w as a PNG stream: RGB bitmaps as colour type RGB and
// RGBA bitmaps as colour type RGBA.
func (a *Adapter) Encode(w io.Writer, bm *bitmap.Bitmap) error {
	if err := checkBitmap(bm); err != nil {
		return err
	}
	return a.encode(w, bm)
}

func (a *Adapter) encode(w io.Writer, bm *bitmap.Bitmap) (err error) {
	alloc := a.allocator()
	var scratch []byte

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: aborted: %v", ErrEncode, rec)
		}
		if scratch != nil {
			alloc.Release(scratch)
		}
	}()

	width, height := bm.Width(), bm.Height()
	_, size, ok := bufferSize(width, height, bitmap.RGBA)
	if !ok {
		return fmt.Errorf("%w: cannot size a %dx%d scratch image", ErrCodecInternal, width, height)
	}
	scratch, err = alloc.Alloc(size)
	if err != nil {
		scratch = nil
		return fmt.Errorf("%w: %w", ErrCodecInternal, err)
	}

	rows := rowTable(bm.Data(), height, bm.Stride())
	img := writeRows(rows, scratch, width, bm.Format())

	enc := &png.Encoder{CompressionLevel: a.CompressionLevel}
	if a.pool != nil {
		enc.BufferPool = a.pool
	}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// Free releases the pixel buffer of a bitmap returned by Load or Decode.
func (a *Adapter) Free(bm *bitmap.Bitmap) {
	if bm == nil {
		return
	}
	if data := bm.Free(); data != nil {
		a.allocator().Release(data)
	}
}
