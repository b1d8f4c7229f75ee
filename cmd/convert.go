package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
	"github.com/rm-hull/png-bitmap/internal/png/stage"
)

// Inspect loads a PNG and reports the bitmap it normalizes to.
func Inspect(path string, format bitmap.Format) error {
	bm, err := png.Load(path, format)
	if err != nil {
		return err
	}
	defer png.Free(bm)

	fmt.Printf("%s: %dx%d %s, %d bytes/row, %d bytes\n",
		path, bm.Width(), bm.Height(), bm.Format(), bm.Stride(), len(bm.Data()))
	return nil
}

// Convert round-trips a PNG through a bitmap, applying any filters on the way.
func Convert(in, out string, format bitmap.Format, filters string) error {
	stages, err := stage.ParseStages(filters)
	if err != nil {
		return err
	}

	bm, err := png.Load(in, format, stages...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", in, err)
	}
	defer png.Free(bm)

	if err := png.Write(out, bm); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Printf("Converted %s -> %s (%s)", in, out, bm)
	return nil
}

// Raw dumps the bitmap bytes of a PNG, rows bottom-to-top, to out.
func Raw(in, out string, format bitmap.Format) error {
	bm, err := png.Load(in, format)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", in, err)
	}
	defer png.Free(bm)

	if err := os.WriteFile(out, bm.Data(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Printf("Wrote %d bytes of %s to %s", len(bm.Data()), bm, out)
	return nil
}

func Animate(files []string, out string, frameDelay float64) error {
	data, err := png.Animate(files, frameDelay)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0644)
}
