package png

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kettek/apng"
	"github.com/rm-hull/png-bitmap/internal/bitmap"
)

// Animate loads each file as an RGBA bitmap and assembles them, in order, into
// an animated PNG that loops forever. Every frame must fit within the first.
func (a *Adapter) Animate(files []string, frameDelay float64) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New("no frames to animate")
	}

	anim := apng.APNG{
		Frames:    make([]apng.Frame, len(files)),
		LoopCount: 0,
	}

	for i, fname := range files {
		bm, err := a.Load(fname, bitmap.RGBA)
		if err != nil {
			return nil, fmt.Errorf("failed to load frame %s: %w", fname, err)
		}
		img := bm.Image()
		a.Free(bm)

		anim.Frames[i] = apng.Frame{
			Image:            img,
			DelayNumerator:   uint16(frameDelay * 1000),
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, anim); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return buf.Bytes(), nil
}

func Animate(files []string, frameDelay float64) ([]byte, error) {
	return DefaultAdapter.Animate(files, frameDelay)
}
