package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	pngbitmap "github.com/rm-hull/png-bitmap/internal/png"
)

var envPrefixes = []string{"BITMAP_", "PNG_", "PORT", "GIN_"}

var compressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"fast":    png.BestSpeed,
	"best":    png.BestCompression,
}

// ConfigureAdapter replaces the default adapter with one built from the
// BITMAP_MAX_BYTES and PNG_COMPRESSION environment variables.
func ConfigureAdapter() error {
	limit := pngbitmap.DefaultAllocLimit
	if v := os.Getenv("BITMAP_MAX_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BITMAP_MAX_BYTES %q: %w", v, err)
		}
		limit = n
	}

	level, err := ParseCompression(os.Getenv("PNG_COMPRESSION"))
	if err != nil {
		return err
	}

	pngbitmap.DefaultAdapter = pngbitmap.NewAdapter(pngbitmap.NewHeapAllocator(limit), level)
	return nil
}

func ParseCompression(s string) (png.CompressionLevel, error) {
	if s == "" {
		return png.DefaultCompression, nil
	}
	level, ok := compressionLevels[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown compression level %q (want default, none, fast or best)", s)
	}
	return level, nil
}

func EnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
