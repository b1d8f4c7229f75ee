package stage

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/rm-hull/png-bitmap/internal/png"
)

// ParseStages builds a list of stages from a comma separated filter list, for
// example "replace:ffffff:50,blur:1.5,greyscale,resize:64x".
func ParseStages(filters string) ([]png.PipelineStage, error) {
	var stages []png.PipelineStage
	for _, item := range strings.Split(filters, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, args, _ := strings.Cut(item, ":")
		stage, err := parseStage(strings.ToLower(name), args)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", item, err)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func parseStage(name, args string) (png.PipelineStage, error) {
	switch name {
	case "blur":
		sigma, err := strconv.ParseFloat(args, 64)
		if err != nil {
			return nil, err
		}
		return &GaussianBlurStage{Sigma: sigma}, nil

	case "greyscale", "grayscale":
		return &GreyscaleStage{}, nil

	case "resize":
		w, h, ok := strings.Cut(args, "x")
		if !ok {
			return nil, fmt.Errorf("expected WIDTHxHEIGHT, got %q", args)
		}
		width, err := atoiOrZero(w)
		if err != nil {
			return nil, err
		}
		height, err := atoiOrZero(h)
		if err != nil {
			return nil, err
		}
		if width <= 0 && height <= 0 {
			return nil, fmt.Errorf("resize needs a positive width or height")
		}
		return &ResizeStage{Width: width, Height: height}, nil

	case "replace":
		hexColor, tol, ok := strings.Cut(args, ":")
		if !ok {
			return nil, fmt.Errorf("expected RRGGBB:TOLERANCE, got %q", args)
		}
		c, err := parseHexColor(hexColor)
		if err != nil {
			return nil, err
		}
		tolerance, err := strconv.ParseFloat(tol, 64)
		if err != nil {
			return nil, err
		}
		return &ReplaceColorStage{Tolerance: tolerance, Replace: c}, nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseHexColor(s string) (color.Color, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(b) != 3 {
		return nil, fmt.Errorf("expected RRGGBB colour, got %q", s)
	}
	return color.NRGBA{b[0], b[1], b[2], 0xff}, nil
}
