package grid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownShape = errors.New("unknown body shape")

// Shape builds a body occupancy grid. Named shapes take "name-WxH" (size
// optional for biped and tripod); anything containing only 0, 1 and '-' is a
// textual layout with rows separated by '-' listed top row first.
func Shape(spec string) (Grid[bool], error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return Grid[bool]{}, fmt.Errorf("%w: empty", ErrUnknownShape)
	}
	if strings.Trim(spec, "01-") == "" {
		return parseLayout(spec)
	}

	name, size, _ := strings.Cut(spec, "-")
	switch name {
	case "box":
		w, h, err := parseSize(size, 4, 3)
		if err != nil {
			return Grid[bool]{}, err
		}
		return Box(w, h), nil
	case "worm":
		w, h, err := parseSize(size, 6, 1)
		if err != nil {
			return Grid[bool]{}, err
		}
		return Box(w, h), nil
	case "biped":
		w, h, err := parseSize(size, 4, 3)
		if err != nil {
			return Grid[bool]{}, err
		}
		return Biped(w, h), nil
	case "tripod":
		w, h, err := parseSize(size, 5, 3)
		if err != nil {
			return Grid[bool]{}, err
		}
		return Tripod(w, h), nil
	default:
		return Grid[bool]{}, fmt.Errorf("%w: %s", ErrUnknownShape, spec)
	}
}

func parseSize(size string, defW, defH int) (int, int, error) {
	if size == "" {
		return defW, defH, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("%w: bad size %q", ErrUnknownShape, size)
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: bad size %q", ErrUnknownShape, size)
	}
	return w, h, nil
}

func parseLayout(spec string) (Grid[bool], error) {
	rows := strings.Split(spec, "-")
	w := len(rows[0])
	for _, row := range rows {
		if len(row) != w || w == 0 {
			return Grid[bool]{}, fmt.Errorf("%w: ragged layout %q", ErrUnknownShape, spec)
		}
	}
	h := len(rows)
	g := New[bool](w, h)
	for r, row := range rows {
		y := h - 1 - r
		for x, ch := range row {
			if ch == '1' {
				g.Set(x, y, true)
			}
		}
	}
	if g.Count() == 0 {
		return Grid[bool]{}, fmt.Errorf("%w: no occupied cell in %q", ErrUnknownShape, spec)
	}
	return g, nil
}

func Box(w, h int) Grid[bool] {
	g := New[bool](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, true)
		}
	}
	return g
}

// Biped is a box whose bottom row keeps only the two outer columns.
func Biped(w, h int) Grid[bool] {
	g := Box(w, h)
	if h < 2 {
		return g
	}
	for x := 1; x < w-1; x++ {
		g.Unset(x, 0)
	}
	return g
}

// Tripod is a box whose bottom row keeps the outer and middle columns.
func Tripod(w, h int) Grid[bool] {
	g := Biped(w, h)
	if h >= 2 && w >= 3 {
		g.Set(w/2, 0, true)
	}
	return g
}
