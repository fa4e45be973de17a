// Package grid holds the flat 2D containers used to describe a modular body
// and the per-cell values exchanged with its controller.
package grid

import (
	"fmt"
	"strings"
)

// Grid is a W x H array of optional values indexed by (x, y).
type Grid[T any] struct {
	w, h   int
	values []T
	set    []bool
}

func New[T any](w, h int) Grid[T] {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("grid: negative size %dx%d", w, h))
	}
	return Grid[T]{w: w, h: h, values: make([]T, w*h), set: make([]bool, w*h)}
}

// Like returns an empty grid with the same size as g.
func Like[T, U any](g Grid[U]) Grid[T] {
	return New[T](g.w, g.h)
}

func (g Grid[T]) W() int { return g.w }
func (g Grid[T]) H() int { return g.h }

func (g Grid[T]) Valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

// Get returns the value at (x, y) and whether it is present. Out of grid
// coordinates are reported as absent.
func (g Grid[T]) Get(x, y int) (T, bool) {
	if !g.Valid(x, y) {
		var zero T
		return zero, false
	}
	i := x + y*g.w
	return g.values[i], g.set[i]
}

func (g Grid[T]) Has(x, y int) bool {
	_, ok := g.Get(x, y)
	return ok
}

func (g Grid[T]) Set(x, y int, v T) {
	if !g.Valid(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) outside %dx%d", x, y, g.w, g.h))
	}
	i := x + y*g.w
	g.values[i] = v
	g.set[i] = true
}

func (g Grid[T]) Unset(x, y int) {
	if !g.Valid(x, y) {
		return
	}
	i := x + y*g.w
	var zero T
	g.values[i] = zero
	g.set[i] = false
}

// Clone copies the grid structure; values themselves are copied shallowly.
func (g Grid[T]) Clone() Grid[T] {
	return Grid[T]{
		w:      g.w,
		h:      g.h,
		values: append([]T(nil), g.values...),
		set:    append([]bool(nil), g.set...),
	}
}

// Cell is a coordinate in a grid.
type Cell struct {
	X, Y int
}

// Cells lists the present coordinates in canonical order: rows from y=0
// upwards, x ascending within a row.
func (g Grid[T]) Cells() []Cell {
	out := make([]Cell, 0, len(g.values))
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.set[x+y*g.w] {
				out = append(out, Cell{X: x, Y: y})
			}
		}
	}
	return out
}

func (g Grid[T]) Count() int {
	n := 0
	for _, ok := range g.set {
		if ok {
			n++
		}
	}
	return n
}

// SameShape reports whether g and o have the same size and present cells.
func SameShape[T, U any](g Grid[T], o Grid[U]) bool {
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i := range g.set {
		if g.set[i] != o.set[i] {
			return false
		}
	}
	return true
}

// Map applies fn to every present value.
func Map[T, U any](g Grid[T], fn func(Cell, T) U) Grid[U] {
	out := Like[U](g)
	for _, c := range g.Cells() {
		v, _ := g.Get(c.X, c.Y)
		out.Set(c.X, c.Y, fn(c, v))
	}
	return out
}

func (g Grid[T]) String() string {
	var b strings.Builder
	for y := g.h - 1; y >= 0; y-- {
		for x := 0; x < g.w; x++ {
			if g.set[x+y*g.w] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if y > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
