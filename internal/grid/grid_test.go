package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridGetSet(t *testing.T) {
	g := New[float64](3, 2)
	_, ok := g.Get(1, 1)
	assert.False(t, ok)

	g.Set(1, 1, 2.5)
	v, ok := g.Get(1, 1)
	require.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = g.Get(-1, 0)
	assert.False(t, ok, "out of grid is absent")
	_, ok = g.Get(3, 0)
	assert.False(t, ok)
	assert.Panics(t, func() { g.Set(5, 5, 1) })

	g.Unset(1, 1)
	assert.False(t, g.Has(1, 1))
}

func TestGridCellsCanonicalOrder(t *testing.T) {
	g := New[int](2, 2)
	g.Set(1, 1, 0)
	g.Set(0, 1, 0)
	g.Set(1, 0, 0)
	want := []Cell{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	if diff := cmp.Diff(want, g.Cells()); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, g.Count())
}

func TestGridCloneIsIndependent(t *testing.T) {
	g := New[int](2, 1)
	g.Set(0, 0, 1)
	c := g.Clone()
	c.Set(0, 0, 9)
	c.Set(1, 0, 9)
	v, _ := g.Get(0, 0)
	assert.Equal(t, 1, v)
	assert.False(t, g.Has(1, 0))
}

func TestMapAndSameShape(t *testing.T) {
	body := Biped(4, 2)
	doubled := Map(body, func(c Cell, _ bool) int { return c.X * 2 })
	assert.True(t, SameShape(body, doubled))
	v, ok := doubled.Get(3, 0)
	require.True(t, ok)
	assert.Equal(t, 6, v)
	assert.False(t, SameShape(body, Box(4, 2)))
}

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, West, East.Opposite())
	assert.Equal(t, North, South.Opposite())
	assert.Equal(t, East, West.Opposite())
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		c := Cell{X: 3, Y: 3}
		assert.Equal(t, c, c.Neighbor(d).Neighbor(d.Opposite()))
	}
	assert.Equal(t, Cell{X: 0, Y: 1}, Cell{}.Neighbor(North))
	assert.Equal(t, "W", West.String())
}

func TestShapeLayout(t *testing.T) {
	g, err := Shape("111-101")
	require.NoError(t, err)
	assert.Equal(t, 3, g.W())
	assert.Equal(t, 2, g.H())
	assert.True(t, g.Has(1, 1))
	assert.False(t, g.Has(1, 0))
	assert.Equal(t, "###\n#.#", g.String())

	_, err = Shape("11-1")
	assert.ErrorIs(t, err, ErrUnknownShape)
	_, err = Shape("00-00")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestShapeNamed(t *testing.T) {
	g, err := Shape("worm-5x1")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Count())

	g, err = Shape("biped-4x3")
	require.NoError(t, err)
	assert.Equal(t, 10, g.Count())

	g, err = Shape("tripod-5x2")
	require.NoError(t, err)
	assert.Equal(t, 8, g.Count())
	assert.True(t, g.Has(2, 0))

	_, err = Shape("blob")
	assert.ErrorIs(t, err, ErrUnknownShape)
	_, err = Shape("box-axb")
	assert.ErrorIs(t, err, ErrUnknownShape)
}
