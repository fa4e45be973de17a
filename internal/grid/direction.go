package grid

import "fmt"

// Direction is one of the four cardinal neighbor directions. North points
// towards increasing y.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every direction in block order.
var Directions = [4]Direction{North, East, South, West}

var offsets = [4][2]int{
	North: {0, 1},
	East:  {1, 0},
	South: {0, -1},
	West:  {-1, 0},
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Offset returns the coordinate delta towards d.
func (d Direction) Offset() (dx, dy int) {
	o := offsets[d%4]
	return o[0], o[1]
}

// Neighbor returns the coordinate next to c in direction d.
func (c Cell) Neighbor(d Direction) Cell {
	dx, dy := d.Offset()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}
