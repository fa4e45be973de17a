package episode

import (
	"math"

	"voxelbrain/internal/grid"
)

// SensorSource produces the sensor readings of every occupied cell of body
// at instant t.
type SensorSource interface {
	Read(t float64, body grid.Grid[bool]) grid.Grid[[]float64]
}

// ConstantSensors feeds the same reading to every cell at every instant.
type ConstantSensors struct {
	Values []float64
}

func (s ConstantSensors) Read(_ float64, body grid.Grid[bool]) grid.Grid[[]float64] {
	return fill(body, func(grid.Cell, int) []float64 {
		return append([]float64(nil), s.Values...)
	})
}

// SineSensors emits Sensors readings per cell. Reading k of the i-th occupied
// cell is Amplitude*sin(2*pi*Frequency*t + i*Shift + k*pi/Sensors).
type SineSensors struct {
	Sensors   int
	Amplitude float64
	Frequency float64
	Shift     float64
}

func (s SineSensors) Read(t float64, body grid.Grid[bool]) grid.Grid[[]float64] {
	return fill(body, func(_ grid.Cell, i int) []float64 {
		out := make([]float64, s.Sensors)
		for k := range out {
			phase := float64(i)*s.Shift + float64(k)*math.Pi/float64(s.Sensors)
			out[k] = s.Amplitude * math.Sin(2*math.Pi*s.Frequency*t+phase)
		}
		return out
	})
}

func fill(body grid.Grid[bool], read func(c grid.Cell, i int) []float64) grid.Grid[[]float64] {
	out := grid.Like[[]float64](body)
	i := 0
	for _, c := range body.Cells() {
		if v, _ := body.Get(c.X, c.Y); !v {
			continue
		}
		out.Set(c.X, c.Y, read(c, i))
		i++
	}
	return out
}
