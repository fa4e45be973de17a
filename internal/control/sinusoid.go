package control

import (
	"fmt"
	"math"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

// PhaseSinusoid is an open-loop controller: each occupied cell follows
// amplitude*sin(2*pi*frequency*t + phase). Its parameters are the phases.
type PhaseSinusoid struct {
	body      grid.Grid[bool]
	cells     []grid.Cell
	amplitude float64
	frequency float64
	phases    []float64
}

func NewPhaseSinusoid(body grid.Grid[bool], amplitude, frequency float64, phases []float64) (*PhaseSinusoid, error) {
	cells := occupiedCells(body)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: body has no occupied cell", nn.ErrInvalidConfiguration)
	}
	p := &PhaseSinusoid{
		body:      body.Clone(),
		cells:     cells,
		amplitude: amplitude,
		frequency: frequency,
		phases:    make([]float64, len(cells)),
	}
	if phases != nil {
		if err := p.SetParams(phases); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PhaseSinusoid) Control(t float64, _ grid.Grid[[]float64]) (grid.Grid[float64], error) {
	out := grid.Like[float64](p.body)
	for i, c := range p.cells {
		out.Set(c.X, c.Y, p.amplitude*math.Sin(2*math.Pi*p.frequency*t+p.phases[i]))
	}
	return out, nil
}

func (p *PhaseSinusoid) Reset() {}

func (p *PhaseSinusoid) Params() []float64 {
	return append([]float64(nil), p.phases...)
}

func (p *PhaseSinusoid) SetParams(params []float64) error {
	if len(params) != len(p.phases) {
		return fmt.Errorf("%w: phases got=%d want=%d", nn.ErrDimensionMismatch, len(params), len(p.phases))
	}
	copy(p.phases, params)
	return nil
}
