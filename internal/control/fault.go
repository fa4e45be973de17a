package control

import (
	"fmt"
	"math"
	"math/rand"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

type FaultPattern string

const (
	// FaultRandom breaks individual channels anywhere in the body.
	FaultRandom FaultPattern = "random"
	// FaultDirectional breaks whole per-direction blocks, so an affected
	// cell loses every channel towards one neighbor.
	FaultDirectional FaultPattern = "directional"
)

type FaultConfig struct {
	BreakageTime float64
	Rate         float64
	Pattern      FaultPattern
	Seed         int64
}

// FaultInjector permanently zeroes a fixed set of signal channels of a
// GridNetwork from BreakageTime onward.
type FaultInjector struct {
	net  *GridNetwork
	cfg  FaultConfig
	keep [][]bool
}

func NewFaultInjector(net *GridNetwork, cfg FaultConfig) (*FaultInjector, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: network is required", nn.ErrInvalidConfiguration)
	}
	if cfg.Rate < 0 || cfg.Rate > 1 || math.IsNaN(cfg.Rate) {
		return nil, fmt.Errorf("%w: breakage rate %v outside [0,1]", nn.ErrInvalidConfiguration, cfg.Rate)
	}
	if cfg.Pattern == "" {
		cfg.Pattern = FaultRandom
	}

	channels := 4 * net.Signals()
	keep := make([][]bool, len(net.cells))
	for i := range keep {
		keep[i] = make([]bool, channels)
		for ch := range keep[i] {
			keep[i][ch] = true
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	switch cfg.Pattern {
	case FaultRandom:
		total := len(keep) * channels
		broken := int(math.Round(cfg.Rate * float64(total)))
		for _, idx := range rng.Perm(total)[:broken] {
			keep[idx/channels][idx%channels] = false
		}
	case FaultDirectional:
		// block b covers cell b/4, direction b%4, channels [d*s, (d+1)*s)
		s := net.Signals()
		total := len(keep) * 4
		broken := int(math.Round(cfg.Rate * float64(total)))
		for _, b := range rng.Perm(total)[:broken] {
			cell, d := b/4, b%4
			for ch := d * s; ch < (d+1)*s; ch++ {
				keep[cell][ch] = false
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported fault pattern %q", nn.ErrInvalidConfiguration, cfg.Pattern)
	}

	return &FaultInjector{net: net, cfg: cfg, keep: keep}, nil
}

// Control runs the wrapped round, then zeroes the broken channels of the
// freshly committed signals once breakage has happened.
func (f *FaultInjector) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	out, err := f.net.Control(t, inputs)
	if err != nil {
		return out, err
	}
	if t >= f.cfg.BreakageTime {
		for i, c := range f.net.cells {
			for ch, ok := range f.keep[i] {
				if !ok {
					c.current[ch] = 0
				}
			}
		}
	}
	return out, nil
}

func (f *FaultInjector) Reset() {
	f.net.Reset()
}

func (f *FaultInjector) Unwrap() Controller {
	return f.net
}

func (f *FaultInjector) Params() []float64 {
	return f.net.Params()
}

func (f *FaultInjector) SetParams(params []float64) error {
	return f.net.SetParams(params)
}

// Mask returns the keep mask of the cell at (x, y); false marks a broken
// channel.
func (f *FaultInjector) Mask(x, y int) ([]bool, bool) {
	i, ok := f.net.index.Get(x, y)
	if !ok {
		return nil, false
	}
	return append([]bool(nil), f.keep[i]...), true
}

// Broken counts broken channels over the whole body.
func (f *FaultInjector) Broken() int {
	n := 0
	for _, cell := range f.keep {
		for _, ok := range cell {
			if !ok {
				n++
			}
		}
	}
	return n
}

func (f *FaultInjector) Network() *GridNetwork {
	return f.net
}
