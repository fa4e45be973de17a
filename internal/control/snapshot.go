package control

import "voxelbrain/internal/nn"

type CellSnapshot struct {
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Function nn.Snapshot `json:"function"`
	Previous []float64   `json:"previous,omitempty"`
	Current  []float64   `json:"current,omitempty"`
	Mask     []bool      `json:"mask,omitempty"`
}

// NetworkSnapshot is a read-only copy of a controller's internals for the
// recording and rendering side.
type NetworkSnapshot struct {
	Kind        string         `json:"kind"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Signals     int            `json:"signals,omitempty"`
	Directional bool           `json:"directional,omitempty"`
	Cells       []CellSnapshot `json:"cells"`
}

func (n *GridNetwork) Snapshot() NetworkSnapshot {
	snap := NetworkSnapshot{
		Kind:        "grid",
		Width:       n.body.W(),
		Height:      n.body.H(),
		Signals:     n.cfg.Signals,
		Directional: n.cfg.Directional,
		Cells:       make([]CellSnapshot, 0, len(n.cells)),
	}
	for _, c := range n.cells {
		snap.Cells = append(snap.Cells, CellSnapshot{
			X:        c.pos.X,
			Y:        c.pos.Y,
			Function: nn.Inspect(c.fn),
			Previous: append([]float64(nil), c.previous...),
			Current:  append([]float64(nil), c.current...),
		})
	}
	return snap
}

func (f *FaultInjector) Snapshot() NetworkSnapshot {
	snap := f.net.Snapshot()
	snap.Kind = "faulty-grid"
	for i := range snap.Cells {
		snap.Cells[i].Mask = append([]bool(nil), f.keep[i]...)
	}
	return snap
}

func (c *Centralized) Snapshot() NetworkSnapshot {
	return NetworkSnapshot{
		Kind:   "centralized",
		Width:  c.body.W(),
		Height: c.body.H(),
		Cells:  []CellSnapshot{{X: -1, Y: -1, Function: nn.Inspect(c.fn)}},
	}
}

// Inspectable controllers expose a NetworkSnapshot.
type Inspectable interface {
	Snapshot() NetworkSnapshot
}

// Inspect walks the wrapper chain starting at c and returns the first
// snapshot found.
func Inspect(c Controller) (NetworkSnapshot, bool) {
	for c != nil {
		if i, ok := c.(Inspectable); ok {
			return i.Snapshot(), true
		}
		w, ok := c.(Wrapper)
		if !ok {
			break
		}
		c = w.Unwrap()
	}
	return NetworkSnapshot{}, false
}
