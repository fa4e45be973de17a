package nn

import (
	"encoding/json"
	"math"
)

// Function maps an input vector to an output vector of fixed dimensions.
// Apply depends only on t, the input and the function's own state.
type Function interface {
	Apply(t float64, input []float64) ([]float64, error)
	Params() []float64
	SetParams(params []float64) error
	InputDim() int
	OutputDim() int
}

// Resettable is implemented by functions carrying per-episode state.
type Resettable interface {
	Reset()
}

// Inspectable exposes read-only internals for recording and rendering.
type Inspectable interface {
	Snapshot() Snapshot
}

// Domain is a closed numeric range; either bound may be infinite.
type Domain struct {
	Min float64
	Max float64
}

func Unbounded() Domain {
	return Domain{Min: math.Inf(-1), Max: math.Inf(1)}
}

func (d Domain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// MarshalJSON encodes infinite bounds as null since JSON has no infinity.
func (d Domain) MarshalJSON() ([]byte, error) {
	bound := func(v float64) *float64 {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}{Min: bound(d.Min), Max: bound(d.Max)})
}

// EdgeStats holds running statistics of the signal carried by each edge,
// indexed like the weight tensor. Bias slots stay zero.
type EdgeStats struct {
	Count    int           `json:"count"`
	Mean     [][][]float64 `json:"mean"`
	AbsMean  [][][]float64 `json:"abs_mean"`
	Variance [][][]float64 `json:"variance"`
}

// Snapshot is a deep copy of a function's observable state after its last
// Apply call.
type Snapshot struct {
	Kind         string        `json:"kind"`
	Input        []float64     `json:"input"`
	InputDomain  Domain        `json:"input_domain"`
	Output       []float64     `json:"output"`
	OutputDomain Domain        `json:"output_domain"`
	Weights      [][][]float64 `json:"weights,omitempty"`
	Hidden       []float64     `json:"hidden,omitempty"`
	Attention    [][]float64   `json:"attention,omitempty"`
	// Query and Key are the token projections of an attention block.
	Query [][]float64 `json:"query,omitempty"`
	Key   [][]float64 `json:"key,omitempty"`
	Stats        *EdgeStats    `json:"stats,omitempty"`
	Pruned       [][][]bool    `json:"pruned,omitempty"`
}

// Inspect returns fn's snapshot, or a dimension-only snapshot when fn does
// not expose internals.
func Inspect(fn Function) Snapshot {
	if inspectable, ok := fn.(Inspectable); ok {
		return inspectable.Snapshot()
	}
	return Snapshot{
		Kind:         "opaque",
		Input:        make([]float64, fn.InputDim()),
		InputDomain:  Unbounded(),
		Output:       make([]float64, fn.OutputDim()),
		OutputDomain: Unbounded(),
	}
}

// ResetIfSupported resets fn when it carries episode state.
func ResetIfSupported(fn Function) {
	if resettable, ok := fn.(Resettable); ok {
		resettable.Reset()
	}
}
