package nn

import "math"

const DefaultLearningRate = 0.01

// HebbianOptions configures the runtime state of a HebbianMLP. Coefficients
// are the optimized parameters; weights only evolve at runtime.
type HebbianOptions struct {
	// InitialWeights in flattened edge order; nil means all zero.
	InitialWeights []float64
	// LearningRates holds one rate per edge; nil uses LearningRate everywhere.
	LearningRates []float64
	LearningRate  float64
	// Normalize rescales each neuron's incoming weights into [-1, 1].
	Normalize bool
}

// HebbianMLP updates every weight after each forward pass with
// dw = eta*(A*post*pre + B*post + C*pre + D). Bias edges use pre = 1.
type HebbianMLP struct {
	act      ActivationFunc
	domain   Domain
	layers   []int
	weights  [][][]float64
	initial  [][][]float64
	coeffs   []float64
	rates    []float64
	values   [][]float64
	learning bool
	norm     bool
}

func NewHebbianMLP(activation Activation, layers []int, coeffs []float64, opts HebbianOptions) (*HebbianMLP, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	act, domain, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	edges := CountWeights(layers)

	h := &HebbianMLP{
		act:      act,
		domain:   domain,
		layers:   append([]int(nil), layers...),
		weights:  newWeightTensor(layers),
		coeffs:   make([]float64, 4*edges),
		rates:    make([]float64, edges),
		values:   newActivationValues(layers),
		learning: true,
		norm:     opts.Normalize,
	}
	if opts.InitialWeights != nil {
		if len(opts.InitialWeights) != edges {
			return nil, dimensionError("initial weights", len(opts.InitialWeights), edges)
		}
		unflattenWeights(h.weights, opts.InitialWeights)
	}
	h.initial = cloneWeights(h.weights)

	switch {
	case opts.LearningRates != nil:
		if len(opts.LearningRates) != edges {
			return nil, dimensionError("learning rates", len(opts.LearningRates), edges)
		}
		copy(h.rates, opts.LearningRates)
	default:
		rate := opts.LearningRate
		if rate == 0 {
			rate = DefaultLearningRate
		}
		for i := range h.rates {
			h.rates[i] = rate
		}
	}

	if coeffs != nil {
		if err := h.SetParams(coeffs); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *HebbianMLP) Apply(_ float64, input []float64) ([]float64, error) {
	if len(input) != h.InputDim() {
		return nil, dimensionError("input", len(input), h.InputDim())
	}
	forward(h.act, h.weights, input, h.values)
	out := append([]float64(nil), h.values[len(h.values)-1]...)
	if h.learning {
		h.learn()
	}
	return out, nil
}

func (h *HebbianMLP) learn() {
	edge := 0
	for l, layer := range h.weights {
		upstream := h.values[l]
		for j, row := range layer {
			post := h.values[l+1][j]
			for k := range row {
				pre := 1.0
				if k > 0 {
					pre = upstream[k-1]
				}
				c := h.coeffs[4*edge : 4*edge+4]
				row[k] += h.rates[edge] * (c[0]*post*pre + c[1]*post + c[2]*pre + c[3])
				edge++
			}
			if h.norm {
				normalizeRow(row)
			}
		}
	}
}

func normalizeRow(row []float64) {
	maxAbs := 0.0
	for _, w := range row {
		maxAbs = math.Max(maxAbs, math.Abs(w))
	}
	if maxAbs <= 1 {
		return
	}
	for k := range row {
		row[k] /= maxAbs
	}
}

func (h *HebbianMLP) SetLearning(enabled bool) {
	h.learning = enabled
}

func (h *HebbianMLP) Learning() bool {
	return h.learning
}

// Reset restores the weights captured at construction.
func (h *HebbianMLP) Reset() {
	copyWeights(h.weights, h.initial)
	for _, layer := range h.values {
		clear(layer)
	}
}

// Weights returns a copy of the current runtime weights in flattened order.
func (h *HebbianMLP) Weights() []float64 {
	return flattenWeights(h.weights)
}

func (h *HebbianMLP) Params() []float64 {
	return append([]float64(nil), h.coeffs...)
}

func (h *HebbianMLP) SetParams(params []float64) error {
	if len(params) != len(h.coeffs) {
		return dimensionError("hebbian coefficients", len(params), len(h.coeffs))
	}
	copy(h.coeffs, params)
	return nil
}

func (h *HebbianMLP) InputDim() int {
	return h.layers[0]
}

func (h *HebbianMLP) OutputDim() int {
	return h.layers[len(h.layers)-1]
}

func (h *HebbianMLP) Snapshot() Snapshot {
	return Snapshot{
		Kind:         "hebbian",
		Input:        append([]float64(nil), h.values[0]...),
		InputDomain:  Unbounded(),
		Output:       append([]float64(nil), h.values[len(h.values)-1]...),
		OutputDomain: h.domain,
		Weights:      cloneWeights(h.weights),
	}
}
