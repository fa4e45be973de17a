package nn

import "math"

// MLP is a fully connected feedforward network with one activation applied
// to every hidden and output neuron. Inputs are used as given.
type MLP struct {
	activation Activation
	act        ActivationFunc
	domain     Domain
	layers     []int
	weights    [][][]float64
	values     [][]float64
}

// NewMLP builds a network over layers (input first, output last). A nil
// params leaves every weight at zero.
func NewMLP(activation Activation, layers []int, params []float64) (*MLP, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	act, domain, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	if activation == "" {
		activation = ActivationTanh
	}
	m := &MLP{
		activation: activation,
		act:        act,
		domain:     domain,
		layers:     append([]int(nil), layers...),
		weights:    newWeightTensor(layers),
		values:     newActivationValues(layers),
	}
	if params != nil {
		if err := m.SetParams(params); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// InnerLayers computes hidden layer sizes shrinking (or growing) by ratio from
// the input size, each at least 1.
func InnerLayers(inputs, outputs int, ratio float64, depth int) []int {
	layers := make([]int, 0, depth+2)
	layers = append(layers, inputs)
	prev := float64(inputs)
	for i := 0; i < depth; i++ {
		size := int(math.Max(1, math.Round(prev*ratio)))
		layers = append(layers, size)
		prev = float64(size)
	}
	return append(layers, outputs)
}

func NewMLPWithInnerLayers(activation Activation, inputs, outputs int, ratio float64, depth int, params []float64) (*MLP, error) {
	if depth < 0 {
		return nil, configError("negative inner layer count %d", depth)
	}
	return NewMLP(activation, InnerLayers(inputs, outputs, ratio, depth), params)
}

func (m *MLP) Apply(_ float64, input []float64) ([]float64, error) {
	if len(input) != m.InputDim() {
		return nil, dimensionError("input", len(input), m.InputDim())
	}
	forward(m.act, m.weights, input, m.values)
	return append([]float64(nil), m.values[len(m.values)-1]...), nil
}

func (m *MLP) Params() []float64 {
	return flattenWeights(m.weights)
}

func (m *MLP) SetParams(params []float64) error {
	if want := CountWeights(m.layers); len(params) != want {
		return dimensionError("params", len(params), want)
	}
	unflattenWeights(m.weights, params)
	return nil
}

func (m *MLP) InputDim() int {
	return m.layers[0]
}

func (m *MLP) OutputDim() int {
	return m.layers[len(m.layers)-1]
}

func (m *MLP) Layers() []int {
	return append([]int(nil), m.layers...)
}

func (m *MLP) Activation() Activation {
	return m.activation
}

func (m *MLP) Snapshot() Snapshot {
	return Snapshot{
		Kind:         "mlp",
		Input:        append([]float64(nil), m.values[0]...),
		InputDomain:  Unbounded(),
		Output:       append([]float64(nil), m.values[len(m.values)-1]...),
		OutputDomain: m.domain,
		Weights:      cloneWeights(m.weights),
	}
}
