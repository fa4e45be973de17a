package nn

// RecurrentNetwork is a three-layer network whose hidden layer also receives
// its own activation from the previous call.
type RecurrentNetwork struct {
	act     ActivationFunc
	domain  Domain
	inputs  int
	hidden  int
	outputs int
	// hiddenWeights rows: [bias, input weights..., recurrent weights...]
	hiddenWeights [][]float64
	// outputWeights rows: [bias, hidden weights...]
	outputWeights [][]float64
	state         []float64
	next          []float64
	lastInput     []float64
	lastOutput    []float64
}

// RecurrentParamCount returns H*(I+H+1) + O*(H+1).
func RecurrentParamCount(inputs, hidden, outputs int) int {
	return hidden*(inputs+hidden+1) + outputs*(hidden+1)
}

func NewRecurrentNetwork(activation Activation, layers []int, params []float64) (*RecurrentNetwork, error) {
	if len(layers) != 3 {
		return nil, configError("recurrent network needs exactly 3 layers, got %d", len(layers))
	}
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	act, domain, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	r := &RecurrentNetwork{
		act:           act,
		domain:        domain,
		inputs:        layers[0],
		hidden:        layers[1],
		outputs:       layers[2],
		hiddenWeights: make([][]float64, layers[1]),
		outputWeights: make([][]float64, layers[2]),
		state:         make([]float64, layers[1]),
		next:          make([]float64, layers[1]),
		lastInput:     make([]float64, layers[0]),
		lastOutput:    make([]float64, layers[2]),
	}
	for j := range r.hiddenWeights {
		r.hiddenWeights[j] = make([]float64, 1+r.inputs+r.hidden)
	}
	for j := range r.outputWeights {
		r.outputWeights[j] = make([]float64, 1+r.hidden)
	}
	if params != nil {
		if err := r.SetParams(params); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *RecurrentNetwork) Apply(_ float64, input []float64) ([]float64, error) {
	if len(input) != r.inputs {
		return nil, dimensionError("input", len(input), r.inputs)
	}
	for j, row := range r.hiddenWeights {
		total := row[0]
		for i, v := range input {
			total += row[1+i] * v
		}
		for i, v := range r.state {
			total += row[1+r.inputs+i] * v
		}
		r.next[j] = r.act(total)
	}
	r.state, r.next = r.next, r.state

	out := make([]float64, r.outputs)
	for j, row := range r.outputWeights {
		total := row[0]
		for i, v := range r.state {
			total += row[1+i] * v
		}
		out[j] = r.act(total)
	}
	copy(r.lastInput, input)
	copy(r.lastOutput, out)
	return out, nil
}

// Reset clears the carried hidden state.
func (r *RecurrentNetwork) Reset() {
	clear(r.state)
	clear(r.next)
	clear(r.lastInput)
	clear(r.lastOutput)
}

func (r *RecurrentNetwork) Hidden() []float64 {
	return append([]float64(nil), r.state...)
}

func (r *RecurrentNetwork) Params() []float64 {
	out := make([]float64, 0, RecurrentParamCount(r.inputs, r.hidden, r.outputs))
	for _, row := range r.hiddenWeights {
		out = append(out, row...)
	}
	for _, row := range r.outputWeights {
		out = append(out, row...)
	}
	return out
}

func (r *RecurrentNetwork) SetParams(params []float64) error {
	if want := RecurrentParamCount(r.inputs, r.hidden, r.outputs); len(params) != want {
		return dimensionError("params", len(params), want)
	}
	i := 0
	for _, row := range r.hiddenWeights {
		i += copy(row, params[i:])
	}
	for _, row := range r.outputWeights {
		i += copy(row, params[i:])
	}
	return nil
}

func (r *RecurrentNetwork) InputDim() int {
	return r.inputs
}

func (r *RecurrentNetwork) OutputDim() int {
	return r.outputs
}

func (r *RecurrentNetwork) Snapshot() Snapshot {
	weights := [][][]float64{make([][]float64, r.hidden), make([][]float64, r.outputs)}
	for j, row := range r.hiddenWeights {
		weights[0][j] = append([]float64(nil), row...)
	}
	for j, row := range r.outputWeights {
		weights[1][j] = append([]float64(nil), row...)
	}
	return Snapshot{
		Kind:         "recurrent",
		Input:        append([]float64(nil), r.lastInput...),
		InputDomain:  Unbounded(),
		Output:       append([]float64(nil), r.lastOutput...),
		OutputDomain: r.domain,
		Weights:      weights,
		Hidden:       r.Hidden(),
	}
}
