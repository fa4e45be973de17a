package nn

import "math"

// SelfAttention reads its input as n tokens of width din, mixes the din
// feature channels through a tanh-bounded attention matrix and hands the
// resulting din*n latent code to a downstream network.
type SelfAttention struct {
	n, din, dk int
	// wq and wk are n x dk projections applied to the transposed tokens.
	wq, wk     [][]float64
	downstream *MLP

	lastInput     []float64
	lastAttention [][]float64
	lastOutput    []float64
}

func AttentionParamCount(n, dk int) int {
	return 2 * n * dk
}

func NewSelfAttention(n, din, dk int, attentionParams []float64, downstream *MLP) (*SelfAttention, error) {
	if n < 1 || din < 1 || dk < 1 {
		return nil, configError("attention sizes must be positive: n=%d din=%d dk=%d", n, din, dk)
	}
	if downstream == nil {
		return nil, configError("downstream network is required")
	}
	if downstream.InputDim() != din*n {
		return nil, dimensionError("downstream input", downstream.InputDim(), din*n)
	}
	a := &SelfAttention{
		n:             n,
		din:           din,
		dk:            dk,
		wq:            newMatrix(n, dk),
		wk:            newMatrix(n, dk),
		downstream:    downstream,
		lastInput:     make([]float64, n*din),
		lastAttention: newMatrix(din, din),
		lastOutput:    make([]float64, downstream.OutputDim()),
	}
	if attentionParams != nil {
		if err := a.SetAttentionParams(attentionParams); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func (a *SelfAttention) Apply(t float64, input []float64) ([]float64, error) {
	if len(input) != a.InputDim() {
		return nil, dimensionError("input", len(input), a.InputDim())
	}
	token := func(i, c int) float64 { return input[i*a.din+c] }

	q := newMatrix(a.din, a.dk)
	k := newMatrix(a.din, a.dk)
	for c := 0; c < a.din; c++ {
		for m := 0; m < a.dk; m++ {
			for i := 0; i < a.n; i++ {
				q[c][m] += token(i, c) * a.wq[i][m]
				k[c][m] += token(i, c) * a.wk[i][m]
			}
		}
	}

	scale := math.Sqrt(float64(a.dk))
	for c := 0; c < a.din; c++ {
		for d := 0; d < a.din; d++ {
			dot := 0.0
			for m := 0; m < a.dk; m++ {
				dot += q[c][m] * k[d][m]
			}
			a.lastAttention[c][d] = math.Tanh(dot / scale)
		}
	}

	latent := make([]float64, a.din*a.n)
	for c := 0; c < a.din; c++ {
		for i := 0; i < a.n; i++ {
			total := 0.0
			for d := 0; d < a.din; d++ {
				total += a.lastAttention[c][d] * token(i, d)
			}
			latent[c*a.n+i] = total
		}
	}

	out, err := a.downstream.Apply(t, latent)
	if err != nil {
		return nil, err
	}
	copy(a.lastInput, input)
	copy(a.lastOutput, out)
	return out, nil
}

func (a *SelfAttention) AttentionParams() []float64 {
	out := make([]float64, 0, AttentionParamCount(a.n, a.dk))
	for _, row := range a.wq {
		out = append(out, row...)
	}
	for _, row := range a.wk {
		out = append(out, row...)
	}
	return out
}

func (a *SelfAttention) SetAttentionParams(params []float64) error {
	if want := AttentionParamCount(a.n, a.dk); len(params) != want {
		return dimensionError("attention params", len(params), want)
	}
	i := 0
	for _, row := range a.wq {
		i += copy(row, params[i:])
	}
	for _, row := range a.wk {
		i += copy(row, params[i:])
	}
	return nil
}

func (a *SelfAttention) DownstreamParams() []float64 {
	return a.downstream.Params()
}

func (a *SelfAttention) SetDownstreamParams(params []float64) error {
	return a.downstream.SetParams(params)
}

// Params concatenates the attention projections and the downstream weights.
func (a *SelfAttention) Params() []float64 {
	return append(a.AttentionParams(), a.DownstreamParams()...)
}

func (a *SelfAttention) SetParams(params []float64) error {
	split := AttentionParamCount(a.n, a.dk)
	if want := split + CountWeights(a.downstream.layers); len(params) != want {
		return dimensionError("params", len(params), want)
	}
	if err := a.SetAttentionParams(params[:split]); err != nil {
		return err
	}
	return a.SetDownstreamParams(params[split:])
}

func (a *SelfAttention) InputDim() int {
	return a.n * a.din
}

func (a *SelfAttention) OutputDim() int {
	return a.downstream.OutputDim()
}

func (a *SelfAttention) Snapshot() Snapshot {
	return Snapshot{
		Kind:         "attention",
		Input:        append([]float64(nil), a.lastInput...),
		InputDomain:  Unbounded(),
		Output:       append([]float64(nil), a.lastOutput...),
		OutputDomain: a.downstream.domain,
		Weights:      cloneWeights(a.downstream.weights),
		Attention:    cloneMatrix(a.lastAttention),
		Query:        cloneMatrix(a.wq),
		Key:          cloneMatrix(a.wk),
	}
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
