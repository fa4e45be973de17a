package nn

import (
	"math"
	"math/rand"
	"sort"
)

type PruningCriterion string

const (
	PruneByWeight         PruningCriterion = "weight"
	PruneBySignalMean     PruningCriterion = "signal_mean"
	PruneByAbsSignalMean  PruningCriterion = "abs_signal_mean"
	PruneBySignalVariance PruningCriterion = "signal_variance"
	PruneRandom           PruningCriterion = "random"
)

type PruningScope string

const (
	PruneNetwork PruningScope = "network"
	PruneLayer   PruningScope = "layer"
	PruneNeuron  PruningScope = "neuron"
)

type PruningOptions struct {
	// Time is the first instant at which the pruning pass runs.
	Time      float64
	Rate      float64
	Criterion PruningCriterion
	Scope     PruningScope
	Seed      int64
}

func (o PruningOptions) validate() error {
	if o.Rate < 0 || o.Rate > 1 || math.IsNaN(o.Rate) {
		return configError("pruning rate %v outside [0,1]", o.Rate)
	}
	switch o.Criterion {
	case PruneByWeight, PruneBySignalMean, PruneByAbsSignalMean, PruneBySignalVariance, PruneRandom:
	default:
		return configError("unsupported pruning criterion %q", o.Criterion)
	}
	switch o.Scope {
	case PruneNetwork, PruneLayer, PruneNeuron:
	default:
		return configError("unsupported pruning scope %q", o.Scope)
	}
	return nil
}

// PruningMLP is a feedforward network that tracks the signal w*pre carried by
// every non-bias edge and, once, zeroes the least relevant fraction of edges.
type PruningMLP struct {
	act     ActivationFunc
	domain  Domain
	layers  []int
	opts    PruningOptions
	weights [][][]float64
	initial [][][]float64
	values  [][]float64

	count   int
	mean    [][][]float64
	absMean [][][]float64
	m2      [][][]float64
	pruned  [][][]bool
	done    bool
	rng     *rand.Rand
}

func NewPruningMLP(activation Activation, layers []int, params []float64, opts PruningOptions) (*PruningMLP, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	if opts.Criterion == "" {
		opts.Criterion = PruneByWeight
	}
	if opts.Scope == "" {
		opts.Scope = PruneNetwork
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	act, domain, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	p := &PruningMLP{
		act:     act,
		domain:  domain,
		layers:  append([]int(nil), layers...),
		opts:    opts,
		weights: newWeightTensor(layers),
		values:  newActivationValues(layers),
		mean:    newWeightTensor(layers),
		absMean: newWeightTensor(layers),
		m2:      newWeightTensor(layers),
		pruned:  newBoolTensor(layers),
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}
	if params != nil {
		if err := p.SetParams(params); err != nil {
			return nil, err
		}
	} else {
		p.initial = cloneWeights(p.weights)
	}
	return p, nil
}

func (p *PruningMLP) Apply(t float64, input []float64) ([]float64, error) {
	if len(input) != p.InputDim() {
		return nil, dimensionError("input", len(input), p.InputDim())
	}
	forward(p.act, p.weights, input, p.values)
	out := append([]float64(nil), p.values[len(p.values)-1]...)

	p.updateStats()
	if !p.done && t >= p.opts.Time {
		p.prune()
		p.done = true
	}
	return out, nil
}

// updateStats folds the current edge signals into running mean, mean of
// magnitude and Welford variance.
func (p *PruningMLP) updateStats() {
	p.count++
	n := float64(p.count)
	for l, layer := range p.weights {
		upstream := p.values[l]
		for j, row := range layer {
			for k := 1; k < len(row); k++ {
				signal := row[k] * upstream[k-1]
				delta := signal - p.mean[l][j][k]
				p.mean[l][j][k] += delta / n
				p.m2[l][j][k] += delta * (signal - p.mean[l][j][k])
				p.absMean[l][j][k] += (math.Abs(signal) - p.absMean[l][j][k]) / n
			}
		}
	}
}

func (p *PruningMLP) variance(l, j, k int) float64 {
	if p.count == 0 {
		return 0
	}
	return p.m2[l][j][k] / float64(p.count)
}

type edgeRef struct {
	l, j, k int
	score   float64
}

func (p *PruningMLP) prune() {
	groups := make(map[[2]int][]edgeRef)
	order := make([][2]int, 0)
	for l, layer := range p.weights {
		for j, row := range layer {
			for k := 1; k < len(row); k++ {
				key := [2]int{-1, -1}
				switch p.opts.Scope {
				case PruneLayer:
					key = [2]int{l, -1}
				case PruneNeuron:
					key = [2]int{l, j}
				}
				if _, ok := groups[key]; !ok {
					order = append(order, key)
				}
				groups[key] = append(groups[key], edgeRef{l: l, j: j, k: k, score: p.score(l, j, k)})
			}
		}
	}

	for _, key := range order {
		edges := groups[key]
		sort.SliceStable(edges, func(a, b int) bool { return edges[a].score < edges[b].score })
		n := int(math.Floor(p.opts.Rate * float64(len(edges))))
		for _, e := range edges[:n] {
			row := p.weights[e.l][e.j]
			if p.opts.Criterion == PruneBySignalVariance {
				row[0] += p.mean[e.l][e.j][e.k]
			}
			row[e.k] = 0
			p.pruned[e.l][e.j][e.k] = true
		}
	}
}

func (p *PruningMLP) score(l, j, k int) float64 {
	switch p.opts.Criterion {
	case PruneBySignalMean:
		return p.mean[l][j][k]
	case PruneByAbsSignalMean:
		return p.absMean[l][j][k]
	case PruneBySignalVariance:
		return p.variance(l, j, k)
	case PruneRandom:
		return p.rng.Float64()
	default:
		return math.Abs(p.weights[l][j][k])
	}
}

// Pruned reports whether the pruning pass already ran in this episode.
func (p *PruningMLP) Pruned() bool {
	return p.done
}

// Reset restores the last parameters, clears statistics and re-arms pruning.
func (p *PruningMLP) Reset() {
	copyWeights(p.weights, p.initial)
	zeroWeights(p.mean)
	zeroWeights(p.absMean)
	zeroWeights(p.m2)
	for _, layer := range p.pruned {
		for _, row := range layer {
			clear(row)
		}
	}
	for _, layer := range p.values {
		clear(layer)
	}
	p.count = 0
	p.done = false
	p.rng = rand.New(rand.NewSource(p.opts.Seed))
}

// Params returns the weights the network starts every episode with. Pruning
// only changes the runtime weights reported by Weights.
func (p *PruningMLP) Params() []float64 {
	return flattenWeights(p.initial)
}

// Weights returns the runtime weights, pruned edges and folded biases
// included.
func (p *PruningMLP) Weights() []float64 {
	return flattenWeights(p.weights)
}

// SetParams replaces the weights; edges pruned in this episode stay zero.
func (p *PruningMLP) SetParams(params []float64) error {
	if want := CountWeights(p.layers); len(params) != want {
		return dimensionError("params", len(params), want)
	}
	unflattenWeights(p.weights, params)
	p.initial = cloneWeights(p.weights)
	for l, layer := range p.pruned {
		for j, row := range layer {
			for k, pruned := range row {
				if pruned {
					p.weights[l][j][k] = 0
				}
			}
		}
	}
	return nil
}

func (p *PruningMLP) InputDim() int {
	return p.layers[0]
}

func (p *PruningMLP) OutputDim() int {
	return p.layers[len(p.layers)-1]
}

func (p *PruningMLP) Snapshot() Snapshot {
	variance := newWeightTensor(p.layers)
	for l, layer := range variance {
		for j, row := range layer {
			for k := 1; k < len(row); k++ {
				row[k] = p.variance(l, j, k)
			}
		}
	}
	return Snapshot{
		Kind:         "pruning",
		Input:        append([]float64(nil), p.values[0]...),
		InputDomain:  Unbounded(),
		Output:       append([]float64(nil), p.values[len(p.values)-1]...),
		OutputDomain: p.domain,
		Weights:      cloneWeights(p.weights),
		Stats: &EdgeStats{
			Count:    p.count,
			Mean:     cloneWeights(p.mean),
			AbsMean:  cloneWeights(p.absMean),
			Variance: variance,
		},
		Pruned: cloneBools(p.pruned),
	}
}
