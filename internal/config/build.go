package config

import (
	"fmt"
	"math/rand"

	"voxelbrain/internal/control"
	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

// Build assembles body, per-cell functions, optional fault injection and
// optional temporal shaping, then applies the configured parameters.
func (c Config) Build() (control.Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	body, err := grid.Shape(c.Body)
	if err != nil {
		return nil, err
	}

	var ctrl control.Controller
	switch c.Controller.Kind {
	case ControllerDistributed:
		net, err := control.NewGridNetwork(body, control.GridNetworkConfig{
			Sensors:     c.Sensors,
			Signals:     c.Controller.Signals,
			Directional: c.Controller.Directional,
			Homogeneous: c.Controller.Homogeneous,
			Factory:     c.Controller.Function.Factory(),
		})
		if err != nil {
			return nil, err
		}
		ctrl = net
		if c.Fault != nil {
			ctrl, err = control.NewFaultInjector(net, control.FaultConfig{
				BreakageTime: c.Fault.BreakageTime,
				Rate:         c.Fault.Rate,
				Pattern:      c.Fault.Pattern,
				Seed:         c.Fault.Seed,
			})
			if err != nil {
				return nil, err
			}
		}
	case ControllerCentralized:
		ctrl, err = control.NewCentralized(body, c.Sensors, c.Controller.Function.Factory())
		if err != nil {
			return nil, err
		}
	case ControllerSinusoid:
		ctrl, err = control.NewPhaseSinusoid(body, c.Controller.Sinusoid.Amplitude, c.Controller.Sinusoid.Frequency, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := c.applyParams(ctrl); err != nil {
		return nil, err
	}

	if c.Shaper != nil {
		switch c.Shaper.Kind {
		case ShaperDiscontinuous:
			ctrl, err = control.NewDiscontinuous(ctrl, c.Shaper.Interval, c.Shaper.Mode)
		case ShaperSmoothed:
			ctrl, err = control.NewSmoothed(ctrl, c.Shaper.Speed)
		case ShaperStep:
			ctrl, err = control.NewStep(ctrl, c.Shaper.StepT)
		}
		if err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

func (c Config) applyParams(ctrl control.Controller) error {
	if len(c.Params) > 0 {
		return control.SetParams(ctrl, c.Params)
	}
	if c.Init != InitRandom {
		return nil
	}
	current, err := control.Params(ctrl)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(c.Seed))
	params := make([]float64, len(current))
	for i := range params {
		params[i] = rng.Float64()*2 - 1
	}
	return control.SetParams(ctrl, params)
}

// Layers resolves the layer sizes of a layered function with the given
// input and output sizes.
func (f FunctionConfig) Layers(inputs, outputs int) []int {
	if len(f.Hidden) > 0 {
		layers := append([]int{inputs}, f.Hidden...)
		return append(layers, outputs)
	}
	if f.Depth > 0 && f.InnerRatio > 0 {
		return nn.InnerLayers(inputs, outputs, f.InnerRatio, f.Depth)
	}
	return []int{inputs, outputs}
}

// Factory returns a constructor of the configured function.
func (f FunctionConfig) Factory() control.FunctionFactory {
	return func(inputs, outputs int) (nn.Function, error) {
		switch f.Kind {
		case FunctionMLP:
			return nn.NewMLP(f.Activation, f.Layers(inputs, outputs), nil)
		case FunctionHebbian:
			return nn.NewHebbianMLP(f.Activation, f.Layers(inputs, outputs), nil, nn.HebbianOptions{
				LearningRate: f.Hebbian.LearningRate,
				Normalize:    f.Hebbian.Normalize,
			})
		case FunctionPruning:
			return nn.NewPruningMLP(f.Activation, f.Layers(inputs, outputs), nil, nn.PruningOptions{
				Time:      f.Pruning.Time,
				Rate:      f.Pruning.Rate,
				Criterion: f.Pruning.Criterion,
				Scope:     f.Pruning.Scope,
				Seed:      f.Pruning.Seed,
			})
		case FunctionRecurrent:
			hidden := inputs
			if len(f.Hidden) > 0 {
				if len(f.Hidden) != 1 {
					return nil, fmt.Errorf("%w: recurrent network takes one hidden layer, got %d", nn.ErrInvalidConfiguration, len(f.Hidden))
				}
				hidden = f.Hidden[0]
			}
			return nn.NewRecurrentNetwork(f.Activation, []int{inputs, hidden, outputs}, nil)
		case FunctionAttention:
			return f.attention(inputs, outputs)
		default:
			return nil, fmt.Errorf("%w: unsupported function kind %q", nn.ErrInvalidConfiguration, f.Kind)
		}
	}
}

func (f FunctionConfig) attention(inputs, outputs int) (nn.Function, error) {
	tokens := f.Attention.Tokens
	if tokens <= 0 {
		tokens = 1
	}
	if inputs%tokens != 0 {
		return nil, fmt.Errorf("%w: %d inputs do not split into %d tokens", nn.ErrInvalidConfiguration, inputs, tokens)
	}
	keyWidth := f.Attention.KeyWidth
	if keyWidth <= 0 {
		keyWidth = 2
	}
	downstream, err := nn.NewMLP(f.Activation, f.Layers(inputs, outputs), nil)
	if err != nil {
		return nil, err
	}
	return nn.NewSelfAttention(tokens, inputs/tokens, keyWidth, nil, downstream)
}
