// Package config loads controller descriptions from YAML and assembles the
// corresponding controller stack.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxelbrain/internal/control"
	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

var ErrInvalidConfig = errors.New("invalid controller config")

const (
	ControllerDistributed = "distributed"
	ControllerCentralized = "centralized"
	ControllerSinusoid    = "sinusoid"

	FunctionMLP       = "mlp"
	FunctionHebbian   = "hebbian"
	FunctionPruning   = "pruning"
	FunctionRecurrent = "recurrent"
	FunctionAttention = "attention"

	ShaperDiscontinuous = "discontinuous"
	ShaperSmoothed      = "smoothed"
	ShaperStep          = "step"

	InitZero   = "zero"
	InitRandom = "random"
)

type Config struct {
	Body       string           `yaml:"body"`
	Sensors    int              `yaml:"sensors"`
	Controller ControllerConfig `yaml:"controller"`
	Fault      *FaultConfig     `yaml:"fault,omitempty"`
	Shaper     *ShaperConfig    `yaml:"shaper,omitempty"`
	// Init selects the starting parameters when Params is empty.
	Init   string    `yaml:"init"`
	Seed   int64     `yaml:"seed"`
	Params []float64 `yaml:"params,omitempty"`
}

type ControllerConfig struct {
	Kind        string         `yaml:"kind"`
	Signals     int            `yaml:"signals"`
	Directional bool           `yaml:"directional"`
	Homogeneous bool           `yaml:"homogeneous"`
	Function    FunctionConfig `yaml:"function"`
	Sinusoid    SinusoidConfig `yaml:"sinusoid"`
}

type FunctionConfig struct {
	Kind       string          `yaml:"kind"`
	Activation nn.Activation   `yaml:"activation"`
	Hidden     []int           `yaml:"hidden,omitempty"`
	InnerRatio float64         `yaml:"inner_ratio"`
	Depth      int             `yaml:"depth"`
	Hebbian    HebbianConfig   `yaml:"hebbian"`
	Pruning    PruningConfig   `yaml:"pruning"`
	Attention  AttentionConfig `yaml:"attention"`
}

type HebbianConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Normalize    bool    `yaml:"normalize"`
}

type PruningConfig struct {
	Time      float64             `yaml:"time"`
	Rate      float64             `yaml:"rate"`
	Criterion nn.PruningCriterion `yaml:"criterion"`
	Scope     nn.PruningScope     `yaml:"scope"`
	Seed      int64               `yaml:"seed"`
}

type AttentionConfig struct {
	Tokens   int `yaml:"tokens"`
	KeyWidth int `yaml:"key_width"`
}

type SinusoidConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

type FaultConfig struct {
	BreakageTime float64              `yaml:"breakage_time"`
	Rate         float64              `yaml:"rate"`
	Pattern      control.FaultPattern `yaml:"pattern"`
	Seed         int64                `yaml:"seed"`
}

type ShaperConfig struct {
	Kind     string           `yaml:"kind"`
	Interval float64          `yaml:"interval"`
	Mode     control.HoldMode `yaml:"mode"`
	Speed    float64          `yaml:"speed"`
	StepT    float64          `yaml:"step_t"`
}

// Default describes a distributed tanh MLP controller on a 4x3 biped.
func Default() Config {
	return Config{
		Body:    "biped-4x3",
		Sensors: 2,
		Controller: ControllerConfig{
			Kind:        ControllerDistributed,
			Signals:     1,
			Directional: true,
			Function: FunctionConfig{
				Kind:       FunctionMLP,
				Activation: nn.ActivationTanh,
				InnerRatio: 0.65,
				Depth:      1,
			},
			Sinusoid: SinusoidConfig{Amplitude: 1, Frequency: 1},
		},
		Init: InitRandom,
		Seed: 1,
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data on Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Validate() error {
	if _, err := grid.Shape(c.Body); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Sensors < 0 {
		return fmt.Errorf("%w: sensors=%d", ErrInvalidConfig, c.Sensors)
	}
	switch c.Controller.Kind {
	case ControllerDistributed:
		if c.Controller.Signals < 0 {
			return fmt.Errorf("%w: signals=%d", ErrInvalidConfig, c.Controller.Signals)
		}
	case ControllerCentralized, ControllerSinusoid:
	default:
		return fmt.Errorf("%w: unsupported controller kind %q", ErrInvalidConfig, c.Controller.Kind)
	}
	if c.Controller.Kind != ControllerSinusoid {
		switch c.Controller.Function.Kind {
		case FunctionMLP, FunctionHebbian, FunctionPruning, FunctionRecurrent, FunctionAttention:
		default:
			return fmt.Errorf("%w: unsupported function kind %q", ErrInvalidConfig, c.Controller.Function.Kind)
		}
		for _, size := range c.Controller.Function.Hidden {
			if size < 1 {
				return fmt.Errorf("%w: hidden layer size %d", ErrInvalidConfig, size)
			}
		}
	}
	if c.Fault != nil && c.Controller.Kind != ControllerDistributed {
		return fmt.Errorf("%w: fault injection needs a distributed controller", ErrInvalidConfig)
	}
	if c.Shaper != nil {
		switch c.Shaper.Kind {
		case ShaperDiscontinuous, ShaperSmoothed, ShaperStep:
		default:
			return fmt.Errorf("%w: unsupported shaper kind %q", ErrInvalidConfig, c.Shaper.Kind)
		}
	}
	switch c.Init {
	case "", InitZero, InitRandom:
	default:
		return fmt.Errorf("%w: unsupported init %q", ErrInvalidConfig, c.Init)
	}
	return nil
}
