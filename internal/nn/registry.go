package nn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

// Activation names a registered activation function.
type Activation string

const (
	ActivationIdentity Activation = "identity"
	ActivationReLU     Activation = "relu"
	ActivationSigmoid  Activation = "sigmoid"
	ActivationTanh     Activation = "tanh"
	ActivationSin      Activation = "sin"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
	ErrActivationVersion  = errors.New("activation version mismatch")
)

type ActivationFunc func(x float64) float64

type ActivationSpec struct {
	Name          Activation
	Func          ActivationFunc
	Domain        Domain
	SchemaVersion int
	CodecVersion  int
}

type registeredActivation struct {
	fn            ActivationFunc
	domain        Domain
	schemaVersion int
	codecVersion  int
}

var activationRegistry = struct {
	mu sync.RWMutex
	m  map[Activation]registeredActivation
}{
	m: make(map[Activation]registeredActivation),
}

func init() {
	initializeBuiltInActivations()
}

func initializeBuiltInActivations() {
	MustRegisterActivation(ActivationIdentity, func(x float64) float64 { return x }, Unbounded())
	MustRegisterActivation(ActivationReLU, func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return x
	}, Domain{Min: 0, Max: math.Inf(1)})
	MustRegisterActivation(ActivationTanh, math.Tanh, Domain{Min: -1, Max: 1})
	MustRegisterActivation(ActivationSigmoid, func(x float64) float64 {
		return 1.0 / (1.0 + math.Exp(-x))
	}, Domain{Min: 0, Max: 1})
	MustRegisterActivation(ActivationSin, math.Sin, Domain{Min: -1, Max: 1})
}

// RegisterActivation adds fn under name with the output domain it produces.
func RegisterActivation(name Activation, fn ActivationFunc, domain Domain) error {
	return RegisterActivationWithSpec(ActivationSpec{
		Name:          name,
		Func:          fn,
		Domain:        domain,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

func MustRegisterActivation(name Activation, fn ActivationFunc, domain Domain) {
	if err := RegisterActivation(name, fn, domain); err != nil {
		panic(err)
	}
}

func RegisterActivationWithSpec(spec ActivationSpec) error {
	if spec.Name == "" {
		return errors.New("activation name is required")
	}
	if spec.Func == nil {
		return errors.New("activation function is required")
	}
	if spec.SchemaVersion != SupportedSchemaVersion || spec.CodecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrActivationVersion, spec.SchemaVersion, spec.CodecVersion)
	}

	activationRegistry.mu.Lock()
	defer activationRegistry.mu.Unlock()

	if _, exists := activationRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, spec.Name)
	}

	activationRegistry.m[spec.Name] = registeredActivation{
		fn:            spec.Func,
		domain:        spec.Domain,
		schemaVersion: spec.SchemaVersion,
		codecVersion:  spec.CodecVersion,
	}
	return nil
}

func GetActivation(name Activation) (ActivationFunc, error) {
	fn, _, err := lookupActivation(name)
	return fn, err
}

// ActivationDomain reports the output range of a registered activation.
func ActivationDomain(name Activation) (Domain, error) {
	_, domain, err := lookupActivation(name)
	return domain, err
}

func lookupActivation(name Activation) (ActivationFunc, Domain, error) {
	activationRegistry.mu.RLock()
	entry, ok := activationRegistry.m[name]
	activationRegistry.mu.RUnlock()
	if !ok {
		return nil, Domain{}, fmt.Errorf("%w: %s", ErrActivationNotFound, name)
	}
	if entry.schemaVersion != SupportedSchemaVersion || entry.codecVersion != SupportedCodecVersion {
		return nil, Domain{}, fmt.Errorf("%w: %s", ErrActivationVersion, name)
	}
	return entry.fn, entry.domain, nil
}

func ListActivations() []Activation {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	names := make([]Activation, 0, len(activationRegistry.m))
	for name := range activationRegistry.m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// resolveActivation is used by network constructors; an unknown name is a
// configuration error rather than a lookup failure.
func resolveActivation(name Activation) (ActivationFunc, Domain, error) {
	if name == "" {
		name = ActivationTanh
	}
	fn, domain, err := lookupActivation(name)
	if err != nil {
		return nil, Domain{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return fn, domain, nil
}

func resetActivationRegistryForTests() {
	activationRegistry.mu.Lock()
	activationRegistry.m = make(map[Activation]registeredActivation)
	activationRegistry.mu.Unlock()
	initializeBuiltInActivations()
}
