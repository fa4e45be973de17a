package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

func loudNetwork(t *testing.T, body grid.Grid[bool], signals int) (*GridNetwork, *scriptedFactory) {
	t.Helper()
	factory := &scriptedFactory{emit: func(int) func(float64, []float64) []float64 {
		return func(float64, []float64) []float64 {
			out := make([]float64, 1+4*signals)
			for i := 1; i < len(out); i++ {
				out[i] = 3
			}
			return out
		}
	}}
	net, err := NewGridNetwork(body, GridNetworkConfig{Sensors: 1, Signals: signals, Directional: true, Factory: factory.build})
	require.NoError(t, err)
	return net, factory
}

func TestFaultInjectorPermanence(t *testing.T) {
	body := grid.Box(2, 1)
	net, factory := loudNetwork(t, body, 1)
	f, err := NewFaultInjector(net, FaultConfig{BreakageTime: 2, Rate: 1, Pattern: FaultRandom})
	require.NoError(t, err)
	assert.Equal(t, 8, f.Broken())

	inputs := sensorGrid(body, 1, 0)
	for _, ts := range []float64{0, 1, 2, 3, 4} {
		_, err := f.Control(ts, inputs)
		require.NoError(t, err)
	}
	fromWest := 1 + int(grid.West)
	got := make([]float64, 0)
	for _, in := range factory.made[1].inputs {
		got = append(got, in[fromWest])
	}
	assert.Equal(t, []float64{0, 3, 3, 0, 0}, got)

	current, _ := net.Current(0, 0)
	assert.Equal(t, []float64{0, 0, 0, 0}, current)
}

func TestFaultInjectorBeforeBreakageIsTransparent(t *testing.T) {
	body := grid.Box(2, 1)
	net, _ := loudNetwork(t, body, 1)
	f, err := NewFaultInjector(net, FaultConfig{BreakageTime: 10, Rate: 1})
	require.NoError(t, err)
	_, err = f.Control(0, sensorGrid(body, 1, 0))
	require.NoError(t, err)
	current, _ := net.Current(1, 0)
	assert.Equal(t, []float64{3, 3, 3, 3}, current)
}

func TestFaultInjectorRandomCount(t *testing.T) {
	net, _ := loudNetwork(t, grid.Box(2, 1), 2)
	f, err := NewFaultInjector(net, FaultConfig{Rate: 0.5, Pattern: FaultRandom, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, f.Broken())

	none, err := NewFaultInjector(net, FaultConfig{Rate: 0, Pattern: FaultRandom})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Broken())
}

func TestFaultInjectorDirectionalBlocks(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		net, _ := loudNetwork(t, grid.Box(1, 1), 3)
		f, err := NewFaultInjector(net, FaultConfig{Rate: 0.25, Pattern: FaultDirectional, Seed: seed})
		require.NoError(t, err)
		require.Equal(t, 3, f.Broken())

		mask, ok := f.Mask(0, 0)
		require.True(t, ok)
		first := -1
		for i, keep := range mask {
			if !keep {
				first = i
				break
			}
		}
		require.Equal(t, 0, first%3, "broken block must start on a direction boundary")
		for i := first; i < first+3; i++ {
			assert.False(t, mask[i])
		}
	}
}

func TestFaultInjectorMaskIsImmutable(t *testing.T) {
	body := grid.Box(2, 2)
	net, _ := loudNetwork(t, body, 2)
	f, err := NewFaultInjector(net, FaultConfig{Rate: 0.3, Pattern: FaultRandom, Seed: 1})
	require.NoError(t, err)
	before, _ := f.Mask(1, 1)
	inputs := sensorGrid(body, 1, 0)
	for i := 0; i < 3; i++ {
		_, err := f.Control(float64(i), inputs)
		require.NoError(t, err)
	}
	f.Reset()
	after, _ := f.Mask(1, 1)
	assert.Equal(t, before, after)

	snap := f.Snapshot()
	assert.Equal(t, "faulty-grid", snap.Kind)
	assert.Len(t, snap.Cells[3].Mask, 8)
}

func TestFaultInjectorValidation(t *testing.T) {
	net, _ := loudNetwork(t, grid.Box(1, 1), 1)
	for _, rate := range []float64{-0.5, 1.01} {
		_, err := NewFaultInjector(net, FaultConfig{Rate: rate})
		assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
	}
	_, err := NewFaultInjector(net, FaultConfig{Rate: 0.5, Pattern: "scatter"})
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
	_, err = NewFaultInjector(nil, FaultConfig{})
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
}

func TestFaultInjectorForwardsParams(t *testing.T) {
	body := grid.Box(2, 1)
	factory := &scriptedFactory{params: 3}
	net, err := NewGridNetwork(body, GridNetworkConfig{Sensors: 1, Signals: 1, Factory: factory.build})
	require.NoError(t, err)
	f, err := NewFaultInjector(net, FaultConfig{Rate: 0.5})
	require.NoError(t, err)

	shaped, err := NewStep(f, 0.2)
	require.NoError(t, err)
	params, err := Params(shaped)
	require.NoError(t, err)
	assert.Len(t, params, 6)
	require.NoError(t, SetParams(shaped, []float64{1, 1, 1, 2, 2, 2}))
	assert.Equal(t, []float64{2, 2, 2}, factory.made[1].params)

	snap, ok := Inspect(shaped)
	require.True(t, ok)
	assert.Equal(t, "faulty-grid", snap.Kind)
}
