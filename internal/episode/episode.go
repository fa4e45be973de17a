// Package episode drives a controller against a synthetic sensor source for
// a fixed number of rounds and summarizes the resulting actuation.
package episode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"voxelbrain/internal/control"
	"voxelbrain/internal/ctxlog"
	"voxelbrain/internal/grid"
	"voxelbrain/internal/model"
	"voxelbrain/internal/nn"
	"voxelbrain/internal/storage"
)

var ErrInvalidOptions = errors.New("invalid episode options")

type Options struct {
	Body  grid.Grid[bool]
	Steps int
	DT    float64
	// ParamsID links the summary to a stored parameter record.
	ParamsID string
}

type Result struct {
	ID    string
	Steps int
	DT    float64
	// Actuations holds one row per round, one value per occupied cell in
	// canonical cell order.
	Actuations [][]float64
	MeanAbs    float64
	Broken     int
	// Cells lists the occupied cells matching the Actuations columns.
	Cells    []grid.Cell
	paramsID string
}

// Run resets ctrl and feeds it src readings at t = 0, DT, 2*DT, ...
func Run(ctx context.Context, ctrl control.Controller, src SensorSource, opts Options) (Result, error) {
	if ctrl == nil || src == nil {
		return Result{}, fmt.Errorf("%w: controller and sensor source are required", ErrInvalidOptions)
	}
	if opts.Steps <= 0 {
		return Result{}, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidOptions, opts.Steps)
	}
	if opts.DT <= 0 || math.IsNaN(opts.DT) || math.IsInf(opts.DT, 0) {
		return Result{}, fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidOptions, opts.DT)
	}
	cells := occupied(opts.Body)
	if len(cells) == 0 {
		return Result{}, fmt.Errorf("%w: body has no occupied cells", ErrInvalidOptions)
	}

	logger := ctxlog.FromContext(ctx)
	result := Result{
		ID:         uuid.NewString(),
		Steps:      opts.Steps,
		DT:         opts.DT,
		Actuations: make([][]float64, 0, opts.Steps),
		Cells:      cells,
		paramsID:   opts.ParamsID,
	}
	logger.Debug("episode starting", "episode_id", result.ID, "steps", opts.Steps, "dt", opts.DT)

	ctrl.Reset()
	sumAbs := 0.0
	for step := 0; step < opts.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		t := float64(step) * opts.DT
		out, err := ctrl.Control(t, src.Read(t, opts.Body))
		if err != nil {
			return Result{}, fmt.Errorf("step %d: %w", step, err)
		}
		row := make([]float64, len(cells))
		for i, c := range cells {
			v, _ := out.Get(c.X, c.Y)
			row[i] = v
			sumAbs += math.Abs(v)
		}
		result.Actuations = append(result.Actuations, row)
	}
	result.MeanAbs = sumAbs / float64(opts.Steps*len(cells))
	result.Broken = brokenChannels(ctrl)

	logger.Info("episode finished",
		"episode_id", result.ID,
		"steps", result.Steps,
		"mean_abs", result.MeanAbs,
		"broken_channels", result.Broken,
	)
	return result, nil
}

// Summary condenses the result into a persistable record.
func (r Result) Summary() model.EpisodeSummary {
	all := make([]float64, 0, len(r.Actuations)*len(r.Final()))
	for _, row := range r.Actuations {
		all = append(all, row...)
	}
	std, err := nn.Std(all)
	if err != nil {
		std = 0
	}
	return model.EpisodeSummary{
		VersionedRecord: storage.Versioned(),
		ID:              r.ID,
		ParamsID:        r.paramsID,
		Steps:           r.Steps,
		DT:              r.DT,
		MeanAbs:         r.MeanAbs,
		StdActuation:    std,
		FinalActuate:    r.Final(),
		BrokenSignals:   r.Broken,
		CreatedAt:       time.Now().UTC(),
	}
}

// Final returns the actuation of the last round.
func (r Result) Final() []float64 {
	if len(r.Actuations) == 0 {
		return nil
	}
	return append([]float64(nil), r.Actuations[len(r.Actuations)-1]...)
}

func occupied(body grid.Grid[bool]) []grid.Cell {
	out := make([]grid.Cell, 0)
	for _, c := range body.Cells() {
		if v, _ := body.Get(c.X, c.Y); v {
			out = append(out, c)
		}
	}
	return out
}

// brokenChannels reports the channel count of the first fault injector found
// along the wrapper chain.
func brokenChannels(ctrl control.Controller) int {
	for ctrl != nil {
		if f, ok := ctrl.(*control.FaultInjector); ok {
			return f.Broken()
		}
		w, ok := ctrl.(control.Wrapper)
		if !ok {
			return 0
		}
		ctrl = w.Unwrap()
	}
	return 0
}
