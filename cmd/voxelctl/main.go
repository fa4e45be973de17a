package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"voxelbrain/internal/config"
	"voxelbrain/internal/control"
	"voxelbrain/internal/ctxlog"
	"voxelbrain/internal/episode"
	"voxelbrain/internal/grid"
	"voxelbrain/internal/model"
	"voxelbrain/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runEpisode(ctx, args[1:], out)
	case "params":
		return runParams(ctx, args[1:], out)
	case "inspect":
		return runInspect(ctx, args[1:], out)
	case "save-params":
		return runSaveParams(ctx, args[1:], out)
	case "show-params":
		return runShowParams(ctx, args[1:], out)
	case "episodes":
		return runEpisodes(ctx, args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	storeKind  string
	dbPath     string
	configPath string
	paramsID   string
	logLevel   string
	logFormat  string
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	fs.StringVar(&c.dbPath, "db-path", "voxelbrain.db", "sqlite database path")
	fs.StringVar(&c.configPath, "config", "", "controller config YAML (default built-in biped MLP)")
	fs.StringVar(&c.paramsID, "params-id", "", "load parameters from a stored record")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.StringVar(&c.logFormat, "log-format", "text", "log format: text|json")
	return c
}

func (c *commonFlags) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, ctxlog.New(c.logLevel, c.logFormat, os.Stderr))
}

func (c *commonFlags) openStore(ctx context.Context) (storage.Store, error) {
	return storage.OpenStore(ctx, c.storeKind, c.dbPath)
}

// loadConfig resolves the controller config. A stored parameter record
// supplies both its parameters and, without -config, its config.
func (c *commonFlags) loadConfig(ctx context.Context) (config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if c.paramsID == "" {
		return cfg, nil
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return config.Config{}, err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	record, ok, err := store.GetParams(ctx, c.paramsID)
	if err != nil {
		return config.Config{}, err
	}
	if !ok {
		return config.Config{}, fmt.Errorf("params record not found: %s", c.paramsID)
	}
	if c.configPath == "" && record.Config != "" {
		cfg, err = config.Parse([]byte(record.Config))
		if err != nil {
			return config.Config{}, fmt.Errorf("params record %s: %w", record.ID, err)
		}
	}
	cfg.Params = append([]float64(nil), record.Params...)
	return cfg, nil
}

func runEpisode(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := bindCommon(fs)
	steps := fs.Int("steps", 100, "number of control rounds")
	dt := fs.Float64("dt", 0.1, "time between rounds")
	sensors := fs.String("sensors", "sine", "sensor source: sine|constant")
	value := fs.Float64("value", 0.5, "constant sensor value or sine amplitude")
	frequency := fs.Float64("frequency", 1, "sine sensor frequency")
	save := fs.Bool("save", false, "persist the episode summary")
	outDir := fs.String("out", "", "write summary.json and actuations.csv under this directory")
	jsonOut := fs.Bool("json", false, "print the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	cfg, err := common.loadConfig(ctx)
	if err != nil {
		return err
	}
	ctrl, body, err := build(cfg)
	if err != nil {
		return err
	}

	var src episode.SensorSource
	switch *sensors {
	case "sine":
		src = episode.SineSensors{Sensors: cfg.Sensors, Amplitude: *value, Frequency: *frequency, Shift: 0.5}
	case "constant":
		values := make([]float64, cfg.Sensors)
		for i := range values {
			values[i] = *value
		}
		src = episode.ConstantSensors{Values: values}
	default:
		return fmt.Errorf("unsupported sensor source: %s", *sensors)
	}

	result, err := episode.Run(ctx, ctrl, src, episode.Options{Body: body, Steps: *steps, DT: *dt, ParamsID: common.paramsID})
	if err != nil {
		return err
	}
	summary := result.Summary()

	if *save {
		store, err := common.openStore(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = storage.CloseIfSupported(store)
		}()
		if err := store.SaveEpisode(ctx, summary); err != nil {
			return err
		}
	}

	if *outDir != "" {
		dir, err := episode.WriteArtifacts(*outDir, result)
		if err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Info("episode artifacts written", "dir", dir)
	}

	if *jsonOut {
		return writeJSON(out, summary)
	}
	fmt.Fprintf(out, "episode=%s steps=%d mean_abs=%.6f std=%.6f broken=%d\n",
		summary.ID, summary.Steps, summary.MeanAbs, summary.StdActuation, summary.BrokenSignals)
	return nil
}

func runParams(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	common := bindCommon(fs)
	jsonOut := fs.Bool("json", false, "print the parameter vector as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	cfg, err := common.loadConfig(ctx)
	if err != nil {
		return err
	}
	ctrl, _, err := build(cfg)
	if err != nil {
		return err
	}
	params, err := control.Params(ctrl)
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(out, params)
	}
	fmt.Fprintf(out, "params=%d\n", len(params))
	return nil
}

func runInspect(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	common := bindCommon(fs)
	steps := fs.Int("steps", 0, "rounds to run before taking the snapshot")
	dt := fs.Float64("dt", 0.1, "time between rounds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	cfg, err := common.loadConfig(ctx)
	if err != nil {
		return err
	}
	ctrl, body, err := build(cfg)
	if err != nil {
		return err
	}
	if *steps > 0 {
		src := episode.SineSensors{Sensors: cfg.Sensors, Amplitude: 1, Frequency: 1, Shift: 0.5}
		if _, err := episode.Run(ctx, ctrl, src, episode.Options{Body: body, Steps: *steps, DT: *dt}); err != nil {
			return err
		}
	}

	snapshot, ok := control.Inspect(ctrl)
	if !ok {
		return errors.New("controller does not support inspection")
	}
	return writeJSON(out, snapshot)
}

func runSaveParams(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("save-params", flag.ContinueOnError)
	common := bindCommon(fs)
	name := fs.String("name", "", "record name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	cfg, err := common.loadConfig(ctx)
	if err != nil {
		return err
	}
	ctrl, _, err := build(cfg)
	if err != nil {
		return err
	}
	params, err := control.Params(ctrl)
	if err != nil {
		return err
	}
	cfg.Params = nil
	rawConfig, err := cfg.Marshal()
	if err != nil {
		return err
	}

	store, err := common.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	record := model.ParamRecord{
		VersionedRecord: storage.Versioned(),
		ID:              storage.NewRecordID(),
		Name:            *name,
		Config:          string(rawConfig),
		Params:          params,
		CreatedAt:       time.Now().UTC(),
	}
	if err := store.SaveParams(ctx, record); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("params saved", "id", record.ID, "count", len(params), "store", common.storeKind)
	fmt.Fprintf(out, "saved params id=%s count=%d\n", record.ID, len(params))
	return nil
}

func runShowParams(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show-params", flag.ContinueOnError)
	common := bindCommon(fs)
	id := fs.String("id", "", "record id; lists every record when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	store, err := common.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if *id == "" {
		records, err := store.ListParams(ctx)
		if err != nil {
			return err
		}
		for _, record := range records {
			fmt.Fprintf(out, "%s name=%q count=%d created=%s\n",
				record.ID, record.Name, len(record.Params), record.CreatedAt.Format(time.RFC3339))
		}
		return nil
	}

	record, ok, err := store.GetParams(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("params record not found: %s", *id)
	}
	return writeJSON(out, record)
}

func runEpisodes(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("episodes", flag.ContinueOnError)
	common := bindCommon(fs)
	jsonOut := fs.Bool("json", false, "print the summaries as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx = common.context(ctx)

	store, err := common.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	summaries, err := store.ListEpisodes(ctx, common.paramsID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(out, summaries)
	}
	for _, summary := range summaries {
		fmt.Fprintf(out, "%s params=%s steps=%d mean_abs=%.6f broken=%d\n",
			summary.ID, summary.ParamsID, summary.Steps, summary.MeanAbs, summary.BrokenSignals)
	}
	return nil
}

func build(cfg config.Config) (control.Controller, grid.Grid[bool], error) {
	body, err := grid.Shape(cfg.Body)
	if err != nil {
		return nil, grid.Grid[bool]{}, err
	}
	ctrl, err := cfg.Build()
	if err != nil {
		return nil, grid.Grid[bool]{}, err
	}
	return ctrl, body, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: voxelctl <run|params|inspect|save-params|show-params|episodes> [flags]", msg)
}
