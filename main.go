package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/jdginn/go-room-doa/interact"
	"github.com/jdginn/go-room-doa/room"
	"github.com/jdginn/go-room-doa/room/config"
	"github.com/jdginn/go-room-doa/room/experiment"
	"github.com/jdginn/go-room-doa/sim"
	"github.com/jdginn/go-room-doa/wavio"
)

var loadOptions = config.LoadOptions{ValidateImmediately: true, ResolvePaths: true, MergeFiles: true}

var CLI struct {
	LogLevel  string `enum:"debug,info,warn,error" default:"info" help:"Minimum level to log"`
	LogFormat string `enum:"text,json" default:"text" help:"Log output format"`

	Simulate SimulateCmd `cmd:"" help:"Simulate a scene and estimate source bearings"`
	Validate ValidateCmd `cmd:"" help:"Check a scene config without simulating it"`
	Inspect  InspectCmd  `cmd:"" help:"Browse the specular arrivals between a source and a microphone"`
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler

	l := slog.LevelInfo
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: l}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

type SimulateCmd struct {
	Config string `arg:"" type:"existingfile" help:"Scene config (YAML)"`
	Runs   string `default:"runs" help:"Directory that holds one subdirectory per run"`
}

func (c SimulateCmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadFromFile(c.Config, loadOptions)
	if err != nil {
		return err
	}
	r, err := cfg.CreateRoom()
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}

	signals := loadSignals(cfg, logger)
	res := sim.Run(ctx, cfg.Request(r, signals), logger)
	if !res.Success {
		return errors.New(res.Message)
	}

	run, err := experiment.Create(c.Runs)
	if err != nil {
		return err
	}
	if err := run.CopyConfigFile(c.Config); err != nil {
		return err
	}
	if err := writeOutputs(run, cfg, r, res); err != nil {
		return err
	}
	for _, s := range res.Sources {
		if len(s.RIRs) > 0 {
			logger.Info("clarity", "source", s.Name, "c50_db", room.Clarity(s.RIRs[0], cfg.Simulation.SampleRate, room.C50_WINDOW_MS))
		}
	}
	logger.Info("outputs written", "dir", run.Path)
	return nil
}

// loadSignals decodes every placed source's WAV file. Sources whose audio cannot be
// read are left out, so the run skips them.
func loadSignals(cfg *config.SceneConfig, logger *slog.Logger) map[string][]float64 {
	signals := map[string][]float64{}
	for _, s := range cfg.Sources {
		if s.Position == nil || s.File == "" {
			continue
		}
		clip, err := wavio.Load(s.File, cfg.Simulation.SampleRate)
		if err != nil {
			logger.Warn("failed to load source audio", "source", s.Name, "file", s.File, "err", err)
			continue
		}
		signals[s.Name] = clip.Samples
	}
	return signals
}

type ValidateCmd struct {
	Config string `arg:"" type:"existingfile" help:"Scene config (YAML)"`
}

func (c ValidateCmd) Run(logger *slog.Logger) error {
	cfg, err := config.LoadFromFile(c.Config, config.LoadOptions{ResolvePaths: true, MergeFiles: true})
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return errors.New(config.FormatValidationErrors(errs))
	}

	r, err := cfg.CreateRoom()
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}
	array := cfg.CreateArray()
	if err := r.CheckInside(array.Positions()...); err != nil {
		return fmt.Errorf("microphones: %w", err)
	}
	logger.Info("array", "microphones", len(array.Offsets), "aperture_m", array.Aperture())
	resolver := config.NewPathResolver(filepath.Dir(c.Config))
	for _, name := range cfg.MissingSourceFiles(resolver) {
		logger.Warn("source audio missing", "source", name)
	}
	outside := 0
	for _, s := range cfg.Sources {
		p := cfg.SourcePosition(s)
		if p == nil {
			logger.Info("source not placed", "source", s.Name)
			continue
		}
		if !r.Contains(*p) {
			logger.Warn("source outside room", "source", s.Name)
			outside++
		}
	}
	if outside == len(cfg.Sources) {
		return fmt.Errorf("no source is inside the room")
	}
	fmt.Printf("%s is valid: volume %.2f m³, RT60 %.2f s\n", c.Config, r.Volume(), r.RT60())
	return nil
}

type InspectCmd struct {
	Config string `arg:"" type:"existingfile" help:"Scene config (YAML)"`
	Source string `required:"" help:"Name of the source"`
	Mic    int    `default:"0" help:"Index of the microphone"`
	Order  int    `default:"-1" help:"Maximum reflection order, the config's when negative"`
	Output string `default:"plan.png" help:"Plan view of the selected arrival"`
}

func (c InspectCmd) Run(logger *slog.Logger) error {
	cfg, err := config.LoadFromFile(c.Config, loadOptions)
	if err != nil {
		return err
	}
	r, err := cfg.CreateRoom()
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}

	var source *config.Source
	for i := range cfg.Sources {
		if cfg.Sources[i].Name == c.Source {
			source = &cfg.Sources[i]
		}
	}
	if source == nil || source.Position == nil {
		return fmt.Errorf("no placed source named %q", c.Source)
	}
	mics := cfg.CreateArray().Positions()
	if c.Mic < 0 || c.Mic >= len(mics) {
		return fmt.Errorf("microphone %d out of range [0, %d)", c.Mic, len(mics))
	}
	order := c.Order
	if order < 0 {
		order = *cfg.Simulation.MaxOrder
	}

	position := *cfg.SourcePosition(*source)
	arrivals, err := r.Arrivals(position, mics[c.Mic], order)
	if err != nil {
		return err
	}
	b := &interact.Browser{
		View:   room.View{Scene: scene(cfg, r, nil), XSize: PLAN_SIZE, YSize: PLAN_SIZE, Margin: PLAN_MARGIN},
		Source: position,
		Mic:    mics[c.Mic],
		Output: c.Output,
		Logger: logger,
	}
	return b.Run(r, arrivals)
}

func main() {
	ctx := kong.Parse(&CLI, kong.Description("Simulate room acoustics and estimate where sounds come from"))
	logger := setupLogger(CLI.LogLevel, CLI.LogFormat)
	slog.SetDefault(logger)
	ctx.FatalIfErrorf(ctx.Run(logger))
}
