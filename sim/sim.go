// Package sim runs the whole pipeline: room impulse responses, rendering, STFT
// and direction-of-arrival estimation, reporting failures as values.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/fogleman/pt/pt"
	"golang.org/x/sync/errgroup"

	"github.com/jdginn/go-room-doa/doa"
	"github.com/jdginn/go-room-doa/render"
	"github.com/jdginn/go-room-doa/room"
	"github.com/jdginn/go-room-doa/stft"
)

// Source is one named emitter. A nil Position means the source was never placed.
type Source struct {
	Name     string
	Position *pt.Vector
	// Dry mono signal at the request's sample rate
	Signal []float64
}

// Options selects which outputs a run produces
type Options struct {
	// Keep one normalized rendering per source
	Premix bool
	// Produce the normalized mix when more than one source survives
	Mixed bool
	// Estimate bearings when the array has two or more microphones
	DOA bool
	// Keep the impulse responses and specular arrivals of every source
	KeepRIRs     bool
	KeepArrivals bool
}

func DefaultOptions() Options {
	return Options{Premix: true, Mixed: true, DOA: true}
}

type Request struct {
	Room *room.Room
	// Channel order is kept all the way to the DOA stage
	Mics []pt.Vector
	// Bearings are measured from here, the microphone centroid when left zero
	Reference pt.Vector
	Sources   []Source

	// Defaults to room.SAMPLE_RATE
	SampleRate int
	// 0 renders the direct path only
	MaxOrder int
	// Defaults to room.DefaultTraceParams. Rays == 0 renders the specular part only.
	Trace *room.TraceParams
	// Source i draws from rand.NewSource(Seed + i)
	Seed int64
	// Defaults to doa.DefaultParams with one bearing per rendered source
	DOA *doa.Params

	Options Options
}

// Skip records a source that was left out of the run
type Skip struct {
	Name   string
	Reason string
}

type SourceOutput struct {
	Name     string
	Position pt.Vector
	// Peak-normalized average over the microphones
	Signal   []float64
	RIRs     [][]float64
	Arrivals [][]room.Arrival
	Stats    room.TraceStats
}

type Result struct {
	Success bool
	Message string

	Sources []SourceOutput
	Skipped []Skip
	// Peak-normalized mix, only when more than one source was rendered
	Mixed []float64
	// Per microphone sum over every rendered source, before normalization
	ArraySignal [][]float64
	// Nil when DOA was not requested or the array has fewer than two microphones
	DOA     *DOABundle
	Elapsed time.Duration
}

func failed(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

type rendered struct {
	output SourceOutput
	array  [][]float64
	err    error
}

// Run executes one simulation. It never returns an error: failures are reported
// through Result.Success and Result.Message, with sources that could not be
// rendered listed in Result.Skipped.
func Run(ctx context.Context, req Request, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	res := run(ctx, req, logger)
	res.Elapsed = time.Since(start)
	if res.Success {
		logger.Info("simulation finished", "sources", len(res.Sources), "skipped", len(res.Skipped), "elapsed", res.Elapsed)
	} else {
		logger.Error("simulation failed", "reason", res.Message)
	}
	return res
}

func run(ctx context.Context, req Request, logger *slog.Logger) Result {
	switch {
	case req.Room == nil:
		return failed("invalid geometry: no room")
	case len(req.Mics) == 0:
		return failed("insufficient inputs: no microphones")
	case req.MaxOrder < 0:
		return failed("invalid parameters: negative reflection order %d", req.MaxOrder)
	}
	if err := req.Room.CheckInside(req.Mics...); err != nil {
		return failed("invalid geometry: microphones: %v", err)
	}
	fs := req.SampleRate
	if fs <= 0 {
		fs = room.SAMPLE_RATE
	}
	params := room.DefaultTraceParams(req.Room)
	if req.Trace != nil {
		params = *req.Trace
	}

	var skipped []Skip
	var indices []int
	placed := 0
	for i, s := range req.Sources {
		if s.Position == nil {
			continue
		}
		placed++
		switch {
		case len(s.Signal) == 0:
			skipped = append(skipped, Skip{s.Name, "no audio"})
		case !req.Room.Contains(*s.Position):
			skipped = append(skipped, Skip{s.Name, room.ErrOutsideRoom.Error()})
		default:
			indices = append(indices, i)
		}
	}
	for _, s := range skipped {
		logger.Warn("skipping source", "source", s.Name, "reason", s.Reason)
	}
	if placed == 0 {
		return failed("insufficient inputs: no placed sources")
	}
	if len(indices) == 0 {
		return Result{Message: "no usable sources", Skipped: skipped}
	}
	if err := ctx.Err(); err != nil {
		return Result{Message: fmt.Sprintf("cancelled: %v", err), Skipped: skipped}
	}

	slots := make([]rendered, len(indices))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for slot, i := range indices {
		g.Go(func() error {
			slots[slot] = renderSource(ctx, req, i, params, fs, logger)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Skipped: skipped}
	var arrays [][][]float64
	for _, r := range slots {
		if r.err != nil {
			res.Skipped = append(res.Skipped, Skip{r.output.Name, r.err.Error()})
			logger.Warn("skipping source", "source", r.output.Name, "error", r.err)
			continue
		}
		out := r.output
		if req.Options.Premix {
			out.Signal = render.Downmix(r.array)
		}
		res.Sources = append(res.Sources, out)
		arrays = append(arrays, r.array)
	}
	if len(arrays) == 0 {
		res.Message = "no usable sources"
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Message = fmt.Sprintf("cancelled: %v", err)
		return res
	}

	mixed, err := render.Mix(arrays)
	if err != nil {
		res.Message = fmt.Sprintf("mixing: %v", err)
		return res
	}
	res.ArraySignal = mixed
	if req.Options.Mixed && len(arrays) > 1 {
		res.Mixed = render.Downmix(mixed)
	}

	res.Success = true
	res.Message = fmt.Sprintf("simulated %d of %d placed sources", len(res.Sources), placed)
	if req.Options.DOA && len(req.Mics) >= 2 {
		bundle, err := locate(ctx, req, res.Sources, mixed, fs, logger)
		if err != nil {
			logger.Warn("doa skipped", "error", err)
			res.Message += fmt.Sprintf("; doa failed: %v", err)
		}
		res.DOA = bundle
	}
	return res
}

// renderSource computes the impulse responses of source i and convolves its signal with them
func renderSource(ctx context.Context, req Request, i int, params room.TraceParams, fs int, logger *slog.Logger) rendered {
	src := req.Sources[i]
	r := rendered{output: SourceOutput{Name: src.Name, Position: *src.Position}}
	if r.err = ctx.Err(); r.err != nil {
		return r
	}
	start := time.Now()
	rnd := rand.New(rand.NewSource(req.Seed + int64(i)))
	resp, err := req.Room.ImpulseResponses(*src.Position, req.Mics, req.MaxOrder, params, rnd, fs)
	if err != nil {
		r.err = fmt.Errorf("impulse responses: %w", err)
		return r
	}
	if resp.Stats.Escaped > 0 {
		logger.Warn("rays escaped the room", "source", src.Name, "escaped", resp.Stats.Escaped, "rays", resp.Stats.Rays)
	}
	r.array, err = render.ArraySignal(src.Signal, resp.RIRs)
	if err != nil {
		r.err = fmt.Errorf("rendering: %w", err)
		return r
	}
	r.output.Stats = resp.Stats
	if req.Options.KeepRIRs {
		r.output.RIRs = resp.RIRs
	}
	if req.Options.KeepArrivals {
		r.output.Arrivals = resp.Arrivals
	}
	logger.Debug("source rendered", "source", src.Name, "rays", resp.Stats.Rays, "bounces", resp.Stats.Bounces, "elapsed", time.Since(start))
	return r
}

// locate estimates bearings from the mixed array signal. The floor plan's Y axis
// points down, so microphones are mirrored to keep bearings in the same frame as
// the ground truth.
func locate(ctx context.Context, req Request, sources []SourceOutput, array [][]float64, fs int, logger *slog.Logger) (*DOABundle, error) {
	params := doa.DefaultParams(room.SPEED_OF_SOUND, float64(fs), len(sources))
	if req.DOA != nil {
		params = *req.DOA
		// Zero means one bearing per rendered source
		if params.NumSources == 0 {
			params.NumSources = len(sources)
		}
		if params.SampleRate == 0 {
			params.SampleRate = float64(fs)
		}
	}
	tensor, err := stft.Analyze(array, stft.STFT_SIZE, stft.STFT_HOP)
	if err != nil {
		return nil, err
	}
	mics := make([]doa.Point, len(req.Mics))
	for i, m := range req.Mics {
		mics[i] = doa.Point{X: m.X, Y: -m.Y}
	}
	result, err := doa.Locate(ctx, tensor, mics, params, logger)
	if err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == (pt.Vector{}) {
		reference = room.Centroid(req.Mics)
	}
	ref := doa.Point{X: reference.X, Y: reference.Y}
	positions := make([]*doa.Point, len(sources))
	names := make([]string, len(sources))
	for i, s := range sources {
		positions[i] = &doa.Point{X: s.Position.X, Y: s.Position.Y}
		names[i] = s.Name
	}
	return newBundle(result, names, doa.GroundTruth(ref, positions)), nil
}
