package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/fogleman/pt/pt"

	"github.com/jdginn/go-room-doa/room"
	"github.com/jdginn/go-room-doa/room/config"
	"github.com/jdginn/go-room-doa/room/experiment"
	"github.com/jdginn/go-room-doa/sim"
	"github.com/jdginn/go-room-doa/wavio"
)

const (
	PLAN_SIZE   = 800
	PLAN_MARGIN = 40
	PLOT_WIDTH  = 900
	PLOT_HEIGHT = 500
	// Echogram window after the direct sound
	ECHOGRAM_MS       = 100
	ECHOGRAM_FLOOR_DB = -60.0
)

// One color per estimator on the plan view, in room.PastelRed/Green/Blue order
var bearingColors = []string{room.PastelRed, room.PastelGreen, room.PastelBlue}

// scene lays out the plan view. Estimated bearings are drawn solid, the ground truth dashed.
func scene(cfg *config.SceneConfig, r *room.Room, bundle *sim.DOABundle) room.Scene {
	array := cfg.CreateArray()
	s := room.Scene{Room: r, Mics: array.Positions(), Reference: array.Reference()}
	for _, src := range cfg.Sources {
		if p := cfg.SourcePosition(src); p != nil {
			s.Sources = append(s.Sources, room.Point{Position: *p, Name: src.Name, Color: room.PastelGreen})
		}
	}
	if bundle == nil {
		return s
	}
	for i, name := range bundle.Sources {
		if i < len(bundle.GroundTruth) {
			s.Bearings = append(s.Bearings, room.Bearing{Label: name, Angle: bundle.GroundTruth[i], Color: "#000000", Dashed: true})
		}
	}
	i := 0
	for _, alg := range sortedKeys(bundle.Estimates) {
		for _, angle := range bundle.Estimates[alg] {
			s.Bearings = append(s.Bearings, room.Bearing{Label: alg, Angle: angle, Color: bearingColors[i%len(bearingColors)]})
		}
		i++
	}
	return s
}

// writeOutputs saves everything a successful run produced into the run directory
func writeOutputs(run *experiment.RunDir, cfg *config.SceneConfig, r *room.Room, res sim.Result) error {
	fs := cfg.Simulation.SampleRate

	for _, s := range res.Sources {
		if s.Signal == nil {
			continue
		}
		if err := wavio.Save(run.File(fmt.Sprintf("source_%s.wav", s.Name)), s.Signal, fs); err != nil {
			return err
		}
	}
	if res.Mixed != nil {
		if err := wavio.Save(run.File("mixed.wav"), res.Mixed, fs); err != nil {
			return err
		}
	}

	if res.DOA != nil {
		if err := res.DOA.Save(run.File("doa.json")); err != nil {
			return err
		}
		curves := make([]room.Curve, 0, len(res.DOA.Responses))
		for _, alg := range sortedKeys(res.DOA.Responses) {
			curves = append(curves, room.Curve{Name: alg, Values: res.DOA.Responses[alg]})
		}
		if err := room.PlotResponse(PLOT_WIDTH, PLOT_HEIGHT, res.DOA.Grid, curves, res.DOA.GroundTruth, run.File("response.png")); err != nil {
			return err
		}
	}

	// Specular paths to the first microphone
	array := cfg.CreateArray()
	mic := array.Positions()[0]
	var sets []room.PathSet
	for _, s := range res.Sources {
		if len(s.Arrivals) == 0 {
			continue
		}
		sets = append(sets, room.PathSet{Name: s.Name, Source: s.Position, Mic: mic, Arrivals: s.Arrivals[0]})
	}
	zones := []room.Zone{{Center: mic, Radius: cfg.Simulation.ReceiverRadius, Name: "mic 0"}}
	if err := r.Annotate(scene(cfg, r, nil).Sources, sets, zones).Save(run.File("arrivals.json")); err != nil {
		return err
	}

	view := room.View{Scene: scene(cfg, r, res.DOA), XSize: PLAN_SIZE, YSize: PLAN_SIZE, Margin: PLAN_MARGIN}
	var arrivals []room.Arrival
	var source pt.Vector
	if len(sets) > 0 {
		arrivals, source = sets[0].Arrivals, sets[0].Source
	}
	img, err := view.PlotArrivals(arrivals, source, mic)
	if err != nil {
		return err
	}
	if err := room.SaveImage(run.File("plan.png"), img); err != nil {
		return err
	}
	echogram, err := room.PlotEchogram(PLOT_WIDTH, PLOT_HEIGHT, arrivals, ECHOGRAM_MS, ECHOGRAM_FLOOR_DB)
	if err != nil {
		return err
	}
	if err := room.SaveImage(run.File("echogram.png"), echogram); err != nil {
		return err
	}

	if cfg.Simulation.KeepRIRs {
		for _, s := range res.Sources {
			for m, rir := range s.RIRs {
				if err := writeRIR(run.File(fmt.Sprintf("rir_%s_%d.txt", s.Name, m)), rir, fs); err != nil {
					return err
				}
			}
		}
	}

	return r.M.SaveSTL(run.File("room.stl"))
}

func writeRIR(filename string, rir []float64, fs int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return room.WriteRIRText(f, rir, fs)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
