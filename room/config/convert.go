package config

import (
	"fmt"
	"math"

	"github.com/fogleman/pt/pt"

	"github.com/jdginn/go-room-doa/doa"
	"github.com/jdginn/go-room-doa/room"
	"github.com/jdginn/go-room-doa/sim"
)

// Meters converts a floor plan coordinate
func (c *SceneConfig) Meters(p Pixel) room.Point2D {
	return room.Point2D{X: p.X / c.Scale, Y: p.Y / c.Scale}
}

func (c *SceneConfig) material(name string) (room.Material, error) {
	m, ok := c.Materials.Inline[name]
	if !ok {
		return room.Material{}, fmt.Errorf("undefined material '%s'", name)
	}
	return room.Material{Alpha: m.Absorption}, nil
}

// CreateRoom builds the room from the 3MF mesh when one is configured, otherwise by
// extruding the corner polygon
func (c *SceneConfig) CreateRoom() (*room.Room, error) {
	if c.Room.Mesh != "" {
		materials := map[string]room.Material{}
		for object, name := range c.SurfaceAssignments.Inline {
			m, err := c.material(name)
			if err != nil {
				return nil, fmt.Errorf("surface %s: %w", object, err)
			}
			materials[object] = m
		}
		if _, ok := materials[DEFAULT_MATERIAL]; !ok {
			m, err := c.material(c.Room.Material)
			if err != nil {
				return nil, err
			}
			materials[DEFAULT_MATERIAL] = m
		}
		return room.NewFrom3MF(c.Room.Mesh, materials, c.Room.AirAbsorption)
	}

	corners := make(room.Path2D, len(c.Room.Corners))
	for i, p := range c.Room.Corners {
		corners[i] = c.Meters(p)
	}
	m, err := c.material(c.Room.Material)
	if err != nil {
		return nil, err
	}
	return room.NewRoom(corners, c.Room.Height, m, c.Room.AirAbsorption)
}

// CreateArray places the microphones around the robot
func (c *SceneConfig) CreateArray() room.ArrayLayout {
	if len(c.Microphones) == 0 && c.Robot.CircularMics > 0 {
		return room.CircularArray(c.Meters(c.Robot.Position), c.Robot.Radius/c.Scale, c.Robot.CircularMics, 0)
	}
	offsets := make([]room.Point2D, len(c.Microphones))
	for i, m := range c.Microphones {
		offsets[i] = room.Point2D{X: m.NX, Y: m.NY}
	}
	return room.ArrayLayout{
		Center:  c.Meters(c.Robot.Position),
		Radius:  c.Robot.Radius / c.Scale,
		Offsets: offsets,
		Height:  room.MIC_HEIGHT,
	}
}

// SourcePosition is the position of a placed source, or nil
func (c *SceneConfig) SourcePosition(s Source) *pt.Vector {
	if s.Position == nil {
		return nil
	}
	v := c.Meters(*s.Position).At(room.SOURCE_HEIGHT)
	return &v
}

// TraceParams sizes the ray tracer for r
func (c *SceneConfig) TraceParams(r *room.Room) room.TraceParams {
	params := room.DefaultTraceParams(r)
	if c.Simulation.Rays != nil {
		params.Rays = *c.Simulation.Rays
	}
	params.ReceiverRadius = c.Simulation.ReceiverRadius
	return params
}

// DOAParams carries the estimator settings. NumSources stays zero unless configured,
// in which case the run uses the number of rendered sources.
func (c *SceneConfig) DOAParams() *doa.Params {
	s := c.Simulation
	p := doa.DefaultParams(room.SPEED_OF_SOUND, float64(s.SampleRate), s.NumSources)
	p.FreqLo, p.FreqHi = s.FreqRange[0], s.FreqRange[1]
	p.MinSeparation = s.MinSeparationDeg * math.Pi / 180
	return &p
}

// Request assembles a simulation of r. signals maps source names to dry signals at
// the configured sample rate; sources without an entry are skipped by the run.
func (c *SceneConfig) Request(r *room.Room, signals map[string][]float64) sim.Request {
	c.ApplyDefaults()
	array := c.CreateArray()
	sources := make([]sim.Source, len(c.Sources))
	for i, s := range c.Sources {
		sources[i] = sim.Source{Name: s.Name, Position: c.SourcePosition(s), Signal: signals[s.Name]}
	}
	trace := c.TraceParams(r)
	return sim.Request{
		Room:       r,
		Mics:       array.Positions(),
		Reference:  array.Reference(),
		Sources:    sources,
		SampleRate: c.Simulation.SampleRate,
		MaxOrder:   *c.Simulation.MaxOrder,
		Trace:      &trace,
		Seed:       c.Simulation.Seed,
		DOA:        c.DOAParams(),
		Options: sim.Options{
			Premix:   *c.Simulation.Premix,
			Mixed:    true,
			DOA:      *c.Simulation.DOA,
			KeepRIRs: c.Simulation.KeepRIRs,
			// Arrivals feed the plan view and annotations
			KeepArrivals: true,
		},
	}
}
