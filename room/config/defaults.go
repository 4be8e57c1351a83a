package config

import (
	"math"

	"github.com/jdginn/go-room-doa/doa"
	"github.com/jdginn/go-room-doa/room"
)

const (
	DEFAULT_SCALE    = 100.0 // pixels per meter
	DEFAULT_MATERIAL = "default"
)

// ApplyDefaults fills every omitted setting with the engine constants
func (c *SceneConfig) ApplyDefaults() {
	if c.Scale == 0 {
		c.Scale = DEFAULT_SCALE
	}
	if c.Room.Height == 0 {
		c.Room.Height = room.ROOM_HEIGHT
	}
	if c.Room.Material == "" {
		c.Room.Material = DEFAULT_MATERIAL
	}
	if c.Materials.Inline == nil {
		c.Materials.Inline = map[string]Material{}
	}
	if _, ok := c.Materials.Inline[DEFAULT_MATERIAL]; !ok {
		c.Materials.Inline[DEFAULT_MATERIAL] = Material{Absorption: room.WALL_ABSORPTION}
	}

	s := &c.Simulation
	if s.SampleRate == 0 {
		s.SampleRate = room.SAMPLE_RATE
	}
	if s.Rays == nil {
		rays := room.DEFAULT_RAYS
		s.Rays = &rays
	}
	if s.MaxOrder == nil {
		order := room.MAX_ORDER
		s.MaxOrder = &order
	}
	if s.ReceiverRadius == 0 {
		s.ReceiverRadius = room.DEFAULT_RECEIVER_RADIUS
	}
	if s.Premix == nil {
		premix := true
		s.Premix = &premix
	}
	if s.DOA == nil {
		on := true
		s.DOA = &on
	}
	if s.MinSeparationDeg == 0 {
		s.MinSeparationDeg = doa.MIN_SEPARATION * 180 / math.Pi
	}
	if s.FreqRange == [2]float64{} {
		s.FreqRange = [2]float64{doa.DOA_FREQ_LO, doa.DOA_FREQ_HI}
	}
}
