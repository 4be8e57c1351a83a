package doa

import (
	"math"
	"math/cmplx"
)

// array is the microphone geometry relative to its centroid
type array struct {
	positions []Point
}

func newArray(mics []Point) array {
	var cx, cy float64
	for _, m := range mics {
		cx += m.X
		cy += m.Y
	}
	cx /= float64(len(mics))
	cy /= float64(len(mics))
	a := array{positions: make([]Point, len(mics))}
	for i, m := range mics {
		a.positions[i] = Point{m.X - cx, m.Y - cy}
	}
	return a
}

func (a array) size() int {
	return len(a.positions)
}

// steering is the far-field array response at frequency f for a plane wave arriving
// from azimuth theta. Microphones nearer the source lead in phase.
func (a array) steering(f, theta, c float64) []complex128 {
	v := make([]complex128, len(a.positions))
	ux, uy := math.Cos(theta), math.Sin(theta)
	for i, p := range a.positions {
		tau := (p.X*ux + p.Y*uy) / c
		v[i] = cmplx.Exp(complex(0, 2*math.Pi*f*tau))
	}
	return v
}

// steeringTable caches steering vectors for every grid angle at one frequency
func (a array) steeringTable(f float64, grid []float64, c float64) [][]complex128 {
	table := make([][]complex128, len(grid))
	for i, theta := range grid {
		table[i] = a.steering(f, theta, c)
	}
	return table
}
