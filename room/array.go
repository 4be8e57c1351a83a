package room

import (
	"math"

	"github.com/fogleman/pt/pt"
)

// ArrayLayout places microphones around a reference point, such as the center of a robot.
// Offsets are expressed in units of Radius.
type ArrayLayout struct {
	Center  Point2D
	Radius  float64
	Offsets []Point2D
	// Height of every microphone above the floor
	Height float64
}

// CircularArray spreads n microphones evenly on a circle, the first at angle phi0
func CircularArray(center Point2D, radius float64, n int, phi0 float64) ArrayLayout {
	offsets := make([]Point2D, n)
	for i := range offsets {
		phi := phi0 + 2*math.Pi*float64(i)/float64(n)
		offsets[i] = Point2D{math.Cos(phi), math.Sin(phi)}
	}
	return ArrayLayout{Center: center, Radius: radius, Offsets: offsets, Height: MIC_HEIGHT}
}

// Positions returns one position per channel, in channel order
func (a ArrayLayout) Positions() []pt.Vector {
	mics := make([]pt.Vector, len(a.Offsets))
	for i, o := range a.Offsets {
		mics[i] = a.Center.Translate(o.X*a.Radius, o.Y*a.Radius).At(a.Height)
	}
	return mics
}

// Reference is the array center at microphone height
func (a ArrayLayout) Reference() pt.Vector {
	return a.Center.At(a.Height)
}

// Aperture is the largest distance between any two microphones
func (a ArrayLayout) Aperture() float64 {
	mics := a.Positions()
	d := 0.0
	for i := range mics {
		for j := i + 1; j < len(mics); j++ {
			d = math.Max(d, mics[i].Sub(mics[j]).Length())
		}
	}
	return d
}

// Centroid is the mean microphone position
func Centroid(mics []pt.Vector) pt.Vector {
	var c pt.Vector
	if len(mics) == 0 {
		return c
	}
	for _, m := range mics {
		c = c.Add(m)
	}
	return c.MulScalar(1 / float64(len(mics)))
}
