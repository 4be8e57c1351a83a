package room

import (
	"math"
	"math/rand"

	"github.com/fogleman/pt/pt"
)

// Shot is one ray fired by the tracer, carrying its share of the source energy
type Shot struct {
	Ray    pt.Ray
	Energy float64
}

// SampleSphere fires n rays from origin in uniformly random directions.
// The source's unit energy is split evenly between them.
func SampleSphere(origin pt.Vector, n int, rnd *rand.Rand) []Shot {
	shots := make([]Shot, n)
	for i := range shots {
		z := 2*rnd.Float64() - 1
		phi := 2 * math.Pi * rnd.Float64()
		s := math.Sqrt(1 - z*z)
		shots[i] = Shot{
			Ray: pt.Ray{
				Origin:    origin,
				Direction: V(s*math.Cos(phi), s*math.Sin(phi), z),
			},
			Energy: 1 / float64(n),
		}
	}
	return shots
}
