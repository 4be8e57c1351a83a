package doa

import "math"

// Point is a position on the floor plan. Y grows downwards, as on screen.
type Point struct {
	X, Y float64
}

// NormalizeAngle wraps theta into [0, 2π)
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if theta >= 2*math.Pi || theta == 0 {
		// Also turns -0 into 0
		return 0
	}
	return theta
}

// AngularDistance is the shortest way around the circle between a and b
func AngularDistance(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	return math.Min(d, 2*math.Pi-d)
}

// Bearing is the direction of target seen from ref, counterclockwise from +X on screen
func Bearing(ref, target Point) float64 {
	return NormalizeAngle(math.Atan2(-(target.Y - ref.Y), target.X-ref.X))
}

// GroundTruth returns the bearing of every placed source. Nil entries are inactive
// and produce no bearing.
func GroundTruth(ref Point, sources []*Point) []float64 {
	var bearings []float64
	for _, s := range sources {
		if s == nil {
			continue
		}
		bearings = append(bearings, Bearing(ref, *s))
	}
	return bearings
}
