//go:build verify_reflections
// +build verify_reflections

package room

import (
	"fmt"
	"math"

	"github.com/fogleman/pt/pt"
)

const (
	lengthEpsilon      = 1e-7
	angleEpsilon       = 1e-7
	coplanarityEpsilon = 1e-6
)

func init() {
	fmt.Println("Reflection verification enabled.")
}

// verifyReflectionLaw panics if a bounce breaks the law of reflection.
// normal faces the incoming ray.
func verifyReflectionLaw(incident pt.Ray, normal pt.Vector, reflected pt.Ray) {
	if math.Abs(reflected.Direction.Length()-1) > lengthEpsilon {
		panic(fmt.Sprintf("reflected direction is not unit length: %v", reflected.Direction))
	}
	incidentAngle := math.Acos(math.Min(1, -incident.Direction.Dot(normal)))
	reflectedAngle := math.Acos(math.Min(1, reflected.Direction.Dot(normal)))
	if math.Abs(incidentAngle-reflectedAngle) > angleEpsilon {
		panic(fmt.Sprintf("angle of incidence %f does not match angle of reflection %f", incidentAngle, reflectedAngle))
	}
	cross := incident.Direction.Cross(reflected.Direction)
	if math.Abs(cross.Dot(normal)) > coplanarityEpsilon {
		panic("incident, normal and reflected directions are not coplanar")
	}
}
