package room

import (
	"fmt"
	"math"
	"testing"

	"github.com/fogleman/pt/pt"
	"github.com/stretchr/testify/assert"
)

func buildTri(v1, v2, v3 pt.Vector) *pt.Triangle {
	return pt.NewTriangle(v1, v2, v3, pt.Vector{}, pt.Vector{}, pt.Vector{}, pt.Material{})
}

func TestIntersectSegment(t *testing.T) {
	assert := assert.New(t)
	intersects := func(plane Plane, want, v1, v2 pt.Vector) {
		v, ok := plane.intersectSegment(v1, v2)
		assert.True(ok)
		assert.Less(math.Abs(want.Sub(v).Length()), 0.01)
	}
	doesNotIntersect := func(plane Plane, v1, v2 pt.Vector) {
		_, ok := plane.intersectSegment(v1, v2)
		assert.False(ok)
	}

	p := Plane{
		Point:  V(0, 0, 0),
		Normal: V(0, 1, 0),
	}

	intersects(p, V(0, 0, 0), V(0, 2, 0), V(0, -1, 0))
	doesNotIntersect(p, V(0, 2, 0), V(1, 2, 0))
	doesNotIntersect(p, V(0, 2, 0), V(0, 1, 0))
}

func TestIntersectTriangle(t *testing.T) {
	assert := assert.New(t)
	intersects := func(plane Plane, want1 pt.Vector, want2 pt.Vector, tri *pt.Triangle) {
		v1, v2, ok := plane.IntersectTriangle(tri)
		msg := fmt.Sprintf(`
			Expected vertices {%f, %f, %f}, {%f, %f, %f}
			Got vertices      {%f, %f, %f}, {%f, %f, %f}`, want1.X, want1.Y, want1.Z, want2.X, want2.Y, want2.Z, v1.X, v1.Y, v1.Z, v2.X, v2.Y, v2.Z)
		assert.True(ok)
		assert.Less(math.Abs(want1.Sub(v1).Length()), 0.01, msg)
		assert.Less(math.Abs(want2.Sub(v2).Length()), 0.01, msg)
	}
	doesNotIntersect := func(plane Plane, tri *pt.Triangle) {
		_, _, ok := plane.IntersectTriangle(tri)
		assert.False(ok)
	}

	p := Plane{
		Point:  V(0, 1, 0),
		Normal: V(0, 1, 0),
	}

	doesNotIntersect(p, buildTri(V(0, 2, 0), V(15, 2, 0), V(-10, 5, 7)))
	intersects(p, V(1, 1, 0), V(-1, 1, 0), buildTri(V(0.0, 0, 0), V(2, 2, 0), V(-2, 2, 0)))
	intersects(p, V(1, 1, 0), V(0, 1, 0), buildTri(V(0, 0, 0), V(2, 0, 0), V(0, 2, 0)))
}

func TestSliceMesh(t *testing.T) {
	assert := assert.New(t)

	m := pt.NewCube(V(0, 0, 0), V(2, 3, 1), pt.Material{}).Mesh()
	p := MakePlane(V(0, 0, 0.5), V(0, 0, 1))

	paths := p.SliceMesh(m)
	assert.NotEmpty(paths)
	for _, path := range paths {
		for _, v := range path {
			assert.InDelta(0.5, v.Z, 1e-9)
			onEdge := math.Abs(v.X) < 1e-9 || math.Abs(v.X-2) < 1e-9 || math.Abs(v.Y) < 1e-9 || math.Abs(v.Y-3) < 1e-9
			assert.True(onEdge, "slice point %v is not on the box outline", v)
		}
	}
}

func TestMirror(t *testing.T) {
	assert := assert.New(t)

	p := MakePlane(V(5, 0, 0), V(1, 0, 0))
	m := p.Mirror(V(2, 1, 1))
	assert.InDelta(8, m.X, 1e-12)
	assert.InDelta(1, m.Y, 1e-12)
	assert.InDelta(1, m.Z, 1e-12)

	assert.InDelta(-3, p.Distance(V(2, 7, 7)), 1e-12)
	assert.True(p.Coplanar(MakePlane(V(5, 3, 2), V(-1, 0, 0)), 1e-9))
	assert.False(p.Coplanar(MakePlane(V(4, 3, 2), V(1, 0, 0)), 1e-9))
}

func TestPolygon(t *testing.T) {
	square := Path2D{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	bowtie := Path2D{{0, 0}, {4, 3}, {4, 0}, {0, 3}}
	lShape := Path2D{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 3}, {0, 3}}

	tests := []struct {
		name   string
		poly   Path2D
		area   float64
		simple bool
	}{
		{"square", square, 12, true},
		{"square_clockwise", Path2D{{0, 0}, {0, 3}, {4, 3}, {4, 0}}, 12, true},
		{"bowtie", bowtie, 0, false},
		{"l_shape", lShape, 6, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(test.simple, test.poly.IsSimple())
			if !test.simple {
				return
			}
			assert.InDelta(test.area, test.poly.Area(), 1e-12)
			assert.Greater(test.poly.CCW().SignedArea(), 0.0)

			poly, tris := test.poly.Triangulate()
			assert.Len(tris, len(poly)-2)
			total := 0.0
			for _, tri := range tris {
				total += Path2D{poly[tri[0]], poly[tri[1]], poly[tri[2]]}.Area()
			}
			assert.InDelta(test.area, total, 1e-9)
		})
	}
}

func TestPolygonContains(t *testing.T) {
	assert := assert.New(t)
	lShape := Path2D{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 3}, {0, 3}}

	assert.True(lShape.Contains(Point2D{0.5, 2.5}))
	assert.True(lShape.Contains(Point2D{3.5, 0.5}))
	assert.False(lShape.Contains(Point2D{3, 2}))
	assert.False(lShape.Contains(Point2D{-1, 0.5}))
}

func TestBoundingBox(t *testing.T) {
	assert := assert.New(t)
	XMin, XMax, YMin, YMax := Path2D{{2, 3}, {5, -1}, {4, 7}}.BoundingBox()
	assert.EqualValues(2, XMin)
	assert.EqualValues(5, XMax)
	assert.EqualValues(-1, YMin)
	assert.EqualValues(7, YMax)
}
