package room

import (
	"math"

	"github.com/fogleman/pt/pt"
)

// Point2D is a position on the floor plan
type Point2D struct {
	X, Y float64
}

func To2D(v pt.Vector) Point2D {
	return Point2D{v.X, v.Y}
}

// At lifts the point to height z
func (p Point2D) At(z float64) pt.Vector {
	return V(p.X, p.Y, z)
}

func (p Point2D) Translate(x, y float64) Point2D {
	return Point2D{p.X + x, p.Y + y}
}

func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Y * s}
}

func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Y - q.Y}
}

// Cross is the z component of the 3D cross product
func (p Point2D) Cross(q Point2D) float64 {
	return p.X*q.Y - p.Y*q.X
}

func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Path2D is a floor polygon or polyline
type Path2D []Point2D

func (p Path2D) BoundingBox() (XMin, XMax, YMin, YMax float64) {
	if len(p) == 0 {
		return
	}
	XMin, XMax, YMin, YMax = p[0].X, p[0].X, p[0].Y, p[0].Y
	for _, q := range p[1:] {
		XMin, XMax = math.Min(XMin, q.X), math.Max(XMax, q.X)
		YMin, YMax = math.Min(YMin, q.Y), math.Max(YMax, q.Y)
	}
	return
}

// Plane is a wall plane. Normal has unit length and points out of the room.
type Plane struct {
	Point  pt.Vector
	Normal pt.Vector
}

func MakePlane(point, normal pt.Vector) Plane {
	return Plane{Point: point, Normal: normal.Normalize()}
}

// Distance is the signed distance from the plane, positive on the side the normal points to
func (p Plane) Distance(v pt.Vector) float64 {
	return v.Sub(p.Point).Dot(p.Normal)
}

// Mirror reflects v across the plane
func (p Plane) Mirror(v pt.Vector) pt.Vector {
	return v.Sub(p.Normal.MulScalar(2 * p.Distance(v)))
}

// Coplanar reports whether q describes the same plane, regardless of normal orientation
func (p Plane) Coplanar(q Plane, tol float64) bool {
	if math.Abs(math.Abs(p.Normal.Dot(q.Normal))-1) > tol {
		return false
	}
	return math.Abs(p.Distance(q.Point)) <= tol
}

// Path is a polyline in 3D
type Path []pt.Vector

// SliceMesh cuts the mesh with the plane and chains the cut segments into paths.
// Segment ends are matched to the micrometer. A closed cut ends where it starts.
func (p Plane) SliceMesh(m *pt.Mesh) []Path {
	type segment struct{ from, to pt.Vector }
	next := map[imageKey]segment{}
	var starts []imageKey
	for _, t := range m.Triangles {
		from, to, ok := p.IntersectTriangle(t)
		if !ok {
			continue
		}
		k := keyOf(from)
		if _, dup := next[k]; dup {
			continue
		}
		next[k] = segment{from, to}
		starts = append(starts, k)
	}

	var paths []Path
	for _, start := range starts {
		s, ok := next[start]
		if !ok {
			continue
		}
		path := Path{s.from}
		for ok {
			delete(next, keyOf(s.from))
			path = append(path, s.to)
			s, ok = next[keyOf(s.to)]
		}
		paths = append(paths, path)
	}
	return paths
}

// intersectSegment returns where the segment v0-v1 crosses the plane
func (p Plane) intersectSegment(v0, v1 pt.Vector) (pt.Vector, bool) {
	u := v1.Sub(v0)
	d := p.Normal.Dot(u)
	if math.Abs(d) < 1e-9 {
		return pt.Vector{}, false
	}
	t := -p.Distance(v0) / d
	if t < 0 || t > 1 {
		return pt.Vector{}, false
	}
	return v0.Add(u.MulScalar(t)), true
}

// IntersectTriangle returns the segment where the plane cuts t. Segments are
// oriented so that walking a closed mesh's cut goes round the same way.
func (p Plane) IntersectTriangle(t *pt.Triangle) (pt.Vector, pt.Vector, bool) {
	var hits []pt.Vector
	for _, edge := range [3][2]pt.Vector{{t.V1, t.V2}, {t.V2, t.V3}, {t.V3, t.V1}} {
		if v, ok := p.intersectSegment(edge[0], edge[1]); ok {
			hits = append(hits, v)
		}
	}
	if len(hits) < 2 {
		return pt.Vector{}, pt.Vector{}, false
	}
	p1, p2 := hits[0], hits[1]
	if p1 == p2 && len(hits) == 3 {
		p2 = hits[2]
	}
	if p1 == p2 {
		return pt.Vector{}, pt.Vector{}, false
	}
	if p2.Sub(p1).Cross(p.Normal).Dot(triangleNormal(t)) < 0 {
		return p1, p2, true
	}
	return p2, p1, true
}

func triangleNormal(t *pt.Triangle) pt.Vector {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Normalize()
}

func triangleArea(t *pt.Triangle) float64 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Length() / 2
}

// trianglePlane is the plane through a triangle's vertices, or false for a sliver
func trianglePlane(t *pt.Triangle) (Plane, bool) {
	if triangleArea(t) < 1e-12 {
		return Plane{}, false
	}
	return MakePlane(t.V1, t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1))), true
}
