package room

import (
	"math"
)

// SignedArea is positive for counter-clockwise polygons
func (p Path2D) SignedArea() float64 {
	a := 0.0
	for i := range p {
		a += p[i].Cross(p[(i+1)%len(p)])
	}
	return a / 2
}

func (p Path2D) Area() float64 {
	return math.Abs(p.SignedArea())
}

// CCW returns the polygon in counter-clockwise order
func (p Path2D) CCW() Path2D {
	out := make(Path2D, len(p))
	copy(out, p)
	if out.SignedArea() < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func segmentsCross(a, b, c, d Point2D) bool {
	d1 := b.Sub(a).Cross(c.Sub(a))
	d2 := b.Sub(a).Cross(d.Sub(a))
	d3 := d.Sub(c).Cross(a.Sub(c))
	d4 := d.Sub(c).Cross(b.Sub(c))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	onSegment := func(p, q, r Point2D) bool {
		return math.Min(p.X, q.X) <= r.X && r.X <= math.Max(p.X, q.X) &&
			math.Min(p.Y, q.Y) <= r.Y && r.Y <= math.Max(p.Y, q.Y)
	}
	return (d1 == 0 && onSegment(a, b, c)) || (d2 == 0 && onSegment(a, b, d)) ||
		(d3 == 0 && onSegment(c, d, a)) || (d4 == 0 && onSegment(c, d, b))
}

// IsSimple reports whether no two non-adjacent edges touch and no vertex repeats
func (p Path2D) IsSimple() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if p[i] == p[(i+1)%n] {
			return false
		}
	}
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			if segmentsCross(a, b, p[j], p[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// Contains is an even-odd test; points on the boundary may go either way
func (p Path2D) Contains(q Point2D) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func pointInTriangle(q, a, b, c Point2D) bool {
	d1 := b.Sub(a).Cross(q.Sub(a))
	d2 := c.Sub(b).Cross(q.Sub(b))
	d3 := a.Sub(c).Cross(q.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// Triangulate splits a simple polygon into triangles by ear clipping.
// Returned triangles index into the counter-clockwise copy of p.
func (p Path2D) Triangulate() (Path2D, [][3]int) {
	poly := p.CCW()
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]int
	for guard := 0; len(idx) > 3 && guard < len(poly)*len(poly); guard++ {
		clipped := false
		for k := range idx {
			i0, i1, i2 := idx[(k+len(idx)-1)%len(idx)], idx[k], idx[(k+1)%len(idx)]
			a, b, c := poly[i0], poly[i1], poly[i2]
			if b.Sub(a).Cross(c.Sub(b)) <= 0 {
				continue
			}
			ear := true
			for _, j := range idx {
				if j == i0 || j == i1 || j == i2 {
					continue
				}
				if pointInTriangle(poly[j], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{i0, i1, i2})
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}
	if len(idx) == 3 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return poly, tris
}
