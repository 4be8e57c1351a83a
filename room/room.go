package room

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/pt/pt"
	"github.com/hpinc/go3mf"
)

var (
	ErrDegenerateRoom = errors.New("degenerate room")
	ErrOutsideRoom    = errors.New("position is outside the room")
)

// Material carries a single broadband absorption coefficient
type Material struct {
	Alpha float64
}

// Reflection is the amplitude factor applied by one bounce off this material
func (m Material) Reflection() float64 {
	return math.Sqrt(1 - m.Alpha)
}

// Wall is a set of coplanar triangles sharing a material. Its normal points out of the room.
type Wall struct {
	Name      string
	Plane     Plane
	Material  Material
	Triangles []*pt.Triangle
}

type Room struct {
	// Floor outline for extruded rooms; nil for rooms loaded from a mesh
	Floor         Path2D
	Height        float64
	Walls         []Wall
	AirAbsorption bool
	M             *pt.Mesh

	wallOf map[*pt.Triangle]int
	volume float64
}

// NewRoom extrudes a floor polygon to a closed prism. Every surface gets the same material.
func NewRoom(corners Path2D, height float64, material Material, airAbsorption bool) (*Room, error) {
	if len(corners) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 corners, got %d", ErrDegenerateRoom, len(corners))
	}
	if height <= 0 {
		return nil, fmt.Errorf("%w: height must be positive, got %g", ErrDegenerateRoom, height)
	}
	if corners.Area() < 1e-9 {
		return nil, fmt.Errorf("%w: floor has zero area", ErrDegenerateRoom)
	}
	if !corners.IsSimple() {
		return nil, fmt.Errorf("%w: floor polygon intersects itself", ErrDegenerateRoom)
	}
	if material.Alpha < 0 || material.Alpha > 1 {
		return nil, fmt.Errorf("absorption must be in [0, 1], got %g", material.Alpha)
	}

	poly, tris := corners.Triangulate()
	if len(tris) != len(poly)-2 {
		return nil, fmt.Errorf("%w: could not triangulate floor", ErrDegenerateRoom)
	}

	floor := Wall{Name: "floor", Plane: MakePlane(V(0, 0, 0), V(0, 0, -1)), Material: material}
	ceiling := Wall{Name: "ceiling", Plane: MakePlane(V(0, 0, height), V(0, 0, 1)), Material: material}
	for _, t := range tris {
		a, b, c := poly[t[0]], poly[t[1]], poly[t[2]]
		floor.Triangles = append(floor.Triangles, newTriangle(a.At(0), c.At(0), b.At(0)))
		ceiling.Triangles = append(ceiling.Triangles, newTriangle(a.At(height), b.At(height), c.At(height)))
	}
	walls := []Wall{floor, ceiling}

	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		d := b.Sub(a)
		normal := V(d.Y, -d.X, 0)
		side := Wall{
			Name:     fmt.Sprintf("wall %d", i),
			Plane:    MakePlane(a.At(0), normal),
			Material: material,
			Triangles: []*pt.Triangle{
				newTriangle(a.At(0), b.At(0), b.At(height)),
				newTriangle(a.At(0), b.At(height), a.At(height)),
			},
		}
		// Collinear edges share a plane
		last := &walls[len(walls)-1]
		if len(walls) > 2 && last.Plane.Coplanar(side.Plane, 1e-9) && last.Plane.Normal.Dot(side.Plane.Normal) > 0 {
			last.Triangles = append(last.Triangles, side.Triangles...)
			continue
		}
		walls = append(walls, side)
	}
	if len(walls) > 3 {
		first, last := walls[2], walls[len(walls)-1]
		if first.Plane.Coplanar(last.Plane, 1e-9) && first.Plane.Normal.Dot(last.Plane.Normal) > 0 {
			walls[2].Triangles = append(walls[2].Triangles, last.Triangles...)
			walls = walls[:len(walls)-1]
		}
	}

	r := &Room{
		Floor:         poly,
		Height:        height,
		Walls:         walls,
		AirAbsorption: airAbsorption,
		volume:        poly.Area() * height,
	}
	r.compile()
	return r, nil
}

// NewFrom3MF loads a closed room mesh. Coordinates are in millimeters in the file.
// materials maps 3MF object names to materials; the "default" entry covers everything else.
func NewFrom3MF(filepath string, materials map[string]Material, airAbsorption bool) (*Room, error) {
	var model go3mf.Model
	r, err := go3mf.OpenReader(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening 3mf: %w", err)
	}
	defer r.Close()
	if err := r.Decode(&model); err != nil {
		return nil, fmt.Errorf("decoding 3mf: %w", err)
	}

	room := &Room{AirAbsorption: airAbsorption}
	for _, item := range model.Build.Items {
		obj, ok := model.FindObject(item.ObjectPath(), item.ObjectID)
		if !ok || obj.Mesh == nil {
			continue
		}
		material, ok := materials[obj.Name]
		if !ok {
			material = materials["default"]
		}
		vertex := func(i uint32) pt.Vector {
			v := obj.Mesh.Vertices.Vertex[i]
			return V(float64(v.X())/SCALE, float64(v.Y())/SCALE, float64(v.Z())/SCALE)
		}
		for _, t := range obj.Mesh.Triangles.Triangle {
			tri := newTriangle(vertex(t.V1), vertex(t.V2), vertex(t.V3))
			room.addToWall(obj.Name, tri, material)
		}
	}
	if len(room.Walls) < 4 {
		return nil, fmt.Errorf("%w: mesh has %d planar surfaces", ErrDegenerateRoom, len(room.Walls))
	}
	room.orientWalls()
	room.compile()
	if room.volume <= 0 {
		return nil, fmt.Errorf("%w: mesh encloses no volume", ErrDegenerateRoom)
	}
	_, _, _, _, zMin, zMax := room.bounds()
	room.Height = zMax - zMin
	return room, nil
}

// Models authored in millimeters
const SCALE = 1000

func newTriangle(v1, v2, v3 pt.Vector) *pt.Triangle {
	tri := pt.NewTriangle(v1, v2, v3, pt.Vector{}, pt.Vector{}, pt.Vector{}, pt.Material{})
	tri.FixNormals()
	return tri
}

func (r *Room) addToWall(name string, tri *pt.Triangle, material Material) {
	plane, ok := trianglePlane(tri)
	if !ok {
		return
	}
	for i := range r.Walls {
		w := &r.Walls[i]
		if w.Name == name && w.Plane.Coplanar(plane, 1e-6) {
			w.Triangles = append(w.Triangles, tri)
			return
		}
	}
	r.Walls = append(r.Walls, Wall{Name: name, Plane: plane, Material: material, Triangles: []*pt.Triangle{tri}})
}

// orientWalls flips wall normals of a mesh room so they point away from its centroid.
// Only exact for convex rooms; general meshes keep whatever the faces vote for.
func (r *Room) orientWalls() {
	c := r.centroid()
	for i := range r.Walls {
		w := &r.Walls[i]
		if w.Plane.Distance(c) > 0 {
			w.Plane = MakePlane(w.Plane.Point, w.Plane.Normal.MulScalar(-1))
		}
	}
}

func (r *Room) centroid() pt.Vector {
	var sum pt.Vector
	var area float64
	for _, w := range r.Walls {
		for _, t := range w.Triangles {
			a := triangleArea(t)
			sum = sum.Add(t.V1.Add(t.V2).Add(t.V3).MulScalar(a / 3))
			area += a
		}
	}
	return sum.MulScalar(1 / area)
}

func (r *Room) compile() {
	var tris []*pt.Triangle
	r.wallOf = map[*pt.Triangle]int{}
	for i, w := range r.Walls {
		for _, t := range w.Triangles {
			tris = append(tris, t)
			r.wallOf[t] = i
		}
	}
	r.M = pt.NewMesh(tris)
	r.M.Compile()
	if r.volume == 0 {
		r.volume = r.meshVolume()
	}
}

// meshVolume uses the divergence theorem over outward-oriented walls
func (r *Room) meshVolume() float64 {
	v := 0.0
	for _, w := range r.Walls {
		for _, t := range w.Triangles {
			n := t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1))
			if n.Dot(w.Plane.Normal) < 0 {
				n = n.MulScalar(-1)
			}
			v += t.V1.Dot(n) / 6
		}
	}
	return math.Abs(v)
}

func (r *Room) bounds() (xMin, xMax, yMin, yMax, zMin, zMax float64) {
	box := r.M.BoundingBox()
	return box.Min.X, box.Max.X, box.Min.Y, box.Max.Y, box.Min.Z, box.Max.Z
}

// WallAt returns the wall a mesh triangle belongs to, or -1
func (r *Room) WallAt(shape pt.Shape) int {
	tri, ok := shape.(*pt.Triangle)
	if !ok {
		return -1
	}
	if i, ok := r.wallOf[tri]; ok {
		return i
	}
	return -1
}

func (r *Room) Volume() float64 {
	return r.volume
}

func (r *Room) SurfaceArea() float64 {
	s := 0.0
	for _, w := range r.Walls {
		for _, t := range w.Triangles {
			s += triangleArea(t)
		}
	}
	return s
}

// MeanAbsorption is the area-weighted absorption of all walls
func (r *Room) MeanAbsorption() float64 {
	s, a := 0.0, 0.0
	for _, w := range r.Walls {
		for _, t := range w.Triangles {
			area := triangleArea(t)
			s += area
			a += area * w.Material.Alpha
		}
	}
	if s == 0 {
		return 0
	}
	return a / s
}

// RT60 is Sabine's reverberation time estimate, or +Inf for a perfectly reflective room
func (r *Room) RT60() float64 {
	absorption := r.SurfaceArea() * r.MeanAbsorption()
	if absorption == 0 {
		return math.Inf(1)
	}
	return 0.161 * r.volume / absorption
}

// Contains reports whether p lies strictly inside the room
func (r *Room) Contains(p pt.Vector) bool {
	if r.Floor != nil {
		return p.Z > 0 && p.Z < r.Height && r.Floor.Contains(To2D(p))
	}
	xMin, xMax, yMin, yMax, zMin, zMax := r.bounds()
	if p.X <= xMin || p.X >= xMax || p.Y <= yMin || p.Y >= yMax || p.Z <= zMin || p.Z >= zMax {
		return false
	}
	// Count crossings along a skewed ray so it does not graze edges
	ray := pt.Ray{Origin: p, Direction: V(0.5773, 0.5774, 0.5775).Normalize()}
	crossings := 0
	for i := 0; i < 1000; i++ {
		hit := r.M.Intersect(ray)
		if !hit.Ok() {
			break
		}
		crossings++
		ray.Origin = ray.Origin.Add(ray.Direction.MulScalar(hit.T + 1e-7))
	}
	return crossings%2 == 1
}

// CheckInside returns ErrOutsideRoom for any position outside the room
func (r *Room) CheckInside(positions ...pt.Vector) error {
	for _, p := range positions {
		if !r.Contains(p) {
			return fmt.Errorf("%w: (%.3f, %.3f, %.3f)", ErrOutsideRoom, p.X, p.Y, p.Z)
		}
	}
	return nil
}
