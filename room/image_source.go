package room

import (
	"math"
	"sort"

	"github.com/fogleman/pt/pt"
)

// Image is a copy of a source mirrored across one or more walls
type Image struct {
	Position pt.Vector
	// Walls in the order sound reflects off them on its way to the listener
	Walls []int
	// Product of the amplitude reflection factors of Walls
	Reflection float64
}

func (i Image) Order() int {
	return len(i.Walls)
}

// Arrival is a specular path that reaches a microphone
type Arrival struct {
	Image Image
	// Reflection points in the order sound reaches them
	AllReflections []pt.Vector
	// Path length in meters, clamped to MIN_DISTANCE
	Distance float64
	// Linear amplitude of the tap, including spreading, reflection and air losses
	Gain float64
}

// Delay is the arrival time in seconds
func (a Arrival) Delay() float64 {
	return a.Distance / SPEED_OF_SOUND
}

func (a Arrival) GainDB() float64 {
	return toDB(a.Gain * a.Gain)
}

// ImageSources mirrors source across the walls up to maxOrder reflections.
// An image is only mirrored across walls it lies on the room side of.
func (r *Room) ImageSources(source pt.Vector, maxOrder int) []Image {
	images := []Image{{Position: source, Reflection: 1}}
	frontier := images
	for order := 1; order <= maxOrder; order++ {
		var next []Image
		for _, img := range frontier {
			for w, wall := range r.Walls {
				if img.Order() > 0 && img.Walls[img.Order()-1] == w {
					continue
				}
				if wall.Plane.Distance(img.Position) >= -1e-9 {
					continue
				}
				walls := make([]int, 0, img.Order()+1)
				walls = append(walls, img.Walls...)
				next = append(next, Image{
					Position:   wall.Plane.Mirror(img.Position),
					Walls:      append(walls, w),
					Reflection: img.Reflection * wall.Material.Reflection(),
				})
			}
		}
		images = append(images, next...)
		frontier = next
	}
	return images
}

// Arrivals returns every visible specular path from source to mic up to maxOrder, earliest first
func (r *Room) Arrivals(source, mic pt.Vector, maxOrder int) ([]Arrival, error) {
	if err := r.CheckInside(source, mic); err != nil {
		return nil, err
	}
	return r.VisibleArrivals(r.ImageSources(source, maxOrder), source, mic), nil
}

type imageKey [3]int64

func keyOf(v pt.Vector) imageKey {
	return imageKey{int64(math.Round(v.X * 1e6)), int64(math.Round(v.Y * 1e6)), int64(math.Round(v.Z * 1e6))}
}

// VisibleArrivals keeps the images whose reflection path to mic is unobstructed.
// Images that land on the same point through different wall sequences are counted once.
func (r *Room) VisibleArrivals(images []Image, source, mic pt.Vector) []Arrival {
	seen := map[imageKey]bool{}
	var arrivals []Arrival
	m := airDecay()
	for _, img := range images {
		k := keyOf(img.Position)
		if seen[k] {
			continue
		}
		points, ok := r.reflectionPath(img, source, mic)
		if !ok {
			continue
		}
		seen[k] = true
		d := math.Max(img.Position.Sub(mic).Length(), MIN_DISTANCE)
		gain := img.Reflection / d
		if r.AirAbsorption {
			gain *= math.Exp(-m * d / 2)
		}
		arrivals = append(arrivals, Arrival{
			Image:          img,
			AllReflections: points,
			Distance:       d,
			Gain:           gain,
		})
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].Distance < arrivals[j].Distance
	})
	return arrivals
}

// reflectionPath walks back from the microphone through each mirror and checks
// that every leg lands on the wall it should and nothing blocks the way.
func (r *Room) reflectionPath(img Image, source, mic pt.Vector) ([]pt.Vector, bool) {
	chain := make([]pt.Vector, img.Order())
	p := source
	for k, w := range img.Walls {
		p = r.Walls[w].Plane.Mirror(p)
		chain[k] = p
	}

	points := make([]pt.Vector, img.Order())
	from := mic
	for k := img.Order() - 1; k >= 0; k-- {
		w := img.Walls[k]
		q, ok := r.Walls[w].Plane.intersectSegment(from, chain[k])
		if !ok {
			return nil, false
		}
		if !r.reaches(from, q, w) {
			return nil, false
		}
		points[k] = q
		from = q
	}
	if !r.reaches(from, source, -1) {
		return nil, false
	}
	return points, true
}

const pathEpsilon = 1e-6

// reaches reports whether a straight leg from a to b is clear. When wall is
// non-negative, b lies on that wall and the leg must end there.
func (r *Room) reaches(a, b pt.Vector, wall int) bool {
	d := b.Sub(a)
	length := d.Length()
	if length < pathEpsilon {
		return true
	}
	dir := d.MulScalar(1 / length)
	ray := pt.Ray{Origin: a.Add(dir.MulScalar(pathEpsilon)), Direction: dir}
	remaining := length - pathEpsilon
	hit := r.M.Intersect(ray)
	tol := 1e-5 + 1e-6*length
	if wall < 0 {
		return !hit.Ok() || hit.T >= remaining-tol
	}
	if !hit.Ok() || math.Abs(hit.T-remaining) > tol {
		return false
	}
	return r.WallAt(hit.Shape) == wall
}
