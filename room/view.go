package room

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/fogleman/gg"
	"github.com/fogleman/pt/pt"
)

// Bearing is a direction drawn from the scene's reference point
type Bearing struct {
	Label  string
	Angle  float64
	Color  string
	Dashed bool
}

// Scene is everything drawn on a plan view. Y grows downwards, like the floor plan it came from.
type Scene struct {
	Room      *Room
	Mics      []pt.Vector
	Sources   []Point
	Reference pt.Vector
	Bearings  []Bearing
}

// outline returns the floor plan of the room, slicing the mesh for rooms without a floor polygon
func (scene Scene) outline() []Path2D {
	if scene.Room == nil {
		return nil
	}
	if scene.Room.Floor != nil {
		closed := append(Path2D{}, scene.Room.Floor...)
		return []Path2D{append(closed, scene.Room.Floor[0])}
	}
	_, _, _, _, zMin, zMax := scene.Room.bounds()
	plane := MakePlane(V(0, 0, (zMin+zMax)/2), V(0, 0, 1))
	var paths []Path2D
	for _, p := range plane.SliceMesh(scene.Room.M) {
		path := Path2D{}
		for _, v := range p {
			path = append(path, To2D(v))
		}
		paths = append(paths, path)
	}
	return paths
}

func (scene Scene) BoundingBox() (XMin, XMax, YMin, YMax float64) {
	var all Path2D
	for _, p := range scene.outline() {
		all = append(all, p...)
	}
	for _, m := range scene.Mics {
		all = append(all, To2D(m))
	}
	for _, s := range scene.Sources {
		all = append(all, To2D(s.Position))
	}
	all = append(all, To2D(scene.Reference))
	return all.BoundingBox()
}

type View struct {
	Scene Scene
	XSize int
	YSize int
	// Blank border around the scene, in pixels
	Margin float64
	// These cache the values needed to scale and translate from the scene to the requested image size
	scale      float64
	xTranslate float64
	yTranslate float64
}

func (view *View) computeScaleAndTranslation() {
	XMin, XMax, YMin, YMax := view.Scene.BoundingBox()
	view.xTranslate = -XMin
	view.yTranslate = -YMin
	XScale := (float64(view.XSize) - 2*view.Margin) / math.Max(XMax-XMin, 1e-9)
	YScale := (float64(view.YSize) - 2*view.Margin) / math.Max(YMax-YMin, 1e-9)
	view.scale = math.Min(XScale, YScale)
}

func (view *View) translateAndScale(p Point2D) Point2D {
	if view.scale == 0 {
		view.computeScaleAndTranslation()
	}
	return p.Translate(view.xTranslate, view.yTranslate).Scale(view.scale).Translate(view.Margin, view.Margin)
}

func (view *View) point(v pt.Vector) Point2D {
	return view.translateAndScale(To2D(v))
}

// PlotArrivals draws the floor plan with microphones, sources, bearings and the given specular paths
func (view *View) PlotArrivals(arrivals []Arrival, source, mic pt.Vector) (image.Image, error) {
	c := gg.NewContext(view.XSize, view.YSize)
	c.SetRGB(1, 1, 1)
	c.Clear()

	c.SetRGB(0, 0, 0)
	c.SetLineWidth(3)
	for _, lines := range view.Scene.outline() {
		for i := 0; i < len(lines)-1; i++ {
			p1 := view.translateAndScale(lines[i])
			p2 := view.translateAndScale(lines[i+1])
			c.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
		}
	}
	c.Stroke()

	ref := view.point(view.Scene.Reference)
	length := math.Min(float64(view.XSize), float64(view.YSize)) / 3
	for _, b := range view.Scene.Bearings {
		c.SetHexColor(b.Color)
		c.SetLineWidth(2)
		if b.Dashed {
			c.SetDash(6, 4)
		}
		c.DrawLine(ref.X, ref.Y, ref.X+length*math.Cos(b.Angle), ref.Y-length*math.Sin(b.Angle))
		c.Stroke()
		c.SetDash()
		c.DrawString(b.Label, ref.X+length*math.Cos(b.Angle), ref.Y-length*math.Sin(b.Angle))
	}

	for _, arrival := range arrivals {
		c.SetHexColor(PastelRed)
		c.SetLineWidth(math.Max(0.5, 4+arrival.GainDB()/10))
		p1 := view.point(source)
		for _, r := range arrival.AllReflections {
			p2 := view.point(r)
			c.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
			p1 = p2
		}
		p2 := view.point(mic)
		c.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
		c.Stroke()
	}

	c.SetHexColor(PastelBlue)
	for _, m := range view.Scene.Mics {
		p := view.point(m)
		c.DrawCircle(p.X, p.Y, 3)
		c.Fill()
	}
	for _, s := range view.Scene.Sources {
		c.SetHexColor(s.Color)
		p := view.point(s.Position)
		c.DrawCircle(p.X, p.Y, 6)
		c.Fill()
		c.SetRGB(0, 0, 0)
		c.DrawString(s.Name, p.X+8, p.Y)
	}
	return c.Image(), nil
}

// SaveImage writes img as a PNG
func SaveImage(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Curve is one named line on a response plot
type Curve struct {
	Name   string
	Values []float64
}

// PlotResponse draws spatial response curves over the azimuth grid (radians), with
// a vertical marker at each true bearing, and saves the plot to filename.
func PlotResponse(X, Y int, grid []float64, curves []Curve, truth []float64, filename string) error {
	p := plot.New()
	p.Title.Text = "Spatial response"
	p.X.Label.Text = "Azimuth (deg)"
	p.Y.Label.Text = "Normalized response"
	p.Y.Min, p.Y.Max = 0, 1.05

	for i, curve := range curves {
		if len(curve.Values) != len(grid) {
			continue
		}
		xys := make(plotter.XYs, len(grid))
		for j := range grid {
			xys[j].X = grid[j] * 180 / math.Pi
			xys[j].Y = curve.Values[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(curve.Name, line)
	}
	for _, t := range truth {
		marker, err := plotter.NewLine(plotter.XYs{{X: t * 180 / math.Pi, Y: 0}, {X: t * 180 / math.Pi, Y: 1.05}})
		if err != nil {
			return err
		}
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(marker)
	}
	return p.Save(font.Length(X), font.Length(Y), filename)
}

type valuer struct {
	data   map[int]float64
	length int
	floor  float64
}

// AddArrival records an arrival at delay seconds after the direct sound
func (v *valuer) AddArrival(delay float64, gainDB float64) {
	i := int(delay / MS)
	if i < 0 || i >= v.length {
		return
	}
	if gainDB-v.floor > v.data[i] {
		v.data[i] = gainDB - v.floor
	}
}

func (v valuer) Len() int {
	return v.length
}

func (v valuer) Value(i int) float64 {
	if gain, ok := v.data[i]; ok {
		return gain
	}
	return 0
}

// PlotEchogram bins specular arrivals by millisecond after the direct sound.
// Bars show level above floorDB.
func PlotEchogram(X, Y int, arrivals []Arrival, windowMS int, floorDB float64) (image.Image, error) {
	p := plot.New()
	p.Title.Text = "Echogram"
	p.X.Label.Text = "Time after direct sound (ms)"
	p.Y.Label.Text = fmt.Sprintf("Level above %.0f dB", floorDB)

	v := valuer{data: map[int]float64{}, length: windowMS, floor: floorDB}
	if len(arrivals) > 0 {
		direct := arrivals[0].Delay()
		for _, arrival := range arrivals {
			v.AddArrival(arrival.Delay()-direct, arrival.GainDB())
		}
	}

	tmpdir, err := os.MkdirTemp("", "goroom")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpdir)

	bars, err := plotter.NewBarChart(v, vg.Points(3))
	if err != nil {
		return nil, err
	}
	p.Add(bars)
	if err := p.Save(font.Length(X), font.Length(Y), path.Join(tmpdir, "echogram.png")); err != nil {
		return nil, err
	}
	f, err := os.Open(path.Join(tmpdir, "echogram.png"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
