package room

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fogleman/pt/pt"
)

const (
	PastelRed   = "#FF6961"
	PastelGreen = "#77DD77"
	PastelBlue  = "#779ECB"
)

// JSON schema types
type PointJSON struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Size  float64 `json:"size,omitempty"`
	Name  string  `json:"name,omitempty"`
	Color string  `json:"color,omitempty"`
}

type AcousticPathJSON struct {
	Points    []PointJSON `json:"points"`
	Gain      float64     `json:"gain"` // stored in dB
	Distance  float64     `json:"distance"`
	DelayMS   float64     `json:"delayMs"`
	Order     int         `json:"order"`
	Walls     []string    `json:"walls,omitempty"`
	Name      string      `json:"name,omitempty"`
	Color     string      `json:"color,omitempty"`
	Thickness float64     `json:"thickness,omitempty"`
}

type ZoneJSON struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Radius       float64 `json:"radius"`
	Name         string  `json:"name,omitempty"`
	Color        string  `json:"color,omitempty"`
	Transparency float64 `json:"transparency,omitempty"`
}

// Point is a labelled marker, such as a source or a microphone
type Point struct {
	Position pt.Vector
	Name     string
	Color    string
}

// Zone is a sphere, such as a receiver's sensing radius
type Zone struct {
	Center pt.Vector
	Radius float64
	Name   string
}

// Annotations groups everything written to an annotations file
type Annotations struct {
	Points        []PointJSON        `json:"points,omitempty"`
	AcousticPaths []AcousticPathJSON `json:"acousticPaths,omitempty"`
	Zones         []ZoneJSON         `json:"zones,omitempty"`
}

func VectorToJSON(v pt.Vector) PointJSON {
	return PointJSON{
		X:    v.X,
		Y:    v.Y,
		Z:    v.Z,
		Size: 1.0,
	}
}

// ArrivalToAcousticPathJSON lays the path out from source through each reflection to the microphone
func (r *Room) ArrivalToAcousticPathJSON(a Arrival, source, mic pt.Vector) AcousticPathJSON {
	points := make([]PointJSON, 0, len(a.AllReflections)+2)
	points = append(points, VectorToJSON(source))
	for _, v := range a.AllReflections {
		points = append(points, VectorToJSON(v))
	}
	points = append(points, VectorToJSON(mic))

	walls := make([]string, len(a.Image.Walls))
	for i, w := range a.Image.Walls {
		walls[i] = r.Walls[w].Name
	}
	return AcousticPathJSON{
		Points:   points,
		Gain:     a.GainDB(),
		Distance: a.Distance,
		DelayMS:  a.Delay() / MS,
		Order:    a.Image.Order(),
		Walls:    walls,
		Color:    PastelRed,
	}
}

// PathSet is every specular arrival between one source and one microphone
type PathSet struct {
	Name     string
	Source   pt.Vector
	Mic      pt.Vector
	Arrivals []Arrival
	Color    string
}

// Annotate collects markers, specular paths and zones. Each path is named after its set.
func (r *Room) Annotate(points []Point, sets []PathSet, zones []Zone) Annotations {
	container := Annotations{
		Points: make([]PointJSON, 0, len(points)),
		Zones:  make([]ZoneJSON, 0, len(zones)),
	}
	for _, p := range points {
		j := VectorToJSON(p.Position)
		j.Name = p.Name
		j.Color = p.Color
		container.Points = append(container.Points, j)
	}
	for _, set := range sets {
		for _, arrival := range set.Arrivals {
			path := r.ArrivalToAcousticPathJSON(arrival, set.Source, set.Mic)
			path.Name = set.Name
			if set.Color != "" {
				path.Color = set.Color
			}
			container.AcousticPaths = append(container.AcousticPaths, path)
		}
	}
	for _, z := range zones {
		container.Zones = append(container.Zones, ZoneJSON{
			X:      z.Center.X,
			Y:      z.Center.Y,
			Z:      z.Center.Z,
			Radius: z.Radius,
			Name:   z.Name,
		})
	}
	return container
}

// Save writes the annotations as indented JSON
func (a Annotations) Save(filename string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling points and paths: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadAnnotations reads a file written by Save
func LoadAnnotations(filename string) (Annotations, error) {
	var a Annotations
	data, err := os.ReadFile(filename)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return a, nil
}
