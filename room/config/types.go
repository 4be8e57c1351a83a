package config

// SceneConfig is the complete description of one simulation: the floor plan in
// pixels, the robot carrying the microphone array, the sources and the engine settings
type SceneConfig struct {
	Metadata           Metadata           `yaml:"metadata"`
	Room               RoomConfig         `yaml:"room"`
	Materials          Materials          `yaml:"materials"`
	SurfaceAssignments SurfaceAssignments `yaml:"surface_assignments,omitempty"`
	Robot              Robot              `yaml:"robot"`
	Microphones        []Microphone       `yaml:"microphones"`
	Sources            []Source           `yaml:"sources"`
	// Pixels per meter
	Scale      float64    `yaml:"scale"`
	Simulation Simulation `yaml:"simulation"`
}

type Metadata struct {
	Timestamp string `yaml:"timestamp"` // YYYY-MM-DD HH:MM:SS in UTC
	GitCommit string `yaml:"git_commit"`
}

// Pixel is a floor plan coordinate. Y grows downwards.
type Pixel struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type RoomConfig struct {
	Corners []Pixel `yaml:"corners,omitempty"`
	Height  float64 `yaml:"height"` // meters
	// Name of an entry in materials
	Material      string `yaml:"material"`
	AirAbsorption bool   `yaml:"air_absorption"`
	// Optional 3MF model used instead of extruding the corners
	Mesh string `yaml:"mesh,omitempty"`
}

type Materials struct {
	Inline   map[string]Material `yaml:"inline,omitempty"`
	FromFile string              `yaml:"from_file,omitempty"`
}

type Material struct {
	Absorption float64 `yaml:"absorption" json:"absorption"`
}

type SurfaceAssignments struct {
	Inline   map[string]string `yaml:"inline,omitempty"` // mesh object name -> material name
	FromFile string            `yaml:"from_file,omitempty"`
}

type Robot struct {
	Position Pixel   `yaml:"position"`
	Radius   float64 `yaml:"radius"` // pixels
	// Spread this many microphones evenly on the rim, the first at +X.
	// Only used when no microphones are listed.
	CircularMics int `yaml:"circular_mics,omitempty"`
}

// Microphone offsets are in units of the robot radius
type Microphone struct {
	NX float64 `yaml:"nx"`
	NY float64 `yaml:"ny"`
}

type Source struct {
	Name string `yaml:"name"`
	// Unplaced sources are listed but not simulated
	Position *Pixel `yaml:"position,omitempty"`
	// WAV file with the dry signal
	File string `yaml:"file"`
}

type Simulation struct {
	SampleRate int `yaml:"sample_rate,omitempty"`
	// Omitted fields take the engine defaults. rays: 0 renders the specular part only.
	Rays           *int    `yaml:"rays,omitempty"`
	Seed           int64   `yaml:"seed"`
	MaxOrder       *int    `yaml:"max_order,omitempty"`
	ReceiverRadius float64 `yaml:"receiver_radius,omitempty"` // meters
	Premix         *bool   `yaml:"premix,omitempty"`
	DOA            *bool   `yaml:"doa,omitempty"`
	// Bearings to report per algorithm, defaults to the number of rendered sources
	NumSources       int        `yaml:"num_sources,omitempty"`
	MinSeparationDeg float64    `yaml:"min_separation_deg,omitempty"`
	FreqRange        [2]float64 `yaml:"freq_range,omitempty"` // Hz
	KeepRIRs         bool       `yaml:"keep_rirs"`
}
