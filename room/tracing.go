package room

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/fogleman/pt/pt"
)

var ErrBadTraceParams = errors.New("invalid trace parameters")

// TraceParams contains parameters to guide tracing
type TraceParams struct {
	// Number of rays fired from each source
	Rays int
	// Stop tracing a ray after it has travelled this many seconds
	TimeBudget float64
	// Stop tracing a ray once it has lost this many dB relative to its initial energy
	EnergyThresholdDB float64
	// Rays that pass within this distance of a microphone deposit energy there
	//
	// Distance in meters
	ReceiverRadius float64
	// Width of each histogram bin in seconds
	BinWidth float64
}

const (
	DEFAULT_RAYS            = 5000
	DEFAULT_RECEIVER_RADIUS = 0.5
	DEFAULT_BIN_WIDTH       = 4 * MS
	DEFAULT_ENERGY_FLOOR_DB = -70.0
)

// DefaultTraceParams sizes the time budget from the room's reverberation time
func DefaultTraceParams(r *Room) TraceParams {
	return TraceParams{
		Rays:              DEFAULT_RAYS,
		TimeBudget:        math.Min(math.Max(r.RT60(), 0.05), 1.5),
		EnergyThresholdDB: DEFAULT_ENERGY_FLOOR_DB,
		ReceiverRadius:    DEFAULT_RECEIVER_RADIUS,
		BinWidth:          DEFAULT_BIN_WIDTH,
	}
}

func (p TraceParams) validate() error {
	switch {
	case p.Rays <= 0:
		return fmt.Errorf("%w: rays must be positive", ErrBadTraceParams)
	case p.TimeBudget <= 0:
		return fmt.Errorf("%w: time budget must be positive", ErrBadTraceParams)
	case p.ReceiverRadius <= 0:
		return fmt.Errorf("%w: receiver radius must be positive", ErrBadTraceParams)
	case p.BinWidth <= 0:
		return fmt.Errorf("%w: bin width must be positive", ErrBadTraceParams)
	case p.EnergyThresholdDB >= 0:
		return fmt.Errorf("%w: energy threshold must be negative", ErrBadTraceParams)
	}
	return nil
}

// Histogram is the energy deposited at one microphone, binned by arrival time
type Histogram struct {
	BinWidth float64
	Energy   []float64
}

// Duration is the time covered by the histogram
func (h Histogram) Duration() float64 {
	return float64(len(h.Energy)) * h.BinWidth
}

type TraceStats struct {
	Rays    int
	Bounces int
	// Rays that left the mesh through a gap
	Escaped int
}

// Trace fires params.Rays rays from source and returns one energy histogram per microphone.
// All randomness comes from rnd.
func (r *Room) Trace(source pt.Vector, mics []pt.Vector, params TraceParams, rnd *rand.Rand) ([]Histogram, TraceStats, error) {
	if err := params.validate(); err != nil {
		return nil, TraceStats{}, err
	}
	if err := r.CheckInside(source); err != nil {
		return nil, TraceStats{}, err
	}

	bins := int(math.Ceil(params.TimeBudget / params.BinWidth))
	hists := make([]Histogram, len(mics))
	for i := range hists {
		hists[i] = Histogram{BinWidth: params.BinWidth, Energy: make([]float64, bins)}
	}

	stats := TraceStats{}
	for _, shot := range SampleSphere(source, params.Rays, rnd) {
		r.traceShot(shot, mics, hists, params, &stats)
		stats.Rays++
	}
	return hists, stats, nil
}

// traceShot follows one ray until it runs out of energy or time
func (r *Room) traceShot(shot Shot, mics []pt.Vector, hists []Histogram, params TraceParams, stats *TraceStats) {
	m := 0.0
	if r.AirAbsorption {
		m = airDecay()
	}
	threshold := shot.Energy * fromDB(params.EnergyThresholdDB)
	maxDistance := params.TimeBudget * SPEED_OF_SOUND

	currentRay := shot.Ray
	energy := shot.Energy
	distance := 0.0
	for energy > threshold && distance < maxDistance {
		hit := r.M.Intersect(currentRay)
		if !hit.Ok() {
			stats.Escaped++
			return
		}
		for i, mic := range mics {
			deposit(&hists[i], currentRay, hit.T, distance, energy, mic, params.ReceiverRadius, m)
		}
		energy *= math.Exp(-m * hit.T)
		distance += hit.T

		info := hit.Info(currentRay)
		if w := r.WallAt(hit.Shape); w >= 0 {
			energy *= 1 - r.Walls[w].Material.Alpha
		}

		normal := info.Normal
		if normal.Dot(currentRay.Direction) > 0 {
			normal = normal.MulScalar(-1)
		}
		reflected := pt.Ray{
			Origin:    info.Position,
			Direction: currentRay.Direction.Sub(normal.MulScalar(2 * normal.Dot(currentRay.Direction))).Normalize(),
		}
		verifyReflectionLaw(currentRay, normal, reflected)
		currentRay = pt.Ray{
			Origin:    info.Position.Add(normal.MulScalar(1e-7)),
			Direction: reflected.Direction,
		}
		stats.Bounces++
	}
}

// deposit adds the ray's energy to the bin of its travel time if the segment
// passes through the receiver sphere. Dividing by the hit probability keeps the
// estimate unbiased against the 1/d^2 spreading of a point source.
func deposit(h *Histogram, ray pt.Ray, length, travelled, energy float64, mic pt.Vector, radius, m float64) {
	t := mic.Sub(ray.Origin).Dot(ray.Direction)
	if t < 0 || t >= length {
		return
	}
	closest := ray.Origin.Add(ray.Direction.MulScalar(t))
	if closest.Sub(mic).Length() > radius {
		return
	}
	dist := travelled + t
	bin := int(dist / SPEED_OF_SOUND / h.BinWidth)
	if bin >= len(h.Energy) {
		return
	}
	r2 := math.Max(dist*dist, radius*radius)
	pHit := 1 - math.Sqrt(1-radius*radius/r2)
	h.Energy[bin] += energy * math.Exp(-m*t) / (r2 * pHit)
}
