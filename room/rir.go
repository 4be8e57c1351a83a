package room

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/fogleman/pt/pt"
)

// Number of taps used to place an impulse between samples
const FRAC_DELAY_LENGTH = 81

// SourceResponse holds the impulse responses from one source to every microphone
type SourceResponse struct {
	RIRs     [][]float64
	Arrivals [][]Arrival
	Stats    TraceStats
}

// ImpulseResponses renders the RIR from source to each microphone. Ray directions are
// drawn first and the diffuse noise after them, both from rnd. With params.Rays == 0
// only the specular part is rendered.
func (r *Room) ImpulseResponses(source pt.Vector, mics []pt.Vector, maxOrder int, params TraceParams, rnd *rand.Rand, fs int) (SourceResponse, error) {
	if len(mics) == 0 {
		return SourceResponse{}, fmt.Errorf("no microphones")
	}
	if err := r.CheckInside(mics...); err != nil {
		return SourceResponse{}, err
	}
	hists := make([]Histogram, len(mics))
	var noise [][]float64
	var stats TraceStats
	if params.Rays > 0 {
		var err error
		hists, stats, err = r.Trace(source, mics, params, rnd)
		if err != nil {
			return SourceResponse{}, err
		}
		noise = DiffuseNoise(rnd, len(hists[0].Energy), SamplesPerBin(params.BinWidth, fs))
	} else if err := r.CheckInside(source); err != nil {
		return SourceResponse{}, err
	}

	images := r.ImageSources(source, maxOrder)
	resp := SourceResponse{
		RIRs:     make([][]float64, len(mics)),
		Arrivals: make([][]Arrival, len(mics)),
		Stats:    stats,
	}
	for i, mic := range mics {
		resp.Arrivals[i] = r.VisibleArrivals(images, source, mic)
		resp.RIRs[i] = Synthesize(resp.Arrivals[i], hists[i], noise, fs)
	}
	return resp, nil
}

// DiffuseNoise draws one unit-energy noise burst per histogram bin.
// Sharing the result between the microphones of one source keeps their tails coherent.
func DiffuseNoise(rnd *rand.Rand, bins, samplesPerBin int) [][]float64 {
	noise := make([][]float64, bins)
	for b := range noise {
		burst := make([]float64, samplesPerBin)
		energy := 0.0
		for i := range burst {
			burst[i] = 2*rnd.Float64() - 1
			energy += burst[i] * burst[i]
		}
		if energy > 0 {
			scale := 1 / math.Sqrt(energy)
			for i := range burst {
				burst[i] *= scale
			}
		}
		noise[b] = burst
	}
	return noise
}

// SamplesPerBin converts a histogram bin width to whole samples
func SamplesPerBin(binWidth float64, fs int) int {
	return int(math.Max(1, math.Round(binWidth*float64(fs))))
}

// Synthesize builds one impulse response at fs from the specular arrivals and the
// traced energy histogram. The diffuse tail only starts after the last specular arrival.
func Synthesize(arrivals []Arrival, hist Histogram, noise [][]float64, fs int) []float64 {
	last := 0.0
	for _, a := range arrivals {
		last = math.Max(last, a.Delay()*float64(fs))
	}
	perBin := SamplesPerBin(hist.BinWidth, fs)
	length := int(math.Ceil(last)) + FRAC_DELAY_LENGTH/2 + 1
	length = max(length, len(hist.Energy)*perBin)

	rir := make([]float64, length)
	for _, a := range arrivals {
		addFractionalDelay(rir, a.Delay()*float64(fs), a.Gain)
	}

	for b, e := range hist.Energy {
		if e <= 0 || b >= len(noise) {
			continue
		}
		amp := math.Sqrt(e)
		for i, v := range noise[b] {
			n := b*perBin + i
			if float64(n) <= last || n >= length {
				continue
			}
			rir[n] += amp * v
		}
	}
	return rir
}

// addFractionalDelay adds a Hann-windowed sinc centered at delay samples.
// Taps that would fall before t=0 are dropped.
func addFractionalDelay(dst []float64, delay, gain float64) {
	n0 := int(math.Floor(delay))
	half := FRAC_DELAY_LENGTH / 2
	for j := 0; j < FRAC_DELAY_LENGTH; j++ {
		k := n0 - half + j
		if k < 0 || k >= len(dst) {
			continue
		}
		x := float64(k) - delay
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(j)/float64(FRAC_DELAY_LENGTH-1))
		dst[k] += gain * sinc(x) * w
	}
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// WriteRIRText writes an impulse response in the plain text layout REW exports
func WriteRIRText(w io.Writer, rir []float64, fs int) error {
	peak := 0
	for i, v := range rir {
		if math.Abs(v) > math.Abs(rir[peak]) {
			peak = i
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "* Impulse Response data saved by go-room-doa\n")
	fmt.Fprintf(bw, "%d // Peak index\n", peak)
	fmt.Fprintf(bw, "%d // Response length\n", len(rir))
	fmt.Fprintf(bw, "%.10e // Sample interval (seconds)\n", 1/float64(fs))
	fmt.Fprintf(bw, "0.0 // Start time (seconds)\n")
	fmt.Fprintf(bw, "* Data start\n")
	for _, v := range rir {
		fmt.Fprintf(bw, "%.10e\n", v)
	}
	return bw.Flush()
}
