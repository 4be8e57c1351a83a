// Package wavio is the audio boundary: it decodes WAV files into mono float
// signals at the engine sample rate and writes rendered signals as 16-bit PCM.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	lin "github.com/sgreben/piecewiselinear"
)

var ErrNotWAV = errors.New("wavio: not a valid WAV file")

// Clip is a decoded mono signal
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds
func (c Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load decodes a WAV file and resamples it to rate. A rate of 0 keeps the file's rate.
func Load(path string, rate int) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()
	clip, err := Read(f)
	if err != nil {
		return Clip{}, fmt.Errorf("%s: %w", path, err)
	}
	if rate > 0 && rate != clip.SampleRate {
		clip = Clip{Samples: Resample(clip.Samples, clip.SampleRate, rate), SampleRate: rate}
	}
	return clip, nil
}

// Read decodes integer PCM WAV data, averaging channels down to mono and scaling to [-1, 1]
func Read(r io.ReadSeeker) (Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Clip{}, ErrNotWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("wavio: decoding: %w", err)
	}
	depth := int(d.BitDepth)
	if depth < 8 || depth > 32 {
		return Clip{}, fmt.Errorf("wavio: unsupported bit depth %d", depth)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return Clip{}, fmt.Errorf("wavio: no channels")
	}

	scale := math.Pow(2, float64(depth-1))
	offset := 0.0
	if depth == 8 {
		// 8-bit WAV is unsigned
		offset = scale
	}
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// Resample converts x from rate `from` to rate `to` by linear interpolation
func Resample(x []float64, from, to int) []float64 {
	if from == to || len(x) == 0 || from <= 0 || to <= 0 {
		return append([]float64(nil), x...)
	}
	ts := make([]float64, len(x))
	for i := range ts {
		ts[i] = float64(i) / float64(from)
	}
	f := lin.Function{X: ts, Y: x}

	n := int(math.Floor(float64(len(x)-1)*float64(to)/float64(from))) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = f.At(float64(i) / float64(to))
	}
	return out
}

// Write encodes x as 16-bit mono PCM, clipping to [-1, 1]
func Write(w io.WriteSeeker, x []float64, rate int) error {
	enc := wav.NewEncoder(w, rate, 16, 1, 1)
	data := make([]int, len(x))
	for i, v := range x {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encoding: %w", err)
	}
	return enc.Close()
}

// Save writes x to a new WAV file at path
func Save(path string, x []float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, x, rate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
