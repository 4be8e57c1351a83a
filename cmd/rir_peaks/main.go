// rir_peaks lists the reflections standing out of an impulse response exported as text,
// either by a simulation run (rir_<source>_<mic>.txt) or by REW.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
)

var ErrNoData = errors.New("* Data start not found")

// Sample is one impulse response sample relative to the peak
type Sample struct {
	TimeMs float64
	Linear float64
	Db     float64
}

// LinearToDb converts a linear amplitude value to decibels
func LinearToDb(volume float64, minDb float64) float64 {
	if volume == 0.0 {
		return minDb
	}
	return 20.0 * math.Log10(math.Abs(volume))
}

// ParseImpulseResponse reads the header fields and the samples following "* Data start"
func ParseImpulseResponse(r io.Reader) (peakIndex int, sampleInterval float64, samples []float64, err error) {
	scanner := bufio.NewScanner(r)
	peakIndex = -1
	foundDataStart := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.Contains(line, "// Peak index"):
			peakIndex, _ = strconv.Atoi(strings.Fields(line)[0])
		case strings.Contains(line, "// Sample interval (seconds)"):
			sampleInterval, _ = strconv.ParseFloat(strings.Fields(line)[0], 64)
		case line == "* Data start":
			foundDataStart = true
		}
		if foundDataStart {
			break
		}
	}
	if !foundDataStart {
		return 0, 0, nil, ErrNoData
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		val, parseErr := strconv.ParseFloat(line, 64)
		if parseErr != nil {
			continue
		}
		samples = append(samples, val)
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, nil, err
	}

	if peakIndex < 0 || peakIndex >= len(samples) || sampleInterval <= 0 {
		return 0, 0, nil, fmt.Errorf("metadata missing or malformed")
	}
	return peakIndex, sampleInterval, samples, nil
}

// MakeProcessedSamples returns the samples from peakIndex on, peak-relative in dB
func MakeProcessedSamples(peakIndex int, sampleInterval float64, samples []float64) []Sample {
	peak := math.Abs(samples[peakIndex])
	result := make([]Sample, 0, len(samples)-peakIndex)
	for i, v := range samples[peakIndex:] {
		db := LinearToDb(v, -120.0)
		if peak > 0 {
			db = LinearToDb(v/peak, -120.0)
		}
		result = append(result, Sample{
			TimeMs: float64(i) * sampleInterval * 1000.0,
			Linear: v,
			Db:     db,
		})
	}
	return result
}

// FindLocalMaxima returns the loudest sample of every span lying at least thresholdDb above baseline
func FindLocalMaxima(samples []Sample, thresholdDb float64, baseline float64) []Sample {
	var maxima []Sample
	inSpan := false
	var currMax Sample

	for _, s := range samples {
		if s.Db >= baseline+thresholdDb {
			if !inSpan || s.Db > currMax.Db {
				currMax = s
			}
			inSpan = true
		} else if inSpan {
			maxima = append(maxima, currMax)
			inSpan = false
		}
	}
	if inSpan {
		maxima = append(maxima, currMax)
	}
	return maxima
}

// WritePeaks writes one "<time>ms, <level>dB" line per peak
func WritePeaks(w io.Writer, peaks []Sample) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Impulse Response Peaks\n")
	for _, s := range peaks {
		fmt.Fprintf(bw, "%.6fms, %.2fdB\n", s.TimeMs, s.Db)
	}
	return bw.Flush()
}

var CLI struct {
	Input     string  `arg:"" type:"existingfile" help:"Impulse response text file"`
	Output    string  `arg:"" help:"Destination for the peak list"`
	Baseline  float64 `default:"-30" help:"Level in dB relative to the peak that spans are measured from"`
	Threshold float64 `default:"6" help:"Level above the baseline in dB a span must reach"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Description("List the peaks of an impulse response"))

	in, err := os.Open(CLI.Input)
	ctx.FatalIfErrorf(err)
	defer in.Close()
	peakIndex, sampleInterval, samples, err := ParseImpulseResponse(in)
	ctx.FatalIfErrorf(err)

	processed := MakeProcessedSamples(peakIndex, sampleInterval, samples)
	maxima := FindLocalMaxima(processed, CLI.Threshold, CLI.Baseline)

	out, err := os.Create(CLI.Output)
	ctx.FatalIfErrorf(err)
	defer out.Close()
	ctx.FatalIfErrorf(WritePeaks(out, maxima))
	fmt.Printf("Wrote %d local maxima to %s\n", len(maxima), CLI.Output)
}
