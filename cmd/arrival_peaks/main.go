// arrival_peaks reduces the specular paths in an arrivals file to a list of distinct
// reflections per source, timed from that source's direct sound.
package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/alecthomas/kong"

	"github.com/jdginn/go-room-doa/room"
)

// Peak is one reflection relative to the direct sound
type Peak struct {
	TimeMs float64
	GainDb float64
}

// FindLocalMaximaClusters merges peaks that are close in both time and level into a
// single representative peak.
// - timeThreshold: max allowed time difference in ms within a cluster
// - gainThreshold: max allowed gain difference in dB within a cluster
func FindLocalMaximaClusters(peaks []Peak, timeThreshold, gainThreshold float64) []Peak {
	if len(peaks) == 0 {
		return nil
	}

	var clusters [][]Peak
	current := []Peak{peaks[0]}
	for i := 1; i < len(peaks); i++ {
		last := current[len(current)-1]
		dt := peaks[i].TimeMs - last.TimeMs
		dg := math.Abs(peaks[i].GainDb - last.GainDb)
		if dt <= timeThreshold && dg <= gainThreshold {
			current = append(current, peaks[i])
		} else {
			clusters = append(clusters, current)
			current = []Peak{peaks[i]}
		}
	}
	clusters = append(clusters, current)

	result := make([]Peak, 0, len(clusters))
	for _, cluster := range clusters {
		best := cluster[0]
		for _, p := range cluster {
			// Loudest wins, earliest on a tie
			if p.GainDb > best.GainDb || (math.Abs(p.GainDb-best.GainDb) < 1e-6 && p.TimeMs < best.TimeMs) {
				best = p
			}
		}
		result = append(result, best)
	}
	return result
}

// PeaksByName groups paths by their name and times them from the earliest path of each group
func PeaksByName(paths []room.AcousticPathJSON) (names []string, peaks map[string][]Peak) {
	peaks = map[string][]Peak{}
	direct := map[string]float64{}
	for _, p := range paths {
		d, ok := direct[p.Name]
		if !ok {
			names = append(names, p.Name)
		}
		if !ok || p.DelayMS < d {
			direct[p.Name] = p.DelayMS
		}
	}
	for _, p := range paths {
		peaks[p.Name] = append(peaks[p.Name], Peak{TimeMs: p.DelayMS - direct[p.Name], GainDb: p.Gain})
	}
	for _, name := range names {
		sort.SliceStable(peaks[name], func(i, j int) bool {
			return peaks[name][i].TimeMs < peaks[name][j].TimeMs
		})
	}
	return names, peaks
}

// WritePeaks writes one block per name with a "<time>ms, <level>dB" line per peak
func WritePeaks(w io.Writer, names []string, peaks map[string][]Peak, timeThreshold, gainThreshold float64) error {
	bw := bufio.NewWriter(w)
	for _, name := range names {
		fmt.Fprintf(bw, "# %s\n", name)
		for _, p := range FindLocalMaximaClusters(peaks[name], timeThreshold, gainThreshold) {
			fmt.Fprintf(bw, "%.6fms, %.2fdB\n", p.TimeMs, p.GainDb)
		}
	}
	return bw.Flush()
}

var CLI struct {
	Input  string  `arg:"" type:"existingfile" help:"arrivals.json from a simulation run"`
	Output string  `arg:"" help:"Destination for the peak list"`
	TimeMs float64 `default:"0.05" help:"Merge peaks closer than this many ms"`
	GainDb float64 `default:"4" help:"Merge peaks closer than this many dB"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Description("List distinct specular reflections per source"))

	annotations, err := room.LoadAnnotations(CLI.Input)
	ctx.FatalIfErrorf(err)

	names, peaks := PeaksByName(annotations.AcousticPaths)

	out, err := os.Create(CLI.Output)
	ctx.FatalIfErrorf(err)
	defer out.Close()
	ctx.FatalIfErrorf(WritePeaks(out, names, peaks, CLI.TimeMs, CLI.GainDb))
}
