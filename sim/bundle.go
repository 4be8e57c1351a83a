package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jdginn/go-room-doa/doa"
)

// DOABundle is the serializable outcome of the DOA stage. Angles are in radians.
type DOABundle struct {
	Grid        []float64            `json:"grid"`
	Responses   map[string][]float64 `json:"responses"`
	Estimates   map[string][]float64 `json:"estimates"`
	Errors      map[string]string    `json:"errors,omitempty"`
	GroundTruth []float64            `json:"ground_truth"`
	Sources     []string             `json:"sources"`
	ElapsedMS   map[string]float64   `json:"elapsed_ms"`
}

func newBundle(r *doa.Result, names []string, truth []float64) *DOABundle {
	b := &DOABundle{
		Grid:        r.Grid,
		Responses:   map[string][]float64{},
		Estimates:   map[string][]float64{},
		GroundTruth: truth,
		Sources:     names,
		ElapsedMS:   map[string]float64{},
	}
	for _, e := range r.Estimates {
		alg := string(e.Algorithm)
		b.ElapsedMS[alg] = float64(e.Elapsed.Microseconds()) / 1000
		if e.Err != nil {
			if b.Errors == nil {
				b.Errors = map[string]string{}
			}
			b.Errors[alg] = e.Err.Error()
			b.Responses[alg] = []float64{}
			b.Estimates[alg] = []float64{}
			continue
		}
		b.Responses[alg] = e.Response
		b.Estimates[alg] = append([]float64{}, e.Bearings...)
	}
	return b
}

// Save writes the bundle as indented JSON
func (b *DOABundle) Save(filename string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("sim: marshaling doa bundle: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("sim: writing doa bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle written by Save
func LoadBundle(filename string) (*DOABundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	b := &DOABundle{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("sim: parsing doa bundle: %w", err)
	}
	return b, nil
}
