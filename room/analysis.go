package room

import (
	"math"
)

const MS float64 = 1.0 / 1000.0

// Early window of the C50 speech clarity and of the early energy sum
const C50_WINDOW_MS = 50.0

// EnergyOverWindow sums the energy of the arrivals that land within windowMS of the first one
func EnergyOverWindow(arrivals []Arrival, windowMS float64) float64 {
	if len(arrivals) == 0 {
		return 0
	}
	first := arrivals[0].Delay()
	for _, a := range arrivals {
		first = math.Min(first, a.Delay())
	}
	total := 0.0
	for _, a := range arrivals {
		if (a.Delay()-first)/MS < windowMS {
			total += a.Gain * a.Gain
		}
	}
	return total
}

// EnergyAfter sums the squared samples from t seconds onward
func EnergyAfter(rir []float64, fs int, t float64) float64 {
	start := int(math.Ceil(t * float64(fs)))
	e := 0.0
	for i := max(start, 0); i < len(rir); i++ {
		e += rir[i] * rir[i]
	}
	return e
}

// Clarity is the early-to-late energy ratio in dB, split windowMS after the strongest sample.
func Clarity(rir []float64, fs int, windowMS float64) float64 {
	if len(rir) == 0 {
		return 0
	}
	peak := 0
	for i, v := range rir {
		if math.Abs(v) > math.Abs(rir[peak]) {
			peak = i
		}
	}
	split := float64(peak)/float64(fs) + windowMS*MS
	late := EnergyAfter(rir, fs, split)
	early := EnergyAfter(rir, fs, 0) - late
	if late == 0 || early <= 0 {
		return math.Inf(1)
	}
	return toDB(early / late)
}
