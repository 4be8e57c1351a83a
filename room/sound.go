package room

import (
	"math"
)

// Fixed engine parameters.
const (
	SAMPLE_RATE     = 16000
	SPEED_OF_SOUND  = 343.0
	MAX_ORDER       = 3
	WALL_ABSORPTION = 0.2
	ROOM_HEIGHT     = 2.5
	MIC_HEIGHT      = 1.0
	SOURCE_HEIGHT   = 1.0
)

// Paths shorter than this are clamped so a source sitting on a microphone stays finite.
const MIN_DISTANCE = 0.01

// Broadband air attenuation in dB per meter of travel.
const AIR_ATTENUATION_DB = 0.01

// airDecay is the energy decay constant m such that energy falls as exp(-m*d).
func airDecay() float64 {
	return AIR_ATTENUATION_DB / (10 * math.Log10(math.E))
}

func toDB(gain float64) float64 {
	return 10 * math.Log10(gain)
}

func fromDB(gainDB float64) float64 {
	return math.Pow(10, gainDB/10)
}
