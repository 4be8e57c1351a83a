package experiment

import (
	"math/rand"
	"time"
)

var (
	adjectives = []string{
		"hollow", "muffled", "bright", "dry", "damp", "boomy", "quiet", "loud",
		"warm", "cold", "narrow", "wide", "distant", "close", "ringing", "dead",
		"lively", "faint", "sharp", "soft", "deep", "shallow", "smooth", "rough",
		"tiled", "carpeted", "vaulted", "wooden", "glassy", "empty", "crowded",
		"humming", "whispering", "echoing", "steady", "restless", "patient",
	}

	nouns = []string{
		"hall", "corridor", "attic", "cellar", "kitchen", "studio", "chapel",
		"stairwell", "garage", "library", "lobby", "atrium", "closet", "cave",
		"echo", "chirp", "whistle", "chord", "drum", "bell", "hum", "murmur",
		"voice", "click", "tone", "beacon", "compass", "bearing", "horizon",
		"wave", "ripple", "pulse", "ray", "mirror", "lens", "prism",
	}
)

// RunName creates a memorable identifier in the format "adjective-noun"
func RunName(rnd *rand.Rand) string {
	adj := adjectives[rnd.Intn(len(adjectives))]
	noun := nouns[rnd.Intn(len(nouns))]
	return adj + "-" + noun
}

// RunID combines a memorable name with the UTC timestamp so that runs sort by creation time
func RunID(rnd *rand.Rand, now time.Time) string {
	return RunName(rnd) + "-" + now.UTC().Format("20060102-150405")
}
