package domain

import "strings"

// MuscleGroup identifies a trainable muscle group used for volume targeting
// and exercise catalog filtering.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleQuads      MuscleGroup = "quads"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleCore       MuscleGroup = "core"
)

// KnownMuscleGroups lists every muscle group the planner understands,
// in a stable order.
var KnownMuscleGroups = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps,
	MuscleQuads, MuscleHamstrings, MuscleGlutes, MuscleCalves, MuscleCore,
}

// ParseMuscleGroup normalizes a raw string into a known MuscleGroup.
// Returns false for anything outside the known set.
func ParseMuscleGroup(raw string) (MuscleGroup, bool) {
	mg := MuscleGroup(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range KnownMuscleGroups {
		if mg == known {
			return mg, true
		}
	}
	return "", false
}
