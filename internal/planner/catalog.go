package planner

import (
	"context"
	"fmt"

	"mesoforge/mesocycle-app/internal/domain"
)

// ExerciseCatalog is the read-only catalog view the generator consumes.
// The mongo exercise repository satisfies it; tests use in-memory stubs.
type ExerciseCatalog interface {
	FetchAllTargeting(ctx context.Context, mg domain.MuscleGroup) ([]domain.Exercise, error)
}

// Warning codes surfaced alongside a generated plan.
const (
	// WarnNoCandidates: a muscle-group volume target had no eligible
	// exercise in the catalog, so its volume was not scheduled.
	WarnNoCandidates = "no-candidates"
)

// Warning is a non-fatal generation problem. The plan is still usable; the
// caller decides whether to surface or act on it.
type Warning struct {
	Code        string             `json:"code"`
	MuscleGroup domain.MuscleGroup `json:"muscleGroup,omitempty"`
	Message     string             `json:"message"`
}

func noCandidatesWarning(mg domain.MuscleGroup) Warning {
	return Warning{
		Code:        WarnNoCandidates,
		MuscleGroup: mg,
		Message:     fmt.Sprintf("no catalog exercise targets %s; its weekly volume target was not scheduled", mg),
	}
}
