package planner

import (
	"fmt"
	"time"

	"mesoforge/mesocycle-app/internal/domain"
)

// DeloadVolumeCap: a deload week may hold at most this fraction of the prior
// week's volume. The generator targets 0.6; validation allows up to 0.65.
const DeloadVolumeCap = 0.65

// Invariant identifies which training-design rule a violation breaks.
type Invariant string

const (
	InvariantVolumeEscalation Invariant = "volume-escalation"
	InvariantDeloadVolume     Invariant = "deload-volume"
	InvariantExerciseUnique   Invariant = "exercise-uniqueness"
	InvariantRepRange         Invariant = "rep-range"
	InvariantEffortWindow     Invariant = "effort-window"
)

// Violation pinpoints a broken invariant: which rule, where in the plan, and
// a message fit for direct display.
type Violation struct {
	Invariant  Invariant `json:"invariant"`
	Week       int       `json:"week"`
	Date       time.Time `json:"date,omitempty"`
	ExerciseID string    `json:"exercise,omitempty"`
	Message    string    `json:"message"`
}

// ValidationResult is the outcome of a full-plan inspection: valid, or a list
// of specific violations.
type ValidationResult struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Valid reports whether the plan passed every invariant.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// Validate inspects a plan against the five training-design invariants.
// It never mutates and is safe to call mid-edit.
func Validate(plan *domain.MesocyclePlan) ValidationResult {
	var result ValidationResult
	result.Violations = append(result.Violations, checkVolumeCurve(plan)...)
	for wi, week := range plan.Weeks {
		for _, session := range week.Sessions {
			result.Violations = append(result.Violations, checkSession(wi, session)...)
		}
	}
	return result
}

// checkVolumeCurve enforces escalation across non-deload transitions and the
// volume cap on a requested deload final week.
func checkVolumeCurve(plan *domain.MesocyclePlan) []Violation {
	var out []Violation
	n := len(plan.Weeks)
	for i := 0; i < n-1; i++ {
		cur := plan.Weeks[i].TotalSets()
		next := plan.Weeks[i+1].TotalSets()
		if plan.Deload && i+1 == n-1 {
			if float64(next) > DeloadVolumeCap*float64(cur) {
				out = append(out, Violation{
					Invariant: InvariantDeloadVolume,
					Week:      i + 1,
					Message:   fmt.Sprintf("deload week holds %d sets, above %.0f%% of week %d's %d sets", next, DeloadVolumeCap*100, i, cur),
				})
			}
			continue
		}
		if next < cur {
			out = append(out, Violation{
				Invariant: InvariantVolumeEscalation,
				Week:      i + 1,
				Message:   fmt.Sprintf("week %d drops to %d sets from week %d's %d sets", i+1, next, i, cur),
			})
		}
	}
	return out
}

func checkSession(weekIndex int, session domain.WorkoutPlan) []Violation {
	var out []Violation
	seen := make(map[string]bool, len(session.Blocks))
	for _, block := range session.Blocks {
		if seen[block.ExerciseID] {
			out = append(out, Violation{
				Invariant:  InvariantExerciseUnique,
				Week:       weekIndex,
				Date:       session.Date,
				ExerciseID: block.ExerciseID,
				Message:    fmt.Sprintf("exercise %s is prescribed twice on %s", block.ExerciseID, session.Day),
			})
		}
		seen[block.ExerciseID] = true
		if !block.Reps.Valid() {
			out = append(out, Violation{
				Invariant:  InvariantRepRange,
				Week:       weekIndex,
				Date:       session.Date,
				ExerciseID: block.ExerciseID,
				Message:    fmt.Sprintf("rep range %d-%d is outside 1-30 or inverted", block.Reps.Min(), block.Reps.Max()),
			})
		}
		if block.RPE < domain.MinRPE || block.RPE > domain.MaxRPE {
			out = append(out, Violation{
				Invariant:  InvariantEffortWindow,
				Week:       weekIndex,
				Date:       session.Date,
				ExerciseID: block.ExerciseID,
				Message:    fmt.Sprintf("target RPE %.1f is outside %.1f-%.1f", block.RPE, domain.MinRPE, domain.MaxRPE),
			})
		}
	}
	return out
}
