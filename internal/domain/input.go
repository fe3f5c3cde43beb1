// internal/domain/input.go
package domain

import (
	"fmt"
	"time"
)

// PlanInput bounds. Requests outside these never reach the generator.
const (
	MinWeeks       = 1
	MaxWeeks       = 12
	MinDaysPerWeek = 1
	MaxDaysPerWeek = 7
)

// PlanInput is an immutable generation request. Build it with NewPlanInput,
// which rejects out-of-range values up front.
type PlanInput struct {
	Weeks               int
	DaysPerWeek         int
	WeeklyVolumeTargets map[MuscleGroup]int // muscle group -> weekly effective sets
	DefaultRepRange     RepRange
	WeeklyVolumeRamp    float64 // fractional weekly increase, e.g. 0.05
	Strategy            Strategy
	Deload              bool // explicit deload request for the final week
	Focus               MuscleGroup
	StartDate           time.Time // zero value: next Monday at generation time
	Seed                uint64    // drives reproducible exercise selection
}

// InputError describes a rejected PlanInput field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid plan input: %s %s", e.Field, e.Message)
}

// NewPlanInput validates and freezes a generation request.
func NewPlanInput(in PlanInput) (PlanInput, error) {
	if in.Weeks < MinWeeks || in.Weeks > MaxWeeks {
		return PlanInput{}, &InputError{Field: "weeks", Message: fmt.Sprintf("must be between %d and %d", MinWeeks, MaxWeeks)}
	}
	if in.DaysPerWeek < MinDaysPerWeek || in.DaysPerWeek > MaxDaysPerWeek {
		return PlanInput{}, &InputError{Field: "daysPerWeek", Message: fmt.Sprintf("must be between %d and %d", MinDaysPerWeek, MaxDaysPerWeek)}
	}
	if !in.DefaultRepRange.Valid() {
		return PlanInput{}, &InputError{Field: "defaultRepRange", Message: "requires 1 <= min <= max <= 30"}
	}
	if in.WeeklyVolumeRamp < 0 {
		return PlanInput{}, &InputError{Field: "weeklyVolumeRamp", Message: "must not be negative"}
	}
	if len(in.WeeklyVolumeTargets) == 0 {
		return PlanInput{}, &InputError{Field: "weeklyVolumeTargets", Message: "requires at least one muscle group target"}
	}
	for mg, sets := range in.WeeklyVolumeTargets {
		if _, ok := ParseMuscleGroup(string(mg)); !ok {
			return PlanInput{}, &InputError{Field: "weeklyVolumeTargets", Message: fmt.Sprintf("unknown muscle group %q", mg)}
		}
		if sets < 0 {
			return PlanInput{}, &InputError{Field: "weeklyVolumeTargets", Message: fmt.Sprintf("%s target must not be negative", mg)}
		}
	}
	if in.Strategy == "" {
		in.Strategy = StrategyLinear
	} else if _, ok := ParseStrategy(string(in.Strategy)); !ok {
		return PlanInput{}, &InputError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", in.Strategy)}
	}
	if in.Focus != "" {
		if _, ok := ParseMuscleGroup(string(in.Focus)); !ok {
			return PlanInput{}, &InputError{Field: "focus", Message: fmt.Sprintf("unknown muscle group %q", in.Focus)}
		}
	}
	// Copy the target map so later caller edits cannot leak into the request.
	targets := make(map[MuscleGroup]int, len(in.WeeklyVolumeTargets))
	for mg, sets := range in.WeeklyVolumeTargets {
		targets[mg] = sets
	}
	in.WeeklyVolumeTargets = targets
	if !in.StartDate.IsZero() {
		in.StartDate = MidnightUTC(in.StartDate)
	}
	return in, nil
}
