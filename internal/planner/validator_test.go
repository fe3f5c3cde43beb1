package planner

import (
	"context"
	"testing"
	"time"

	"mesoforge/mesocycle-app/internal/domain"
)

func validPlan() *domain.MesocyclePlan {
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	block := func(exID string, sets int) domain.ExercisePrescription {
		return domain.ExercisePrescription{
			ID:          exID + "-rx",
			ExerciseID:  exID,
			Sets:        sets,
			Reps:        domain.RepRange{8, 12},
			RPE:         9.0,
			Progression: domain.NewLinearProgression(0, 2.5),
		}
	}
	week := func(index, sets int) domain.WeekPlan {
		date := start.AddDate(0, 0, index*7)
		return domain.WeekPlan{
			Index: index,
			Sessions: []domain.WorkoutPlan{{
				Date:   date,
				Day:    domain.DayName(date),
				Blocks: []domain.ExercisePrescription{block("bench", sets), block("row", sets)},
			}},
		}
	}
	return &domain.MesocyclePlan{
		StartDate: start,
		Weeks:     []domain.WeekPlan{week(0, 4), week(1, 4), week(2, 5)},
		Strategy:  domain.StrategyLinear,
	}
}

func countInvariant(result ValidationResult, inv Invariant) int {
	n := 0
	for _, v := range result.Violations {
		if v.Invariant == inv {
			n++
		}
	}
	return n
}

func TestValidate_CleanPlan(t *testing.T) {
	result := Validate(validPlan())
	if !result.Valid() {
		t.Fatalf("expected clean plan, got %v", result.Violations)
	}
}

func TestValidate_VolumeEscalation(t *testing.T) {
	plan := validPlan()
	plan.Weeks[1].Sessions[0].Blocks[0].Sets = 1 // week 1 drops below week 0

	result := Validate(plan)
	if got := countInvariant(result, InvariantVolumeEscalation); got != 1 {
		t.Fatalf("got %d escalation violations, want 1: %v", got, result.Violations)
	}
	v := result.Violations[0]
	if v.Week != 1 {
		t.Errorf("violation at week %d, want 1", v.Week)
	}
}

func TestValidate_DeloadExemptsEscalation(t *testing.T) {
	plan := validPlan()
	plan.Deload = true
	// Final week drops to 2 of 10 prior sets: allowed under the cap.
	plan.Weeks[2].Sessions[0].Blocks = plan.Weeks[2].Sessions[0].Blocks[:1]
	plan.Weeks[2].Sessions[0].Blocks[0].Sets = 2

	result := Validate(plan)
	if !result.Valid() {
		t.Fatalf("deload final week flagged: %v", result.Violations)
	}
}

func TestValidate_DeloadVolumeCap(t *testing.T) {
	plan := validPlan()
	plan.Deload = true
	// Final week keeps 10 of the prior week's 8: way above the cap.
	plan.Weeks[2].Sessions[0].Blocks[0].Sets = 5
	plan.Weeks[2].Sessions[0].Blocks[1].Sets = 5

	result := Validate(plan)
	if got := countInvariant(result, InvariantDeloadVolume); got != 1 {
		t.Fatalf("got %d deload violations, want 1: %v", got, result.Violations)
	}
	if countInvariant(result, InvariantVolumeEscalation) != 0 {
		t.Error("deload transition also flagged as escalation break")
	}
}

func TestValidate_DuplicateExercise(t *testing.T) {
	plan := validPlan()
	session := &plan.Weeks[0].Sessions[0]
	dup := session.Blocks[0]
	dup.ID = "bench-rx-2"
	session.Blocks = append(session.Blocks, dup)

	result := Validate(plan)
	if got := countInvariant(result, InvariantExerciseUnique); got != 1 {
		t.Fatalf("got %d uniqueness violations, want 1: %v", got, result.Violations)
	}
	for _, v := range result.Violations {
		if v.Invariant == InvariantExerciseUnique {
			if v.ExerciseID != "bench" {
				t.Errorf("violation names exercise %q, want bench", v.ExerciseID)
			}
			if v.Week != 0 {
				t.Errorf("violation at week %d, want 0", v.Week)
			}
		}
	}
}

func TestValidate_RepRange(t *testing.T) {
	cases := []struct {
		name string
		reps domain.RepRange
	}{
		{"zero min", domain.RepRange{0, 10}},
		{"inverted", domain.RepRange{12, 8}},
		{"over max", domain.RepRange{8, 31}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := validPlan()
			plan.Weeks[0].Sessions[0].Blocks[0].Reps = tc.reps
			result := Validate(plan)
			if got := countInvariant(result, InvariantRepRange); got != 1 {
				t.Errorf("got %d rep-range violations, want 1: %v", got, result.Violations)
			}
		})
	}
}

func TestValidate_EffortWindow(t *testing.T) {
	for _, rpe := range []float64{5.0, 10.5, 0} {
		plan := validPlan()
		plan.Weeks[0].Sessions[0].Blocks[0].RPE = rpe
		result := Validate(plan)
		if got := countInvariant(result, InvariantEffortWindow); got != 1 {
			t.Errorf("RPE %.1f: got %d effort violations, want 1", rpe, got)
		}
	}
	// Window endpoints are themselves legal.
	for _, rpe := range []float64{domain.MinRPE, domain.MaxRPE} {
		plan := validPlan()
		plan.Weeks[0].Sessions[0].Blocks[0].RPE = rpe
		if result := Validate(plan); !result.Valid() {
			t.Errorf("RPE %.1f flagged: %v", rpe, result.Violations)
		}
	}
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	plan := validPlan()
	plan.Weeks[0].Sessions[0].Blocks[0].RPE = 2.0
	plan.Weeks[0].Sessions[0].Blocks[1].Reps = domain.RepRange{0, 0}
	plan.Weeks[1].Sessions[0].Blocks[0].Sets = 1

	result := Validate(plan)
	if len(result.Violations) != 3 {
		t.Fatalf("got %d violations, want 3: %v", len(result.Violations), result.Violations)
	}
}

func TestValidate_GeneratedPlanIsValid(t *testing.T) {
	gen := NewGeneratorWithClock(testClock())
	for _, deload := range []bool{false, true} {
		input := baseInput()
		input.Deload = deload
		plan, _, err := gen.Generate(context.Background(), input, chestAndBackCatalog())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if result := Validate(plan); !result.Valid() {
			t.Errorf("deload=%v: generated plan invalid: %v", deload, result.Violations)
		}
	}
}
