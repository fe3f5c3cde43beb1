package planner

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
)

// mutationPlan: two weeks starting Monday 2026-03-09, sessions on Monday and
// Wednesday of each week. Monday week 0 holds bench + row, the rest one block.
func mutationPlan() *domain.MesocyclePlan {
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rx := func(id, exID string, sets int) domain.ExercisePrescription {
		return domain.ExercisePrescription{
			ID:          id,
			ExerciseID:  exID,
			Sets:        sets,
			Reps:        domain.RepRange{8, 12},
			RPE:         9.0,
			Progression: domain.NewLinearProgression(0, 2.5),
		}
	}
	session := func(offset int, blocks ...domain.ExercisePrescription) domain.WorkoutPlan {
		date := start.AddDate(0, 0, offset)
		return domain.WorkoutPlan{Date: date, Day: domain.DayName(date), Blocks: blocks}
	}
	return &domain.MesocyclePlan{
		StartDate: start,
		Weeks: []domain.WeekPlan{
			{Index: 0, Sessions: []domain.WorkoutPlan{
				session(0, rx("rx-bench", "bench", 4), rx("rx-row", "row", 3)),
				session(2, rx("rx-squat", "squat", 5)),
			}},
			{Index: 1, Sessions: []domain.WorkoutPlan{
				session(7, rx("rx-bench-2", "bench", 4)),
				session(9, rx("rx-squat-2", "squat", 5)),
			}},
		},
		Strategy: domain.StrategyLinear,
	}
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func assertUntouched(t *testing.T, plan *domain.MesocyclePlan) {
	t.Helper()
	want := mutationPlan()
	if plan.Generation != want.Generation {
		t.Errorf("original generation changed to %d", plan.Generation)
	}
	for wi := range want.Weeks {
		if len(plan.Weeks[wi].Sessions) != len(want.Weeks[wi].Sessions) {
			t.Fatalf("original week %d session count changed", wi)
		}
		for si := range want.Weeks[wi].Sessions {
			got, wantS := plan.Weeks[wi].Sessions[si], want.Weeks[wi].Sessions[si]
			if !got.Date.Equal(wantS.Date) || len(got.Blocks) != len(wantS.Blocks) {
				t.Fatalf("original week %d session %d changed", wi, si)
			}
			for bi := range wantS.Blocks {
				if got.Blocks[bi].Sets != wantS.Blocks[bi].Sets {
					t.Errorf("original block %s sets changed", wantS.Blocks[bi].ID)
				}
			}
		}
	}
}

func TestEnsureDay_ExistingSession(t *testing.T) {
	plan := mutationPlan()
	out, session, err := EnsureDay(plan, day(2))
	if err != nil {
		t.Fatalf("EnsureDay: %v", err)
	}
	if session.Blocks[0].ID != "rx-squat" {
		t.Errorf("returned session is not the Wednesday workout")
	}
	if out.Generation != plan.Generation {
		t.Errorf("generation bumped to %d for a no-op lookup", out.Generation)
	}
}

func TestEnsureDay_InsertsInDateOrder(t *testing.T) {
	plan := mutationPlan()
	out, session, err := EnsureDay(plan, day(1)) // Tuesday, between Mon and Wed
	if err != nil {
		t.Fatalf("EnsureDay: %v", err)
	}
	if session.Day != "tuesday" || len(session.Blocks) != 0 {
		t.Errorf("new session = %+v, want empty Tuesday", session)
	}
	dates := out.Weeks[0].Sessions
	if len(dates) != 3 {
		t.Fatalf("week 0 has %d sessions, want 3", len(dates))
	}
	for i := 0; i < len(dates)-1; i++ {
		if !dates[i].Date.Before(dates[i+1].Date) {
			t.Errorf("sessions out of order: %v then %v", dates[i].Date, dates[i+1].Date)
		}
	}
	if out.Generation != plan.Generation+1 {
		t.Errorf("generation = %d, want %d", out.Generation, plan.Generation+1)
	}
	assertUntouched(t, plan)
}

func TestEnsureDay_OutOfRange(t *testing.T) {
	plan := mutationPlan()
	if _, _, err := EnsureDay(plan, day(14)); !errors.Is(err, ErrDateOutOfRange) {
		t.Fatalf("err = %v, want ErrDateOutOfRange", err)
	}
	if _, _, err := EnsureDay(plan, day(-1)); !errors.Is(err, ErrDateOutOfRange) {
		t.Fatalf("err = %v, want ErrDateOutOfRange", err)
	}
}

func TestAddExercise_NewBlock(t *testing.T) {
	plan := mutationPlan()
	curl := domain.Exercise{ID: primitive.NewObjectID(), Name: "Barbell Curl"}
	defaults := ExerciseDefaults{Sets: 3, Reps: domain.RepRange{10, 15}, RPE: 8.0}

	out, err := AddExercise(plan, day(2), curl, defaults)
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	session, ok := out.SessionOn(day(2))
	if !ok || len(session.Blocks) != 2 {
		t.Fatalf("Wednesday session not extended: %+v", session)
	}
	added := session.Blocks[1]
	if added.ExerciseID != curl.ID.Hex() || added.Sets != 3 || added.RPE != 8.0 {
		t.Errorf("added block = %+v", added)
	}
	if added.ID == "" {
		t.Error("added block has no prescription id")
	}
	if added.Progression.Kind() != domain.ProgressionLinear {
		t.Errorf("default progression kind = %q, want linear", added.Progression.Kind())
	}
	if out.Generation != plan.Generation+1 {
		t.Errorf("generation = %d, want %d", out.Generation, plan.Generation+1)
	}
	assertUntouched(t, plan)
}

func TestAddExercise_CreatesMissingDay(t *testing.T) {
	plan := mutationPlan()
	curl := domain.Exercise{ID: primitive.NewObjectID(), Name: "Barbell Curl"}
	defaults := ExerciseDefaults{Sets: 3, Reps: domain.RepRange{10, 15}, RPE: 8.0}

	out, err := AddExercise(plan, day(4), curl, defaults) // empty Friday
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	session, ok := out.SessionOn(day(4))
	if !ok {
		t.Fatal("Friday session was not created")
	}
	if len(session.Blocks) != 1 || session.Blocks[0].ExerciseID != curl.ID.Hex() {
		t.Errorf("Friday session = %+v", session)
	}
	// One logical edit, one generation step, even though a day was created.
	if out.Generation != plan.Generation+1 {
		t.Errorf("generation = %d, want %d", out.Generation, plan.Generation+1)
	}
}

func TestAddExercise_MergesExisting(t *testing.T) {
	plan := mutationPlan()
	benchID, err := primitive.ObjectIDFromHex("62a1b2c3d4e5f6a7b8c9d0e1")
	if err != nil {
		t.Fatal(err)
	}
	// mutationPlan stores plain "bench"; build a plan whose block uses a hex id
	// so the incoming exercise can collide with it.
	plan.Weeks[0].Sessions[0].Blocks[0].ExerciseID = benchID.Hex()

	out, err := AddExercise(plan, day(0), domain.Exercise{ID: benchID}, ExerciseDefaults{
		Sets: 6, Reps: domain.RepRange{5, 8}, RPE: 9.0,
	})
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	session, _ := out.SessionOn(day(0))
	if len(session.Blocks) != 2 {
		t.Fatalf("merge duplicated the block: %d blocks", len(session.Blocks))
	}
	if session.Blocks[0].Sets != 6 || session.Blocks[0].Reps != (domain.RepRange{5, 8}) {
		t.Errorf("merged block = %+v, want sets 6 reps [5,8]", session.Blocks[0])
	}
	if session.Blocks[0].ID != "rx-bench" {
		t.Errorf("merge replaced prescription id %q", session.Blocks[0].ID)
	}
}

func TestAddExercise_RejectsBadDefaults(t *testing.T) {
	plan := mutationPlan()
	curl := domain.Exercise{ID: primitive.NewObjectID()}
	cases := []ExerciseDefaults{
		{Sets: 0, Reps: domain.RepRange{8, 12}, RPE: 8},
		{Sets: 3, Reps: domain.RepRange{12, 8}, RPE: 8},
		{Sets: 3, Reps: domain.RepRange{8, 12}, RPE: 4},
		{Sets: 3, Reps: domain.RepRange{8, 12}, RPE: 10.5},
	}
	for i, defaults := range cases {
		if _, err := AddExercise(plan, day(0), curl, defaults); !errors.Is(err, ErrBadPrescription) {
			t.Errorf("case %d: err = %v, want ErrBadPrescription", i, err)
		}
	}
}

func TestRemoveExercise(t *testing.T) {
	plan := mutationPlan()
	out, err := RemoveExercise(plan, "rx-row")
	if err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	session, _ := out.SessionOn(day(0))
	if len(session.Blocks) != 1 || session.Blocks[0].ID != "rx-bench" {
		t.Errorf("Monday blocks after removal: %+v", session.Blocks)
	}
	if out.Generation != plan.Generation+1 {
		t.Errorf("generation = %d, want %d", out.Generation, plan.Generation+1)
	}
	assertUntouched(t, plan)
}

func TestRemoveExercise_KeepsEmptyDay(t *testing.T) {
	plan := mutationPlan()
	out, err := RemoveExercise(plan, "rx-squat")
	if err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	session, ok := out.SessionOn(day(2))
	if !ok {
		t.Fatal("emptied Wednesday session was dropped")
	}
	if len(session.Blocks) != 0 {
		t.Errorf("Wednesday still holds %d blocks", len(session.Blocks))
	}
}

func TestRemoveExercise_NotFound(t *testing.T) {
	if _, err := RemoveExercise(mutationPlan(), "rx-missing"); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("err = %v, want ErrExerciseNotFound", err)
	}
}

func TestReorderExercises(t *testing.T) {
	plan := mutationPlan()
	out, err := ReorderExercises(plan, day(0), 1, 0) // move row first
	if err != nil {
		t.Fatalf("ReorderExercises: %v", err)
	}
	session, _ := out.SessionOn(day(0))
	if session.Blocks[0].ID != "rx-row" || session.Blocks[1].ID != "rx-bench" {
		t.Errorf("order after reorder: %s, %s", session.Blocks[0].ID, session.Blocks[1].ID)
	}
	if len(session.Blocks) != 2 {
		t.Errorf("reorder changed cardinality to %d", len(session.Blocks))
	}
	assertUntouched(t, plan)
}

func TestReorderExercises_Errors(t *testing.T) {
	plan := mutationPlan()
	if _, err := ReorderExercises(plan, day(1), 0, 0); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("empty day: err = %v, want ErrDayNotFound", err)
	}
	if _, err := ReorderExercises(plan, day(0), 0, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("to out of range: err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := ReorderExercises(plan, day(0), -1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("negative from: err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestMoveWorkout_SwapsOccupiedDates(t *testing.T) {
	plan := mutationPlan()
	out, err := MoveWorkout(plan, day(0), day(2)) // Monday <-> Wednesday
	if err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	mon, ok := out.SessionOn(day(0))
	if !ok || mon.Blocks[0].ID != "rx-squat" {
		t.Errorf("Monday now holds %+v, want the squat session", mon)
	}
	wed, ok := out.SessionOn(day(2))
	if !ok || wed.Blocks[0].ID != "rx-bench" {
		t.Errorf("Wednesday now holds %+v, want the bench session", wed)
	}
	if mon.Day != "monday" || wed.Day != "wednesday" {
		t.Errorf("day names not updated: %q, %q", mon.Day, wed.Day)
	}
	if out.Generation != plan.Generation+1 {
		t.Errorf("generation = %d, want %d", out.Generation, plan.Generation+1)
	}
	assertUntouched(t, plan)
}

func TestMoveWorkout_ToEmptyDate(t *testing.T) {
	plan := mutationPlan()
	out, err := MoveWorkout(plan, day(0), day(1)) // Monday -> empty Tuesday
	if err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	if _, ok := out.SessionOn(day(0)); ok {
		t.Error("Monday still holds a session after the move")
	}
	tue, ok := out.SessionOn(day(1))
	if !ok || tue.Blocks[0].ID != "rx-bench" {
		t.Fatalf("Tuesday session = %+v, want the moved bench workout", tue)
	}
	if tue.Day != "tuesday" {
		t.Errorf("moved session day = %q", tue.Day)
	}
}

func TestMoveWorkout_AcrossWeeks(t *testing.T) {
	plan := mutationPlan()
	out, err := MoveWorkout(plan, day(2), day(8)) // week 0 Wednesday -> week 1 Tuesday
	if err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	if len(out.Weeks[0].Sessions) != 1 {
		t.Errorf("week 0 holds %d sessions, want 1", len(out.Weeks[0].Sessions))
	}
	if len(out.Weeks[1].Sessions) != 3 {
		t.Fatalf("week 1 holds %d sessions, want 3", len(out.Weeks[1].Sessions))
	}
	for i := 0; i < len(out.Weeks[1].Sessions)-1; i++ {
		if !out.Weeks[1].Sessions[i].Date.Before(out.Weeks[1].Sessions[i+1].Date) {
			t.Error("week 1 sessions not date-ordered after rebucket")
		}
	}
}

func TestMoveWorkout_RefreshesSessionNames(t *testing.T) {
	plan := mutationPlan()
	plan.Weeks[0].Sessions[1].Name = "Week 1 Day 2" // squat on Wednesday

	out, err := MoveWorkout(plan, day(2), day(8)) // week 0 Wednesday -> week 1 Tuesday
	if err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	moved, ok := out.SessionOn(day(8))
	if !ok {
		t.Fatal("moved session not found at its destination")
	}
	if moved.Name != "Week 2 Tuesday" {
		t.Errorf("moved session name = %q, want Week 2 Tuesday", moved.Name)
	}

	// Swapping two occupied dates renames both sides.
	swapped, err := MoveWorkout(plan, day(0), day(2))
	if err != nil {
		t.Fatalf("MoveWorkout swap: %v", err)
	}
	mon, _ := swapped.SessionOn(day(0))
	wed, _ := swapped.SessionOn(day(2))
	if mon.Name != "Week 1 Monday" || wed.Name != "Week 1 Wednesday" {
		t.Errorf("swapped names = %q, %q", mon.Name, wed.Name)
	}
}

func TestMoveWorkout_Errors(t *testing.T) {
	plan := mutationPlan()
	if _, err := MoveWorkout(plan, day(1), day(2)); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("empty source: err = %v, want ErrDayNotFound", err)
	}
	if _, err := MoveWorkout(plan, day(0), day(20)); !errors.Is(err, ErrDateOutOfRange) {
		t.Errorf("destination past plan: err = %v, want ErrDateOutOfRange", err)
	}
}
