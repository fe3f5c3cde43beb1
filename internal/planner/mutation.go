package planner

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"mesoforge/mesocycle-app/internal/domain"
)

var (
	ErrDayNotFound      = errors.New("no workout scheduled on that date")
	ErrExerciseNotFound = errors.New("exercise prescription not found")
	ErrDateOutOfRange   = errors.New("date falls outside the plan's weeks")
	ErrIndexOutOfRange  = errors.New("exercise index out of range")
	ErrBadPrescription  = errors.New("prescription violates rep-range or effort bounds")
)

// ExerciseDefaults carries the initial prescription values for AddExercise.
// A zero Progression gets a linear rule.
type ExerciseDefaults struct {
	Sets        int
	Reps        domain.RepRange
	RPE         float64
	Progression domain.ProgressionRule
}

// Mutation operations are pure: each deep-copies the plan, applies one edit,
// bumps the generation counter, and returns the new value. The caller owns
// storing the result; the input plan is never touched.

// EnsureDay returns the plan and the workout scheduled on date, creating an
// empty session in the correct week (date-ordered) when none exists. The
// generation counter only advances when a session was actually inserted.
func EnsureDay(plan *domain.MesocyclePlan, date time.Time) (*domain.MesocyclePlan, *domain.WorkoutPlan, error) {
	date = domain.MidnightUTC(date)
	out := plan.Clone()
	if session, ok := out.SessionOn(date); ok {
		return out, session, nil
	}
	wi, ok := out.WeekIndexOf(date)
	if !ok {
		return nil, nil, ErrDateOutOfRange
	}
	session := domain.WorkoutPlan{
		Date: date,
		Day:  domain.DayName(date),
		Name: fmt.Sprintf("Week %d %s", wi+1, date.Weekday().String()),
	}
	week := &out.Weeks[wi]
	pos := sort.Search(len(week.Sessions), func(i int) bool {
		return week.Sessions[i].Date.After(date)
	})
	week.Sessions = append(week.Sessions, domain.WorkoutPlan{})
	copy(week.Sessions[pos+1:], week.Sessions[pos:])
	week.Sessions[pos] = session
	out.Generation++
	return out, &week.Sessions[pos], nil
}

// AddExercise appends a prescription for exercise on date, creating the day
// if needed. If the exercise already appears in that session the existing
// block is updated (sets and rep range) instead of duplicated, so a session
// never references the same exercise twice.
func AddExercise(plan *domain.MesocyclePlan, date time.Time, exercise domain.Exercise, defaults ExerciseDefaults) (*domain.MesocyclePlan, error) {
	if defaults.Sets <= 0 || !defaults.Reps.Valid() || defaults.RPE < domain.MinRPE || defaults.RPE > domain.MaxRPE {
		return nil, ErrBadPrescription
	}
	if defaults.Progression.Kind() == "" {
		defaults.Progression = domain.NewLinearProgression(0, 2.5)
	}
	out, session, err := EnsureDay(plan, date)
	if err != nil {
		return nil, err
	}
	exID := exercise.ID.Hex()
	for i := range session.Blocks {
		if session.Blocks[i].ExerciseID == exID {
			session.Blocks[i].Sets = defaults.Sets
			session.Blocks[i].Reps = defaults.Reps
			out.Generation = plan.Generation + 1
			return out, nil
		}
	}
	session.Blocks = append(session.Blocks, domain.ExercisePrescription{
		ID:          uuid.NewString(),
		ExerciseID:  exID,
		Sets:        defaults.Sets,
		Reps:        defaults.Reps,
		RPE:         defaults.RPE,
		Progression: defaults.Progression,
	})
	out.Generation = plan.Generation + 1
	return out, nil
}

// RemoveExercise deletes the prescription with the given id from whichever
// session holds it. A session left with zero blocks stays in place: an empty
// scheduled day is a different state from no workout at all.
func RemoveExercise(plan *domain.MesocyclePlan, prescriptionID string) (*domain.MesocyclePlan, error) {
	out := plan.Clone()
	for wi := range out.Weeks {
		for si := range out.Weeks[wi].Sessions {
			session := &out.Weeks[wi].Sessions[si]
			for bi := range session.Blocks {
				if session.Blocks[bi].ID == prescriptionID {
					session.Blocks = append(session.Blocks[:bi], session.Blocks[bi+1:]...)
					out.Generation++
					return out, nil
				}
			}
		}
	}
	return nil, ErrExerciseNotFound
}

// ReorderExercises moves the block at from to position to within one
// session. Pure permutation: cardinality never changes.
func ReorderExercises(plan *domain.MesocyclePlan, date time.Time, from, to int) (*domain.MesocyclePlan, error) {
	out := plan.Clone()
	session, ok := out.SessionOn(date)
	if !ok {
		return nil, ErrDayNotFound
	}
	n := len(session.Blocks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, ErrIndexOutOfRange
	}
	if from == to {
		out.Generation++
		return out, nil
	}
	moved := session.Blocks[from]
	session.Blocks = append(session.Blocks[:from], session.Blocks[from+1:]...)
	rest := session.Blocks
	session.Blocks = make([]domain.ExercisePrescription, 0, n)
	session.Blocks = append(session.Blocks, rest[:to]...)
	session.Blocks = append(session.Blocks, moved)
	session.Blocks = append(session.Blocks, rest[to:]...)
	out.Generation++
	return out, nil
}

// MoveWorkout implements the drag-and-drop contract: when the destination
// date already holds a workout the two swap dates; when it is empty the
// source workout is simply reassigned. Week membership is recomputed after
// the date change.
func MoveWorkout(plan *domain.MesocyclePlan, sourceDate, destinationDate time.Time) (*domain.MesocyclePlan, error) {
	sourceDate = domain.MidnightUTC(sourceDate)
	destinationDate = domain.MidnightUTC(destinationDate)
	out := plan.Clone()
	src, ok := out.SessionOn(sourceDate)
	if !ok {
		return nil, ErrDayNotFound
	}
	if _, ok := out.WeekIndexOf(destinationDate); !ok {
		return nil, ErrDateOutOfRange
	}
	if dst, ok := out.SessionOn(destinationDate); ok {
		src.Date, dst.Date = dst.Date, src.Date
		src.Day, dst.Day = dst.Day, src.Day
	} else {
		src.Date = destinationDate
		src.Day = domain.DayName(destinationDate)
	}
	rebucketSessions(out)
	renameSession(out, sourceDate)
	renameSession(out, destinationDate)
	out.Generation++
	return out, nil
}

// renameSession refreshes a session's display name after a date change so the
// week number matches the week the session now lives in.
func renameSession(plan *domain.MesocyclePlan, date time.Time) {
	session, ok := plan.SessionOn(date)
	if !ok {
		return
	}
	wi, ok := plan.WeekIndexOf(date)
	if !ok {
		return
	}
	session.Name = fmt.Sprintf("Week %d %s", wi+1, date.Weekday().String())
}

// rebucketSessions reassigns every session to the week its date belongs to
// and restores date ordering. Dates are assumed in range.
func rebucketSessions(plan *domain.MesocyclePlan) {
	buckets := make([][]domain.WorkoutPlan, len(plan.Weeks))
	for _, week := range plan.Weeks {
		for _, session := range week.Sessions {
			if wi, ok := plan.WeekIndexOf(session.Date); ok {
				buckets[wi] = append(buckets[wi], session)
			}
		}
	}
	for wi := range plan.Weeks {
		sessions := buckets[wi]
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
		plan.Weeks[wi].Sessions = sessions
	}
}
