// internal/domain/plan.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchemaVersion is the current serialized plan document version.
// Version 2 added per-session dates plus top-level startDate/generation.
const SchemaVersion = 2

// Strategy tags which periodization rule produced a plan.
type Strategy string

const (
	StrategyLinear          Strategy = "linear"
	StrategyUndulating      Strategy = "undulating"
	StrategyStrengthFocused Strategy = "strengthFocused"
)

// ParseStrategy normalizes a raw strategy string.
func ParseStrategy(raw string) (Strategy, bool) {
	switch Strategy(strings.TrimSpace(raw)) {
	case StrategyLinear:
		return StrategyLinear, true
	case StrategyUndulating:
		return StrategyUndulating, true
	case StrategyStrengthFocused:
		return StrategyStrengthFocused, true
	}
	return "", false
}

// RepRange is an inclusive [min, max] rep window. The array form matches the
// wire format ("reps": [8, 12]) in both JSON and BSON.
type RepRange [2]int

func (r RepRange) Min() int { return r[0] }
func (r RepRange) Max() int { return r[1] }

// Valid reports whether 1 <= min <= max <= 30.
func (r RepRange) Valid() bool {
	return r[0] >= 1 && r[0] <= r[1] && r[1] <= 30
}

// Effort target bounds (RPE scale) for any prescription.
const (
	MinRPE = 5.5
	MaxRPE = 10.0
)

// ExercisePrescription is one exercise slot inside a workout: what to do,
// for how many sets, in which rep window, at which effort, progressing how.
type ExercisePrescription struct {
	ID          string          `bson:"id" json:"id"`
	ExerciseID  string          `bson:"exercise" json:"exercise"`
	Sets        int             `bson:"sets" json:"sets"`
	Reps        RepRange        `bson:"reps" json:"reps"`
	RPE         float64         `bson:"rpe" json:"rpe"`
	Progression ProgressionRule `bson:"progression" json:"progression"`
}

// WorkoutPlan is a single dated training session.
type WorkoutPlan struct {
	Date   time.Time              `bson:"date" json:"date"`
	Day    string                 `bson:"day" json:"day"` // lowercase weekday name, derived from Date
	Name   string                 `bson:"name" json:"name"`
	Blocks []ExercisePrescription `bson:"blocks" json:"blocks"`
}

// DayName returns the lowercase weekday name for a date ("monday".."sunday").
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// TotalSets sums the prescribed sets across all blocks.
func (w WorkoutPlan) TotalSets() int {
	total := 0
	for _, b := range w.Blocks {
		total += b.Sets
	}
	return total
}

// WeekPlan is one microcycle: a zero-based index and its scheduled sessions,
// ordered by date.
type WeekPlan struct {
	Index    int           `bson:"index" json:"index"`
	Sessions []WorkoutPlan `bson:"sessions" json:"sessions"`
}

// TotalSets sums prescribed sets across every session in the week.
func (w WeekPlan) TotalSets() int {
	total := 0
	for _, s := range w.Sessions {
		total += s.TotalSets()
	}
	return total
}

// MesocyclePlan is the aggregate root for a multi-week training block.
// Generation is an optimistic version counter: every mutation bumps it, and
// callers editing against an older generation are rejected as stale.
type MesocyclePlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	StartDate     time.Time          `bson:"startDate" json:"startDate"` // Monday of week 0
	Weeks         []WeekPlan         `bson:"weeks" json:"weeks"`
	Focus         MuscleGroup        `bson:"focus,omitempty" json:"focus,omitempty"`
	Strategy      Strategy           `bson:"strategy" json:"strategy"`
	Deload        bool               `bson:"deload" json:"deload"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	Generation    int64              `bson:"generation" json:"generation"`
	SchemaVersion int                `bson:"_schemaVersion" json:"_schemaVersion"`
}

// MidnightUTC truncates a time to its UTC calendar day. Workout dates are
// always stored in this form so date equality is plain time equality.
func MidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t (UTC midnight).
func WeekStart(t time.Time) time.Time {
	t = MidnightUTC(t)
	// time.Weekday is Sunday-based; shift so Monday is day 0.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// WeekIndexOf maps a date onto the plan's week index, or (-1, false) when
// the date falls outside the plan's span.
func (p *MesocyclePlan) WeekIndexOf(date time.Time) (int, bool) {
	if len(p.Weeks) == 0 {
		return -1, false
	}
	days := int(MidnightUTC(date).Sub(WeekStart(p.StartDate)).Hours() / 24)
	if days < 0 {
		return -1, false
	}
	idx := days / 7
	if idx >= len(p.Weeks) {
		return -1, false
	}
	return idx, true
}

// SessionOn returns the workout scheduled on the given date, if any.
func (p *MesocyclePlan) SessionOn(date time.Time) (*WorkoutPlan, bool) {
	date = MidnightUTC(date)
	for wi := range p.Weeks {
		for si := range p.Weeks[wi].Sessions {
			if p.Weeks[wi].Sessions[si].Date.Equal(date) {
				return &p.Weeks[wi].Sessions[si], true
			}
		}
	}
	return nil, false
}

// Clone returns a deep copy. Mutation operations work on clones so the
// caller's plan value is never aliased.
func (p *MesocyclePlan) Clone() *MesocyclePlan {
	out := *p
	out.Weeks = make([]WeekPlan, len(p.Weeks))
	for wi, week := range p.Weeks {
		copied := week
		copied.Sessions = make([]WorkoutPlan, len(week.Sessions))
		for si, session := range week.Sessions {
			cs := session
			cs.Blocks = make([]ExercisePrescription, len(session.Blocks))
			for bi, block := range session.Blocks {
				cb := block
				if r := block.Progression.Linear; r != nil {
					cp := *r
					cb.Progression.Linear = &cp
				}
				if r := block.Progression.DoubleProgression; r != nil {
					cp := *r
					cb.Progression.DoubleProgression = &cp
				}
				if r := block.Progression.Wave; r != nil {
					cp := *r
					cb.Progression.Wave = &cp
				}
				cs.Blocks[bi] = cb
			}
			copied.Sessions[si] = cs
		}
		out.Weeks[wi] = copied
	}
	return &out
}
