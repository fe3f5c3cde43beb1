package planner

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"mesoforge/mesocycle-app/internal/domain"
)

// DeloadFactor is the volume multiplier applied to a requested deload week.
const DeloadFactor = 0.6

// DefaultRPE is the conservative effort target prescribed by the generator:
// one rep in reserve.
const DefaultRPE = 9.0

// Generator turns a PlanInput into a complete MesocyclePlan. Generation is
// deterministic: identical input and catalog snapshot yield an identical
// schedule, because exercise selection hashes (muscle group, day index, seed)
// into the candidate list instead of drawing randomly.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock allows tests to pin the creation timestamp.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate builds a plan for the request. Muscle-group targets with no
// eligible catalog exercise are reported as warnings, never dropped silently.
func (g *Generator) Generate(ctx context.Context, input domain.PlanInput, catalog ExerciseCatalog) (*domain.MesocyclePlan, []Warning, error) {
	input, err := domain.NewPlanInput(input)
	if err != nil {
		return nil, nil, err
	}

	now := g.now().UTC()
	startDate := input.StartDate
	if startDate.IsZero() {
		// Default anchor: the Monday after the current week.
		startDate = domain.WeekStart(now).AddDate(0, 0, 7)
	} else {
		startDate = domain.WeekStart(startDate)
	}

	groups := sortedTargetGroups(input.WeeklyVolumeTargets)

	candidates := make(map[domain.MuscleGroup][]domain.Exercise, len(groups))
	var warnings []Warning
	for _, mg := range groups {
		pool, err := catalog.FetchAllTargeting(ctx, mg)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog lookup for %s: %w", mg, err)
		}
		// Stable ordering is what makes the hash-based pick reproducible
		// across catalog snapshots that merely reorder results.
		sort.Slice(pool, func(i, j int) bool { return pool[i].ID.Hex() < pool[j].ID.Hex() })
		if len(pool) == 0 {
			warnings = append(warnings, noCandidatesWarning(mg))
			continue
		}
		candidates[mg] = pool
	}

	offsets := trainingDayOffsets(input.DaysPerWeek)

	weeks := make([]domain.WeekPlan, 0, input.Weeks)
	for w := 0; w < input.Weeks; w++ {
		factor := weekFactor(input, w)
		week := domain.WeekPlan{Index: w}
		for d := 0; d < input.DaysPerWeek; d++ {
			date := startDate.AddDate(0, 0, w*7+offsets[d])
			session := domain.WorkoutPlan{
				Date: date,
				Day:  domain.DayName(date),
				Name: fmt.Sprintf("Week %d Day %d", w+1, d+1),
			}
			for _, mg := range groups {
				pool := candidates[mg]
				if len(pool) == 0 {
					continue
				}
				perDay := int(math.Round(float64(input.WeeklyVolumeTargets[mg]) * factor / float64(input.DaysPerWeek)))
				if perDay <= 0 {
					continue
				}
				pick := pool[pickIndex(mg, d, input.Seed, len(pool))]
				appendOrMerge(&session, pick, perDay, input)
			}
			if len(session.Blocks) == 0 {
				continue // rest day
			}
			week.Sessions = append(week.Sessions, session)
		}
		weeks = append(weeks, week)
	}

	if input.Deload && len(weeks) > 1 {
		clampDeload(&weeks[len(weeks)-1], weeks[len(weeks)-2].TotalSets())
	}

	plan := &domain.MesocyclePlan{
		CreatedAt:     now,
		StartDate:     startDate,
		Weeks:         weeks,
		Focus:         input.Focus,
		Strategy:      input.Strategy,
		Deload:        input.Deload,
		IsActive:      true,
		Generation:    0,
		SchemaVersion: domain.SchemaVersion,
	}
	return plan, warnings, nil
}

// weekFactor is the progressive-overload multiplier for week w: a linear ramp
// for every week except a requested deload final week, which drops to 0.6.
func weekFactor(input domain.PlanInput, w int) float64 {
	if input.Deload && w == input.Weeks-1 {
		return DeloadFactor
	}
	return 1.0 + input.WeeklyVolumeRamp*float64(w)
}

// clampDeload caps the deload week's volume relative to the week before it.
// Per-day rounding works from the raw target, so a small or odd target can
// round the deload week above the cap the validator enforces. Sets are shaved
// off the largest block, one at a time, until the total fits; blocks trimmed
// to zero are dropped, as are sessions left empty.
func clampDeload(week *domain.WeekPlan, priorTotal int) {
	limit := int(math.Floor(DeloadVolumeCap * float64(priorTotal)))
	for week.TotalSets() > limit {
		var target *domain.ExercisePrescription
		for si := range week.Sessions {
			for bi := range week.Sessions[si].Blocks {
				b := &week.Sessions[si].Blocks[bi]
				if target == nil || b.Sets > target.Sets {
					target = b
				}
			}
		}
		if target == nil {
			return
		}
		target.Sets--
	}

	sessions := week.Sessions[:0]
	for _, session := range week.Sessions {
		blocks := session.Blocks[:0]
		for _, block := range session.Blocks {
			if block.Sets > 0 {
				blocks = append(blocks, block)
			}
		}
		session.Blocks = blocks
		if len(session.Blocks) > 0 {
			sessions = append(sessions, session)
		}
	}
	week.Sessions = sessions
}

// appendOrMerge adds a prescription for the picked exercise, folding the sets
// into an existing block when the same exercise was already selected for this
// session via another muscle group.
func appendOrMerge(session *domain.WorkoutPlan, pick domain.Exercise, sets int, input domain.PlanInput) {
	exID := pick.ID.Hex()
	for i := range session.Blocks {
		if session.Blocks[i].ExerciseID == exID {
			session.Blocks[i].Sets += sets
			return
		}
	}
	session.Blocks = append(session.Blocks, domain.ExercisePrescription{
		ID:          uuid.NewString(),
		ExerciseID:  exID,
		Sets:        sets,
		Reps:        input.DefaultRepRange,
		RPE:         DefaultRPE,
		Progression: progressionFor(input.Strategy, input.DefaultRepRange),
	})
}

// progressionFor picks the progression rule matching the periodization
// strategy.
func progressionFor(strategy domain.Strategy, reps domain.RepRange) domain.ProgressionRule {
	switch strategy {
	case domain.StrategyUndulating:
		return domain.NewDoubleProgression(reps.Min(), reps.Max(), 2.5)
	case domain.StrategyStrengthFocused:
		return domain.NewWaveProgression(3, 5)
	default:
		return domain.NewLinearProgression(0, 2.5)
	}
}

// trainingDayOffsets spreads n training days across Monday..Sunday, e.g.
// 3 days -> Mon/Wed/Fri.
func trainingDayOffsets(n int) []int {
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		offsets[i] = i * 7 / n
	}
	return offsets
}

// pickIndex maps (muscle group, day, seed) onto a candidate index via
// FNV-64a. Stable across weeks so the same slot trains the same exercise
// all mesocycle long.
func pickIndex(mg domain.MuscleGroup, day int, seed uint64, n int) int {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", mg, day, seed)
	return int(h.Sum64() % uint64(n))
}

func sortedTargetGroups(targets map[domain.MuscleGroup]int) []domain.MuscleGroup {
	groups := make([]domain.MuscleGroup, 0, len(targets))
	for mg := range targets {
		groups = append(groups, mg)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}
