package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/logger"
	"mesoforge/mesocycle-app/internal/planner"
	"mesoforge/mesocycle-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("access denied to this plan")
	ErrStalePlan        = errors.New("plan has changed since it was last read")
	ErrPlanInvalid      = errors.New("plan failed invariant validation")
)

// PlanResult bundles a plan with its generation warnings and the freshly
// projected calendar grid. Every successful mutation re-projects before the
// result is handed back.
type PlanResult struct {
	Plan     *domain.MesocyclePlan
	Warnings []planner.Warning
	Calendar []planner.DayCell
}

// PlanService orchestrates the generator, validator, mutation engine, and
// calendar projector around the plan repository. The engine is single-writer:
// every mutation names the plan generation the caller last read, and edits
// against an advanced generation are rejected with ErrStalePlan rather than
// silently applied.
type PlanService interface {
	Generate(ctx context.Context, ownerID primitive.ObjectID, input domain.PlanInput) (*PlanResult, error)
	Regenerate(ctx context.Context, ownerID, planID primitive.ObjectID, input domain.PlanInput) (*PlanResult, error)
	ActivePlan(ctx context.Context, ownerID primitive.ObjectID) (*PlanResult, error)
	GetPlan(ctx context.Context, ownerID, planID primitive.ObjectID) (*PlanResult, error)
	ValidatePlan(ctx context.Context, ownerID, planID primitive.ObjectID) (planner.ValidationResult, error)
	DeletePlan(ctx context.Context, ownerID, planID primitive.ObjectID) error

	EnsureDay(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time) (*PlanResult, error)
	AddExercise(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time, exerciseID primitive.ObjectID, defaults planner.ExerciseDefaults) (*PlanResult, error)
	RemoveExercise(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, prescriptionID string) (*PlanResult, error)
	ReorderExercises(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time, fromIndex, toIndex int) (*PlanResult, error)
	MoveWorkout(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, sourceDate, destinationDate time.Time) (*PlanResult, error)
}

// planService implements the PlanService interface.
type planService struct {
	planRepo     repository.PlanRepository
	exerciseRepo repository.ExerciseRepository
	generator    *planner.Generator
	log          *logger.Logger
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, exerciseRepo repository.ExerciseRepository, generator *planner.Generator, log *logger.Logger) PlanService {
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
		generator:    generator,
		log:          log,
	}
}

// Generate produces, validates, and stores a fresh plan for the owner.
func (s *planService) Generate(ctx context.Context, ownerID primitive.ObjectID, input domain.PlanInput) (*PlanResult, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}

	plan, warnings, err := s.generator.Generate(ctx, input, s.exerciseRepo)
	if err != nil {
		return nil, err
	}
	if result := planner.Validate(plan); !result.Valid() {
		s.log.Error("generated plan failed validation", "violations", len(result.Violations))
		return nil, ErrPlanInvalid
	}

	plan.OwnerID = ownerID
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	s.log.Info("mesocycle plan generated",
		"planId", planID.Hex(), "weeks", len(plan.Weeks), "strategy", plan.Strategy, "warnings", len(warnings))
	return &PlanResult{Plan: plan, Warnings: warnings, Calendar: planner.Project(plan)}, nil
}

// Regenerate replaces the stored plan's content with a freshly generated
// schedule under the same id. The generation counter advances, so mutations
// built against the prior plan are rejected as stale.
func (s *planService) Regenerate(ctx context.Context, ownerID, planID primitive.ObjectID, input domain.PlanInput) (*PlanResult, error) {
	existing, err := s.loadOwned(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	plan, warnings, err := s.generator.Generate(ctx, input, s.exerciseRepo)
	if err != nil {
		return nil, err
	}
	if result := planner.Validate(plan); !result.Valid() {
		return nil, ErrPlanInvalid
	}

	plan.ID = existing.ID
	plan.OwnerID = existing.OwnerID
	plan.IsActive = existing.IsActive
	plan.Generation = existing.Generation + 1
	if err := s.save(ctx, plan, existing.Generation); err != nil {
		return nil, err
	}
	s.log.Info("mesocycle plan regenerated", "planId", planID.Hex(), "generation", plan.Generation)
	return &PlanResult{Plan: plan, Warnings: warnings, Calendar: planner.Project(plan)}, nil
}

// ActivePlan fetches the owner's active plan with its calendar projection.
func (s *planService) ActivePlan(ctx context.Context, ownerID primitive.ObjectID) (*PlanResult, error) {
	plan, err := s.planRepo.FetchActive(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &PlanResult{Plan: plan, Calendar: planner.Project(plan)}, nil
}

// GetPlan fetches one plan by id, enforcing ownership.
func (s *planService) GetPlan(ctx context.Context, ownerID, planID primitive.ObjectID) (*PlanResult, error) {
	plan, err := s.loadOwned(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan, Calendar: planner.Project(plan)}, nil
}

// ValidatePlan runs the full invariant check on a stored plan. Mutations do
// not re-validate automatically; this is the explicit check callers use
// after a run of edits.
func (s *planService) ValidatePlan(ctx context.Context, ownerID, planID primitive.ObjectID) (planner.ValidationResult, error) {
	plan, err := s.loadOwned(ctx, ownerID, planID)
	if err != nil {
		return planner.ValidationResult{}, err
	}
	return planner.Validate(plan), nil
}

// DeletePlan removes the plan entirely.
func (s *planService) DeletePlan(ctx context.Context, ownerID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// EnsureDay guarantees a (possibly empty) workout exists on date.
func (s *planService) EnsureDay(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time) (*PlanResult, error) {
	return s.mutate(ctx, ownerID, planID, generation, func(plan *domain.MesocyclePlan) (*domain.MesocyclePlan, error) {
		out, _, err := planner.EnsureDay(plan, date)
		return out, err
	})
}

// AddExercise appends or merges a prescription on the given date.
func (s *planService) AddExercise(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time, exerciseID primitive.ObjectID, defaults planner.ExerciseDefaults) (*PlanResult, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.mutate(ctx, ownerID, planID, generation, func(plan *domain.MesocyclePlan) (*domain.MesocyclePlan, error) {
		return planner.AddExercise(plan, date, *exercise, defaults)
	})
}

// RemoveExercise deletes a prescription by its id.
func (s *planService) RemoveExercise(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, prescriptionID string) (*PlanResult, error) {
	return s.mutate(ctx, ownerID, planID, generation, func(plan *domain.MesocyclePlan) (*domain.MesocyclePlan, error) {
		return planner.RemoveExercise(plan, prescriptionID)
	})
}

// ReorderExercises permutes the blocks within one day.
func (s *planService) ReorderExercises(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, date time.Time, fromIndex, toIndex int) (*PlanResult, error) {
	return s.mutate(ctx, ownerID, planID, generation, func(plan *domain.MesocyclePlan) (*domain.MesocyclePlan, error) {
		return planner.ReorderExercises(plan, date, fromIndex, toIndex)
	})
}

// MoveWorkout applies the swap-or-move drag-and-drop contract.
func (s *planService) MoveWorkout(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, sourceDate, destinationDate time.Time) (*PlanResult, error) {
	return s.mutate(ctx, ownerID, planID, generation, func(plan *domain.MesocyclePlan) (*domain.MesocyclePlan, error) {
		return planner.MoveWorkout(plan, sourceDate, destinationDate)
	})
}

// mutate is the shared read-modify-write cycle: load and authorize, reject
// stale generations, apply the pure mutation, persist atomically, and
// re-project the calendar.
func (s *planService) mutate(ctx context.Context, ownerID, planID primitive.ObjectID, generation int64, apply func(*domain.MesocyclePlan) (*domain.MesocyclePlan, error)) (*PlanResult, error) {
	plan, err := s.loadOwned(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Generation != generation {
		return nil, ErrStalePlan
	}
	updated, err := apply(plan)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, updated, generation); err != nil {
		return nil, err
	}
	return &PlanResult{Plan: updated, Calendar: planner.Project(updated)}, nil
}

func (s *planService) loadOwned(ctx context.Context, ownerID, planID primitive.ObjectID) (*domain.MesocyclePlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *planService) save(ctx context.Context, plan *domain.MesocyclePlan, expectedGeneration int64) error {
	err := s.planRepo.Save(ctx, plan, expectedGeneration)
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return ErrStalePlan
	case errors.Is(err, repository.ErrNotFound):
		return ErrPlanNotFound
	}
	return err
}
