package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/logger"
	"mesoforge/mesocycle-app/internal/planner"
	"mesoforge/mesocycle-app/internal/repository"
)

// fakePlanRepo is an in-memory PlanRepository with the same generation guard
// the mongo implementation enforces on Save.
type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.MesocyclePlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.MesocyclePlan)}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.MesocyclePlan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := plan.Clone()
	stored.ID = id
	for _, other := range r.plans {
		if other.OwnerID == stored.OwnerID {
			other.IsActive = false
		}
	}
	r.plans[id] = stored
	return id, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MesocyclePlan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return plan.Clone(), nil
}

func (r *fakePlanRepo) FetchActive(_ context.Context, ownerID primitive.ObjectID) (*domain.MesocyclePlan, error) {
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID && plan.IsActive {
			return plan.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) Save(_ context.Context, plan *domain.MesocyclePlan, expectedGeneration int64) error {
	stored, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Generation != expectedGeneration {
		return repository.ErrStaleWrite
	}
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error {
	plan, ok := r.plans[id]
	if !ok || plan.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// fakeExerciseRepo serves a static catalog.
type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo(exercises ...domain.Exercise) *fakeExerciseRepo {
	r := &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
	for _, ex := range exercises {
		r.exercises[ex.ID] = ex
	}
	return r
}

func (r *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	exercise.ID = id
	r.exercises[id] = *exercise
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *fakeExerciseRepo) GetAll(_ context.Context) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		out = append(out, ex)
	}
	return out, nil
}

func (r *fakeExerciseRepo) FetchAllTargeting(_ context.Context, mg domain.MuscleGroup) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, ex := range r.exercises {
		if ex.Targets(mg) {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id primitive.ObjectID, _ primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func newTestPlanService(t *testing.T) (PlanService, *fakePlanRepo, *fakeExerciseRepo, primitive.ObjectID) {
	t.Helper()
	planRepo := newFakePlanRepo()
	exerciseRepo := newFakeExerciseRepo(
		domain.Exercise{ID: primitive.NewObjectID(), Name: "Bench Press", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}},
		domain.Exercise{ID: primitive.NewObjectID(), Name: "Barbell Row", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBack}},
	)
	clock := func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) }
	svc := NewPlanService(planRepo, exerciseRepo, planner.NewGeneratorWithClock(clock), logger.NewNop())
	return svc, planRepo, exerciseRepo, primitive.NewObjectID()
}

func testInput() domain.PlanInput {
	return domain.PlanInput{
		Weeks:       3,
		DaysPerWeek: 2,
		WeeklyVolumeTargets: map[domain.MuscleGroup]int{
			domain.MuscleChest: 10,
			domain.MuscleBack:  10,
		},
		DefaultRepRange:  domain.RepRange{8, 12},
		WeeklyVolumeRamp: 0.05,
		StartDate:        time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestPlanService_GenerateAndFetch(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Plan.ID.IsZero() {
		t.Error("generated plan has no id")
	}
	if !result.Plan.IsActive {
		t.Error("generated plan is not active")
	}
	if len(result.Calendar) == 0 {
		t.Error("result carries no calendar projection")
	}

	active, err := svc.ActivePlan(ctx, owner)
	if err != nil {
		t.Fatalf("ActivePlan: %v", err)
	}
	if active.Plan.ID != result.Plan.ID {
		t.Errorf("active plan %s, want %s", active.Plan.ID.Hex(), result.Plan.ID.Hex())
	}

	fetched, err := svc.GetPlan(ctx, owner, result.Plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if fetched.Plan.Generation != 0 {
		t.Errorf("fresh plan generation = %d, want 0", fetched.Plan.Generation)
	}
}

func TestPlanService_OwnershipEnforced(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stranger := primitive.NewObjectID()
	if _, err := svc.GetPlan(ctx, stranger, result.Plan.ID); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("stranger GetPlan err = %v, want ErrPlanAccessDenied", err)
	}
	if _, err := svc.RemoveExercise(ctx, stranger, result.Plan.ID, 0, "anything"); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("stranger RemoveExercise err = %v, want ErrPlanAccessDenied", err)
	}
}

func TestPlanService_MutationAdvancesGeneration(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	planID := result.Plan.ID

	source := result.Plan.Weeks[0].Sessions[0].Date
	destination := source.AddDate(0, 0, 1)
	moved, err := svc.MoveWorkout(ctx, owner, planID, 0, source, destination)
	if err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	if moved.Plan.Generation != 1 {
		t.Errorf("generation after move = %d, want 1", moved.Plan.Generation)
	}

	stored, err := svc.GetPlan(ctx, owner, planID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Plan.Generation != 1 {
		t.Errorf("stored generation = %d, want 1", stored.Plan.Generation)
	}
	if _, ok := stored.Plan.SessionOn(destination); !ok {
		t.Error("stored plan does not reflect the move")
	}
}

func TestPlanService_StaleGenerationRejected(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	planID := result.Plan.ID
	source := result.Plan.Weeks[0].Sessions[0].Date

	if _, err := svc.MoveWorkout(ctx, owner, planID, 0, source, source.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("first move: %v", err)
	}
	// Second editor still holds generation 0.
	_, err = svc.EnsureDay(ctx, owner, planID, 0, source)
	if !errors.Is(err, ErrStalePlan) {
		t.Fatalf("stale edit err = %v, want ErrStalePlan", err)
	}
}

func TestPlanService_AddExercise(t *testing.T) {
	svc, _, exerciseRepo, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	curlID, err := exerciseRepo.Create(ctx, &domain.Exercise{
		Name:           "Barbell Curl",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBiceps},
	})
	if err != nil {
		t.Fatal(err)
	}

	date := result.Plan.Weeks[0].Sessions[0].Date
	updated, err := svc.AddExercise(ctx, owner, result.Plan.ID, 0, date, curlID, planner.ExerciseDefaults{
		Sets: 3, Reps: domain.RepRange{10, 15}, RPE: 8,
	})
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	session, _ := updated.Plan.SessionOn(date)
	found := false
	for _, block := range session.Blocks {
		if block.ExerciseID == curlID.Hex() {
			found = true
		}
	}
	if !found {
		t.Error("added exercise missing from session")
	}

	// Unknown exercise id surfaces as a catalog miss, not a plan edit.
	if _, err := svc.AddExercise(ctx, owner, result.Plan.ID, 1, date, primitive.NewObjectID(), planner.ExerciseDefaults{
		Sets: 3, Reps: domain.RepRange{10, 15}, RPE: 8,
	}); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("unknown exercise err = %v, want ErrExerciseNotFound", err)
	}
}

func TestPlanService_RegenerateInvalidatesPriorGeneration(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	planID := result.Plan.ID

	regenerated, err := svc.Regenerate(ctx, owner, planID, testInput())
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if regenerated.Plan.ID != planID {
		t.Errorf("regenerate changed the plan id to %s", regenerated.Plan.ID.Hex())
	}
	if regenerated.Plan.Generation != 1 {
		t.Errorf("generation after regenerate = %d, want 1", regenerated.Plan.Generation)
	}

	source := result.Plan.Weeks[0].Sessions[0].Date
	if _, err := svc.MoveWorkout(ctx, owner, planID, 0, source, source.AddDate(0, 0, 1)); !errors.Is(err, ErrStalePlan) {
		t.Errorf("pre-regenerate edit err = %v, want ErrStalePlan", err)
	}
}

func TestPlanService_ValidateStoredPlan(t *testing.T) {
	svc, planRepo, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	check, err := svc.ValidatePlan(ctx, owner, result.Plan.ID)
	if err != nil {
		t.Fatalf("ValidatePlan: %v", err)
	}
	if !check.Valid() {
		t.Errorf("generated plan reported invalid: %v", check.Violations)
	}

	// Corrupt the stored plan behind the service's back.
	stored := planRepo.plans[result.Plan.ID]
	stored.Weeks[0].Sessions[0].Blocks[0].RPE = 2.0
	check, err = svc.ValidatePlan(ctx, owner, result.Plan.ID)
	if err != nil {
		t.Fatalf("ValidatePlan: %v", err)
	}
	if check.Valid() {
		t.Error("corrupted plan reported valid")
	}
}

func TestPlanService_DeletePlan(t *testing.T) {
	svc, _, _, owner := newTestPlanService(t)
	ctx := context.Background()

	result, err := svc.Generate(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := svc.DeletePlan(ctx, owner, result.Plan.ID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := svc.GetPlan(ctx, owner, result.Plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("deleted plan err = %v, want ErrPlanNotFound", err)
	}
	if err := svc.DeletePlan(ctx, owner, result.Plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("double delete err = %v, want ErrPlanNotFound", err)
	}
}
