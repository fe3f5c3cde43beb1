package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound       = RepositoryError("not found")
	ErrStaleWrite     = RepositoryError("plan generation advanced since read")
	ErrDuplicateEmail = RepositoryError("email already registered")
)

// RepositoryError distinguishes repository errors from lower-level driver
// failures.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository persists account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository is the exercise catalog's storage boundary. It also
// satisfies planner.ExerciseCatalog via FetchAllTargeting.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	FetchAllTargeting(ctx context.Context, mg domain.MuscleGroup) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// PlanRepository persists mesocycle plans. Save is a whole-plan atomic write
// guarded by the generation counter: writing a plan whose stored generation
// has advanced past expectedGeneration fails with ErrStaleWrite rather than
// clobbering the newer version.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.MesocyclePlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MesocyclePlan, error)
	FetchActive(ctx context.Context, ownerID primitive.ObjectID) (*domain.MesocyclePlan, error)
	Save(ctx context.Context, plan *domain.MesocyclePlan, expectedGeneration int64) error
	Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error
}
