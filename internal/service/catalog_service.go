package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/logger"
	"mesoforge/mesocycle-app/internal/repository"
	"mesoforge/mesocycle-app/internal/storage"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// ExerciseInput carries the writable fields of a catalog entry.
type ExerciseInput struct {
	Name             string
	Description      string
	PrimaryMuscles   []domain.MuscleGroup
	SecondaryMuscles []domain.MuscleGroup
	Pattern          domain.MovementPattern
	Equipment        string
}

// CatalogService manages the exercise catalog and its demo-video media.
type CatalogService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetAllExercises(ctx context.Context) ([]domain.Exercise, error)
	GetExercisesTargeting(ctx context.Context, mg domain.MuscleGroup) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error

	// RequestVideoUploadURL issues a presigned PUT URL for an exercise's
	// demonstration clip and records the object key on the exercise.
	RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (string, error)
	// VideoDownloadURL issues a presigned GET URL for the exercise's clip.
	VideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
	log          *logger.Logger
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, log *logger.Logger) CatalogService {
	return &catalogService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		log:          log,
	}
}

func validateExerciseInput(input ExerciseInput) error {
	if input.Name == "" {
		return ErrValidationFailed
	}
	if len(input.PrimaryMuscles) == 0 {
		return ErrValidationFailed
	}
	for _, mg := range append(append([]domain.MuscleGroup{}, input.PrimaryMuscles...), input.SecondaryMuscles...) {
		if _, ok := domain.ParseMuscleGroup(string(mg)); !ok {
			return ErrValidationFailed
		}
	}
	return nil
}

// CreateExercise handles the creation of a new catalog entry by a trainer.
func (s *catalogService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}
	if err := validateExerciseInput(input); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		TrainerID:        trainerID,
		Name:             input.Name,
		Description:      input.Description,
		PrimaryMuscles:   input.PrimaryMuscles,
		SecondaryMuscles: input.SecondaryMuscles,
		Pattern:          input.Pattern,
		Equipment:        input.Equipment,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	s.log.Info("catalog exercise created", "exerciseId", exerciseID.Hex(), "name", input.Name)
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *catalogService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetAllExercises retrieves the full catalog.
func (s *catalogService) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetAll(ctx)
}

// GetExercisesTargeting retrieves the candidates for one muscle group.
func (s *catalogService) GetExercisesTargeting(ctx context.Context, mg domain.MuscleGroup) ([]domain.Exercise, error) {
	if _, ok := domain.ParseMuscleGroup(string(mg)); !ok {
		return nil, ErrValidationFailed
	}
	return s.exerciseRepo.FetchAllTargeting(ctx, mg)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *catalogService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if trainerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and exercise ID are required")
	}
	if err := validateExerciseInput(input); err != nil {
		return nil, err
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.PrimaryMuscles = input.PrimaryMuscles
	existing.SecondaryMuscles = input.SecondaryMuscles
	existing.Pattern = input.Pattern
	existing.Equipment = input.Equipment

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership. Any
// uploaded demo clip is removed from object storage as well.
func (s *catalogService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	if trainerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("trainer ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if existing.VideoObjectKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, existing.VideoObjectKey); err != nil {
			// The catalog entry is gone; a stranded clip is worth a warning,
			// not a failed delete.
			s.log.Warn("failed to delete exercise video", "exerciseId", exerciseID.Hex(), "error", err)
		}
	}
	return nil
}

// RequestVideoUploadURL issues a presigned PUT URL and stores the object key.
func (s *catalogService) RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (string, error) {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if existing.TrainerID != trainerID {
		return "", ErrExerciseAccessDenied
	}

	objectKey := fmt.Sprintf("exercise-videos/%s/%d", exerciseID.Hex(), time.Now().UTC().Unix())
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", err
	}
	existing.VideoObjectKey = objectKey
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		return "", err
	}
	return url, nil
}

// VideoDownloadURL issues a presigned GET URL for the stored clip.
func (s *catalogService) VideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if existing.VideoObjectKey == "" {
		return "", ErrExerciseNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, existing.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}
