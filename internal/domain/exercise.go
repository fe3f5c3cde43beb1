// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementPattern classifies the gross motion of an exercise.
type MovementPattern string

const (
	PatternHorizontalPush MovementPattern = "horizontal-push"
	PatternHorizontalPull MovementPattern = "horizontal-pull"
	PatternVerticalPush   MovementPattern = "vertical-push"
	PatternVerticalPull   MovementPattern = "vertical-pull"
	PatternSquat          MovementPattern = "squat"
	PatternHinge          MovementPattern = "hinge"
	PatternLunge          MovementPattern = "lunge"
	PatternCarry          MovementPattern = "carry"
	PatternIsolation      MovementPattern = "isolation"
)

// Exercise is one entry in the exercise catalog. The planner consults
// PrimaryMuscles when assigning exercises to muscle-group volume targets.
type Exercise struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID        primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	PrimaryMuscles   []MuscleGroup      `bson:"primaryMuscles" json:"primaryMuscles"`
	SecondaryMuscles []MuscleGroup      `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles,omitempty"`
	Pattern          MovementPattern    `bson:"pattern,omitempty" json:"pattern,omitempty"`
	Equipment        string             `bson:"equipment,omitempty" json:"equipment,omitempty"` // e.g. "barbell", "dumbbell", "cable", "bodyweight"

	// VideoObjectKey points at an optional demonstration clip in object
	// storage. Presigned URLs are issued by the catalog service on demand.
	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"videoObjectKey,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Targets reports whether the exercise primarily trains the given muscle group.
func (e *Exercise) Targets(mg MuscleGroup) bool {
	for _, m := range e.PrimaryMuscles {
		if m == mg {
			return true
		}
	}
	return false
}
