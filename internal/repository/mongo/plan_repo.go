// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/repository"
)

const planCollectionName = "mesocycle_plans"

// mongoPlanRepository implements repository.PlanRepository.
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new MesocyclePlan repository backed by
// MongoDB.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a freshly generated plan and deactivates any other active
// plan the owner had, keeping at most one active mesocycle per owner.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.MesocyclePlan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires an owner")
	}
	plan.ID = primitive.NewObjectID()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	plan.SchemaVersion = domain.SchemaVersion

	if plan.IsActive {
		deactivate := bson.M{"$set": bson.M{"isActive": false}}
		filter := bson.M{"ownerId": plan.OwnerID, "isActive": true}
		if _, err := r.collection.UpdateMany(ctx, filter, deactivate); err != nil {
			return primitive.NilObjectID, err
		}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a plan by id.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MesocyclePlan, error) {
	var plan domain.MesocyclePlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FetchActive retrieves the owner's active plan, if any.
func (r *mongoPlanRepository) FetchActive(ctx context.Context, ownerID primitive.ObjectID) (*domain.MesocyclePlan, error) {
	var plan domain.MesocyclePlan
	filter := bson.M{"ownerId": ownerID, "isActive": true}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Save replaces the whole stored document in one write. The filter pins the
// generation the caller read, so a plan that advanced underneath them (e.g.
// through a concurrent regenerate) fails with ErrStaleWrite instead of being
// overwritten. Partial saves of individual days are deliberately unsupported.
func (r *mongoPlanRepository) Save(ctx context.Context, plan *domain.MesocyclePlan, expectedGeneration int64) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for save")
	}
	plan.SchemaVersion = domain.SchemaVersion

	filter := bson.M{"_id": plan.ID, "generation": expectedGeneration}
	result, err := r.collection.ReplaceOne(ctx, filter, plan)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the plan is gone or its generation moved on. Distinguish so
		// callers can surface the right error.
		var exists domain.MesocyclePlan
		err := r.collection.FindOne(ctx, bson.M{"_id": plan.ID}).Decode(&exists)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		return repository.ErrStaleWrite
	}
	return nil
}

// Delete removes a plan, scoped to its owner.
func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates plan collection indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
