package store

import (
	"context"
	"errors"
	"time"

	"github.com/pantry-pal/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const recipeCollection = "recipes"

// RecipeRepository handles persistence for recipes.
type RecipeRepository struct {
	coll *mongo.Collection
}

func NewRecipeRepository(db *mongo.Database) *RecipeRepository {
	return &RecipeRepository{coll: db.Collection(recipeCollection)}
}

func (r *RecipeRepository) GetByID(ctx context.Context, id string) (types.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Recipe{}, ErrNotFound
	}

	var recipe types.Recipe
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Recipe{}, ErrNotFound
		}
		return types.Recipe{}, err
	}
	return recipe, nil
}

func (r *RecipeRepository) Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error) {
	recipe.ID = primitive.NewObjectID()
	recipe.DateCreated = time.Now()

	if _, err := r.coll.InsertOne(ctx, recipe); err != nil {
		return types.Recipe{}, writeError(err)
	}
	return recipe, nil
}

// Update applies the given field changes and returns the updated document.
func (r *RecipeRepository) Update(ctx context.Context, id string, fields bson.M) (types.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Recipe{}, ErrNotFound
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return types.Recipe{}, writeError(err)
	}
	if result.MatchedCount == 0 {
		return types.Recipe{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementHits bumps the view counter. Failures are the caller's to ignore;
// a lost hit never fails the read path.
func (r *RecipeRepository) IncrementHits(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"numHits": 1}})
	return err
}

// Search returns the matching page of recipes and the total collection count.
func (r *RecipeRepository) Search(ctx context.Context, opts SearchOptions) ([]types.Recipe, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, opts.Filter(), opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var recipes []types.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}
