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

const ingredientCollection = "ingredients"

// IngredientRepository handles persistence for ingredients.
type IngredientRepository struct {
	coll *mongo.Collection
}

func NewIngredientRepository(db *mongo.Database) *IngredientRepository {
	return &IngredientRepository{coll: db.Collection(ingredientCollection)}
}

func (r *IngredientRepository) GetByID(ctx context.Context, id string) (types.Ingredient, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Ingredient{}, ErrNotFound
	}

	var ingredient types.Ingredient
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ingredient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Ingredient{}, ErrNotFound
		}
		return types.Ingredient{}, err
	}
	return ingredient, nil
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient types.Ingredient) (types.Ingredient, error) {
	ingredient.ID = primitive.NewObjectID()
	ingredient.DateCreated = time.Now()

	if _, err := r.coll.InsertOne(ctx, ingredient); err != nil {
		return types.Ingredient{}, writeError(err)
	}
	return ingredient, nil
}

// Search returns the matching page of ingredients and the total collection count.
func (r *IngredientRepository) Search(ctx context.Context, opts SearchOptions) ([]types.Ingredient, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, opts.Filter(), opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var ingredients []types.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, 0, err
	}
	return ingredients, total, nil
}
