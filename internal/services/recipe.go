package services

import (
	"context"

	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	GetByID(ctx context.Context, id string) (types.Recipe, error)
	Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error)
	Update(ctx context.Context, id string, fields bson.M) (types.Recipe, error)
	Delete(ctx context.Context, id string) error
	IncrementHits(ctx context.Context, id string) error
	Search(ctx context.Context, opts store.SearchOptions) ([]types.Recipe, int64, error)
}

// RecipeService encapsulates recipe use-cases.
type RecipeService struct {
	repo RecipeRepository
}

func NewRecipeService(repo RecipeRepository) *RecipeService {
	return &RecipeService{repo: repo}
}

func (s *RecipeService) Get(ctx context.Context, id string) (types.Recipe, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RecipeService) Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error) {
	return s.repo.Create(ctx, recipe)
}

func (s *RecipeService) Update(ctx context.Context, id string, fields bson.M) (types.Recipe, error) {
	return s.repo.Update(ctx, id, fields)
}

func (s *RecipeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *RecipeService) RecordHit(ctx context.Context, id string) error {
	return s.repo.IncrementHits(ctx, id)
}

func (s *RecipeService) Search(ctx context.Context, opts store.SearchOptions) ([]types.Recipe, int64, error) {
	return s.repo.Search(ctx, opts)
}
