package services

import (
	"context"

	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
)

// IngredientRepository defines persistence operations for ingredients.
type IngredientRepository interface {
	GetByID(ctx context.Context, id string) (types.Ingredient, error)
	Create(ctx context.Context, ingredient types.Ingredient) (types.Ingredient, error)
	Search(ctx context.Context, opts store.SearchOptions) ([]types.Ingredient, int64, error)
}

// IngredientService encapsulates ingredient use-cases.
type IngredientService struct {
	repo IngredientRepository
}

func NewIngredientService(repo IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

func (s *IngredientService) Get(ctx context.Context, id string) (types.Ingredient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *IngredientService) Create(ctx context.Context, ingredient types.Ingredient) (types.Ingredient, error) {
	return s.repo.Create(ctx, ingredient)
}

func (s *IngredientService) Search(ctx context.Context, opts store.SearchOptions) ([]types.Ingredient, int64, error) {
	return s.repo.Search(ctx, opts)
}
