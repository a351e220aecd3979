package services

import (
	"context"
	"errors"

	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetVerified(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, hash string) error
	Search(ctx context.Context, opts store.SearchOptions) ([]types.User, int64, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) SetVerified(ctx context.Context, id string) error {
	return s.repo.SetVerified(ctx, id)
}

func (s *UserService) SetPassword(ctx context.Context, id, hash string) error {
	return s.repo.SetPassword(ctx, id, hash)
}

func (s *UserService) Search(ctx context.Context, opts store.SearchOptions) ([]types.User, int64, error) {
	return s.repo.Search(ctx, opts)
}

// GetRef loads the public projection of a user. A missing user yields a
// zero ref rather than an error so list enrichment tolerates deleted
// authors.
func (s *UserService) GetRef(ctx context.Context, id string) (types.UserRef, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.UserRef{}, nil
		}
		return types.UserRef{}, err
	}
	return user.Ref(), nil
}
