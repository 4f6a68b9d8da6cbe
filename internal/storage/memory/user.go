package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

func NewUserRepository(users ...models.User) *UserRepository {
	r := &UserRepository{users: make(map[int64]models.User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (r *UserRepository) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}
