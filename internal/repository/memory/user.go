package memory

import (
	"context"
	"sync"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// UserRepository stores users in memory, indexed by id and username.
type UserRepository struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	byUsername map[string]string
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return repository.ErrDuplicate
	}
	stored := *user
	r.users[user.ID] = &stored
	r.byUsername[user.Username] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *r.users[id]
	return &copy, nil
}
