package memory

import (
	"context"
	"sync"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// RideRepository stores rides in memory. Rides are kept in insertion order so
// list queries return them oldest first, matching the Postgres implementation.
type RideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
	order []string
}

// NewRideRepository creates an empty in-memory ride repository.
func NewRideRepository() *RideRepository {
	return &RideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rides[ride.ID]; exists {
		return repository.ErrDuplicate
	}
	stored := *ride
	r.rides[ride.ID] = &stored
	r.order = append(r.order, ride.ID)
	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

// ListByStatus retrieves all rides in the given status.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	return r.filter(func(ride *domain.Ride) bool { return ride.Status == status }), nil
}

// ListByUserID retrieves all rides requested by the given user.
// This is an O(n) scan over every stored ride.
func (r *RideRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Ride, error) {
	return r.filter(func(ride *domain.Ride) bool { return ride.UserID == userID }), nil
}

// Transition moves a ride between statuses while holding the write lock, so
// the status check and the update cannot interleave with another writer.
func (r *RideRepository) Transition(ctx context.Context, id string, from, to domain.RideStatus, driverID string) (*domain.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ride.Status != from {
		return nil, repository.ErrStatusConflict
	}
	ride.Status = to
	if driverID != "" {
		ride.DriverID = driverID
	}
	copy := *ride
	return &copy, nil
}

func (r *RideRepository) filter(match func(*domain.Ride) bool) []*domain.Ride {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Ride, 0)
	for _, id := range r.order {
		ride := r.rides[id]
		if match(ride) {
			copy := *ride
			result = append(result, &copy)
		}
	}
	return result
}
