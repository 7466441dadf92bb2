package redis

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// CachedRideRepository serves GetByID from Redis and falls back to the
// wrapped repository on a miss. Writes go to the wrapped repository first and
// then refresh the cache. Cache failures are logged and never fail a request.
type CachedRideRepository struct {
	next  repository.RideRepository
	cache RideCacheInterface
}

var _ repository.RideRepository = (*CachedRideRepository)(nil)

// NewCachedRideRepository wraps next with a read-through cache.
func NewCachedRideRepository(next repository.RideRepository, cache RideCacheInterface) *CachedRideRepository {
	return &CachedRideRepository{next: next, cache: cache}
}

// Create persists a new ride and primes the cache.
func (r *CachedRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if err := r.next.Create(ctx, ride); err != nil {
		return err
	}
	r.store(ctx, ride)
	return nil
}

// GetByID retrieves a ride, preferring the cached copy.
func (r *CachedRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	cached, err := r.cache.GetRide(ctx, id)
	if err != nil {
		logrus.WithError(err).WithField("ride_id", id).Warn("ride cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	ride, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, ride)
	return ride, nil
}

// ListByStatus is not cached.
func (r *CachedRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	return r.next.ListByStatus(ctx, status)
}

// ListByUserID is not cached.
func (r *CachedRideRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Ride, error) {
	return r.next.ListByUserID(ctx, userID)
}

// Transition delegates to the wrapped repository. On success the new state
// is cached; on a status conflict the cached copy is dropped because it is
// known to be stale.
func (r *CachedRideRepository) Transition(ctx context.Context, id string, from, to domain.RideStatus, driverID string) (*domain.Ride, error) {
	ride, err := r.next.Transition(ctx, id, from, to, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			if cerr := r.cache.InvalidateRide(ctx, id); cerr != nil {
				logrus.WithError(cerr).WithField("ride_id", id).Warn("ride cache invalidation failed")
			}
		}
		return nil, err
	}
	r.store(ctx, ride)
	return ride, nil
}

func (r *CachedRideRepository) store(ctx context.Context, ride *domain.Ride) {
	if err := r.cache.SetRide(ctx, ride); err != nil {
		logrus.WithError(err).WithField("ride_id", ride.ID).Warn("ride cache write failed")
	}
}
