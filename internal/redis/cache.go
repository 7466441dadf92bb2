package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/domain"
)

// CacheStore handles ride caching in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultRideCacheTTL bounds how stale a cached ride can get if an
// invalidation is lost.
const DefaultRideCacheTTL = 30 * time.Second

const rideCachePrefix = "cache:ride:"

// NewCacheStore creates a new CacheStore. A non-positive ttl selects
// DefaultRideCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultRideCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// CachedRide represents a cached ride entity.
type CachedRide struct {
	ID             string    `json:"id"`
	PickupLocation string    `json:"pickup_location"`
	DropLocation   string    `json:"drop_location"`
	UserID         string    `json:"user_id"`
	DriverID       string    `json:"driver_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetRide retrieves a ride from cache. A miss returns (nil, nil).
func (s *CacheStore) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	data, err := s.client.Get(ctx, rideCachePrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedRide
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.Ride{
		ID:             cached.ID,
		PickupLocation: cached.PickupLocation,
		DropLocation:   cached.DropLocation,
		UserID:         cached.UserID,
		DriverID:       cached.DriverID,
		Status:         domain.RideStatus(cached.Status),
		CreatedAt:      cached.CreatedAt,
	}, nil
}

// SetRide stores a ride in cache.
func (s *CacheStore) SetRide(ctx context.Context, ride *domain.Ride) error {
	data, err := json.Marshal(CachedRide{
		ID:             ride.ID,
		PickupLocation: ride.PickupLocation,
		DropLocation:   ride.DropLocation,
		UserID:         ride.UserID,
		DriverID:       ride.DriverID,
		Status:         string(ride.Status),
		CreatedAt:      ride.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rideCachePrefix+ride.ID, data, s.ttl).Err()
}

// InvalidateRide removes a ride from cache.
func (s *CacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, rideCachePrefix+rideID).Err()
}
