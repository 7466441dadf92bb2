package redis

import (
	"context"

	"rideshare/internal/domain"
)

// RideCacheInterface defines the cache operations used by CachedRideRepository.
type RideCacheInterface interface {
	GetRide(ctx context.Context, rideID string) (*domain.Ride, error)
	SetRide(ctx context.Context, ride *domain.Ride) error
	InvalidateRide(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ RideCacheInterface = (*CacheStore)(nil)
)
