package tests

import (
	"context"
	"errors"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

func TestCachedRideRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(newRequestedRide("ride-1", "user-1"))
	cache := NewMockRideCache()
	cached := redis.NewCachedRideRepository(rideRepo, cache)

	if _, err := cached.GetByID(ctx, "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.GetByID(ctx, "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rideRepo.GetByIDCallCount != 1 {
		t.Errorf("expected second read to hit the cache, store reads = %d", rideRepo.GetByIDCallCount)
	}
}

func TestCachedRideRepository_CacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(newRequestedRide("ride-1", "user-1"))
	cache := NewMockRideCache()
	cache.GetError = errors.New("redis unavailable")
	cache.SetError = errors.New("redis unavailable")
	cached := redis.NewCachedRideRepository(rideRepo, cache)

	ride, err := cached.GetByID(ctx, "ride-1")
	if err != nil {
		t.Fatalf("cache errors must not fail reads: %v", err)
	}
	if ride.ID != "ride-1" {
		t.Errorf("unexpected ride %s", ride.ID)
	}
}

func TestCachedRideRepository_TransitionRefreshesCache(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	cache := NewMockRideCache()
	cached := redis.NewCachedRideRepository(rideRepo, cache)

	if err := cached.Create(ctx, newRequestedRide("ride-1", "user-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Transition(ctx, "ride-1", domain.RideStatusRequested, domain.RideStatusAccepted, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride, err := cached.GetByID(ctx, "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted || ride.DriverID != "driver-1" {
		t.Errorf("expected cached ACCEPTED ride, got %+v", ride)
	}
	if rideRepo.GetByIDCallCount != 0 {
		t.Errorf("expected cache hit, store reads = %d", rideRepo.GetByIDCallCount)
	}
}

func TestCachedRideRepository_ConflictInvalidates(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	cache := NewMockRideCache()
	cached := redis.NewCachedRideRepository(rideRepo, cache)

	if err := cached.Create(ctx, newRequestedRide("ride-1", "user-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The store moves on without the cache seeing it.
	rideRepo.GetRide("ride-1").Status = domain.RideStatusAccepted

	_, err := cached.Transition(ctx, "ride-1", domain.RideStatusRequested, domain.RideStatusAccepted, "driver-2")
	if !errors.Is(err, repository.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
	if cache.Has("ride-1") {
		t.Error("expected stale entry to be invalidated")
	}
}
