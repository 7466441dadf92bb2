package repository

import (
	"context"

	"rideshare/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListByStatus retrieves all rides in the given status, oldest first.
	ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error)

	// ListByUserID retrieves all rides requested by the given user, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Ride, error)

	// Transition moves a ride from one status to another in a single step.
	// A non-empty driverID is recorded on the ride. Returns ErrNotFound if the
	// ride does not exist and ErrStatusConflict if its status is not from.
	Transition(ctx context.Context, id string, from, to domain.RideStatus, driverID string) (*domain.Ride, error)
}
