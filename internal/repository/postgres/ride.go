package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

const rideColumns = `id, pickup_location, drop_location, user_id, driver_id, status, created_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, pickup_location, drop_location, user_id, driver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var driverID sql.NullString
	if ride.DriverID != "" {
		driverID = sql.NullString{String: ride.DriverID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PickupLocation,
		ride.DropLocation,
		ride.UserID,
		driverID,
		ride.Status,
		ride.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// ListByStatus retrieves all rides in the given status, oldest first.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, status)
}

// ListByUserID retrieves all rides requested by the given user, oldest first.
func (r *RideRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, userID)
}

// Transition moves a ride from one status to another with a single
// conditional UPDATE. Zero affected rows means the ride is missing or has
// already left the expected status; a follow-up existence check tells which.
func (r *RideRepository) Transition(ctx context.Context, id string, from, to domain.RideStatus, driverID string) (*domain.Ride, error) {
	query := `
		UPDATE rides
		SET status = $1, driver_id = COALESCE(NULLIF($2::text, ''), driver_id)
		WHERE id = $3 AND status = $4
		RETURNING ` + rideColumns

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, to, driverID, id, from))
	if err == nil {
		return ride, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rides WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrStatusConflict
}

func (r *RideRepository) list(ctx context.Context, query string, arg any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := make([]*domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullString

	if err := row.Scan(
		&ride.ID,
		&ride.PickupLocation,
		&ride.DropLocation,
		&ride.UserID,
		&driverID,
		&ride.Status,
		&ride.CreatedAt,
	); err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	return &ride, nil
}
