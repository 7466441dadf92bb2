package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// CompletePolicy decides who may complete an accepted ride.
type CompletePolicy string

const (
	// CompleteByAnyCaller lets any authenticated caller complete a ride.
	CompleteByAnyCaller CompletePolicy = "any"
	// CompleteByParticipants limits completion to the requester and the assigned driver.
	CompleteByParticipants CompletePolicy = "participants"
)

// ParseCompletePolicy maps a config value to a policy. Unknown values fall
// back to CompleteByAnyCaller.
func ParseCompletePolicy(s string) CompletePolicy {
	if CompletePolicy(strings.ToLower(strings.TrimSpace(s))) == CompleteByParticipants {
		return CompleteByParticipants
	}
	return CompleteByAnyCaller
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID   string
	Username string
	Role     domain.Role
}

// RideService handles the ride lifecycle: REQUESTED -> ACCEPTED -> COMPLETED.
type RideService struct {
	rideRepo            repository.RideRepository
	notificationService *NotificationService
	completePolicy      CompletePolicy
}

// NewRideService creates a new RideService. notificationService may be nil.
func NewRideService(
	rideRepo repository.RideRepository,
	notificationService *NotificationService,
	completePolicy CompletePolicy,
) *RideService {
	if completePolicy == "" {
		completePolicy = CompleteByAnyCaller
	}
	return &RideService{
		rideRepo:            rideRepo,
		notificationService: notificationService,
		completePolicy:      completePolicy,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	PickupLocation string
	DropLocation   string
	UserID         string
}

// CreateRide creates a new ride in REQUESTED state.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		PickupLocation: strings.TrimSpace(req.PickupLocation),
		DropLocation:   strings.TrimSpace(req.DropLocation),
		UserID:         req.UserID,
		Status:         domain.RideStatusRequested,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notificationService.NotifyRideRequested(ctx, ride)
	}
	return ride, nil
}

// ListPending returns every ride still waiting for a driver.
func (s *RideService) ListPending(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.ListByStatus(ctx, domain.RideStatusRequested)
}

// ListForRequester returns every ride the user requested, in any status.
func (s *RideService) ListForRequester(ctx context.Context, userID string) ([]*domain.Ride, error) {
	if userID == "" {
		return nil, ErrInvalidRequesterID
	}
	return s.rideRepo.ListByUserID(ctx, userID)
}

// AcceptRide assigns the driver to a REQUESTED ride.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.advance(ctx, rideID, domain.RideStatusRequested, domain.RideStatusAccepted, driverID, ErrRideNotAcceptable)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notificationService.NotifyRideAccepted(ctx, ride)
	}
	return ride, nil
}

// CompleteRide finishes an ACCEPTED ride. Whether the caller must be a
// participant depends on the configured CompletePolicy.
func (s *RideService) CompleteRide(ctx context.Context, rideID string, caller Caller) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.completePolicy == CompleteByParticipants {
		ride, err := s.getRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if caller.UserID == "" || (caller.UserID != ride.UserID && caller.UserID != ride.DriverID) {
			return nil, ErrNotRideParticipant
		}
	}

	ride, err := s.advance(ctx, rideID, domain.RideStatusAccepted, domain.RideStatusCompleted, "", ErrRideNotCompletable)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notificationService.NotifyRideCompleted(ctx, ride)
	}
	return ride, nil
}

// advance performs one guarded transition. The precondition is checked
// up front for a precise error, and enforced again by the store's
// conditional update so concurrent callers cannot both succeed.
func (s *RideService) advance(ctx context.Context, rideID string, from, to domain.RideStatus, driverID string, stateErr error) (*domain.Ride, error) {
	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != from {
		return nil, invalidState(stateErr, ride.Status)
	}

	updated, err := s.rideRepo.Transition(ctx, rideID, from, to, driverID)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &RideNotFoundError{ID: rideID}
	}
	if !errors.Is(err, repository.ErrStatusConflict) {
		return nil, err
	}

	// Lost the race; report the status the winner left behind.
	current, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	return nil, invalidState(stateErr, current.Status)
}

func (s *RideService) getRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &RideNotFoundError{ID: rideID}
	}
	return ride, err
}

func invalidState(stateErr error, current domain.RideStatus) error {
	return fmt.Errorf("%w. Current status: %s", stateErr, current)
}

func validateCreateRequest(req CreateRideRequest) error {
	if req.UserID == "" {
		return ErrInvalidRequesterID
	}
	if strings.TrimSpace(req.PickupLocation) == "" {
		return ErrInvalidPickupLocation
	}
	if strings.TrimSpace(req.DropLocation) == "" {
		return ErrInvalidDropLocation
	}
	return nil
}
