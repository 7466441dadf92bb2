package service

import (
	"errors"

	"rideshare/internal/repository"
)

var (
	// ErrInvalidUsername is returned when the username is empty.
	ErrInvalidUsername = errors.New("username is required")

	// ErrInvalidPassword is returned when the password is empty or longer than bcrypt accepts.
	ErrInvalidPassword = errors.New("password is required and must be at most 72 bytes")

	// ErrInvalidRole is returned when the role is missing or not one of the known roles.
	ErrInvalidRole = errors.New("role must be one of ROLE_USER, ROLE_DRIVER")

	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned by login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned when a protected call carries no valid identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller's role may not use a route.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidRequesterID is returned when the requesting user ID is empty.
	ErrInvalidRequesterID = errors.New("invalid requester id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPickupLocation is returned when the pickup location is blank.
	ErrInvalidPickupLocation = errors.New("pickupLocation is required")

	// ErrInvalidDropLocation is returned when the drop location is blank.
	ErrInvalidDropLocation = errors.New("dropLocation is required")

	// ErrRideNotAcceptable is returned when accepting a ride that is not REQUESTED.
	ErrRideNotAcceptable = errors.New("ride cannot be accepted")

	// ErrRideNotCompletable is returned when completing a ride that is not ACCEPTED.
	ErrRideNotCompletable = errors.New("ride cannot be completed")

	// ErrNotRideParticipant is returned when the completion policy limits
	// completion to the requester and the assigned driver.
	ErrNotRideParticipant = errors.New("only the requester or the assigned driver may complete this ride")
)

// RideNotFoundError reports a missing ride by id. It matches
// repository.ErrNotFound under errors.Is.
type RideNotFoundError struct {
	ID string
}

func (e *RideNotFoundError) Error() string {
	return "ride not found with id: " + e.ID
}

func (e *RideNotFoundError) Unwrap() error {
	return repository.ErrNotFound
}
