package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// Ride represents a ride request in the system.
//
// DriverID is empty while the ride is REQUESTED and set from the moment it
// is accepted. Status only moves forward.
type Ride struct {
	ID             string
	PickupLocation string
	DropLocation   string
	UserID         string
	DriverID       string
	Status         RideStatus
	CreatedAt      time.Time
}
