package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rideshare/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideRequested NotificationType = "RIDE_REQUESTED"
	NotificationRideAccepted  NotificationType = "RIDE_ACCEPTED"
	NotificationRideCompleted NotificationType = "RIDE_COMPLETED"
)

// Notification represents a ride lifecycle event addressed to one user.
type Notification struct {
	Type        NotificationType
	RecipientID string
	RideID      string
	Message     string
	CreatedAt   time.Time
}

// NotificationService records ride lifecycle events. There is no delivery
// channel; events are written to the structured log.
type NotificationService struct {
	log logrus.FieldLogger
}

// NewNotificationService creates a NotificationService writing to log.
// A nil log uses the standard logrus logger.
func NewNotificationService(log logrus.FieldLogger) *NotificationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NotificationService{log: log}
}

// NotifyRideRequested tells the requester their ride is waiting for a driver.
func (s *NotificationService) NotifyRideRequested(ctx context.Context, ride *domain.Ride) {
	s.send(ctx, Notification{
		Type:        NotificationRideRequested,
		RecipientID: ride.UserID,
		RideID:      ride.ID,
		Message:     "Ride requested from " + ride.PickupLocation + " to " + ride.DropLocation,
		CreatedAt:   time.Now(),
	})
}

// NotifyRideAccepted tells the requester a driver took the ride.
func (s *NotificationService) NotifyRideAccepted(ctx context.Context, ride *domain.Ride) {
	s.send(ctx, Notification{
		Type:        NotificationRideAccepted,
		RecipientID: ride.UserID,
		RideID:      ride.ID,
		Message:     "A driver accepted your ride",
		CreatedAt:   time.Now(),
	})
}

// NotifyRideCompleted tells both parties the ride is over.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, ride *domain.Ride) {
	for _, recipient := range []string{ride.UserID, ride.DriverID} {
		if recipient == "" {
			continue
		}
		s.send(ctx, Notification{
			Type:        NotificationRideCompleted,
			RecipientID: recipient,
			RideID:      ride.ID,
			Message:     "Ride completed",
			CreatedAt:   time.Now(),
		})
	}
}

func (s *NotificationService) send(ctx context.Context, n Notification) {
	s.log.WithFields(logrus.Fields{
		"type":      n.Type,
		"recipient": n.RecipientID,
		"ride_id":   n.RideID,
		"at":        n.CreatedAt.Format(time.RFC3339),
	}).Info(n.Message)
}
