package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/middleware"
	"rideshare/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
}

// RideResponse is the HTTP response for a ride.
type RideResponse struct {
	ID             string            `json:"id"`
	PickupLocation string            `json:"pickupLocation"`
	DropLocation   string            `json:"dropLocation"`
	UserID         string            `json:"userId"`
	DriverID       string            `json:"driverId,omitempty"`
	Status         domain.RideStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// CreateRide handles POST /api/v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrMalformedBody)
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		UserID:         caller.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListPending handles GET /api/v1/driver/rides/requests
func (h *RideHandler) ListPending(c *gin.Context) {
	rides, err := h.rideService.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// AcceptRide handles POST /api/v1/driver/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), c.Param("id"), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /api/v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListMine handles GET /api/v1/user/rides
func (h *RideHandler) ListMine(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	rides, err := h.rideService.ListForRequester(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:             r.ID,
		PickupLocation: r.PickupLocation,
		DropLocation:   r.DropLocation,
		UserID:         r.UserID,
		DriverID:       r.DriverID,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	return response
}
