package handler

import (
	"net/http"

	"rigor-logistics/internal/session"
	"rigor-logistics/internal/usecase/trip"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	service *trip.Service
}

func NewTripHandler(service *trip.Service) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes mounts the routes open to both admins and truckers.
// Ownership is enforced by the service.
func (h *TripHandler) RegisterRoutes(router *gin.RouterGroup) {
	trips := router.Group("/trips")
	{
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
		trips.PATCH("/:id", h.UpdateTrip)
		trips.PATCH("/:id/complete", h.CompleteTrip)
	}
}

func (h *TripHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	trips := router.Group("/trips")
	{
		trips.POST("", h.AssignTrip)
		trips.PATCH("/:id/rating", h.RateTrip)
	}
}

func (h *TripHandler) AssignTrip(c *gin.Context) {
	var req trip.AssignTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AdminID == 0 {
		if s, ok := session.FromGin(c); ok && s.IsAdmin() {
			req.AdminID = s.UserID
		}
	}

	resp, err := h.service.AssignTrip(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Trip assigned successfully", resp)
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetTrip(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip retrieved successfully", resp)
}

func (h *TripHandler) ListTrips(c *gin.Context) {
	var req trip.TripFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListTrips(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trips retrieved successfully", resp)
}

// UpdateTrip edits trip fields. A status of "Completed" in the body
// completes the trip.
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req trip.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateTrip(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip updated successfully", resp)
}

func (h *TripHandler) CompleteTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.CompleteTrip(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip completed successfully", resp)
}

func (h *TripHandler) RateTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req trip.RateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.RateTrip(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip rated successfully", resp)
}
