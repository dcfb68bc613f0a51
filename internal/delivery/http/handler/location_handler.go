package handler

import (
	"net/http"
	"strconv"

	"rigor-logistics/internal/livefeed"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/middleware"
	"rigor-logistics/internal/usecase/tracking"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LocationHandler struct {
	service *tracking.Service
	hub     *livefeed.Hub
}

// NewLocationHandler serves location CRUD. A nil hub disables the
// websocket feed.
func NewLocationHandler(service *tracking.Service, hub *livefeed.Hub) *LocationHandler {
	return &LocationHandler{service: service, hub: hub}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations")
	{
		locations.POST("", h.CreateLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/:id", h.GetLocation)
		locations.PUT("/:id", h.UpdateLocation)
		locations.DELETE("/:id", h.DeleteLocation)
		locations.GET("/trip/:trip_id", h.ListTripLocations)
	}

	if h.hub != nil {
		router.GET("/ws/trips/:id/locations", h.StreamLocations)
	}
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req tracking.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateLocation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Location created successfully", resp)
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req tracking.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateLocation(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Location updated successfully", resp)
}

func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Location deleted successfully", nil)
}

func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Location retrieved successfully", resp)
}

// ListLocations serves GET /locations?trip_id=N.
func (h *LocationHandler) ListLocations(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Query("trip_id"), 10, 64)
	if err != nil || tripID <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "trip_id query parameter is required")
		return
	}
	h.listByTrip(c, tripID)
}

func (h *LocationHandler) ListTripLocations(c *gin.Context) {
	tripID, ok := parseID(c, "trip_id")
	if !ok {
		return
	}
	h.listByTrip(c, tripID)
}

func (h *LocationHandler) listByTrip(c *gin.Context, tripID int64) {
	resp, err := h.service.ListByTrip(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Locations retrieved successfully", resp)
}

// StreamLocations upgrades to a websocket carrying the trip's live
// location events. Access follows the same ownership rules as reads.
func (h *LocationHandler) StreamLocations(c *gin.Context) {
	tripID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.ListByTrip(c.Request.Context(), tripID); err != nil {
		respondError(c, err)
		return
	}

	if err := livefeed.ServeWS(c.Request.Context(), h.hub, c.Writer, c.Request, tripID); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Warn("Websocket subscription failed",
			zap.Int64("trip_id", tripID),
			zap.Error(err),
		)
	}
}
