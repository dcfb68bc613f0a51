package handler

import (
	"net/http"

	"rigor-logistics/internal/session"
	"rigor-logistics/internal/usecase/fleet"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FleetHandler manages truckers, trucks and admins.
type FleetHandler struct {
	service *fleet.Service
}

func NewFleetHandler(service *fleet.Service) *FleetHandler {
	return &FleetHandler{service: service}
}

// RegisterPublicRoutes mounts trucker signup.
func (h *FleetHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/truckers", h.CreateTrucker)
}

func (h *FleetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/truckers/:id", h.GetTrucker)
	router.GET("/trucks/:id", h.GetTruck)
	router.GET("/admins/:id", h.GetAdmin)
}

func (h *FleetHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	truckers := router.Group("/truckers")
	{
		truckers.GET("", h.ListTruckers)
		truckers.PATCH("/status/:id", h.UpdateTruckerStatus)
		truckers.PATCH("/rating/:id", h.UpdateTruckerRating)
	}

	trucks := router.Group("/trucks")
	{
		trucks.POST("", h.CreateTruck)
		trucks.GET("", h.ListTrucks)
	}

	router.POST("/admins", h.CreateAdmin)
}

func (h *FleetHandler) CreateTrucker(c *gin.Context) {
	var req fleet.CreateTruckerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateTrucker(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Trucker registered successfully", resp)
}

// GetTrucker lets truckers read only their own profile.
func (h *FleetHandler) GetTrucker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if s, ok := session.FromGin(c); ok && s.IsTrucker() && s.UserID != id {
		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	resp, err := h.service.GetTrucker(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trucker retrieved successfully", resp)
}

func (h *FleetHandler) ListTruckers(c *gin.Context) {
	var req fleet.TruckerFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListTruckers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Truckers retrieved successfully", resp)
}

func (h *FleetHandler) UpdateTruckerStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req fleet.UpdateTruckerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateTruckerStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trucker status updated successfully", resp)
}

func (h *FleetHandler) UpdateTruckerRating(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req fleet.UpdateTruckerRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateTruckerRating(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trucker rating updated successfully", resp)
}

func (h *FleetHandler) CreateTruck(c *gin.Context) {
	var req fleet.CreateTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateTruck(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Truck registered successfully", resp)
}

func (h *FleetHandler) GetTruck(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetTruck(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Truck retrieved successfully", resp)
}

func (h *FleetHandler) ListTrucks(c *gin.Context) {
	var req fleet.TruckFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListTrucks(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trucks retrieved successfully", resp)
}

func (h *FleetHandler) CreateAdmin(c *gin.Context) {
	var req fleet.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Admin created successfully", resp)
}

func (h *FleetHandler) GetAdmin(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Admin retrieved successfully", resp)
}
