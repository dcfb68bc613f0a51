package handler

import (
	"net/http"

	"rigor-logistics/internal/usecase/reimbursement"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReimbursementHandler struct {
	service *reimbursement.Service
}

func NewReimbursementHandler(service *reimbursement.Service) *ReimbursementHandler {
	return &ReimbursementHandler{service: service}
}

func (h *ReimbursementHandler) RegisterRoutes(router *gin.RouterGroup) {
	reimbursements := router.Group("/reimbursements")
	{
		reimbursements.GET("", h.ListReimbursements)
		reimbursements.GET("/:id", h.GetReimbursement)
	}
}

func (h *ReimbursementHandler) RegisterTruckerRoutes(router *gin.RouterGroup) {
	router.POST("/reimbursements", h.CreateReimbursement)
}

func (h *ReimbursementHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	reimbursements := router.Group("/reimbursements")
	{
		reimbursements.PATCH("/:id", h.ModifyReimbursement)
		reimbursements.PATCH("/:id/approve", h.ApproveReimbursement)
	}
}

func (h *ReimbursementHandler) CreateReimbursement(c *gin.Context) {
	var req reimbursement.CreateReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateReimbursement(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Reimbursement submitted successfully", resp)
}

func (h *ReimbursementHandler) ModifyReimbursement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reimbursement.ModifyReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.ModifyReimbursement(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reimbursement updated successfully", resp)
}

func (h *ReimbursementHandler) ApproveReimbursement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reimbursement.ApproveReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.ApproveReimbursement(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reimbursement approved successfully", resp)
}

func (h *ReimbursementHandler) GetReimbursement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetReimbursement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reimbursement retrieved successfully", resp)
}

func (h *ReimbursementHandler) ListReimbursements(c *gin.Context) {
	var req reimbursement.ReimbursementFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListReimbursements(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reimbursements retrieved successfully", resp)
}
