package handler

import (
	"errors"
	"net/http"

	"rigor-logistics/internal/notification"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SendEmailRequest struct {
	To      []string `json:"to" binding:"required,min=1,dive,email"`
	Subject string   `json:"subject" binding:"required,max=255"`
	HTML    string   `json:"html" binding:"required"`
}

type EmailHandler struct {
	notifier notification.Notifier
}

func NewEmailHandler(notifier notification.Notifier) *EmailHandler {
	return &EmailHandler{notifier: notifier}
}

func (h *EmailHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/email/send-email", h.SendEmail)
}

// SendEmail queues the message and returns before delivery.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.notifier.Notify(c.Request.Context(), notification.Message{
		To:      req.To,
		Subject: utils.SanitizeString(req.Subject),
		HTML:    req.HTML,
	})
	switch {
	case err == nil:
	case errors.Is(err, notification.ErrQueueFull), errors.Is(err, notification.ErrDispatcherStopped):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Email queue is unavailable, try again later")
		return
	default:
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusAccepted, "Email queued", nil)
}
