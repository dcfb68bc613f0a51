package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainAdmin "rigor-logistics/internal/domain/admin"
	domainLocation "rigor-logistics/internal/domain/location"
	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/middleware"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{domainTrip.ErrNotTripOwner, http.StatusForbidden, "NOT_TRIP_OWNER"},

	{domainTrip.ErrTripNotFound, http.StatusNotFound, "TRIP_NOT_FOUND"},
	{domainTrucker.ErrTruckerNotFound, http.StatusNotFound, "TRUCKER_NOT_FOUND"},
	{domainTruck.ErrTruckNotFound, http.StatusNotFound, "TRUCK_NOT_FOUND"},
	{domainAdmin.ErrAdminNotFound, http.StatusNotFound, "ADMIN_NOT_FOUND"},
	{domainLocation.ErrLocationNotFound, http.StatusNotFound, "LOCATION_NOT_FOUND"},
	{domainReimbursement.ErrReimbursementNotFound, http.StatusNotFound, "REIMBURSEMENT_NOT_FOUND"},

	{domainTrip.ErrTripAlreadyCompleted, http.StatusConflict, "TRIP_ALREADY_COMPLETED"},
	{domainTrip.ErrTripNotCompleted, http.StatusConflict, "TRIP_NOT_COMPLETED"},
	{domainTrip.ErrTripNotScheduled, http.StatusConflict, "TRIP_NOT_SCHEDULED"},
	{domainTrip.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domainTrucker.ErrTruckerUnavailable, http.StatusConflict, "TRUCKER_UNAVAILABLE"},
	{domainTrucker.ErrTruckerAlreadyExists, http.StatusConflict, "TRUCKER_EXISTS"},
	{domainTruck.ErrTruckAlreadyExists, http.StatusConflict, "TRUCK_EXISTS"},
	{domainTruck.ErrTruckerHasTruck, http.StatusConflict, "TRUCKER_HAS_TRUCK"},
	{domainAdmin.ErrAdminAlreadyExists, http.StatusConflict, "ADMIN_EXISTS"},
	{domainLocation.ErrLocationExists, http.StatusConflict, "LOCATION_EXISTS"},
	{domainReimbursement.ErrAlreadyApproved, http.StatusConflict, "ALREADY_APPROVED"},
	{domainReimbursement.ErrNotPending, http.StatusConflict, "NOT_PENDING"},

	{domainTruck.ErrNoTruckAssigned, http.StatusUnprocessableEntity, "NO_TRUCK_ASSIGNED"},
	{domainTrip.ErrTruckMismatch, http.StatusUnprocessableEntity, "TRUCK_MISMATCH"},

	{domainTrip.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{domainTrip.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{domainTrucker.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{domainTrucker.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{domainReimbursement.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{domainReimbursement.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{domainLocation.ErrInvalidCoordinates, http.StatusBadRequest, "INVALID_COORDINATES"},
}

// respondError writes the error envelope for a service error. Unknown
// errors are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.WithRequestID(middleware.GetRequestID(c)).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	utils.ErrorResponseWithCode(c, status, code, message)
}

func classify(err error) (int, string, string) {
	var appErr *appErrors.AppError
	hasAppErr := errors.As(err, &appErr)

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			code := m.code
			message := m.err.Error()
			if hasAppErr {
				code = appErr.Code
				message = appErr.Message
			}
			return m.status, code, message
		}
	}

	if hasAppErr && appErr.Code == "VALIDATION_ERROR" {
		return http.StatusBadRequest, appErr.Code, appErr.Error()
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}
