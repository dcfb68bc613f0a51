package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	appErrors "rigor-logistics/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "wrapped not found", err: fmt.Errorf("load trip 7: %w", domainTrip.ErrTripNotFound),
			status: http.StatusNotFound, code: "TRIP_NOT_FOUND"},
		{name: "app error keeps its code", err: appErrors.NewAppError("ALREADY_APPROVED", "Reimbursement is already approved", domainReimbursement.ErrAlreadyApproved),
			status: http.StatusConflict, code: "ALREADY_APPROVED"},
		{name: "precondition", err: domainTruck.ErrNoTruckAssigned,
			status: http.StatusUnprocessableEntity, code: "NO_TRUCK_ASSIGNED"},
		{name: "ownership", err: domainTrip.ErrNotTripOwner,
			status: http.StatusForbidden, code: "NOT_TRIP_OWNER"},
		{name: "plain validation", err: appErrors.NewAppError("VALIDATION_ERROR", "Invalid request", errors.New("distance must be >= 0")),
			status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown", err: errors.New("connection reset by peer"),
			status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)

	respondError(c, errors.New("pq: password authentication failed for user rigor"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
