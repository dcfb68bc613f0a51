package trip

import (
	"testing"

	domainTrip "rigor-logistics/internal/domain/trip"
	appErrors "rigor-logistics/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to domainTrip.Status
		wantErr  error
		wantCode string
	}{
		{name: "scheduled to completed", from: domainTrip.StatusScheduled, to: domainTrip.StatusCompleted},
		{name: "completed twice", from: domainTrip.StatusCompleted, to: domainTrip.StatusCompleted, wantErr: domainTrip.ErrTripAlreadyCompleted, wantCode: "TRIP_ALREADY_COMPLETED"},
		{name: "backwards", from: domainTrip.StatusCompleted, to: domainTrip.StatusScheduled, wantErr: domainTrip.ErrTripAlreadyCompleted, wantCode: "TRIP_ALREADY_COMPLETED"},
		{name: "scheduled to scheduled", from: domainTrip.StatusScheduled, to: domainTrip.StatusScheduled, wantErr: domainTrip.ErrInvalidStatusTransition, wantCode: "INVALID_TRANSITION"},
		{name: "unknown", from: "Cancelled", to: domainTrip.StatusCompleted, wantErr: domainTrip.ErrInvalidStatus, wantCode: "INVALID_STATUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatusTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, appErrors.Code(err))
		})
	}
}
