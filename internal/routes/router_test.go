package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rigor-logistics/internal/config"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/testutil"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "rigor-test"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	env          *testutil.Env
	router       *gin.Engine
	adminToken   string
	truckerToken string
	trucker      *domainTrucker.Trucker
	truckID      int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:       config.JWTConfig{Secret: testSecret, Issuer: testIssuer},
		RateLimit: config.RateLimitConfig{GeneralRPS: 1000, GeneralBurst: 1000},
		Tracking:  testutil.Tracking,
	}

	env := testutil.NewEnv()
	admin := env.SeedAdmin(t, "sana")
	trucker := env.SeedTrucker(t, "ali")
	truck := env.SeedTruck(t, "LES-1234", testutil.Int64(trucker.ID))

	services := NewServices(cfg, env.Repos, env.Notifier, env.Publisher)
	router := SetupRoutes(cfg, env.Repos, services, Options{
		Notifier: env.Notifier,
		Stats: map[string]func() any{
			"live_feed": func() any { return map[string]int{"clients": 0} },
		},
	})

	return &testServer{
		env:          env,
		router:       router,
		adminToken:   token(t, admin.ID, "admin"),
		truckerToken: token(t, trucker.ID, "trucker"),
		trucker:      trucker,
		truckID:      truck.ID,
	}
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(userID, role, "", testSecret, testIssuer, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *testServer) assignTrip(t *testing.T) int64 {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/trips", s.adminToken, map[string]any{
		"trucker_id":     s.trucker.ID,
		"truck_id":       s.truckID,
		"start_location": "Karachi",
		"end_location":   "Lahore",
		"distance":       1200,
		"expected_cost":  "15000",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var data struct {
		TripID     int64  `json:"trip_id"`
		LocationID int64  `json:"location_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Scheduled", data.Status)
	assert.NotZero(t, data.LocationID)
	return data.TripID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestTripToApprovalOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tripID := s.assignTrip(t)

	status, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locations?trip_id=%d", tripID), s.truckerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var locations []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &locations))
	require.Len(t, locations, 1)
	assert.InDelta(t, testutil.Tracking.PlaceholderLatitude, locations[0]["latitude"], 1e-9)

	status, env = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/trips/%d/complete", tripID), s.truckerToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locations/trip/%d", tripID), s.truckerToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &locations))
	assert.Empty(t, locations)

	status, env = s.do(t, http.MethodPost, "/api/v1/reimbursements", s.truckerToken, map[string]any{
		"trip_id": tripID,
		"amount":  "15000.00",
		"receipt": "https://receipts.example/1.jpg",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		ID     int64  `json:"reimbursement_id"`
		Amount string `json:"amount"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "15000.00", created.Amount)
	assert.Equal(t, "Pending", created.Status)

	approvePath := fmt.Sprintf("/api/v1/reimbursements/%d/approve", created.ID)
	status, env = s.do(t, http.MethodPatch, approvePath, s.adminToken, map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, status, env.Message)
	var approval struct {
		Status        string  `json:"status"`
		TripRating    int     `json:"trip_rating"`
		TruckerRating float64 `json:"trucker_rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &approval))
	assert.Equal(t, "Approved", approval.Status)
	assert.Equal(t, 4, approval.TripRating)
	assert.InDelta(t, 4.0, approval.TruckerRating, 1e-9)

	status, env = s.do(t, http.MethodPatch, approvePath, s.adminToken, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_APPROVED", env.Error.Code)
}

func TestLivePushOnTripStartingLater(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/trips", s.adminToken, map[string]any{
		"trucker_id":     s.trucker.ID,
		"start_location": "Karachi",
		"end_location":   "Quetta",
		"start_time":     time.Now().UTC().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var assigned struct {
		LocationID int64 `json:"location_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &assigned))

	path := fmt.Sprintf("/api/v1/locations/%d", assigned.LocationID)
	status, env = s.do(t, http.MethodPut, path, s.truckerToken, map[string]any{"latitude": 31.5, "longitude": 74.3})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodGet, path, s.truckerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var loc struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loc))
	assert.InDelta(t, 31.5, loc.Latitude, 1e-9)
	assert.InDelta(t, 74.3, loc.Longitude, 1e-9)
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	tripID := s.assignTrip(t)
	otherTrucker := s.env.SeedTrucker(t, "bilal")
	otherToken := token(t, otherTrucker.ID, "trucker")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/trips", status: http.StatusUnauthorized},
		{name: "trucker cannot assign", method: http.MethodPost, path: "/api/v1/trips", token: s.truckerToken,
			body: map[string]any{"trucker_id": 1}, status: http.StatusForbidden},
		{name: "admin cannot file reimbursement", method: http.MethodPost, path: "/api/v1/reimbursements", token: s.adminToken,
			body: map[string]any{"trip_id": tripID}, status: http.StatusForbidden},
		{name: "missing trip", method: http.MethodGet, path: "/api/v1/trips/999", token: s.adminToken,
			status: http.StatusNotFound, code: "TRIP_NOT_FOUND"},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/trips/abc", token: s.adminToken,
			status: http.StatusBadRequest},
		{name: "foreign trip", method: http.MethodGet, path: fmt.Sprintf("/api/v1/trips/%d", tripID), token: otherToken,
			status: http.StatusForbidden, code: "NOT_TRIP_OWNER"},
		{name: "trucker already on a trip", method: http.MethodPost, path: "/api/v1/trips", token: s.adminToken,
			body: map[string]any{"trucker_id": s.trucker.ID, "start_location": "A", "end_location": "B"},
			status: http.StatusConflict, code: "TRUCKER_UNAVAILABLE"},
		{name: "trucker without truck", method: http.MethodPost, path: "/api/v1/trips", token: s.adminToken,
			body: map[string]any{"trucker_id": otherTrucker.ID, "start_location": "A", "end_location": "B"},
			status: http.StatusUnprocessableEntity, code: "NO_TRUCK_ASSIGNED"},
		{name: "second location row", method: http.MethodPost, path: "/api/v1/locations", token: s.truckerToken,
			body: map[string]any{"trip_id": tripID, "latitude": 31.5, "longitude": 74.3},
			status: http.StatusConflict, code: "LOCATION_EXISTS"},
		{name: "reimburse open trip", method: http.MethodPost, path: "/api/v1/reimbursements", token: s.truckerToken,
			body:   map[string]any{"trip_id": tripID, "amount": "100", "receipt": "r.jpg"},
			status: http.StatusConflict, code: "TRIP_NOT_COMPLETED"},
		{name: "rating out of range", method: http.MethodPatch, path: fmt.Sprintf("/api/v1/truckers/rating/%d", s.trucker.ID),
			token: s.adminToken, body: map[string]any{"rating": 7}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, status)
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
			if tt.code != "" {
				assert.Equal(t, tt.code, env.Error.Code)
			}
		})
	}
}

func TestTruckerSignupAndFleetRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/truckers", "", map[string]any{
		"name":  "Kamran",
		"email": "Kamran@Fleet.pk",
		"phone": "+92 300 1234567",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var trucker struct {
		ID     int64   `json:"trucker_id"`
		Email  string  `json:"email"`
		Status string  `json:"status"`
		Rating float64 `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &trucker))
	assert.Equal(t, "kamran@fleet.pk", trucker.Email)
	assert.Equal(t, "Inactive", trucker.Status)
	assert.Zero(t, trucker.Rating)

	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/truckers/%d", trucker.ID), s.truckerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/truckers/%d", trucker.ID), s.adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/trucks", s.adminToken, map[string]any{
		"plate_number":   "khi-9988",
		"chassis_number": "CH-1",
		"capacity":       12.5,
		"trucker_id":     trucker.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/trucks", s.adminToken, map[string]any{
		"plate_number":   "KHI-0001",
		"chassis_number": "CH-2",
		"trucker_id":     trucker.ID,
	})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TRUCKER_HAS_TRUCK", env.Error.Code)
}

func TestSendEmailAndStats(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/email/send-email", s.adminToken, map[string]any{
		"to":      []string{"ops@dispatch.pk"},
		"subject": "Weekly summary",
		"html":    "<p>All trips on time</p>",
	})
	require.Equal(t, http.StatusAccepted, status, env.Message)
	messages := s.env.Notifier.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Weekly summary", messages[0].Subject)

	status, _ = s.do(t, http.MethodPost, "/api/v1/email/send-email", s.adminToken, map[string]any{
		"to":      []string{"not-an-email"},
		"subject": "x",
		"html":    "y",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/admin/stats", s.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "live_feed")
}
