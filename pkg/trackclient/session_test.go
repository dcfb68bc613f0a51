package trackclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeAPI serves a single location row for trip 1.
type fakeAPI struct {
	mu        sync.Mutex
	row       *Location
	puts      int
	gets      int
	failLists bool
	token     string
}

func (f *fakeAPI) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": map[string]string{"code": "UNAUTHORIZED", "message": "missing token"}})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/locations":
		f.gets++
		if f.failLists && f.gets > 1 {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": map[string]string{"code": "INTERNAL_ERROR", "message": "boom"}})
			return
		}
		if r.URL.Query().Get("trip_id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": map[string]string{"code": "NOT_FOUND", "message": "trip not found"}})
			return
		}
		rows := []Location{}
		if f.row != nil {
			rows = append(rows, *f.row)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/v1/locations/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/v1/locations/"), 10, 64)
		if f.row == nil || f.row.ID != id {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": map[string]string{"code": "NOT_FOUND", "message": "location not found"}})
			return
		}
		var body struct {
			Latitude  float64   `json:"latitude"`
			Longitude float64   `json:"longitude"`
			Timestamp time.Time `json:"timestamp"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.puts++
		f.row.Latitude, f.row.Longitude, f.row.Timestamp = body.Latitude, body.Longitude, body.Timestamp
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f.row})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *fakeAPI) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeAPI) endTrip() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.row = nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{row: &Location{ID: 5, TripID: 1, Latitude: 24.8607, Longitude: 67.0011, Timestamp: t0}}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	t.Cleanup(srv.Close)
	return api, New(srv.URL, WithHTTPClient(srv.Client()))
}

type chanSource struct {
	ch  chan Position
	err error
}

func (s *chanSource) Watch(context.Context) (<-chan Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func runSession(t *testing.T, s *Session) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func drain(s *Session) {
	go func() {
		for range s.Updates() {
		}
	}()
}

func TestSessionPushesThrottledFixes(t *testing.T) {
	api, client := newAPI(t)
	source := &chanSource{ch: make(chan Position)}
	s := NewSession(client, 1, source, WithPollInterval(time.Hour))
	drain(s)

	cancel, done := runSession(t, s)

	source.ch <- Position{Latitude: 24.8700, Longitude: 67.0100, Timestamp: t0.Add(time.Second)}
	source.ch <- Position{Latitude: 24.87001, Longitude: 67.0100, Timestamp: t0.Add(2 * time.Second)}
	source.ch <- Position{Latitude: 24.87001, Longitude: 67.0100, Timestamp: t0.Add(7 * time.Second)}
	source.ch <- Position{Latitude: 24.8800, Longitude: 67.0100, Timestamp: t0.Add(8 * time.Second)}

	require.Eventually(t, func() bool { return api.putCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitErr(t, done))

	current := s.Current()
	require.Len(t, current, 1)
	assert.Equal(t, 24.8800, current[0].Latitude)
}

func TestSessionFirstLoadErrorIsReturned(t *testing.T) {
	_, client := newAPI(t)
	s := NewSession(client, 2, nil)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrTripEnded)

	_, ok := <-s.Updates()
	assert.False(t, ok)

	unauthorized := &fakeAPI{token: "secret"}
	srv := httptest.NewServer(http.HandlerFunc(unauthorized.handler))
	defer srv.Close()

	s = NewSession(New(srv.URL, WithHTTPClient(srv.Client())), 1, nil)
	err = s.Run(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestSessionPermissionDeniedKeepsPolling(t *testing.T) {
	api, client := newAPI(t)
	s := NewSession(client, 1, &chanSource{err: ErrPermissionDenied}, WithPollInterval(20*time.Millisecond))
	drain(s)

	cancel, done := runSession(t, s)
	require.Eventually(t, func() bool { return api.getCount() >= 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	assert.NoError(t, waitErr(t, done))
	assert.Zero(t, api.putCount())
}

func TestSessionPollFailuresAreSilent(t *testing.T) {
	api, client := newAPI(t)
	api.failLists = true
	s := NewSession(client, 1, nil, WithPollInterval(20*time.Millisecond))
	drain(s)

	cancel, done := runSession(t, s)
	require.Eventually(t, func() bool { return api.getCount() >= 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	assert.NoError(t, waitErr(t, done))
	assert.Len(t, s.Current(), 1)
}

func TestSessionStopsWhenTripEnds(t *testing.T) {
	api, client := newAPI(t)
	source := &chanSource{ch: make(chan Position)}
	s := NewSession(client, 1, source, WithPollInterval(time.Hour))
	drain(s)

	_, done := runSession(t, s)
	require.Eventually(t, func() bool { return len(s.Current()) == 1 }, 2*time.Second, 10*time.Millisecond)

	api.endTrip()
	source.ch <- Position{Latitude: 25, Longitude: 67, Timestamp: t0.Add(time.Minute)}

	assert.ErrorIs(t, waitErr(t, done), ErrTripEnded)
}

func TestSessionEmitsUpdates(t *testing.T) {
	_, client := newAPI(t)
	source := &chanSource{ch: make(chan Position)}
	s := NewSession(client, 1, source, WithPollInterval(time.Hour))

	cancel, done := runSession(t, s)

	first := <-s.Updates()
	assert.Equal(t, UpdateLoaded, first.Kind)
	require.Len(t, first.Locations, 1)

	source.ch <- Position{Latitude: 31.5204, Longitude: 74.3587, Timestamp: t0.Add(time.Minute)}
	pushed := <-s.Updates()
	assert.Equal(t, UpdatePushed, pushed.Kind)
	assert.Equal(t, 31.5204, pushed.Locations[0].Latitude)

	cancel()
	assert.NoError(t, waitErr(t, done))
}

func TestClientSendsToken(t *testing.T) {
	api := &fakeAPI{token: "secret", row: &Location{ID: 5, TripID: 1}}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	rows, err := New(srv.URL+"/", WithToken("secret"), WithHTTPClient(srv.Client())).ListLocations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].ID)

	_, err = New(srv.URL, WithToken("secret"), WithHTTPClient(srv.Client())).PutLocation(context.Background(), 99, Position{Timestamp: t0})
	assert.ErrorIs(t, err, ErrNotFound)
}
