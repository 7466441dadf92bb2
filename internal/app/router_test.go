package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"rideshare/internal/auth"
	"rideshare/internal/handler"
	"rideshare/internal/repository/memory"
	"rideshare/internal/service"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, policy service.CompletePolicy) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := memory.NewUserRepository()
	rideRepo := memory.NewRideRepository()
	tokens := auth.NewTokenService("test-secret", "rideshare", time.Hour)

	authService := service.NewAuthService(userRepo, tokens).WithBcryptCost(bcrypt.MinCost)
	rideService := service.NewRideService(rideRepo, service.NewNotificationService(nil), policy)

	router := NewRouter(RouterDeps{
		AuthHandler:   handler.NewAuthHandler(authService),
		RideHandler:   handler.NewRideHandler(rideService),
		TokenVerifier: tokens,
		UserRepo:      userRepo,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(username, role string) handler.UserResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "1234",
		"role":     role,
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}
	var user handler.UserResponse
	decode(s.t, w, &user)
	return user
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "1234",
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	var resp handler.LoginResponse
	decode(s.t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, code int, kind string) handler.ErrorResponse {
	t.Helper()
	if w.Code != code {
		t.Fatalf("expected status %d, got %d: %s", code, w.Code, w.Body.String())
	}
	var resp handler.ErrorResponse
	decode(t, w, &resp)
	if resp.Error != kind {
		t.Errorf("expected error kind %s, got %s", kind, resp.Error)
	}
	if resp.Status != code {
		t.Errorf("expected status field %d, got %d", code, resp.Status)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", resp.Timestamp, err)
	}
	return resp
}

func TestRideLifecycle_EndToEnd(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)

	john := s.register("john", "ROLE_USER")
	driver := s.register("driver1", "ROLE_DRIVER")
	if john.Role != "PASSENGER" || driver.Role != "DRIVER" {
		t.Fatalf("unexpected roles %s / %s", john.Role, driver.Role)
	}

	johnToken := s.login("john")
	driverToken := s.login("driver1")

	// Passenger requests a ride.
	w := s.do(http.MethodPost, "/api/v1/rides", johnToken, map[string]string{
		"pickupLocation": "Koramangala",
		"dropLocation":   "Indiranagar",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create ride: status %d body %s", w.Code, w.Body.String())
	}
	var ride handler.RideResponse
	decode(t, w, &ride)
	if ride.Status != "REQUESTED" || ride.UserID != john.ID || ride.DriverID != "" {
		t.Fatalf("unexpected ride %+v", ride)
	}

	// Driver sees it pending.
	w = s.do(http.MethodGet, "/api/v1/driver/rides/requests", driverToken, nil)
	var pending []handler.RideResponse
	decode(t, w, &pending)
	if len(pending) != 1 || pending[0].ID != ride.ID {
		t.Fatalf("expected the new ride pending, got %+v", pending)
	}

	// Driver accepts.
	w = s.do(http.MethodPost, "/api/v1/driver/rides/"+ride.ID+"/accept", driverToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept: status %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &ride)
	if ride.Status != "ACCEPTED" || ride.DriverID != driver.ID {
		t.Fatalf("unexpected accepted ride %+v", ride)
	}

	// Accepting again fails with the current status in the message.
	w = s.do(http.MethodPost, "/api/v1/driver/rides/"+ride.ID+"/accept", driverToken, nil)
	resp := expectError(t, w, http.StatusBadRequest, handler.KindBadRequest)
	if !strings.Contains(resp.Message, "Current status: ACCEPTED") {
		t.Errorf("unexpected message %q", resp.Message)
	}

	// The pending list is now empty and renders as [].
	w = s.do(http.MethodGet, "/api/v1/driver/rides/requests", driverToken, nil)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}

	// Passenger completes.
	w = s.do(http.MethodPost, "/api/v1/rides/"+ride.ID+"/complete", johnToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &ride)
	if ride.Status != "COMPLETED" || ride.DriverID != driver.ID {
		t.Fatalf("unexpected completed ride %+v", ride)
	}

	// Completing twice fails.
	w = s.do(http.MethodPost, "/api/v1/rides/"+ride.ID+"/complete", johnToken, nil)
	expectError(t, w, http.StatusBadRequest, handler.KindBadRequest)

	// Unknown rides name the id.
	w = s.do(http.MethodPost, "/api/v1/driver/rides/nope/accept", driverToken, nil)
	resp = expectError(t, w, http.StatusNotFound, handler.KindNotFound)
	if resp.Message != "ride not found with id: nope" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	w = s.do(http.MethodPost, "/api/v1/rides/nope/complete", johnToken, nil)
	resp = expectError(t, w, http.StatusNotFound, handler.KindNotFound)
	if resp.Message != "ride not found with id: nope" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	// Passenger history.
	w = s.do(http.MethodGet, "/api/v1/user/rides", johnToken, nil)
	var mine []handler.RideResponse
	decode(t, w, &mine)
	if len(mine) != 1 || mine[0].Status != "COMPLETED" {
		t.Fatalf("unexpected history %+v", mine)
	}
}

func TestRegister_ResponseOmitsPassword(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)

	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "john",
		"password": "1234",
		"role":     "ROLE_USER",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	body := strings.ToLower(w.Body.String())
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Errorf("response leaks credentials: %s", w.Body.String())
	}
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)
	s.register("john", "ROLE_USER")

	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "john", "password": "1234", "role": "ROLE_USER",
	})
	expectError(t, w, http.StatusConflict, handler.KindConflict)

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "amy", "password": "1234", "role": "ROLE_ADMIN",
	})
	expectError(t, w, http.StatusBadRequest, handler.KindValidation)

	w = s.do(http.MethodPost, "/api/auth/register", "", `{"username":`)
	expectError(t, w, http.StatusBadRequest, handler.KindValidation)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)
	s.register("john", "ROLE_USER")

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "john", "password": "wrong"})
	wrong := expectError(t, w, http.StatusUnauthorized, handler.KindUnauthorized)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "1234"})
	unknown := expectError(t, w, http.StatusUnauthorized, handler.KindUnauthorized)

	if wrong.Message != unknown.Message {
		t.Errorf("login failures must not reveal which field was wrong: %q vs %q", wrong.Message, unknown.Message)
	}
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)
	s.register("john", "ROLE_USER")
	s.register("driver1", "ROLE_DRIVER")
	johnToken := s.login("john")
	driverToken := s.login("driver1")

	testCases := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
		kind   string
	}{
		{"missing token", http.MethodGet, "/api/v1/user/rides", "", http.StatusUnauthorized, handler.KindUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/user/rides", "garbage", http.StatusUnauthorized, handler.KindUnauthorized},
		{"driver lists my rides", http.MethodGet, "/api/v1/user/rides", driverToken, http.StatusForbidden, handler.KindForbidden},
		{"driver requests ride", http.MethodPost, "/api/v1/rides", driverToken, http.StatusForbidden, handler.KindForbidden},
		{"passenger lists requests", http.MethodGet, "/api/v1/driver/rides/requests", johnToken, http.StatusForbidden, handler.KindForbidden},
		{"passenger accepts", http.MethodPost, "/api/v1/driver/rides/x/accept", johnToken, http.StatusForbidden, handler.KindForbidden},
		{"unknown ride", http.MethodPost, "/api/v1/driver/rides/missing/accept", driverToken, http.StatusNotFound, handler.KindNotFound},
		{"unknown route", http.MethodGet, "/api/v2/nothing", "", http.StatusNotFound, handler.KindNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.method, tc.path, tc.token, map[string]string{"pickupLocation": "A", "dropLocation": "B"})
			expectError(t, w, tc.code, tc.kind)
		})
	}
}

func TestCreateRide_Validation(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)
	s.register("john", "ROLE_USER")
	token := s.login("john")

	w := s.do(http.MethodPost, "/api/v1/rides", token, map[string]string{"pickupLocation": "A"})
	expectError(t, w, http.StatusBadRequest, handler.KindValidation)

	w = s.do(http.MethodPost, "/api/v1/rides", token, "not json")
	expectError(t, w, http.StatusBadRequest, handler.KindValidation)
}

func TestCompleteRide_ParticipantsPolicy(t *testing.T) {
	s := newTestServer(t, service.CompleteByParticipants)
	s.register("john", "ROLE_USER")
	s.register("amy", "ROLE_USER")
	s.register("driver1", "ROLE_DRIVER")
	johnToken := s.login("john")
	amyToken := s.login("amy")
	driverToken := s.login("driver1")

	w := s.do(http.MethodPost, "/api/v1/rides", johnToken, map[string]string{"pickupLocation": "A", "dropLocation": "B"})
	var ride handler.RideResponse
	decode(t, w, &ride)

	s.do(http.MethodPost, "/api/v1/driver/rides/"+ride.ID+"/accept", driverToken, nil)

	w = s.do(http.MethodPost, "/api/v1/rides/"+ride.ID+"/complete", amyToken, nil)
	expectError(t, w, http.StatusForbidden, handler.KindForbidden)

	w = s.do(http.MethodPost, "/api/v1/rides/"+ride.ID+"/complete", driverToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("driver completes: status %d body %s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, service.CompleteByAnyCaller)

	w := s.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
