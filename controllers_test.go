package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub-backend/internal/store"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	AppConfig = defaultConfig()
	AppConfig.StoreBackend = "memory"
	AppConfig.PaymentDelay = 10 * time.Millisecond
	AppConfig.SeedDemoData = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, InitStore(context.Background(), AppConfig, logger))
	t.Cleanup(func() {
		PendingPayments.Wait()
		Backend.Close()
	})

	r := gin.New()
	r.Use(CORSMiddleware())
	SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type authResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func signupUser(t *testing.T, r http.Handler, name, email string, role store.Role) authResponse {
	t.Helper()
	body := gin.H{"name": name, "email": email, "password": "secret1", "role": role}
	if role == store.RoleOrganizer {
		body["orgCategory"] = "Music"
	}
	w := doJSON(t, r, http.MethodPost, "/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResponse](t, w)
}

func eventBody(budget float64, requiresApproval bool) gin.H {
	return gin.H{
		"title":             "Rooftop Jazz",
		"description":       "Live quartet",
		"category":          "Music",
		"date":              "2026-05-01",
		"time":              "19:00",
		"location":          "Dock 7",
		"budget":            budget,
		"participantsLimit": 20,
		"requiresApproval":  requiresApproval,
	}
}

func createEventHTTP(t *testing.T, r http.Handler, token string, budget float64, requiresApproval bool) store.Event {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/events", token, eventBody(budget, requiresApproval))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[store.Event](t, w)
}

func TestSignupAndLogin(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/signup", "", gin.H{"name": "Ann", "email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret1")
	got := decode[authResponse](t, w)
	assert.NotEmpty(t, got.Token)
	assert.Equal(t, store.RoleParticipant, got.User.Role)

	w = doJSON(t, r, http.MethodPost, "/signup", "", gin.H{"name": "Ann 2", "email": "a@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authResponse](t, w)

	w = doJSON(t, r, http.MethodGet, "/api/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got.User.ID, decode[store.User](t, w).ID)

	w = doJSON(t, r, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignup_Validation(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"bad email", gin.H{"name": "Ann", "email": "not-an-email", "password": "secret1"}},
		{"short password", gin.H{"name": "Ann", "email": "a@x.com", "password": "123"}},
		{"unknown role", gin.H{"name": "Ann", "email": "a@x.com", "password": "secret1", "role": "admin"}},
		{"organizer without category", gin.H{"name": "Club", "email": "c@x.com", "password": "secret1", "role": "organizer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	r := setupRouter(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "someone",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "someone",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	stale, err := expired.SignedString(jwtSecret())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"garbage", "Bearer abc.def.ghi"},
		{"wrong secret", "Bearer " + forged},
		{"expired", "Bearer " + stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventOwnership(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)

	w := doJSON(t, r, http.MethodPost, "/api/events", pat.Token, eventBody(0, false))
	assert.Equal(t, http.StatusForbidden, w.Code)

	ev := createEventHTTP(t, r, org.Token, 0, false)
	assert.Equal(t, []string{org.User.ID}, ev.Participants)

	w = doJSON(t, r, http.MethodPatch, "/api/events/"+ev.ID, pat.Token, gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/events/"+ev.ID, pat.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/events/"+ev.ID, org.Token, gin.H{"location": "Pier 9"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pier 9", decode[store.Event](t, w).Location)

	w = doJSON(t, r, http.MethodDelete, "/api/events/"+ev.ID, org.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/events/"+ev.ID, pat.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftsOverHTTP(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)

	body := eventBody(0, false)
	body["draft"] = true
	w := doJSON(t, r, http.MethodPost, "/api/events", org.Token, body)
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode[store.Event](t, w)

	w = doJSON(t, r, http.MethodGet, "/api/events/"+draft.ID, pat.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/events", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]store.Event](t, w))

	w = doJSON(t, r, http.MethodPost, "/api/events/drafts/"+draft.ID+"/publish", org.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/events?category=Music", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]store.Event](t, w), 1)
}

func TestApprovalFlowOverHTTP(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)
	ev := createEventHTTP(t, r, org.Token, 0, true)
	joinPath := "/api/events/" + ev.ID + "/join"

	w := doJSON(t, r, http.MethodPost, joinPath, pat.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/events/"+ev.ID+"/requests", pat.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	req := decode[store.JoinRequest](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/events/"+ev.ID+"/requests", pat.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	decision := "/api/requests/" + req.ID + "/decision"
	w = doJSON(t, r, http.MethodPost, decision, pat.Token, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, decision, org.Token, gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, decision, org.Token, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.JoinRequestApproved, decode[store.JoinRequest](t, w).Status)

	w = doJSON(t, r, http.MethodPost, decision, org.Token, gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, joinPath, pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[store.Event](t, w).Participants, pat.User.ID)

	w = doJSON(t, r, http.MethodPost, joinPath, pat.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)
	ev := createEventHTTP(t, r, org.Token, 25, false)
	payPath := "/api/events/" + ev.ID + "/payments"

	w := doJSON(t, r, http.MethodPost, "/api/events/"+ev.ID+"/join", pat.Token, nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = doJSON(t, r, http.MethodPost, payPath, pat.Token, gin.H{"method": "card", "cardNumber": "4242"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, payPath, pat.Token, gin.H{
		"method": "card", "cardNumber": "4242424242424242", "expiry": "12/30", "cvv": "123",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	pay := decode[store.Payment](t, w)
	assert.Equal(t, store.PaymentProcessing, pay.Status)

	w = doJSON(t, r, http.MethodGet, "/api/payments/"+pay.ID, org.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var settled store.Payment
	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, "/api/payments/"+pay.ID, pat.Token, nil)
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &settled) != nil {
			return false
		}
		return settled.Status != store.PaymentProcessing
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, store.PaymentSucceeded, settled.Status)

	w = doJSON(t, r, http.MethodGet, "/api/tickets", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tickets := decode[[]store.Ticket](t, w)
	require.Len(t, tickets, 1)
	assert.Equal(t, settled.TicketID, tickets[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/tickets/"+tickets[0].ID, org.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/tickets/"+tickets[0].ID+"/qr.png", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = doJSON(t, r, http.MethodPost, payPath, pat.Token, gin.H{"method": "apple"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/notifications", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifs := decode[[]store.Notification](t, w)
	require.NotEmpty(t, notifs)
	assert.Equal(t, store.NotificationPayment, notifs[0].Type)

	w = doJSON(t, r, http.MethodPost, "/api/notifications/"+notifs[0].ID+"/read", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[store.Notification](t, w).Read)
}

func TestOrganizerStatsOverHTTP(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)
	createEventHTTP(t, r, org.Token, 10, false)

	w := doJSON(t, r, http.MethodGet, "/api/organizer/stats", pat.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/organizer/stats", org.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[store.OrganizerStats](t, w)
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 1, stats.TotalParticipants)
	assert.Equal(t, 10.0, stats.TotalRevenue)
	assert.Equal(t, 19, stats.TicketsRemaining)
}

func TestProfileOverHTTP(t *testing.T) {
	r := setupRouter(t)
	ann := signupUser(t, r, "Ann", "a@x.com", store.RoleParticipant)
	bob := signupUser(t, r, "Bob", "b@x.com", store.RoleParticipant)

	w := doJSON(t, r, http.MethodPatch, "/api/me", ann.Token, gin.H{"bio": "Weekend runner", "interests": []string{"Sports"}})
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[store.User](t, w)
	assert.Equal(t, "Weekend runner", me.Bio)
	assert.Equal(t, []string{"Sports"}, me.Interests)
	assert.Empty(t, me.Password)

	w = doJSON(t, r, http.MethodPost, "/api/me/friends", ann.Token, gin.H{"friendId": bob.User.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{bob.User.ID}, decode[store.User](t, w).Friends)

	w = doJSON(t, r, http.MethodPost, "/api/me/friends", ann.Token, gin.H{"friendId": bob.User.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/me/premium", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[store.User](t, w).IsPremium)
}

func TestFriendEventsHideCredentials(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	ann := signupUser(t, r, "Ann", "a@x.com", store.RoleParticipant)
	bob := signupUser(t, r, "Bob", "b@x.com", store.RoleParticipant)
	ev := createEventHTTP(t, r, org.Token, 0, false)

	w := doJSON(t, r, http.MethodPost, "/api/me/friends", ann.Token, gin.H{"friendId": bob.User.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/events/"+ev.ID+"/join", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/events/friends", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "secret1")
	assert.NotContains(t, body, "b@x.com")

	activity := decode[[]store.FriendActivity](t, w)
	require.Len(t, activity, 1)
	assert.Equal(t, "Bob", activity[0].Friend.Name)
	assert.Equal(t, ev.ID, activity[0].Event.ID)
}

func TestOrganizersCannotAttend(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	rival := signupUser(t, r, "Rival", "r@x.com", store.RoleOrganizer)
	free := createEventHTTP(t, r, org.Token, 0, false)
	gated := createEventHTTP(t, r, org.Token, 0, true)
	paid := createEventHTTP(t, r, org.Token, 25, false)

	w := doJSON(t, r, http.MethodPost, "/api/events/"+free.ID+"/join", rival.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/events/"+gated.ID+"/requests", rival.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/events/"+paid.ID+"/payments", rival.Token, gin.H{"method": "apple"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/events/"+free.ID, rival.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{org.User.ID}, decode[store.Event](t, w).Participants)
}

func TestReviewRequiresAttendance(t *testing.T) {
	r := setupRouter(t)
	org := signupUser(t, r, "Org", "o@x.com", store.RoleOrganizer)
	pat := signupUser(t, r, "Pat", "p@x.com", store.RoleParticipant)
	ev := createEventHTTP(t, r, org.Token, 0, false)
	reviewPath := "/api/events/" + ev.ID + "/reviews"
	review := gin.H{"text": "Great set", "rating": 5}

	w := doJSON(t, r, http.MethodPost, reviewPath, pat.Token, review)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/events/"+ev.ID+"/join", pat.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, reviewPath, pat.Token, review)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reviews := decode[store.Event](t, w).Reviews
	require.Len(t, reviews, 1)
	assert.Equal(t, pat.User.ID, reviews[0].UserID)
}

func TestForgotPassword(t *testing.T) {
	r := setupRouter(t)
	signupUser(t, r, "Ann", "a@x.com", store.RoleParticipant)

	w := doJSON(t, r, http.MethodPost, "/password/forgot", "", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset link sent to your email!", decode[map[string]string](t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/password/forgot", "", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Email not found in our system", decode[map[string]string](t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/password/forgot", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
