package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/intizom/intizom/internal/app"
	"github.com/intizom/intizom/internal/app/auth"
	"github.com/intizom/intizom/internal/config"
	"github.com/intizom/intizom/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokens := auth.NewManager("test-secret", 0, 0)
	application, err := app.New(app.Stores{}, app.Options{Tokens: tokens}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	router := NewHandler(application, config.DefaultFeatures(), nil)
	authmw := middleware.NewAuthMiddleware(tokens, nil, SkipAuthPaths())
	srv := httptest.NewServer(authmw.Handler(router))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, srv *httptest.Server, email string) (token, userID string) {
	t.Helper()
	var reg struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	status := do(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "password123",
	}, &reg)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}
	if reg.AccessToken == "" {
		t.Fatalf("register returned empty access token")
	}
	return reg.AccessToken, reg.User.ID
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "auth@example.com")

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	status := do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "auth@example.com",
		"password": "password123",
	}, &login)
	if status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatalf("login returned empty tokens")
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	status = do(t, srv, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": login.RefreshToken,
	}, &refreshed)
	if status != http.StatusOK {
		t.Fatalf("refresh status = %d", status)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("refresh returned empty access token")
	}

	status = do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "auth@example.com",
		"password": "wrong-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", status)
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "envelope@example.com")

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		Timestamp  string `json:"timestamp"`
		Path       string `json:"path"`
		Message    string `json:"message"`
	}
	status := do(t, srv, http.MethodGet, "/api/v1/habits/missing", token, nil, &envelope)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if envelope.StatusCode != http.StatusNotFound {
		t.Fatalf("envelope statusCode = %d", envelope.StatusCode)
	}
	if envelope.Path != "/api/v1/habits/missing" {
		t.Fatalf("envelope path = %q", envelope.Path)
	}
	if envelope.Message == "" {
		t.Fatalf("envelope message is empty")
	}
	if _, err := time.Parse(time.RFC3339, envelope.Timestamp); err != nil {
		t.Fatalf("envelope timestamp %q: %v", envelope.Timestamp, err)
	}
}

func TestHabitLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "habits@example.com")

	var created struct {
		ID     string `json:"id"`
		Streak int    `json:"streak"`
	}
	status := do(t, srv, http.MethodPost, "/api/v1/habits", token, map[string]string{
		"title":    "Morning run",
		"category": "fitness",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create habit status = %d", status)
	}

	var completed struct {
		Streak         int  `json:"streak"`
		CompletedToday bool `json:"completed_today"`
	}
	status = do(t, srv, http.MethodPost, "/api/v1/habits/"+created.ID+"/complete", token, map[string]string{}, &completed)
	if status != http.StatusOK {
		t.Fatalf("complete status = %d", status)
	}
	if completed.Streak != 1 || !completed.CompletedToday {
		t.Fatalf("after complete: streak = %d, completed_today = %v", completed.Streak, completed.CompletedToday)
	}

	// Completing twice on the same day is a no-op.
	status = do(t, srv, http.MethodPost, "/api/v1/habits/"+created.ID+"/complete", token, map[string]string{}, &completed)
	if status != http.StatusOK || completed.Streak != 1 {
		t.Fatalf("second complete: status = %d, streak = %d", status, completed.Streak)
	}

	now := time.Now().UTC()
	var view struct {
		DaysInMonth int `json:"days_in_month"`
		Habits      []struct {
			ID            string `json:"id"`
			CompletedDays []int  `json:"completed_days"`
		} `json:"habits"`
	}
	path := fmt.Sprintf("/api/v1/habits/month?year=%d&month=%d", now.Year(), int(now.Month()))
	status = do(t, srv, http.MethodGet, path, token, nil, &view)
	if status != http.StatusOK {
		t.Fatalf("month view status = %d", status)
	}
	if len(view.Habits) != 1 || view.Habits[0].ID != created.ID {
		t.Fatalf("month view habits = %+v", view.Habits)
	}
	if len(view.Habits[0].CompletedDays) != 1 || view.Habits[0].CompletedDays[0] != now.Day() {
		t.Fatalf("completed days = %v, want [%d]", view.Habits[0].CompletedDays, now.Day())
	}

	var uncompleted struct {
		Streak         int  `json:"streak"`
		CompletedToday bool `json:"completed_today"`
	}
	status = do(t, srv, http.MethodDelete, "/api/v1/habits/"+created.ID+"/complete", token, nil, &uncompleted)
	if status != http.StatusOK {
		t.Fatalf("uncomplete status = %d", status)
	}
	if uncompleted.Streak != 0 || uncompleted.CompletedToday {
		t.Fatalf("after uncomplete: streak = %d, completed_today = %v", uncompleted.Streak, uncompleted.CompletedToday)
	}

	status = do(t, srv, http.MethodDelete, "/api/v1/habits/"+created.ID, token, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
}

func TestCrossUserAccessForbidden(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	otherToken, _ := registerUser(t, srv, "other@example.com")

	var created struct {
		ID string `json:"id"`
	}
	if status := do(t, srv, http.MethodPost, "/api/v1/habits", ownerToken, map[string]string{"title": "Read"}, &created); status != http.StatusCreated {
		t.Fatalf("create habit status = %d", status)
	}

	if status := do(t, srv, http.MethodGet, "/api/v1/habits/"+created.ID, otherToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("cross-user get status = %d, want 403", status)
	}
	if status := do(t, srv, http.MethodDelete, "/api/v1/habits/"+created.ID, otherToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("cross-user delete status = %d, want 403", status)
	}
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "plain@example.com")

	if status := do(t, srv, http.MethodGet, "/api/v1/admin/users", token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("admin list as user status = %d, want 403", status)
	}
	if status := do(t, srv, http.MethodPost, "/api/v1/admin/broadcast", token, map[string]string{"title": "x"}, nil); status != http.StatusForbidden {
		t.Fatalf("admin broadcast as user status = %d, want 403", status)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	srv := newTestServer(t)

	var envelope struct {
		StatusCode int `json:"statusCode"`
	}
	status := do(t, srv, http.MethodGet, "/api/v1/habits", "", nil, &envelope)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if envelope.StatusCode != http.StatusUnauthorized {
		t.Fatalf("envelope statusCode = %d", envelope.StatusCode)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "strict@example.com")

	status := do(t, srv, http.MethodPost, "/api/v1/tasks", token, map[string]string{
		"title":   "Ship release",
		"unknown": "field",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", status)
	}
}

func TestTaskBoardFlow(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "board@example.com")

	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}
	status := do(t, srv, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "Write docs"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create task status = %d", status)
	}
	if created.Status != "todo" || created.Priority != "medium" {
		t.Fatalf("task defaults: status = %q, priority = %q", created.Status, created.Priority)
	}

	var moved struct {
		Status   string `json:"status"`
		Position int    `json:"position"`
	}
	status = do(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/move", token, map[string]interface{}{
		"status":   "doing",
		"position": 2,
	}, &moved)
	if status != http.StatusOK {
		t.Fatalf("move status = %d", status)
	}
	if moved.Status != "doing" || moved.Position != 2 {
		t.Fatalf("after move: status = %q, position = %d", moved.Status, moved.Position)
	}

	var sub struct {
		ID   string `json:"id"`
		Done bool   `json:"done"`
	}
	status = do(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/subtasks", token, map[string]string{"title": "Outline"}, &sub)
	if status != http.StatusCreated {
		t.Fatalf("add subtask status = %d", status)
	}
	status = do(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/subtasks/"+sub.ID+"/toggle", token, nil, &sub)
	if status != http.StatusOK || !sub.Done {
		t.Fatalf("toggle subtask: status = %d, done = %v", status, sub.Done)
	}
}

func TestFinanceStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "money@example.com")

	now := time.Now().UTC()
	for _, tx := range []map[string]interface{}{
		{"type": "income", "amount": 100000, "category": "salary"},
		{"type": "expense", "amount": 40000, "category": "rent"},
	} {
		if status := do(t, srv, http.MethodPost, "/api/v1/transactions", token, tx, nil); status != http.StatusCreated {
			t.Fatalf("create transaction status = %d", status)
		}
	}

	var stats struct {
		Year    int   `json:"year"`
		Income  int64 `json:"income"`
		Expense int64 `json:"expense"`
		Balance int64 `json:"balance"`
	}
	path := fmt.Sprintf("/api/v1/transactions/stats?year=%d", now.Year())
	if status := do(t, srv, http.MethodGet, path, token, nil, &stats); status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	if stats.Income != 100000 || stats.Expense != 40000 || stats.Balance != 60000 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestHealthAndMetricsOpen(t *testing.T) {
	srv := newTestServer(t)

	if status := do(t, srv, http.MethodGet, "/healthz", "", nil, nil); status != http.StatusOK {
		t.Fatalf("healthz status = %d", status)
	}
	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
}
