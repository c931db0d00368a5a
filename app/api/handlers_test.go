package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/idea-box/app/cfg"
	"github.com/lysyi3m/idea-box/app/database"
	"github.com/lysyi3m/idea-box/app/moderation"
)

type testApp struct {
	router      *gin.Engine
	service     *moderation.Service
	submissions database.SubmissionRepository
	ideas       database.IdeaRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg.Set(&cfg.Cfg{
		Port:                 "8080",
		AdminUsername:        "admin",
		AdminPassword:        "secret",
		RateLimitMaxAttempts: 3,
		RateLimitWindow:      3600,
		Version:              "test",
	})

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	denylist, err := moderation.LoadDenylist("")
	if err != nil {
		t.Fatalf("Failed to load denylist: %v", err)
	}

	submissions := database.NewSubmissionRepository(db)
	ideas := database.NewIdeaRepository(db)
	limiter := moderation.NewLimiter(database.NewRateLimitRepository(db), 3, time.Hour)
	service := moderation.NewService(submissions, ideas, limiter, moderation.NewScreener(denylist), nil)

	handler := NewHandler(service, submissions, ideas)

	return &testApp{
		router:      NewServer(handler),
		service:     service,
		submissions: submissions,
		ideas:       ideas,
	}
}

func (a *testApp) request(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.SetBasicAuth("admin", "secret")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSubmitIdea_Success(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "POST", "/api/submit-idea", `{"idea":"Build a teapot"}`, false)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	if body["success"] != true {
		t.Error("Expected success true")
	}
	if body["message"] != moderation.SubmissionAck {
		t.Errorf("Expected acknowledgment message, got %v", body["message"])
	}
}

func TestSubmitIdea_FlaggedGetsSameAck(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "POST", "/api/submit-idea", `{"idea":"fuck this"}`, false)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// Flagging is invisible to the submitter
	body := decodeJSON(t, w)
	if body["message"] != moderation.SubmissionAck {
		t.Errorf("Flagged submission must get the identical acknowledgment, got %v", body["message"])
	}

	subs, err := app.submissions.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(subs) != 1 || !subs[0].Flagged {
		t.Error("Flagged submission should be persisted with its flag")
	}
}

func TestSubmitIdea_EmptyText(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "POST", "/api/submit-idea", `{"idea":"   "}`, false)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	body := decodeJSON(t, w)
	if body["error"] != "Idea cannot be empty" {
		t.Errorf("Expected empty-idea error, got %v", body["error"])
	}
}

func TestSubmitIdea_TooLong(t *testing.T) {
	app := newTestApp(t)

	long := strings.Repeat("a", 501)
	w := app.request(t, "POST", "/api/submit-idea", `{"idea":"`+long+`"}`, false)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestSubmitIdea_RateLimited(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		w := app.request(t, "POST", "/api/submit-idea", `{"idea":"a good idea"}`, false)
		if w.Code != http.StatusOK {
			t.Fatalf("Submit %d expected 200, got %d", i+1, w.Code)
		}
	}

	w := app.request(t, "POST", "/api/submit-idea", `{"idea":"one too many"}`, false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	retryAfter, ok := body["retry_after"].(float64)
	if !ok || retryAfter <= 0 {
		t.Errorf("Expected positive retry_after, got %v", body["retry_after"])
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "too many ideas") {
		t.Errorf("Expected rate limit message, got %v", body["error"])
	}
}

func TestRateLimitStatus(t *testing.T) {
	app := newTestApp(t)

	app.request(t, "POST", "/api/submit-idea", `{"idea":"a good idea"}`, false)

	w := app.request(t, "GET", "/api/rate-limit-status", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	if body["max_attempts"] != float64(3) {
		t.Errorf("Expected max_attempts 3, got %v", body["max_attempts"])
	}
	if body["attempts_used"] != float64(1) {
		t.Errorf("Expected attempts_used 1, got %v", body["attempts_used"])
	}
	if body["remaining"] != float64(2) {
		t.Errorf("Expected remaining 2, got %v", body["remaining"])
	}
	if body["is_limited"] != false {
		t.Errorf("Expected is_limited false, got %v", body["is_limited"])
	}
}

func TestRandomIdea_EmptyPool(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "GET", "/api/random-idea", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	if body["error"] != "No ideas found" {
		t.Errorf("Expected empty-pool error, got %v", body["error"])
	}
}

func TestRandomIdea_AfterApproval(t *testing.T) {
	app := newTestApp(t)

	sub, err := app.service.Submit("Build a teapot", "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := app.service.Approve(sub.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	w := app.request(t, "GET", "/api/random-idea", "", false)
	body := decodeJSON(t, w)
	if body["idea"] != "Build a teapot" {
		t.Errorf("Expected the approved idea, got %v", body["idea"])
	}
}

func TestAdmin_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "GET", "/admin", "", false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if challenge := w.Header().Get("WWW-Authenticate"); !strings.Contains(challenge, "Basic") {
		t.Errorf("Expected basic auth challenge header, got %q", challenge)
	}
}

func TestAdmin_BadCredentials(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestAdmin_Dashboard(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.service.Submit("a good idea", "203.0.113.7", ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	w := app.request(t, "GET", "/admin", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "a good idea") {
		t.Error("Dashboard should list the submission")
	}
}

func TestApprove_Success(t *testing.T) {
	app := newTestApp(t)

	sub, err := app.service.Submit("Build a teapot", "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	w := app.request(t, "POST", "/admin/api/approve/"+itoa(sub.ID), "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	stored, err := app.submissions.Get(sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != database.StatusApproved {
		t.Errorf("Expected approved, got %s", stored.Status)
	}
}

func TestApprove_NotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "POST", "/admin/api/approve/12345", "", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
}

func TestReject_WithReason(t *testing.T) {
	app := newTestApp(t)

	sub, err := app.service.Submit("a good idea", "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	w := app.request(t, "POST", "/admin/api/reject/"+itoa(sub.ID), `{"reason":"off topic"}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	stored, err := app.submissions.Get(sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != database.StatusRejected || stored.RejectionReason != "off topic" {
		t.Errorf("Expected rejected/'off topic', got %s/'%s'", stored.Status, stored.RejectionReason)
	}
}

func TestReject_WithoutBody(t *testing.T) {
	app := newTestApp(t)

	sub, err := app.service.Submit("a good idea", "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	w := app.request(t, "POST", "/admin/api/reject/"+itoa(sub.ID), "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	stored, err := app.submissions.Get(sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.RejectionReason != "No reason provided" {
		t.Errorf("Expected default reason, got '%s'", stored.RejectionReason)
	}
}

func TestDelete_Success(t *testing.T) {
	app := newTestApp(t)

	sub, err := app.service.Submit("a good idea", "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	w := app.request(t, "DELETE", "/admin/api/delete/"+itoa(sub.ID), "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// A second delete must report NotFound, never silent success
	w = app.request(t, "DELETE", "/admin/api/delete/"+itoa(sub.ID), "", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 on repeat delete, got %d", w.Code)
	}
}

func TestAdminAPI_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/admin/api/approve/1"},
		{"POST", "/admin/api/reject/1"},
		{"DELETE", "/admin/api/delete/1"},
	} {
		w := app.request(t, tc.method, tc.path, "", false)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, "GET", "/health", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	if _, ok := body["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
