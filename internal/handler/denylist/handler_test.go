package denylist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/denylist/internal/apperr"
	"github.com/TomasB/denylist/internal/data"
)

// mockLookup implements data.RejectLookup for testing.
type mockLookup struct {
	rejects []data.Reject
	err     error
	calls   int
	email   string
}

func (m *mockLookup) ListRejects(_ context.Context, email string) ([]data.Reject, error) {
	m.calls++
	m.email = email
	return m.rejects, m.err
}

func setupRouter(lookup *mockLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(lookup)
	r.GET("/api/denylist", h.Lookup)
	return r
}

func doGet(router *gin.Engine, url string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLookup_NotSuppressed(t *testing.T) {
	lookup := &mockLookup{rejects: []data.Reject{}}
	router := setupRouter(lookup)

	w := doGet(router, "/api/denylist?email=good@example.com")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	expected := `{"data":{"isSubscribed":true,"message":null}}`
	if w.Body.String() != expected {
		t.Errorf("expected body %s, got %s", expected, w.Body.String())
	}
	if lookup.email != "good@example.com" {
		t.Errorf("expected lookup of good@example.com, got %q", lookup.email)
	}
}

func TestLookup_Suppressed(t *testing.T) {
	router := setupRouter(&mockLookup{rejects: []data.Reject{{Email: "bad@example.com", Reason: "hard-bounce"}}})

	w := doGet(router, "/api/denylist?email=bad@example.com")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	expected := `{"data":{"isSubscribed":false,"message":"hard-bounce"}}`
	if w.Body.String() != expected {
		t.Errorf("expected body %s, got %s", expected, w.Body.String())
	}
}

func TestLookup_FirstReasonUsed(t *testing.T) {
	router := setupRouter(&mockLookup{rejects: []data.Reject{{Reason: "spam"}, {Reason: "hard-bounce"}}})

	w := doGet(router, "/api/denylist?email=bad@example.com")

	var resp struct {
		Data struct {
			IsSubscribed bool    `json:"isSubscribed"`
			Message      *string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Message == nil || *resp.Data.Message != "spam" {
		t.Errorf("expected message spam, got %v", resp.Data.Message)
	}
}

func TestLookup_MissingEmail(t *testing.T) {
	for _, url := range []string{"/api/denylist", "/api/denylist?email=", "/api/denylist?email=%20%20"} {
		t.Run(url, func(t *testing.T) {
			lookup := &mockLookup{}
			router := setupRouter(lookup)

			w := doGet(router, url)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			expected := `{"error":"Email required"}`
			if w.Body.String() != expected {
				t.Errorf("expected body %s, got %s", expected, w.Body.String())
			}
			if lookup.calls != 0 {
				t.Errorf("expected no provider call, got %d", lookup.calls)
			}
		})
	}
}

func TestLookup_TrimsEmail(t *testing.T) {
	lookup := &mockLookup{}
	router := setupRouter(lookup)

	doGet(router, "/api/denylist?email=%20good@example.com%20")

	if lookup.email != "good@example.com" {
		t.Errorf("expected trimmed email, got %q", lookup.email)
	}
}

func TestLookup_ProviderError(t *testing.T) {
	router := setupRouter(&mockLookup{err: &data.APIError{
		HTTPStatus: http.StatusInternalServerError,
		Status:     "error",
		Name:       "Invalid_Key",
		Message:    "Invalid API key",
	}})

	w := doGet(router, "/api/denylist?email=bad@example.com")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	expected := `{"error":"Invalid API key"}`
	if w.Body.String() != expected {
		t.Errorf("expected body %s, got %s", expected, w.Body.String())
	}
}

func TestLookup_TransportError(t *testing.T) {
	router := setupRouter(&mockLookup{err: fmt.Errorf("%w: dial tcp: connection refused", apperr.ErrRequestFailed)})

	w := doGet(router, "/api/denylist?email=bad@example.com")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["error"] != "denylist lookup failed" {
		t.Errorf("expected 'denylist lookup failed' error, got %v", resp["error"])
	}
	if _, ok := resp["data"]; ok {
		t.Error("expected no data field on error")
	}
}

func TestLookup_NotConfigured(t *testing.T) {
	router := setupRouter(&mockLookup{err: apperr.ErrNotConfigured})

	w := doGet(router, "/api/denylist?email=bad@example.com")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	expected := `{"error":"provider API key is not configured"}`
	if w.Body.String() != expected {
		t.Errorf("expected body %s, got %s", expected, w.Body.String())
	}
}
