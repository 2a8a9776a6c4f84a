package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicore/appointment-system/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	var gotClaims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(tokens)(next)

	// No token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	// Garbage token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", rec.Code)
	}

	// Valid token
	raw, err := tokens.Issue(7, "jane@example.com", auth.RolePatient)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != 7 {
		t.Errorf("claims = %+v", gotClaims)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})
	handler := RequestIDMiddleware(next)

	// Generated when absent.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if captured == "" {
		t.Error("no request id generated")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Error("request id not echoed in response header")
	}

	// Preserved when supplied.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if captured != "abc-123" {
		t.Errorf("request id = %q, want abc-123", captured)
	}
}
