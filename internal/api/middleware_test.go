package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/Clubhouse/internal/api/authz"
)

func TestWithRequestIDReusesIncomingHeader(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "abc-123" {
		t.Fatalf("expected request id abc-123, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected response header abc-123, got %q", got)
	}
}

func TestWithRequestIDGeneratesID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestWithRecoveryReturns500(t *testing.T) {
	handler := ChainMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }),
		WithRecovery,
		WithLogging,
		WithRequestID,
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/members", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWithClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       string
	}{
		{name: "untrusted_uses_remote_addr", want: "10.0.0.1"},
		{name: "trusted_uses_forwarded_for", trustProxy: true, want: "203.0.113.4"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var seen string
			handler := ChainMiddleware(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = ClientIPFromContext(r.Context())
				}),
				WithLogging,
				WithClientIP(test.trustProxy),
			)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = "10.0.0.1:4242"
			req.Header.Set("X-Forwarded-For", "203.0.113.4, 10.0.0.2")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if seen != test.want {
				t.Fatalf("client ip = %q, want %q", seen, test.want)
			}
		})
	}
}

func TestWithClubContext(t *testing.T) {
	var club *authz.ClubContext
	handler := WithClubContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		club = authz.ClubFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members", nil)
	req.Header.Set(authz.HeaderClubID, "club-1")
	req.Header.Set(authz.HeaderUserID, "user-1")
	req.Header.Set(authz.HeaderRole, "coach")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if club == nil || club.ClubID != "club-1" || club.Role != authz.RoleCoach {
		t.Fatalf("unexpected club context %+v", club)
	}

	club = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/members", nil))
	if club != nil {
		t.Fatalf("expected no club context without headers")
	}
}
