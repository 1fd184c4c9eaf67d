package apiutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/Clubhouse/internal/api/authz"
	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/models"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	var dst struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	var dst struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected trailing data error")
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"handler", HandlerError{Status: http.StatusConflict, Message: "busy"}, http.StatusConflict},
		{"field", FieldError{Field: "club_id", Reason: "is required"}, http.StatusBadRequest},
		{"validation", &models.ValidationError{Problems: []models.FieldProblem{{Field: "email", Rule: "email"}}}, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("load: %w", dataclient.ErrNotFound), http.StatusNotFound},
		{"unauthenticated", authz.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", authz.ErrForbidden, http.StatusForbidden},
		{"phone", models.ErrInvalidPhone, http.StatusUnprocessableEntity},
		{"other", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, "Failed")
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", tc.name, err)
		}
		if body.Error == "" {
			t.Fatalf("%s: expected error message", tc.name)
		}
	}
}

func TestRequireWriteAccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	if RequireWriteAccess(rec, req, "club-1") {
		t.Fatalf("expected denial without club context")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	ctx := authz.ContextWithClub(req.Context(), &authz.ClubContext{ClubID: "club-1", UserID: "u", Role: authz.RoleMember})
	rec = httptest.NewRecorder()
	if RequireWriteAccess(rec, req.WithContext(ctx), "club-1") {
		t.Fatalf("expected member role to be denied writes")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if !RequireClubAccess(rec, req.WithContext(ctx), "club-1") {
		t.Fatalf("expected read access for own club")
	}
}
