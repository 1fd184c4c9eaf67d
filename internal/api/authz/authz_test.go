package authz

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestRequireClubAccessUnauthenticated(t *testing.T) {
	err := RequireClubAccess(context.Background(), "club-1")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireClubAccessOtherClubForbidden(t *testing.T) {
	ctx := ContextWithClub(context.Background(), &ClubContext{ClubID: "club-2", UserID: "u1", Role: RoleAdmin})

	err := RequireClubAccess(ctx, "club-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireClubAccessEmptyClubForbidden(t *testing.T) {
	ctx := ContextWithClub(context.Background(), &ClubContext{ClubID: "club-1", UserID: "u1"})

	if err := RequireClubAccess(ctx, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireClubAccessAllowed(t *testing.T) {
	ctx := ContextWithClub(context.Background(), &ClubContext{ClubID: "club-1", UserID: "u1", Role: RoleMember})

	if err := RequireClubAccess(ctx, "club-1"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRequireWriteAccessRoles(t *testing.T) {
	cases := map[string]bool{
		RoleAdmin:     true,
		RoleCommittee: true,
		RoleCoach:     true,
		"Coach":       true,
		RoleMember:    false,
		"":            false,
	}
	for role, allowed := range cases {
		ctx := ContextWithClub(context.Background(), &ClubContext{ClubID: "club-1", UserID: "u1", Role: role})
		err := RequireWriteAccess(ctx, "club-1")
		if allowed && err != nil {
			t.Fatalf("role %q: expected nil, got %v", role, err)
		}
		if !allowed && !errors.Is(err, ErrForbidden) {
			t.Fatalf("role %q: expected ErrForbidden, got %v", role, err)
		}
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/members", nil)
	if club := FromRequest(req); club != nil {
		t.Fatalf("expected nil club without headers, got %+v", club)
	}

	req.Header.Set(HeaderClubID, " club-1 ")
	req.Header.Set(HeaderUserID, "user-9")
	req.Header.Set(HeaderRole, "Committee")
	club := FromRequest(req)
	if club == nil {
		t.Fatalf("expected club context")
	}
	if club.ClubID != "club-1" || club.UserID != "user-9" || club.Role != RoleCommittee {
		t.Fatalf("unexpected club context %+v", club)
	}
}
