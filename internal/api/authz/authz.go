package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Headers set by the upstream platform for every authenticated request.
const (
	HeaderClubID = "X-Club-ID"
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-Member-Role"
)

const (
	RoleAdmin     = "admin"
	RoleCommittee = "committee"
	RoleCoach     = "coach"
	RoleMember    = "member"
)

// ClubContext identifies the caller and the club they are acting for.
type ClubContext struct {
	ClubID string
	UserID string
	Role   string
}

type clubContextKey struct{}

func ContextWithClub(ctx context.Context, club *ClubContext) context.Context {
	return context.WithValue(ctx, clubContextKey{}, club)
}

// ClubFromContext returns the ClubContext stored in ctx, or nil.
func ClubFromContext(ctx context.Context) *ClubContext {
	if ctx == nil {
		return nil
	}
	club, ok := ctx.Value(clubContextKey{}).(*ClubContext)
	if !ok {
		return nil
	}
	return club
}

// FromRequest reads the club headers. It returns nil when no club or user is present.
func FromRequest(r *http.Request) *ClubContext {
	clubID := strings.TrimSpace(r.Header.Get(HeaderClubID))
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if clubID == "" || userID == "" {
		return nil
	}
	return &ClubContext{
		ClubID: clubID,
		UserID: userID,
		Role:   strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRole))),
	}
}

// CanWrite reports whether the role may create or modify club records.
func CanWrite(role string) bool {
	switch strings.ToLower(role) {
	case RoleAdmin, RoleCommittee, RoleCoach:
		return true
	default:
		return false
	}
}

// RequireClubAccess checks that the caller is acting for clubID.
func RequireClubAccess(ctx context.Context, clubID string) error {
	club := ClubFromContext(ctx)
	if club == nil {
		return ErrUnauthenticated
	}
	if clubID == "" || club.ClubID != clubID {
		return ErrForbidden
	}
	return nil
}

// RequireWriteAccess is RequireClubAccess plus a write-capable role.
func RequireWriteAccess(ctx context.Context, clubID string) error {
	if err := RequireClubAccess(ctx, clubID); err != nil {
		return err
	}
	if !CanWrite(ClubFromContext(ctx).Role) {
		return ErrForbidden
	}
	return nil
}
