// internal/api/members/handlers.go
package members

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/api/apiutil"
	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/models"
)

const (
	memberQueryTimeout = 5 * time.Second
	memberIDPathKey    = "id"
)

var data dataclient.Client

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(client dataclient.Client) {
	data = client
}

// GET /api/v1/members?club_id=
func HandleMembersList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}
	if !apiutil.RequireClubAccess(w, r, clubID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	members, err := dataclient.FilterAs[models.Member](ctx, data, models.EntityMember, dataclient.Query{"club_id": clubID})
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list members")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"members": members}); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write members response")
	}
}

// POST /api/v1/members
func HandleMemberCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var member models.Member
	if err := apiutil.DecodeJSON(r, &member); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}
	member.ID = ""
	clubID, err := apiutil.RequireString(member.ClubID, "club_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid member")
		return
	}
	member.ClubID = clubID
	if !apiutil.RequireWriteAccess(w, r, clubID) {
		return
	}
	if err := prepareMember(&member); err != nil {
		apiutil.WriteError(w, r, err, "Invalid member")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	if err := checkGuardian(ctx, member); err != nil {
		apiutil.WriteError(w, r, err, "Failed to check guardian")
		return
	}

	record, err := data.Create(ctx, models.EntityMember, member)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create member")
		return
	}
	created, err := dataclient.Decode[models.Member](record)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create member")
		return
	}

	logger.Info().Str("club_id", created.ClubID).Str("member_id", created.ID).Msg("Member created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("member_id", created.ID).Msg("Failed to write member response")
	}
}

// PUT /api/v1/members/{id}
// The body replaces every editable field; the id and club are fixed.
func HandleMemberUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	memberID, err := apiutil.PathID(r, memberIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	existing, err := dataclient.Get[models.Member](ctx, data, models.EntityMember, memberID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load member")
		return
	}
	if !apiutil.RequireWriteAccess(w, r, existing.ClubID) {
		return
	}

	var member models.Member
	if err := apiutil.DecodeJSON(r, &member); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}
	member.ID = existing.ID
	member.ClubID = existing.ClubID
	if err := prepareMember(&member); err != nil {
		apiutil.WriteError(w, r, err, "Invalid member")
		return
	}
	if member.GuardianID == member.ID {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "guardian_id", Reason: "cannot reference the member itself"}, "Invalid member")
		return
	}
	if err := checkGuardian(ctx, member); err != nil {
		apiutil.WriteError(w, r, err, "Failed to check guardian")
		return
	}

	record, err := data.Update(ctx, models.EntityMember, memberID, member)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update member")
		return
	}
	updated, err := dataclient.Decode[models.Member](record)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update member")
		return
	}

	logger.Info().Str("club_id", updated.ClubID).Str("member_id", updated.ID).Msg("Member updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("member_id", updated.ID).Msg("Failed to write member response")
	}
}

// DELETE /api/v1/members/{id}
func HandleMemberDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	memberID, err := apiutil.PathID(r, memberIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	existing, err := dataclient.Get[models.Member](ctx, data, models.EntityMember, memberID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load member")
		return
	}
	if !apiutil.RequireWriteAccess(w, r, existing.ClubID) {
		return
	}

	if err := data.Delete(ctx, models.EntityMember, memberID); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete member")
		return
	}

	logger.Info().Str("club_id", existing.ClubID).Str("member_id", memberID).Msg("Member deleted")
	w.WriteHeader(http.StatusNoContent)
}

func prepareMember(member *models.Member) error {
	if err := member.Normalize(); err != nil {
		return err
	}
	return member.Validate()
}

// checkGuardian requires guardian_id, when set, to name a member of the same club.
func checkGuardian(ctx context.Context, member models.Member) error {
	if member.GuardianID == "" {
		return nil
	}
	guardian, err := dataclient.Get[models.Member](ctx, data, models.EntityMember, member.GuardianID)
	if errors.Is(err, dataclient.ErrNotFound) || (err == nil && guardian.ClubID != member.ClubID) {
		return apiutil.FieldError{Field: "guardian_id", Reason: "must reference a member of the same club"}
	}
	return err
}
