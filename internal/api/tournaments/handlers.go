// internal/api/tournaments/handlers.go
package tournaments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/api/apiutil"
	"github.com/codr1/Clubhouse/internal/models"
	"github.com/codr1/Clubhouse/internal/tournaments"
)

const (
	tournamentQueryTimeout = 5 * time.Second
	tournamentIDPathKey    = "id"
	fixtureIDPathKey       = "fixture_id"
)

var service *tournaments.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *tournaments.Service) {
	service = svc
}

// POST /api/v1/tournaments
func HandleTournamentCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !serviceReady(w, r) {
		return
	}

	var input tournaments.CreateInput
	if err := apiutil.DecodeJSON(r, &input); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}
	clubID, err := apiutil.RequireString(input.ClubID, "club_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}
	input.ClubID = clubID
	if !apiutil.RequireWriteAccess(w, r, clubID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	tournament, err := service.Create(ctx, input)
	if err != nil {
		writeTournamentError(w, r, err, "Failed to create tournament")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, tournament); err != nil {
		logger.Error().Err(err).Str("tournament_id", tournament.ID).Msg("Failed to write tournament response")
	}
}

// GET /api/v1/tournaments/{id}
func HandleTournamentDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	tournament, ok := loadTournament(w, r, false)
	if !ok {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, tournament); err != nil {
		logger.Error().Err(err).Str("tournament_id", tournament.ID).Msg("Failed to write tournament response")
	}
}

// GET /api/v1/tournaments/{id}/standings
func HandleTournamentStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	tournament, ok := loadTournament(w, r, false)
	if !ok {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"tournament_id": tournament.ID,
		"groups":        tournament.Groups,
		"standings":     tournament.Standings,
	}); err != nil {
		logger.Error().Err(err).Str("tournament_id", tournament.ID).Msg("Failed to write standings response")
	}
}

// PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/teams
func HandleFixtureTeams(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	tournament, ok := loadTournament(w, r, true)
	if !ok {
		return
	}
	fixtureID, err := apiutil.PathID(r, fixtureIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	var assignment tournaments.TeamAssignment
	if err := apiutil.DecodeJSON(r, &assignment); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	updated, err := service.AssignTeams(ctx, tournament.ID, fixtureID, assignment)
	if err != nil {
		writeTournamentError(w, r, err, "Failed to assign teams")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("tournament_id", updated.ID).Msg("Failed to write tournament response")
	}
}

// PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/score
func HandleFixtureScore(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	tournament, ok := loadTournament(w, r, true)
	if !ok {
		return
	}
	fixtureID, err := apiutil.PathID(r, fixtureIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	var update tournaments.ScoreUpdate
	if err := apiutil.DecodeJSON(r, &update); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	updated, err := service.RecordScore(ctx, tournament.ID, fixtureID, update)
	if err != nil {
		writeTournamentError(w, r, err, "Failed to record score")
		return
	}

	logger.Info().
		Str("tournament_id", updated.ID).
		Str("fixture_id", fixtureID).
		Int("home_score", update.HomeScore).
		Int("away_score", update.AwayScore).
		Msg("Fixture score recorded")
	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("tournament_id", updated.ID).Msg("Failed to write tournament response")
	}
}

func serviceReady(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Tournament service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

func loadTournament(w http.ResponseWriter, r *http.Request, write bool) (models.Tournament, bool) {
	if !serviceReady(w, r) {
		return models.Tournament{}, false
	}
	tournamentID, err := apiutil.PathID(r, tournamentIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return models.Tournament{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	tournament, err := service.Get(ctx, tournamentID)
	if err != nil {
		writeTournamentError(w, r, err, "Failed to load tournament")
		return models.Tournament{}, false
	}
	if write {
		return tournament, apiutil.RequireWriteAccess(w, r, tournament.ClubID)
	}
	return tournament, apiutil.RequireClubAccess(w, r, tournament.ClubID)
}

func writeTournamentError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, tournaments.ErrTournamentNotFound), errors.Is(err, tournaments.ErrFixtureNotFound):
		err = apiutil.HandlerError{Status: http.StatusNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, tournaments.ErrInvalidBracketConfig),
		errors.Is(err, tournaments.ErrTooManyGroups),
		errors.Is(err, tournaments.ErrTooManyTeams),
		errors.Is(err, tournaments.ErrUnknownTeam),
		errors.Is(err, tournaments.ErrInvalidScore),
		errors.Is(err, tournaments.ErrInvalidStatus):
		err = apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	apiutil.WriteError(w, r, err, fallback)
}
